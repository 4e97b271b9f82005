package kernel

import (
	"github.com/vk/denoisegridgo/internal/cfgerror"
)

// CensorInput bundles the motion/variance series and thresholds for censor
// computation. A series supplied without its threshold is a configuration
// error.
type CensorInput struct {
	// FD is the framewise-displacement series, one value per timepoint.
	FD []float64
	// DVARS is the raw DVARS series. It has one fewer sample than FD and is
	// logically prefixed with 0.0 to align the two.
	DVARS []float64

	FDThreshold    *Threshold
	DVARSThreshold *Threshold

	// PreWindow and PostWindow extend each offending timepoint into the
	// inclusive window [i-PreWindow, i+PostWindow].
	PreWindow  int
	PostWindow int
}

// Censor finds timepoints whose FD or DVARS exceed their thresholds and
// returns a vector with one entry per timepoint: 1 kept, 0 censored.
//
// When both series are supplied, the offending set is the intersection of the
// two criteria, not the union: a timepoint is censored only if both FD and
// DVARS flag it.
func Censor(in CensorInput) ([]int, error) {
	if len(in.FD) == 0 && len(in.DVARS) == 0 {
		return nil, cfgerror.New("censoring requires at least one of FD or DVARS")
	}
	if in.PreWindow < 0 || in.PostWindow < 0 {
		return nil, cfgerror.Newf("censor window must be non-negative, received %d+%d", in.PreWindow, in.PostWindow)
	}

	var length int
	var fdOffending, dvarsOffending map[int]struct{}

	if len(in.FD) > 0 {
		if in.FDThreshold == nil {
			return nil, cfgerror.New("an FD series requires a framewise displacement threshold, none received")
		}
		set, err := offendingIndices(in.FD, *in.FDThreshold)
		if err != nil {
			return nil, err
		}
		fdOffending = set
		length = len(in.FD)
	}

	if len(in.DVARS) > 0 {
		if in.DVARSThreshold == nil {
			return nil, cfgerror.New("a DVARS series requires a DVARS threshold, none received")
		}
		// DVARS has no sample for the first frame; align by prefixing 0.0.
		padded := make([]float64, 0, len(in.DVARS)+1)
		padded = append(padded, 0.0)
		padded = append(padded, in.DVARS...)

		if length > 0 && len(padded) != length {
			return nil, cfgerror.Newf("FD length %d and padded DVARS length %d do not align", length, len(padded))
		}
		set, err := offendingIndices(padded, *in.DVARSThreshold)
		if err != nil {
			return nil, err
		}
		dvarsOffending = set
		length = len(padded)
	}

	var offending map[int]struct{}
	switch {
	case fdOffending != nil && dvarsOffending != nil:
		offending = intersect(fdOffending, dvarsOffending)
	case fdOffending != nil:
		offending = fdOffending
	default:
		offending = dvarsOffending
	}

	censor := make([]int, length)
	for i := range censor {
		censor[i] = 1
	}
	for i := range offending {
		lo := i - in.PreWindow
		hi := i + in.PostWindow
		for j := lo; j <= hi; j++ {
			if j >= 0 && j < length {
				censor[j] = 0
			}
		}
	}
	return censor, nil
}

// offendingIndices resolves the threshold over the series and returns the set
// of indices whose values exceed it.
func offendingIndices(series []float64, t Threshold) (map[int]struct{}, error) {
	if t.Kind == ThresholdPercentile {
		return nil, cfgerror.New("percentile thresholds are not valid for censoring")
	}
	cutoff, err := t.Resolve(series)
	if err != nil {
		return nil, err
	}
	set := make(map[int]struct{})
	for i, v := range series {
		if v > cutoff {
			set[i] = struct{}{}
		}
	}
	return set, nil
}

func intersect(a, b map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{})
	for i := range a {
		if _, ok := b[i]; ok {
			out[i] = struct{}{}
		}
	}
	return out
}
