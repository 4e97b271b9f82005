// Package kernel implements the numeric kernels of the denoising pipeline:
// censor-vector computation, temporal-variance masking, summary-timeseries
// extraction, mask erosion and resampling, and transform application. Every
// kernel is a pure function of its declared inputs; scheduling belongs to the
// executor.
package kernel

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vk/denoisegridgo/internal/cfgerror"
	"gonum.org/v1/gonum/stat"
)

// ThresholdKind discriminates how a threshold value is interpreted.
type ThresholdKind int

const (
	// ThresholdAbsolute compares against the value directly.
	ThresholdAbsolute ThresholdKind = iota
	// ThresholdStdDev compares against mean + k*std of the thresholded data.
	ThresholdStdDev
	// ThresholdPercentile selects the top p percent of the thresholded data.
	ThresholdPercentile
)

// Threshold is a parsed threshold specification. Raw preserves the original
// spelling for canonical-identity emission; it is empty for thresholds that
// were supplied as plain numbers.
type Threshold struct {
	Kind  ThresholdKind
	Value float64
	Raw   string
}

var (
	stdDevPattern     = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*SD$`)
	percentilePattern = regexp.MustCompile(`^([0-9]*\.?[0-9]+)\s*PCT$`)
)

// AbsoluteThreshold wraps a plain numeric threshold.
func AbsoluteThreshold(value float64) Threshold {
	return Threshold{Kind: ThresholdAbsolute, Value: value}
}

// ParseThreshold interprets a threshold string: a plain number, "<k>SD" for a
// standard-deviation multiple, or (when allowPercentile is set) "<p>PCT" for
// a top-percentile cut. Anything else is a configuration error.
func ParseThreshold(raw string, allowPercentile bool) (Threshold, error) {
	trimmed := strings.TrimSpace(raw)

	if m := stdDevPattern.FindStringSubmatch(trimmed); m != nil {
		k, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Threshold{}, cfgerror.Newf("could not translate threshold %q into a meaningful value", raw)
		}
		return Threshold{Kind: ThresholdStdDev, Value: k, Raw: trimmed}, nil
	}

	if m := percentilePattern.FindStringSubmatch(trimmed); m != nil {
		if !allowPercentile {
			return Threshold{}, cfgerror.Newf("percentile threshold %q is not valid here", raw)
		}
		p, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Threshold{}, cfgerror.Newf("could not translate threshold %q into a meaningful value", raw)
		}
		if p >= 100 {
			return Threshold{}, cfgerror.Newf("percentile should be less than 100, received %v", p)
		}
		return Threshold{Kind: ThresholdPercentile, Value: p, Raw: trimmed}, nil
	}

	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return Threshold{}, cfgerror.Newf("could not translate threshold %q into a meaningful value", raw)
	}
	return Threshold{Kind: ThresholdAbsolute, Value: v, Raw: trimmed}, nil
}

// Resolve turns the threshold into a concrete cutoff for the given data. For
// SD and percentile thresholds the cutoff is computed over data itself, so
// the same specification resolves differently per series or per slice.
func (t Threshold) Resolve(data []float64) (float64, error) {
	switch t.Kind {
	case ThresholdAbsolute:
		return t.Value, nil
	case ThresholdStdDev:
		if len(data) == 0 {
			return 0, cfgerror.New("cannot resolve an SD threshold over empty data")
		}
		return stat.Mean(data, nil) + t.Value*popStdDev(data), nil
	case ThresholdPercentile:
		if len(data) == 0 {
			return 0, cfgerror.New("cannot resolve a percentile threshold over empty data")
		}
		sorted := append([]float64(nil), data...)
		sort.Float64s(sorted)
		return stat.Quantile(1-t.Value/100, stat.LinInterp, sorted, nil), nil
	}
	return 0, cfgerror.Newf("unknown threshold kind %d", t.Kind)
}

// exceeds reports whether a data value passes the resolved cutoff. Percentile
// cuts are inclusive (the value sitting exactly at the percentile is kept);
// absolute and SD cuts are strict, matching the censoring semantics.
func (t Threshold) exceeds(value, cutoff float64) bool {
	if t.Kind == ThresholdPercentile {
		return value >= cutoff
	}
	return value > cutoff
}

// popStdDev is the population (N-denominator) standard deviation, matching
// how the acquisition tooling computes SD-relative thresholds.
func popStdDev(data []float64) float64 {
	mean := stat.Mean(data, nil)
	var sum float64
	for _, v := range data {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(data)))
}
