package kernel

import (
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/volume"
	"gonum.org/v1/gonum/mat"
)

// SummaryMethod enumerates the supported summary-regressor extraction methods.
type SummaryMethod int

const (
	SummaryMean SummaryMethod = iota
	SummaryNormMean
	SummaryDetrendMean
	SummaryDetrendNormMean
	SummaryPC
)

// String returns the configuration-facing method name.
func (m SummaryMethod) String() string {
	switch m {
	case SummaryMean:
		return "Mean"
	case SummaryNormMean:
		return "NormMean"
	case SummaryDetrendMean:
		return "DetrendMean"
	case SummaryDetrendNormMean:
		return "DetrendNormMean"
	case SummaryPC:
		return "PC"
	}
	return "Unknown"
}

// ParseSummaryMethod maps a configuration name onto a SummaryMethod.
func ParseSummaryMethod(name string) (SummaryMethod, error) {
	switch name {
	case "Mean":
		return SummaryMean, nil
	case "NormMean":
		return SummaryNormMean, nil
	case "DetrendMean":
		return SummaryDetrendMean, nil
	case "DetrendNormMean":
		return SummaryDetrendNormMean, nil
	case "PC":
		return SummaryPC, nil
	}
	return 0, cfgerror.Newf("unknown summary method %q", name)
}

// Summary selects an extraction method; Components is only meaningful for PC.
type Summary struct {
	Method     SummaryMethod
	Components int
}

// SummarizeTimeseries reduces the voxels selected by the union of masks into
// a summary regressor: one row per timepoint, one column per component
// (always one column except for PC).
//
// NormMean and DetrendNormMean divide the whole selected voxel-by-time block
// by its matrix 2-norm before averaging; the denominator is deliberately not
// per voxel.
func SummarizeTimeseries(functional *volume.Series, masks []*volume.Volume, summary Summary) ([][]float64, error) {
	if functional == nil {
		return nil, cfgerror.New("a functional series is required to summarize")
	}
	if len(masks) == 0 {
		return nil, cfgerror.New("at least one mask is required to summarize")
	}
	for _, m := range masks {
		if !functional.SameGrid(m) {
			return nil, cfgerror.Newf(
				"shape and affine of mask (%v) should match those of the functional data (%v)",
				m.Dims, functional.Dims)
		}
	}

	selected := selectVoxels(functional, masks)
	if len(selected) == 0 {
		return nil, cfgerror.New("combined mask selects no voxels")
	}

	T := functional.Timepoints
	// block is voxels x timepoints; rows are copies so detrending never
	// mutates the input series.
	block := make([][]float64, len(selected))
	for i, v := range selected {
		block[i] = append([]float64(nil), functional.Course(v)...)
	}

	switch summary.Method {
	case SummaryMean:
		return column(timepointMeans(block, T)), nil

	case SummaryNormMean:
		scaleByBlockNorm(block)
		return column(timepointMeans(block, T)), nil

	case SummaryDetrendMean:
		for _, course := range block {
			detrendLinear(course)
		}
		return column(timepointMeans(block, T)), nil

	case SummaryDetrendNormMean:
		for _, course := range block {
			detrendLinear(course)
		}
		scaleByBlockNorm(block)
		return column(timepointMeans(block, T)), nil

	case SummaryPC:
		return principalComponents(block, T, summary.Components)
	}
	return nil, cfgerror.Newf("unknown summary method %d", summary.Method)
}

// selectVoxels returns the flat indices of voxels inside the union (voxelwise
// OR) of the masks.
func selectVoxels(functional *volume.Series, masks []*volume.Volume) []int {
	var selected []int
	for v := 0; v < functional.VoxelCount(); v++ {
		for _, m := range masks {
			if m.Data[v] > 0 {
				selected = append(selected, v)
				break
			}
		}
	}
	return selected
}

func timepointMeans(block [][]float64, timepoints int) []float64 {
	out := make([]float64, timepoints)
	for _, course := range block {
		for t, v := range course {
			out[t] += v
		}
	}
	for t := range out {
		out[t] /= float64(len(block))
	}
	return out
}

// scaleByBlockNorm divides every sample by the matrix 2-norm (largest
// singular value) of the whole voxel-by-time block.
func scaleByBlockNorm(block [][]float64) {
	m := mat.NewDense(len(block), len(block[0]), nil)
	for i, course := range block {
		m.SetRow(i, course)
	}
	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDNone) {
		return
	}
	norm := svd.Values(nil)[0]
	if norm == 0 {
		return
	}
	for _, course := range block {
		for t := range course {
			course[t] /= norm
		}
	}
}

// detrendLinear removes the least-squares line from a time course in place.
func detrendLinear(course []float64) {
	n := float64(len(course))
	if n < 2 {
		return
	}
	// Closed-form simple linear regression over t = 0..n-1.
	var sumY, sumTY float64
	for t, v := range course {
		sumY += v
		sumTY += float64(t) * v
	}
	sumT := n * (n - 1) / 2
	sumTT := n * (n - 1) * (2*n - 1) / 6
	denom := n*sumTT - sumT*sumT
	if denom == 0 {
		return
	}
	slope := (n*sumTY - sumT*sumY) / denom
	intercept := (sumY - slope*sumT) / n
	for t := range course {
		course[t] -= intercept + slope*float64(t)
	}
}

// principalComponents centers each voxel's time course and returns the
// leading left singular vectors of the timepoint-by-voxel matrix.
func principalComponents(block [][]float64, timepoints, components int) ([][]float64, error) {
	if components < 1 {
		return nil, cfgerror.Newf("PC summary requires at least one component, received %d", components)
	}
	limit := timepoints
	if len(block) < limit {
		limit = len(block)
	}
	if components > limit {
		return nil, cfgerror.Newf("PC summary cannot extract %d components from a %dx%d block", components, timepoints, len(block))
	}

	m := mat.NewDense(timepoints, len(block), nil)
	for i, course := range block {
		var mean float64
		for _, v := range course {
			mean += v
		}
		mean /= float64(len(course))
		for t, v := range course {
			m.Set(t, i, v-mean)
		}
	}

	var svd mat.SVD
	if !svd.Factorize(m, mat.SVDThin) {
		return nil, cfgerror.New("singular value decomposition failed to converge")
	}
	var u mat.Dense
	svd.UTo(&u)

	out := make([][]float64, timepoints)
	for t := 0; t < timepoints; t++ {
		row := make([]float64, components)
		for c := 0; c < components; c++ {
			row[c] = u.At(t, c)
		}
		out[t] = row
	}
	return out, nil
}

func column(values []float64) [][]float64 {
	out := make([][]float64, len(values))
	for i, v := range values {
		out[i] = []float64{v}
	}
	return out
}
