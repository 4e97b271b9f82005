package kernel

import (
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/volume"
)

// TemporalVarianceMask builds a binary mask of high temporal-variance voxels.
//
// Only voxels inside mask are eligible; with a nil mask, any voxel with
// nonzero variance is eligible. With bySlice set, the threshold is resolved
// independently for each slice along the third spatial axis, and a slice with
// no eligible voxels stays fully excluded.
func TemporalVarianceMask(functional *volume.Series, mask *volume.Volume, threshold Threshold, bySlice bool) (*volume.Volume, error) {
	if functional == nil {
		return nil, cfgerror.New("a functional series is required to create a variance mask")
	}
	if functional.Timepoints < 3 {
		return nil, cfgerror.Newf("functional data should contain 3 or more timepoints, found %d", functional.Timepoints)
	}
	if threshold.Value < 0 {
		return nil, cfgerror.Newf("threshold value should be positive, instead of %v", threshold.Value)
	}
	if threshold.Kind == ThresholdPercentile && threshold.Value >= 100 {
		return nil, cfgerror.Newf("percentile should be less than 100, received %v", threshold.Value)
	}

	voxels := functional.VoxelCount()
	variance := make([]float64, voxels)
	for v := 0; v < voxels; v++ {
		variance[v] = popVariance(functional.Course(v))
	}

	eligible := make([]bool, voxels)
	if mask != nil {
		if !functional.SameGrid(mask) {
			return nil, cfgerror.Newf(
				"shape and affine of mask (%v) should match those of the functional data (%v)",
				mask.Dims, functional.Dims)
		}
		for v := 0; v < voxels; v++ {
			eligible[v] = mask.Data[v] > 0
		}
	} else {
		for v := 0; v < voxels; v++ {
			eligible[v] = variance[v] > 0
		}
	}

	out := volume.NewVolume(functional.Dims, functional.Affine)

	// Slices are contiguous runs of X*Y voxels along the third axis; without
	// by-slice thresholding the whole grid is treated as one slice.
	sliceSize := voxels
	if bySlice {
		sliceSize = functional.Dims[0] * functional.Dims[1]
	}

	for start := 0; start < voxels; start += sliceSize {
		end := start + sliceSize

		var sample []float64
		for v := start; v < end; v++ {
			if eligible[v] {
				sample = append(sample, variance[v])
			}
		}
		if len(sample) == 0 {
			continue
		}

		cutoff, err := threshold.Resolve(sample)
		if err != nil {
			return nil, err
		}
		for v := start; v < end; v++ {
			if eligible[v] && threshold.exceeds(variance[v], cutoff) {
				out.Data[v] = 1
			}
		}
	}
	return out, nil
}

// popVariance is the population (N-denominator) temporal variance.
func popVariance(course []float64) float64 {
	var mean float64
	for _, v := range course {
		mean += v
	}
	mean /= float64(len(course))

	var sum float64
	for _, v := range course {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(course))
}
