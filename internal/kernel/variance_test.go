package kernel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/volume"
)

// varianceSeries builds a 2x2x2 series with 3 timepoints whose per-voxel
// temporal variances are exactly the given values: the course [x, -x, 0]
// has population variance 2x²/3.
func varianceSeries(variances []float64) *volume.Series {
	s := volume.NewSeries([3]int{2, 2, 2}, 3, volume.Identity())
	for v, target := range variances {
		x := math.Sqrt(1.5 * target)
		course := s.Course(v)
		course[0], course[1], course[2] = x, -x, 0
	}
	return s
}

func onesMask(dims [3]int) *volume.Volume {
	m := volume.NewVolume(dims, volume.Identity())
	for i := range m.Data {
		m.Data[i] = 1
	}
	return m
}

func TestVarianceMaskPercentile(t *testing.T) {
	s := varianceSeries([]float64{1, 2, 3, 4, 4, 5, 6, 7})
	threshold, err := ParseThreshold("50PCT", true)
	require.NoError(t, err)

	// The 50th percentile of the eligible variances is 4; the percentile cut
	// is inclusive.
	mask, err := TemporalVarianceMask(s, onesMask(s.Dims), threshold, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 1, 1, 1, 1, 1}, mask.Data)
}

func TestVarianceMaskAbsoluteIsStrict(t *testing.T) {
	s := varianceSeries([]float64{1, 2, 3, 4, 4, 5, 6, 7})

	mask, err := TemporalVarianceMask(s, onesMask(s.Dims), AbsoluteThreshold(4), false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1, 1, 1}, mask.Data)
}

func TestVarianceMaskNilMaskEligibility(t *testing.T) {
	s := varianceSeries([]float64{1, 2, 3, 4, 4, 5, 6, 7})

	mask, err := TemporalVarianceMask(s, nil, AbsoluteThreshold(4.5), false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1, 1, 1}, mask.Data)
}

func TestVarianceMaskBySlice(t *testing.T) {
	// Slice variances: {1,2,3,4} and {4,5,6,7}. A 0SD threshold resolves to
	// the per-slice mean, 2.5 and 5.5.
	s := varianceSeries([]float64{1, 2, 3, 4, 4, 5, 6, 7})
	threshold, err := ParseThreshold("0SD", false)
	require.NoError(t, err)

	mask, err := TemporalVarianceMask(s, onesMask(s.Dims), threshold, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0, 1, 1}, mask.Data)
}

func TestVarianceMaskEmptySliceSkipped(t *testing.T) {
	s := varianceSeries([]float64{1, 2, 3, 4, 4, 5, 6, 7})
	threshold, err := ParseThreshold("0SD", false)
	require.NoError(t, err)

	eligible := onesMask(s.Dims)
	for v := 4; v < 8; v++ {
		eligible.Data[v] = 0
	}

	mask, err := TemporalVarianceMask(s, eligible, threshold, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 0, 0, 0, 0}, mask.Data)
}

func TestVarianceMaskErrors(t *testing.T) {
	t.Run("too few timepoints", func(t *testing.T) {
		s := volume.NewSeries([3]int{2, 2, 2}, 2, volume.Identity())
		_, err := TemporalVarianceMask(s, nil, AbsoluteThreshold(1), false)
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})

	t.Run("negative threshold", func(t *testing.T) {
		s := varianceSeries([]float64{1, 2, 3, 4, 4, 5, 6, 7})
		_, err := TemporalVarianceMask(s, nil, AbsoluteThreshold(-1), false)
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})

	t.Run("percentile out of range", func(t *testing.T) {
		s := varianceSeries([]float64{1, 2, 3, 4, 4, 5, 6, 7})
		threshold := Threshold{Kind: ThresholdPercentile, Value: 100}
		_, err := TemporalVarianceMask(s, nil, threshold, false)
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})

	t.Run("grid mismatch", func(t *testing.T) {
		s := varianceSeries([]float64{1, 2, 3, 4, 4, 5, 6, 7})
		mask := onesMask([3]int{2, 2, 1})
		_, err := TemporalVarianceMask(s, mask, AbsoluteThreshold(1), false)
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})
}
