package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/denoisegridgo/internal/cfgerror"
)

func absThreshold(v float64) *Threshold {
	t := AbsoluteThreshold(v)
	return &t
}

func TestCensorFDWindowExpansion(t *testing.T) {
	censor, err := Censor(CensorInput{
		FD:          []float64{0, 0, 5, 0, 0},
		FDThreshold: absThreshold(1),
		PreWindow:   1,
		PostWindow:  1,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 0, 0, 1}, censor)
}

func TestCensorIntersection(t *testing.T) {
	// FD flags {2, 5}; padded DVARS flags {5, 7}. Only the common timepoint
	// is censored.
	censor, err := Censor(CensorInput{
		FD:             []float64{0, 0, 5, 0, 0, 5, 0, 0},
		DVARS:          []float64{0, 0, 0, 0, 9, 0, 9},
		FDThreshold:    absThreshold(1),
		DVARSThreshold: absThreshold(1),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 1, 0, 1, 1}, censor)
}

func TestCensorDVARSOnly(t *testing.T) {
	// The raw DVARS series has one fewer sample; the first frame can never
	// be flagged by it.
	censor, err := Censor(CensorInput{
		DVARS:          []float64{9, 0, 0},
		DVARSThreshold: absThreshold(1),
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 0, 1, 1}, censor)
}

func TestCensorSDThreshold(t *testing.T) {
	// mean = 2.8, population SD = 3.6, cutoff = 6.4.
	threshold, err := ParseThreshold("1 SD", false)
	require.NoError(t, err)

	censor, err := Censor(CensorInput{
		FD:          []float64{1, 1, 1, 1, 10},
		FDThreshold: &threshold,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1, 0}, censor)
}

func TestCensorWindowClipping(t *testing.T) {
	censor, err := Censor(CensorInput{
		FD:          []float64{5, 0, 0},
		FDThreshold: absThreshold(1),
		PreWindow:   2,
		PostWindow:  0,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1}, censor)
}

func TestCensorErrors(t *testing.T) {
	t.Run("no series", func(t *testing.T) {
		_, err := Censor(CensorInput{})
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})

	t.Run("series without threshold", func(t *testing.T) {
		_, err := Censor(CensorInput{FD: []float64{0, 1}})
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})

	t.Run("length mismatch", func(t *testing.T) {
		_, err := Censor(CensorInput{
			FD:             []float64{0, 1, 0},
			DVARS:          []float64{0, 1, 0},
			FDThreshold:    absThreshold(1),
			DVARSThreshold: absThreshold(1),
		})
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})

	t.Run("percentile threshold rejected", func(t *testing.T) {
		pct, err := ParseThreshold("5PCT", true)
		require.NoError(t, err)
		_, err = Censor(CensorInput{FD: []float64{0, 1}, FDThreshold: &pct})
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})

	t.Run("negative window", func(t *testing.T) {
		_, err := Censor(CensorInput{
			FD:          []float64{0, 1},
			FDThreshold: absThreshold(1),
			PreWindow:   -1,
		})
		require.Error(t, err)
		assert.True(t, cfgerror.Is(err))
	})
}
