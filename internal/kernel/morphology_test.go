package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/volume"
)

func TestErodeKeepsInterior(t *testing.T) {
	mask := onesMask([3]int{3, 3, 3})

	eroded, err := Erode(mask)
	require.NoError(t, err)

	// Every boundary voxel has an out-of-grid neighbor, so only the center
	// survives.
	for z := 0; z < 3; z++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 3; x++ {
				want := 0.0
				if x == 1 && y == 1 && z == 1 {
					want = 1.0
				}
				assert.Equal(t, want, eroded.At(x, y, z), "voxel (%d,%d,%d)", x, y, z)
			}
		}
	}
}

func TestErodeRemovesHoleNeighbors(t *testing.T) {
	mask := onesMask([3]int{5, 5, 5})
	mask.Set(2, 2, 2, 0)

	eroded, err := Erode(mask)
	require.NoError(t, err)

	// The hole stays empty and its six face neighbors are stripped.
	assert.Equal(t, 0.0, eroded.At(2, 2, 2))
	assert.Equal(t, 0.0, eroded.At(1, 2, 2))
	assert.Equal(t, 0.0, eroded.At(3, 2, 2))
	assert.Equal(t, 0.0, eroded.At(2, 1, 2))
	assert.Equal(t, 0.0, eroded.At(2, 3, 2))
	assert.Equal(t, 0.0, eroded.At(2, 2, 1))
	assert.Equal(t, 0.0, eroded.At(2, 2, 3))
	// A diagonal neighbor keeps all six faces.
	assert.Equal(t, 1.0, eroded.At(1, 1, 1))
}

func TestErodeNilMask(t *testing.T) {
	_, err := Erode(nil)
	require.Error(t, err)
	assert.True(t, cfgerror.Is(err))
}

func TestIntersectMasks(t *testing.T) {
	a := volume.NewVolume([3]int{2, 1, 1}, volume.Identity())
	b := volume.NewVolume([3]int{2, 1, 1}, volume.Identity())
	a.Data = []float64{1, 1}
	b.Data = []float64{0, 1}

	out, err := IntersectMasks(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, out.Data)
}

func TestIntersectMasksGridMismatch(t *testing.T) {
	a := volume.NewVolume([3]int{2, 1, 1}, volume.Identity())
	b := volume.NewVolume([3]int{1, 2, 1}, volume.Identity())

	_, err := IntersectMasks(a, b)
	require.Error(t, err)
	assert.True(t, cfgerror.Is(err))
}
