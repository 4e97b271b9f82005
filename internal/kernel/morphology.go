package kernel

import (
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/volume"
)

// Erode removes every voxel with at least one zero among its six
// face-adjacent neighbors. Voxels outside the grid count as zero, so the
// outermost shell of a full mask is always removed.
func Erode(mask *volume.Volume) (*volume.Volume, error) {
	if mask == nil {
		return nil, cfgerror.New("a mask is required to erode")
	}
	out := volume.NewVolume(mask.Dims, mask.Affine)
	nx, ny, nz := mask.Dims[0], mask.Dims[1], mask.Dims[2]

	inside := func(x, y, z int) bool {
		if x < 0 || y < 0 || z < 0 || x >= nx || y >= ny || z >= nz {
			return false
		}
		return mask.At(x, y, z) > 0
	}

	for z := 0; z < nz; z++ {
		for y := 0; y < ny; y++ {
			for x := 0; x < nx; x++ {
				if !inside(x, y, z) {
					continue
				}
				if inside(x+1, y, z) && inside(x-1, y, z) &&
					inside(x, y+1, z) && inside(x, y-1, z) &&
					inside(x, y, z+1) && inside(x, y, z-1) {
					out.Set(x, y, z, 1)
				}
			}
		}
	}
	return out, nil
}

// IntersectMasks combines two masks by voxelwise logical AND.
func IntersectMasks(a, b *volume.Volume) (*volume.Volume, error) {
	if a == nil || b == nil {
		return nil, cfgerror.New("two masks are required to intersect")
	}
	if !a.SameGrid(b) {
		return nil, cfgerror.Newf("masks on different grids cannot be intersected (%v vs %v)", a.Dims, b.Dims)
	}
	out := volume.NewVolume(a.Dims, a.Affine)
	for i := range a.Data {
		if a.Data[i] > 0 && b.Data[i] > 0 {
			out.Data[i] = 1
		}
	}
	return out, nil
}
