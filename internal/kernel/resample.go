package kernel

import (
	"math"

	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/volume"
)

// Interpolation selects how Resample samples the source volume.
type Interpolation int

const (
	// InterpTrilinear interpolates between the eight surrounding voxels.
	// Applied to a binary mask this can produce fractional values; that
	// matches the behavior of the upstream resampling tool and is preserved.
	InterpTrilinear Interpolation = iota
	// InterpNearest picks the nearest source voxel.
	InterpNearest
)

// Resample maps a volume onto a reference grid through both affines.
// Points that fall outside the source volume sample as zero.
func Resample(src *volume.Volume, ref volume.Grid, interp Interpolation) (*volume.Volume, error) {
	if src == nil {
		return nil, cfgerror.New("a source volume is required to resample")
	}
	invSrc, err := volume.Invert(src.Affine)
	if err != nil {
		return nil, cfgerror.Newf("source affine is not invertible: %v", err)
	}
	return sampleOnto(src, ref, volume.Mul(invSrc, ref.Affine), interp), nil
}

// sampleOnto fills a volume on the reference grid by mapping each reference
// voxel index through toSource (a reference-index to source-index affine).
func sampleOnto(src *volume.Volume, ref volume.Grid, toSource volume.Affine, interp Interpolation) *volume.Volume {
	out := volume.NewVolume(ref.Dims, ref.Affine)
	for z := 0; z < ref.Dims[2]; z++ {
		for y := 0; y < ref.Dims[1]; y++ {
			for x := 0; x < ref.Dims[0]; x++ {
				p := toSource.Apply([3]float64{float64(x), float64(y), float64(z)})
				var v float64
				if interp == InterpNearest {
					v = sampleNearest(src, p)
				} else {
					v = sampleTrilinear(src, p)
				}
				out.Set(x, y, z, v)
			}
		}
	}
	return out
}

func sampleNearest(src *volume.Volume, p [3]float64) float64 {
	x := int(math.Round(p[0]))
	y := int(math.Round(p[1]))
	z := int(math.Round(p[2]))
	if x < 0 || y < 0 || z < 0 || x >= src.Dims[0] || y >= src.Dims[1] || z >= src.Dims[2] {
		return 0
	}
	return src.At(x, y, z)
}

func sampleTrilinear(src *volume.Volume, p [3]float64) float64 {
	x0 := int(math.Floor(p[0]))
	y0 := int(math.Floor(p[1]))
	z0 := int(math.Floor(p[2]))
	fx := p[0] - float64(x0)
	fy := p[1] - float64(y0)
	fz := p[2] - float64(z0)

	at := func(x, y, z int) float64 {
		if x < 0 || y < 0 || z < 0 || x >= src.Dims[0] || y >= src.Dims[1] || z >= src.Dims[2] {
			return 0
		}
		return src.At(x, y, z)
	}

	var sum float64
	for dz := 0; dz < 2; dz++ {
		wz := 1 - fz
		if dz == 1 {
			wz = fz
		}
		for dy := 0; dy < 2; dy++ {
			wy := 1 - fy
			if dy == 1 {
				wy = fy
			}
			for dx := 0; dx < 2; dx++ {
				wx := 1 - fx
				if dx == 1 {
					wx = fx
				}
				w := wx * wy * wz
				if w != 0 {
					sum += w * at(x0+dx, y0+dy, z0+dz)
				}
			}
		}
	}
	return sum
}
