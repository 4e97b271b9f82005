package kernel

import (
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/volume"
)

// TransformStrategy applies a precomputed spatial transform to warp a mask
// onto a reference grid. The transforms themselves are always supplied by an
// upstream registration stage; this package never computes them. Warping uses
// nearest-neighbor sampling so a binary mask stays binary.
type TransformStrategy interface {
	// WarpToReference resamples input onto the reference grid through the
	// strategy's transform.
	WarpToReference(input, reference *volume.Volume) (*volume.Volume, error)
}

// AffineChain composes a 3-stage linear registration (initial, rigid, affine,
// in forward anatomical-to-template order) and applies the chain inverted,
// mapping template space back into anatomical space.
type AffineChain struct {
	Initial volume.Affine
	Rigid   volume.Affine
	Affine  volume.Affine
}

// WarpToReference implements TransformStrategy.
func (c AffineChain) WarpToReference(input, reference *volume.Volume) (*volume.Volume, error) {
	if input == nil || reference == nil {
		return nil, cfgerror.New("warping requires both an input and a reference volume")
	}
	forward := volume.Mul(c.Initial, volume.Mul(c.Rigid, c.Affine))
	worldMap, err := volume.Invert(forward)
	if err != nil {
		return nil, cfgerror.Newf("transform chain is not invertible: %v", err)
	}
	return warp(input, reference, worldMap)
}

// LinearMatrix applies a single precomputed linear world mapping (already in
// template-to-anatomical direction, so it is used as supplied).
type LinearMatrix struct {
	Matrix volume.Affine
}

// WarpToReference implements TransformStrategy.
func (l LinearMatrix) WarpToReference(input, reference *volume.Volume) (*volume.Volume, error) {
	if input == nil || reference == nil {
		return nil, cfgerror.New("warping requires both an input and a reference volume")
	}
	return warp(input, reference, l.Matrix)
}

// warp samples input onto the reference grid: reference index -> world ->
// mapped world -> input index, with nearest-neighbor interpolation.
func warp(input, reference *volume.Volume, worldMap volume.Affine) (*volume.Volume, error) {
	invInput, err := volume.Invert(input.Affine)
	if err != nil {
		return nil, cfgerror.Newf("input affine is not invertible: %v", err)
	}
	toSource := volume.Mul(invInput, volume.Mul(worldMap, reference.Affine))
	return sampleOnto(input, reference.Grid(), toSource, InterpNearest), nil
}
