// Package maskmath exposes voxelwise mask combinations.
package maskmath

import (
	"context"
	"fmt"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/internal/volume"
)

// IntersectName is the registry name of the mask-intersection kernel.
const IntersectName = "mask_intersect"

// Module implements the registry.Module interface for this package.
type Module struct{}

// IntersectParams is empty; intersection has no knobs.
type IntersectParams struct{}

// IntersectFactory builds the intersection kernel. Inputs: 'a' and 'b',
// masks on the same grid.
func IntersectFactory(params any) (artifact.BuilderFn, error) {
	if _, ok := params.(IntersectParams); !ok {
		return nil, fmt.Errorf("expected maskmath.IntersectParams, received %T", params)
	}
	return func(ctx context.Context, inputs map[string]any) (any, error) {
		a, err := registry.Input[*volume.Volume](inputs, "a")
		if err != nil {
			return nil, err
		}
		b, err := registry.Input[*volume.Volume](inputs, "b")
		if err != nil {
			return nil, err
		}
		return kernel.IntersectMasks(a, b)
	}, nil
}

// Register registers the factories with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory(IntersectName, IntersectFactory)
}
