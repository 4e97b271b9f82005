// Package variancemask exposes the temporal-variance thresholding kernel.
package variancemask

import (
	"context"
	"fmt"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/internal/volume"
)

// Name is the registry name of this kernel.
const Name = "variance_mask"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params configures one variance mask.
type Params struct {
	Threshold kernel.Threshold
	BySlice   bool
}

// Factory builds the variance-mask kernel. Inputs: 'functional', a
// *volume.Series, and an optional 'mask' restricting eligible voxels.
func Factory(params any) (artifact.BuilderFn, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("expected variancemask.Params, received %T", params)
	}
	return func(ctx context.Context, inputs map[string]any) (any, error) {
		functional, err := registry.Input[*volume.Series](inputs, "functional")
		if err != nil {
			return nil, err
		}
		mask, _, err := registry.OptionalInput[*volume.Volume](inputs, "mask")
		if err != nil {
			return nil, err
		}
		return kernel.TemporalVarianceMask(functional, mask, p.Threshold, p.BySlice)
	}, nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory(Name, Factory)
}
