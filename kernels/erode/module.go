// Package erode exposes the mask-erosion kernel.
package erode

import (
	"context"
	"fmt"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/internal/volume"
)

// Name is the registry name of this kernel.
const Name = "erode"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params is empty; erosion always strips one face-connected shell.
type Params struct{}

// Factory builds the erosion kernel. Input: 'mask', a *volume.Volume.
func Factory(params any) (artifact.BuilderFn, error) {
	if _, ok := params.(Params); !ok {
		return nil, fmt.Errorf("expected erode.Params, received %T", params)
	}
	return func(ctx context.Context, inputs map[string]any) (any, error) {
		mask, err := registry.Input[*volume.Volume](inputs, "mask")
		if err != nil {
			return nil, err
		}
		return kernel.Erode(mask)
	}, nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory(Name, Factory)
}
