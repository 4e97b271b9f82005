// Package warp exposes the cross-space warping kernel, which carries a mask
// from one space into another under a caller-supplied transform strategy.
package warp

import (
	"context"
	"fmt"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/internal/volume"
)

// Name is the registry name of this kernel.
const Name = "warp"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params configures one warp.
type Params struct {
	Strategy kernel.TransformStrategy
}

// Factory builds the warping kernel. Inputs: 'input', the mask to carry
// over, and 'reference', the volume whose grid the result lands on.
func Factory(params any) (artifact.BuilderFn, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("expected warp.Params, received %T", params)
	}
	if p.Strategy == nil {
		return nil, fmt.Errorf("a transform strategy is required to warp")
	}
	return func(ctx context.Context, inputs map[string]any) (any, error) {
		input, err := registry.Input[*volume.Volume](inputs, "input")
		if err != nil {
			return nil, err
		}
		reference, err := registry.Input[*volume.Volume](inputs, "reference")
		if err != nil {
			return nil, err
		}
		return p.Strategy.WarpToReference(input, reference)
	}, nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory(Name, Factory)
}
