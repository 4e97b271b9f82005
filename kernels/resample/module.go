// Package resample exposes the grid-resampling kernel.
package resample

import (
	"context"
	"fmt"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/internal/volume"
)

// Name is the registry name of this kernel.
const Name = "resample"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params configures one resampling.
type Params struct {
	Interpolation kernel.Interpolation
}

// Factory builds the resampling kernel. Inputs: 'source', a *volume.Volume,
// and 'reference', which supplies the target grid and may be a
// *volume.Volume, a *volume.Series, or a volume.Grid.
func Factory(params any) (artifact.BuilderFn, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("expected resample.Params, received %T", params)
	}
	return func(ctx context.Context, inputs map[string]any) (any, error) {
		src, err := registry.Input[*volume.Volume](inputs, "source")
		if err != nil {
			return nil, err
		}
		ref, err := referenceGrid(inputs)
		if err != nil {
			return nil, err
		}
		return kernel.Resample(src, ref, p.Interpolation)
	}, nil
}

func referenceGrid(inputs map[string]any) (volume.Grid, error) {
	value, ok := inputs["reference"]
	if !ok {
		return volume.Grid{}, fmt.Errorf("missing input 'reference'")
	}
	switch ref := value.(type) {
	case *volume.Volume:
		return ref.Grid(), nil
	case *volume.Series:
		return ref.Grid(), nil
	case volume.Grid:
		return ref, nil
	default:
		return volume.Grid{}, fmt.Errorf("input 'reference' has type %T, expected a volume, series, or grid", value)
	}
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory(Name, Factory)
}
