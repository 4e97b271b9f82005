// Package censor exposes the volume-censoring kernel: it turns framewise
// displacement and DVARS series into a keep/discard vector.
package censor

import (
	"context"
	"fmt"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
)

// Name is the registry name of this kernel.
const Name = "censor"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params configures one censor computation. At least one threshold must be
// set; windows extend each discarded timepoint by whole volumes.
type Params struct {
	FDThreshold    *kernel.Threshold
	DVARSThreshold *kernel.Threshold
	PreWindow      int
	PostWindow     int
}

// Factory builds the censor kernel. Inputs: 'fd' and 'dvars', each an
// optional []float64; whichever thresholds are set must have their series
// wired.
func Factory(params any) (artifact.BuilderFn, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("expected censor.Params, received %T", params)
	}
	return func(ctx context.Context, inputs map[string]any) (any, error) {
		fd, _, err := registry.OptionalInput[[]float64](inputs, "fd")
		if err != nil {
			return nil, err
		}
		dvars, _, err := registry.OptionalInput[[]float64](inputs, "dvars")
		if err != nil {
			return nil, err
		}
		return kernel.Censor(kernel.CensorInput{
			FD:             fd,
			DVARS:          dvars,
			FDThreshold:    p.FDThreshold,
			DVARSThreshold: p.DVARSThreshold,
			PreWindow:      p.PreWindow,
			PostWindow:     p.PostWindow,
		})
	}, nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory(Name, Factory)
}
