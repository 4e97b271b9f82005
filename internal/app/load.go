package app

import (
	"context"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/ctxlog"
	"github.com/vk/denoisegridgo/internal/derive"
	"github.com/vk/denoisegridgo/internal/hcl_adapter"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/volume"
)

// loadResources reads every file the inputs block names and registers each
// as a source node, returning the refs the derivation layer wires against.
// Absent inputs stay zero refs; the derivation layer reports a configuration
// error only when a selection actually needs one.
func (a *App) loadResources(ctx context.Context, builder *artifact.Builder) (derive.BaseResources, error) {
	logger := ctxlog.FromContext(ctx)
	var base derive.BaseResources
	inputs := a.model.Inputs
	if inputs == nil {
		logger.Warn("No inputs block supplied; selections can only be canonicalized.")
		return base, nil
	}

	var err error
	if inputs.Functional != "" {
		series, readErr := volume.ReadSeriesFile(inputs.Functional)
		if readErr != nil {
			return base, readErr
		}
		if base.Functional, err = builder.Source("Functional", series); err != nil {
			return base, err
		}
	}

	masks := []struct {
		path string
		key  string
		ref  *artifact.Ref
	}{
		{inputs.BrainMask, "BrainMask", &base.GlobalSignalMask},
		{inputs.GreyMatter, "GreyMatter", &base.GreyMatter},
		{inputs.WhiteMatter, "WhiteMatter", &base.WhiteMatter},
		{inputs.CSFUnmasked, "CSFUnmasked", &base.CSFUnmasked},
		{inputs.Ventricles, "Ventricles", &base.Ventricles},
	}
	for _, m := range masks {
		if m.path == "" {
			continue
		}
		mask, readErr := volume.ReadVolumeFile(m.path)
		if readErr != nil {
			return base, readErr
		}
		if *m.ref, err = builder.Source(m.key, mask); err != nil {
			return base, err
		}
	}

	if len(inputs.Anatomical) > 0 {
		base.Anatomical = make(map[string]artifact.Ref, len(inputs.Anatomical))
		for fragment, path := range inputs.Anatomical {
			anat, readErr := volume.ReadVolumeFile(path)
			if readErr != nil {
				return base, readErr
			}
			ref, err := builder.Source("Anatomical_"+fragment, anat)
			if err != nil {
				return base, err
			}
			base.Anatomical[fragment] = ref
		}
	}

	if inputs.MotionParameters != "" {
		motion, readErr := volume.ReadMatrixFile(inputs.MotionParameters)
		if readErr != nil {
			return base, readErr
		}
		if base.MotionParameters, err = builder.Source("MotionParameters", motion); err != nil {
			return base, err
		}
	}
	if inputs.FD != "" {
		fd, readErr := volume.ReadColumnFile(inputs.FD)
		if readErr != nil {
			return base, readErr
		}
		if base.FD, err = builder.Source("FD", fd); err != nil {
			return base, err
		}
	}
	if inputs.DVARS != "" {
		dvars, readErr := volume.ReadColumnFile(inputs.DVARS)
		if readErr != nil {
			return base, readErr
		}
		if base.DVARS, err = builder.Source("DVARS", dvars); err != nil {
			return base, err
		}
	}

	if inputs.Transform != nil {
		if base.Transform, err = loadTransform(inputs.Transform); err != nil {
			return base, err
		}
	}

	logger.Debug("Base resources loaded.", "sources", builder.Len())
	return base, nil
}

// loadTransform builds the strategy the ventricle warp applies: a single
// matrix used as supplied, or a chain of initial, rigid, and affine matrices
// composed and inverted.
func loadTransform(spec *hcl_adapter.TransformSpec) (kernel.TransformStrategy, error) {
	switch spec.Kind {
	case "linear":
		if len(spec.Matrices) != 1 {
			return nil, cfgerror.Newf("a linear transform needs exactly one matrix, received %d", len(spec.Matrices))
		}
		matrix, err := volume.ReadAffineFile(spec.Matrices[0])
		if err != nil {
			return nil, err
		}
		return kernel.LinearMatrix{Matrix: matrix}, nil
	case "chain":
		if len(spec.Matrices) != 3 {
			return nil, cfgerror.Newf("a transform chain needs initial, rigid, and affine matrices, received %d", len(spec.Matrices))
		}
		var chain [3]volume.Affine
		for i, path := range spec.Matrices {
			matrix, err := volume.ReadAffineFile(path)
			if err != nil {
				return nil, err
			}
			chain[i] = matrix
		}
		return kernel.AffineChain{Initial: chain[0], Rigid: chain[1], Affine: chain[2]}, nil
	}
	return nil, cfgerror.Newf("unknown transform kind %q, expected \"linear\" or \"chain\"", spec.Kind)
}
