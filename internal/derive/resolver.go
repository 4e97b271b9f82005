package derive

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/ctxlog"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/internal/selector"
	"github.com/vk/denoisegridgo/kernels/erode"
	"github.com/vk/denoisegridgo/kernels/maskmath"
	"github.com/vk/denoisegridgo/kernels/resample"
	"github.com/vk/denoisegridgo/kernels/variancemask"
	"github.com/vk/denoisegridgo/kernels/warp"
)

// MaskRequest asks the resolver for the mask at the end of a step sequence.
// Variance carries the kernel parameters of a FunctionalVariance tissue step;
// it is nil for anatomical tissues.
type MaskRequest struct {
	Steps    []selector.Step
	Variance *variancemask.Params
}

// Resolver walks mask-derivation steps against the per-run pool, registering
// a builder only for each prefix key not yet cached. Construction is
// single-threaded; the resolver never executes kernels itself.
type Resolver struct {
	pool    *artifact.Pool
	builder artifact.GraphBuilder
	reg     *registry.Registry
}

// NewResolver creates a resolver over one run's pool and graph builder.
func NewResolver(pool *artifact.Pool, builder artifact.GraphBuilder, reg *registry.Registry) *Resolver {
	return &Resolver{pool: pool, builder: builder, reg: reg}
}

// ResolveMask returns the artifact ref at the full step sequence plus the
// full derived key. Each newly built step is inserted into the pool under
// its prefix key before the walk advances, so later requests sharing the
// prefix reuse the artifact instead of rebuilding it.
func (r *Resolver) ResolveMask(ctx context.Context, req MaskRequest, base BaseResources) (artifact.Ref, string, error) {
	if len(req.Steps) == 0 {
		return artifact.Ref{}, "", cfgerror.New("a mask derivation needs at least one step")
	}
	logger := ctxlog.FromContext(ctx)

	var prev artifact.Ref
	var key string
	for i, step := range req.Steps {
		key = selector.PrefixKey(req.Steps, i+1)
		if ref, ok := r.pool.Get(key); ok {
			logger.Debug("Reusing cached mask artifact.", "key", key)
			prev = ref
			continue
		}

		ref, err := r.buildStep(ctx, key, step, prev, req, base)
		if err != nil {
			return artifact.Ref{}, "", fmt.Errorf("deriving %q: %w", key, err)
		}
		if err := r.pool.Put(key, ref); err != nil {
			return artifact.Ref{}, "", err
		}
		logger.Debug("Registered mask builder.", "key", key, "step", step.Kind.String())
		prev = ref
	}
	return prev, key, nil
}

func (r *Resolver) buildStep(ctx context.Context, key string, step selector.Step, prev artifact.Ref, req MaskRequest, base BaseResources) (artifact.Ref, error) {
	switch step.Kind {
	case selector.StepTissue:
		return r.buildTissue(key, step.Fragment, req, base)
	case selector.StepResolution:
		return r.buildResolution(key, step.Fragment, prev, base)
	case selector.StepErosion:
		return r.buildErosion(key, prev)
	}
	return artifact.Ref{}, cfgerror.Newf("unknown derivation step %q", step.Kind)
}

// buildTissue dispatches on the tissue fragment. FunctionalVariance-prefixed
// fragments derive the mask from the functional series; CerebrospinalFluid
// combines the unmasked CSF mask with warped ventricles. GreyMatter and
// WhiteMatter masks come from upstream segmentation and must already be in
// the pool, so reaching here with one is a configuration error.
func (r *Resolver) buildTissue(key, fragment string, req MaskRequest, base BaseResources) (artifact.Ref, error) {
	switch {
	case strings.HasPrefix(fragment, selector.FunctionalVariancePrefix):
		return r.buildVariance(key, req, base)
	case fragment == selector.TissueCerebrospinalFluid.String():
		return r.buildCSF(key, base)
	}
	return artifact.Ref{}, cfgerror.Newf("no tissue builder variant for %q", fragment)
}

func (r *Resolver) buildVariance(key string, req MaskRequest, base BaseResources) (artifact.Ref, error) {
	if req.Variance == nil {
		return artifact.Ref{}, cfgerror.New("variance tissue step without variance parameters")
	}
	if base.Functional.IsZero() {
		return artifact.Ref{}, cfgerror.New("a functional series is required to derive a variance mask")
	}
	fn, err := r.reg.Build(variancemask.Name, *req.Variance)
	if err != nil {
		return artifact.Ref{}, err
	}
	inputs := map[string]artifact.Ref{"functional": base.Functional}
	if !base.GlobalSignalMask.IsZero() {
		inputs["mask"] = base.GlobalSignalMask
	}
	return r.builder.Register(key, fn, inputs)
}

func (r *Resolver) buildCSF(key string, base BaseResources) (artifact.Ref, error) {
	if base.CSFUnmasked.IsZero() || base.Ventricles.IsZero() {
		return artifact.Ref{}, cfgerror.New("CSF derivation requires the unmasked CSF mask and the ventricle mask")
	}
	if base.Transform == nil {
		return artifact.Ref{}, cfgerror.New("CSF derivation requires a transform strategy")
	}

	warpFn, err := r.reg.Build(warp.Name, warp.Params{Strategy: base.Transform})
	if err != nil {
		return artifact.Ref{}, err
	}
	warped, err := r.builder.Register(key+"_Ventricles", warpFn, map[string]artifact.Ref{
		"input":     base.Ventricles,
		"reference": base.CSFUnmasked,
	})
	if err != nil {
		return artifact.Ref{}, err
	}

	intersectFn, err := r.reg.Build(maskmath.IntersectName, maskmath.IntersectParams{})
	if err != nil {
		return artifact.Ref{}, err
	}
	return r.builder.Register(key, intersectFn, map[string]artifact.Ref{
		"a": base.CSFUnmasked,
		"b": warped,
	})
}

// buildResolution resamples the previous artifact onto the target grid named
// by the fragment: the functional grid, or an anatomical reference at the
// requested isotropic resolution.
func (r *Resolver) buildResolution(key, fragment string, prev artifact.Ref, base BaseResources) (artifact.Ref, error) {
	if prev.IsZero() {
		return artifact.Ref{}, cfgerror.New("resolution step without a preceding tissue artifact")
	}
	var reference artifact.Ref
	if fragment == "Functional" {
		reference = base.Functional
	} else {
		ref, ok := base.Anatomical[fragment]
		if !ok {
			return artifact.Ref{}, cfgerror.Newf("no anatomical reference supplied for resolution %q", fragment)
		}
		reference = ref
	}
	if reference.IsZero() {
		return artifact.Ref{}, cfgerror.Newf("resolution reference for %q is missing", fragment)
	}

	fn, err := r.reg.Build(resample.Name, resample.Params{Interpolation: kernel.InterpTrilinear})
	if err != nil {
		return artifact.Ref{}, err
	}
	return r.builder.Register(key, fn, map[string]artifact.Ref{
		"source":    prev,
		"reference": reference,
	})
}

func (r *Resolver) buildErosion(key string, prev artifact.Ref) (artifact.Ref, error) {
	if prev.IsZero() {
		return artifact.Ref{}, cfgerror.New("erosion step without a preceding mask artifact")
	}
	fn, err := r.reg.Build(erode.Name, erode.Params{})
	if err != nil {
		return artifact.Ref{}, err
	}
	return r.builder.Register(key, fn, map[string]artifact.Ref{"mask": prev})
}
