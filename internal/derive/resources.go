// Package derive builds the memoized mask-derivation graph: it decomposes
// selections into ordered steps, resolves each prefix key against the per-run
// pool, and registers kernel builders only for steps not yet cached.
package derive

import (
	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/selector"
	"github.com/vk/denoisegridgo/kernels/censor"
	"github.com/vk/denoisegridgo/kernels/erode"
	"github.com/vk/denoisegridgo/kernels/maskmath"
	"github.com/vk/denoisegridgo/kernels/resample"
	"github.com/vk/denoisegridgo/kernels/summarize"
	"github.com/vk/denoisegridgo/kernels/variancemask"
	"github.com/vk/denoisegridgo/kernels/warp"
)

// BaseResources holds refs to the externally supplied inputs of one run.
// Upstream collaborators produce these; the derivation layer only wires them.
type BaseResources struct {
	// Functional is the voxel-by-time series regressors are extracted from.
	Functional artifact.Ref
	// GlobalSignalMask is the whole-brain mask on the functional grid.
	GlobalSignalMask artifact.Ref
	// GreyMatter and WhiteMatter are segmentation masks in anatomical space.
	// They seed the pool directly; there is no builder variant for them.
	GreyMatter  artifact.Ref
	WhiteMatter artifact.Ref
	// CSFUnmasked is the unmasked cerebrospinal-fluid probability mask in
	// anatomical space.
	CSFUnmasked artifact.Ref
	// Ventricles is the standard-space ventricle mask.
	Ventricles artifact.Ref
	// Anatomical maps resolution fragments such as "2mm" to anatomical
	// reference volumes resampling targets come from.
	Anatomical map[string]artifact.Ref
	// MotionParameters is the motion-regressor matrix, one row per timepoint.
	MotionParameters artifact.Ref
	// FD and DVARS are the motion and intensity-change series censoring
	// reads. Either may be absent when censoring is not requested.
	FD    artifact.Ref
	DVARS artifact.Ref
	// Transform carries the precomputed transform chain the ventricle warp
	// applies. The strategy is chosen by external configuration.
	Transform kernel.TransformStrategy
}

// SeedPool caches the supplied segmentation masks under their tissue keys so
// tissue steps for them resolve without a builder variant.
func SeedPool(pool *artifact.Pool, base BaseResources) error {
	seeds := map[string]artifact.Ref{
		selector.TissueGreyMatter.String():  base.GreyMatter,
		selector.TissueWhiteMatter.String(): base.WhiteMatter,
	}
	for key, ref := range seeds {
		if ref.IsZero() {
			continue
		}
		if err := pool.Put(key, ref); err != nil {
			return err
		}
	}
	return nil
}

// RequiredKernels lists the registry names the derivation layer resolves
// builders from. The registry is validated against this list before any
// graph construction.
func RequiredKernels() []string {
	return []string{
		censor.Name,
		erode.Name,
		maskmath.IntersectName,
		resample.Name,
		summarize.Name,
		variancemask.Name,
		warp.Name,
	}
}
