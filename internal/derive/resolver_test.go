package derive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/internal/selector"
	"github.com/vk/denoisegridgo/internal/volume"
	"github.com/vk/denoisegridgo/kernels/censor"
	"github.com/vk/denoisegridgo/kernels/erode"
	"github.com/vk/denoisegridgo/kernels/maskmath"
	"github.com/vk/denoisegridgo/kernels/resample"
	"github.com/vk/denoisegridgo/kernels/summarize"
	"github.com/vk/denoisegridgo/kernels/variancemask"
	"github.com/vk/denoisegridgo/kernels/warp"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()
	for _, m := range []registry.Module{
		&censor.Module{},
		&erode.Module{},
		&maskmath.Module{},
		&resample.Module{},
		&summarize.Module{},
		&variancemask.Module{},
		&warp.Module{},
	} {
		m.Register(reg)
	}
	require.NoError(t, reg.ValidateRegistry(RequiredKernels()))
	return reg
}

func mustSource(t *testing.T, b *artifact.Builder, key string) artifact.Ref {
	t.Helper()
	ref, err := b.Source(key, nil)
	require.NoError(t, err)
	return ref
}

// newTestRun wires a builder, pool, and base resources with all sources
// present, returning the resolver alongside them.
func newTestRun(t *testing.T) (*Resolver, *artifact.Pool, *artifact.Builder, BaseResources) {
	t.Helper()
	b := artifact.NewBuilder()
	base := BaseResources{
		Functional:       mustSource(t, b, "Functional"),
		GlobalSignalMask: mustSource(t, b, "GlobalSignalMask"),
		GreyMatter:       mustSource(t, b, "GreyMatter"),
		WhiteMatter:      mustSource(t, b, "WhiteMatter"),
		CSFUnmasked:      mustSource(t, b, "CSFUnmasked"),
		Ventricles:       mustSource(t, b, "Ventricles"),
		Anatomical: map[string]artifact.Ref{
			"2mm": mustSource(t, b, "Anatomical_2mm"),
		},
		MotionParameters: mustSource(t, b, "MotionParameters"),
		FD:               mustSource(t, b, "FD"),
		DVARS:            mustSource(t, b, "DVARS"),
		Transform:        kernel.LinearMatrix{Matrix: volume.Identity()},
	}

	pool := artifact.NewPool()
	require.NoError(t, SeedPool(pool, base))
	return NewResolver(pool, b, newTestRegistry(t)), pool, b, base
}

func TestResolveMaskSharesPrefixSteps(t *testing.T) {
	r, pool, b, base := newTestRun(t)
	ctx := context.Background()
	sources := b.Len()

	eroded := (&selector.TissueSelector{
		ExtractionResolution: &selector.Resolution{Millimeters: 2},
		ErodeMask:            true,
	}).Descriptor(selector.TissueWhiteMatter)

	ref, key, err := r.ResolveMask(ctx, MaskRequest{Steps: eroded.Steps()}, base)
	require.NoError(t, err)
	assert.Equal(t, "WhiteMatter_2mm_Eroded", key)
	assert.Equal(t, key, ref.Key)
	// Resolution and erosion nodes were added; the tissue step came from the
	// seeded pool.
	assert.Equal(t, sources+2, b.Len())

	plain := (&selector.TissueSelector{
		ExtractionResolution: &selector.Resolution{Millimeters: 2},
	}).Descriptor(selector.TissueWhiteMatter)

	ref2, key2, err := r.ResolveMask(ctx, MaskRequest{Steps: plain.Steps()}, base)
	require.NoError(t, err)
	assert.Equal(t, "WhiteMatter_2mm", key2)
	assert.Equal(t, "WhiteMatter_2mm", ref2.Key)
	// Every step was already cached: no new nodes.
	assert.Equal(t, sources+2, b.Len())
	assert.True(t, pool.Has("WhiteMatter_2mm"))
	assert.True(t, pool.Has("WhiteMatter_2mm_Eroded"))
}

func TestResolveMaskDerivesCSF(t *testing.T) {
	r, pool, b, base := newTestRun(t)
	sources := b.Len()

	desc := (&selector.TissueSelector{}).Descriptor(selector.TissueCerebrospinalFluid)
	ref, key, err := r.ResolveMask(context.Background(), MaskRequest{Steps: desc.Steps()}, base)
	require.NoError(t, err)
	assert.Equal(t, "CerebrospinalFluid", key)
	assert.Equal(t, key, ref.Key)

	// The CSF step registers the ventricle warp and the intersection.
	assert.Equal(t, sources+2, b.Len())
	warpNode, ok := b.Node("CerebrospinalFluid_Ventricles")
	require.True(t, ok)
	assert.Equal(t, base.Ventricles, warpNode.Inputs["input"])
	assert.Equal(t, base.CSFUnmasked, warpNode.Inputs["reference"])

	intersect, ok := b.Node("CerebrospinalFluid")
	require.True(t, ok)
	assert.Equal(t, base.CSFUnmasked, intersect.Inputs["a"])

	// A second request reuses the cached artifact outright.
	_, _, err = r.ResolveMask(context.Background(), MaskRequest{Steps: desc.Steps()}, base)
	require.NoError(t, err)
	assert.Equal(t, sources+2, b.Len())
	assert.True(t, pool.Has("CerebrospinalFluid"))
}

func TestResolveMaskVarianceTissue(t *testing.T) {
	r, _, b, base := newTestRun(t)

	sel := &selector.TCompCorSelector{
		Threshold: kernel.Threshold{Kind: kernel.ThresholdStdDev, Value: 1.5, Raw: "1.5SD"},
		BySlice:   true,
	}
	req := MaskRequest{
		Steps:    sel.Descriptor().Steps(),
		Variance: &variancemask.Params{Threshold: sel.Threshold, BySlice: sel.BySlice},
	}

	ref, key, err := r.ResolveMask(context.Background(), req, base)
	require.NoError(t, err)
	assert.Equal(t, "FunctionalVarianceS1.5SD", key)

	node, ok := b.Node(ref.Key)
	require.True(t, ok)
	assert.Equal(t, base.Functional, node.Inputs["functional"])
	assert.Equal(t, base.GlobalSignalMask, node.Inputs["mask"])
}

func TestResolveMaskUnknownTissue(t *testing.T) {
	b := artifact.NewBuilder()
	pool := artifact.NewPool()
	r := NewResolver(pool, b, newTestRegistry(t))

	desc := (&selector.TissueSelector{}).Descriptor(selector.TissueGreyMatter)
	_, _, err := r.ResolveMask(context.Background(), MaskRequest{Steps: desc.Steps()}, BaseResources{})
	require.Error(t, err)
	assert.True(t, cfgerror.Is(err))
	assert.Contains(t, err.Error(), "no tissue builder variant")
	// A failed derivation leaves the pool untouched.
	assert.Equal(t, 0, pool.Len())
}

func TestResolveMaskEmptySteps(t *testing.T) {
	r, _, _, base := newTestRun(t)
	_, _, err := r.ResolveMask(context.Background(), MaskRequest{}, base)
	require.Error(t, err)
	assert.True(t, cfgerror.Is(err))
}

func TestResolveMaskMissingAnatomicalReference(t *testing.T) {
	r, _, _, base := newTestRun(t)

	desc := (&selector.TissueSelector{
		ExtractionResolution: &selector.Resolution{Millimeters: 3},
	}).Descriptor(selector.TissueWhiteMatter)

	_, _, err := r.ResolveMask(context.Background(), MaskRequest{Steps: desc.Steps()}, base)
	require.Error(t, err)
	assert.True(t, cfgerror.Is(err))
	assert.Contains(t, err.Error(), "3mm")
}
