package derive

import (
	"context"
	"fmt"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/ctxlog"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/selector"
	"github.com/vk/denoisegridgo/kernels/censor"
	"github.com/vk/denoisegridgo/kernels/summarize"
	"github.com/vk/denoisegridgo/kernels/variancemask"
)

// OutputKind tells the caller how to interpret a regressor's artifact.
type OutputKind int

const (
	// OutputSeries is a regressor matrix, one row per timepoint ([][]float64).
	OutputSeries OutputKind = iota
	// OutputCensor is a keep/discard vector ([]int).
	OutputCensor
)

// RegressorOutput is one terminal artifact of a selection.
type RegressorOutput struct {
	Type selector.RegressorType
	Kind OutputKind
	Ref  artifact.Ref
}

// BuildSelection wires the regressor nodes of one selection into the graph,
// resolving every needed mask through the pool first. PolyOrt and Bandpass
// contribute to the canonical identity only; the detrend and filter
// application live in the external modeling stage, so they produce no
// artifact here.
func (r *Resolver) BuildSelection(ctx context.Context, sel *selector.Selection, base BaseResources) ([]RegressorOutput, error) {
	logger := ctxlog.FromContext(ctx)
	var outputs []RegressorOutput

	emit := func(t selector.RegressorType, kind OutputKind, ref artifact.Ref) {
		outputs = append(outputs, RegressorOutput{Type: t, Kind: kind, Ref: ref})
	}

	for _, reg := range selector.RegressorOrder {
		var (
			ref artifact.Ref
			err error
		)
		switch reg {
		case selector.RegGreyMatter, selector.RegWhiteMatter, selector.RegCerebrospinalFluid:
			t := tissueSelector(sel, reg)
			if t == nil {
				continue
			}
			ref, err = r.buildTissueRegressor(ctx, sel.Name, reg, t, base)
		case selector.RegTCompCor:
			if sel.TCompCor == nil {
				continue
			}
			ref, err = r.buildTCompCor(ctx, sel.Name, sel.TCompCor, base)
		case selector.RegACompCor:
			if sel.ACompCor == nil {
				continue
			}
			ref, err = r.buildACompCor(ctx, sel.Name, sel.ACompCor, base)
		case selector.RegGlobalSignal:
			if sel.GlobalSignal == nil {
				continue
			}
			ref, err = r.buildGlobalSignal(sel.Name, sel.GlobalSignal, base)
		case selector.RegMotion:
			if sel.Motion == nil {
				continue
			}
			if base.MotionParameters.IsZero() {
				return nil, cfgerror.Newf("selection %q requests motion regressors but no motion parameters were supplied", sel.Name)
			}
			ref = base.MotionParameters
		case selector.RegCensor:
			if sel.Censor == nil {
				continue
			}
			ref, err = r.buildCensor(sel.Name, sel.Censor, base)
			if err != nil {
				return nil, err
			}
			emit(reg, OutputCensor, ref)
			continue
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		emit(reg, OutputSeries, ref)
	}

	logger.Debug("Wired selection.", "name", sel.Name, "outputs", len(outputs))
	return outputs, nil
}

func tissueSelector(sel *selector.Selection, reg selector.RegressorType) *selector.TissueSelector {
	switch reg {
	case selector.RegGreyMatter:
		return sel.GreyMatter
	case selector.RegWhiteMatter:
		return sel.WhiteMatter
	case selector.RegCerebrospinalFluid:
		return sel.CerebrospinalFluid
	}
	return nil
}

func regressorTissue(reg selector.RegressorType) selector.Tissue {
	switch reg {
	case selector.RegWhiteMatter:
		return selector.TissueWhiteMatter
	case selector.RegCerebrospinalFluid:
		return selector.TissueCerebrospinalFluid
	}
	return selector.TissueGreyMatter
}

func (r *Resolver) buildTissueRegressor(ctx context.Context, name string, reg selector.RegressorType, t *selector.TissueSelector, base BaseResources) (artifact.Ref, error) {
	desc := t.Descriptor(regressorTissue(reg))
	mask, _, err := r.ResolveMask(ctx, MaskRequest{Steps: desc.Steps()}, base)
	if err != nil {
		return artifact.Ref{}, err
	}
	return r.registerSummary(summaryKey(name, reg.String()), t.Summary, base, mask)
}

func (r *Resolver) buildTCompCor(ctx context.Context, name string, t *selector.TCompCorSelector, base BaseResources) (artifact.Ref, error) {
	req := MaskRequest{
		Steps:    t.Descriptor().Steps(),
		Variance: &variancemask.Params{Threshold: t.Threshold, BySlice: t.BySlice},
	}
	mask, _, err := r.ResolveMask(ctx, req, base)
	if err != nil {
		return artifact.Ref{}, err
	}
	return r.registerSummary(summaryKey(name, "tCompCor"), t.Summary, base, mask)
}

func (r *Resolver) buildACompCor(ctx context.Context, name string, a *selector.ACompCorSelector, base BaseResources) (artifact.Ref, error) {
	masks := make([]artifact.Ref, 0, len(a.Tissues))
	for _, desc := range a.Descriptors() {
		mask, _, err := r.ResolveMask(ctx, MaskRequest{Steps: desc.Steps()}, base)
		if err != nil {
			return artifact.Ref{}, err
		}
		masks = append(masks, mask)
	}
	return r.registerSummary(summaryKey(name, "aCompCor"), a.Summary, base, masks...)
}

func (r *Resolver) buildGlobalSignal(name string, g *selector.GlobalSignalSelector, base BaseResources) (artifact.Ref, error) {
	if base.GlobalSignalMask.IsZero() {
		return artifact.Ref{}, cfgerror.Newf("selection %q requests a global signal regressor but no brain mask was supplied", name)
	}
	return r.registerSummary(summaryKey(name, "GlobalSignal"), g.Summary, base, base.GlobalSignalMask)
}

func (r *Resolver) registerSummary(key string, summary kernel.Summary, base BaseResources, masks ...artifact.Ref) (artifact.Ref, error) {
	if base.Functional.IsZero() {
		return artifact.Ref{}, cfgerror.New("a functional series is required to summarize regressors")
	}
	fn, err := r.reg.Build(summarize.Name, summarize.Params{Summary: summary})
	if err != nil {
		return artifact.Ref{}, err
	}
	inputs := map[string]artifact.Ref{"functional": base.Functional}
	for i, mask := range masks {
		inputs[summarize.MaskSlot(i)] = mask
	}
	return r.builder.Register(key, fn, inputs)
}

func (r *Resolver) buildCensor(name string, c *selector.CensorSelector, base BaseResources) (artifact.Ref, error) {
	params := censor.Params{
		PreWindow:  c.PreviousTRsToRemove,
		PostWindow: c.SubsequentTRsToRemove,
	}
	inputs := make(map[string]artifact.Ref)
	for _, ct := range c.Thresholds {
		threshold := ct.Threshold
		switch ct.Target {
		case selector.TargetFD:
			if params.FDThreshold != nil {
				return artifact.Ref{}, cfgerror.Newf("selection %q has more than one FD censor threshold", name)
			}
			if base.FD.IsZero() {
				return artifact.Ref{}, cfgerror.Newf("selection %q censors on FD but no FD series was supplied", name)
			}
			params.FDThreshold = &threshold
			inputs["fd"] = base.FD
		case selector.TargetDVARS:
			if params.DVARSThreshold != nil {
				return artifact.Ref{}, cfgerror.Newf("selection %q has more than one DVARS censor threshold", name)
			}
			if base.DVARS.IsZero() {
				return artifact.Ref{}, cfgerror.Newf("selection %q censors on DVARS but no DVARS series was supplied", name)
			}
			params.DVARSThreshold = &threshold
			inputs["dvars"] = base.DVARS
		}
	}

	fn, err := r.reg.Build(censor.Name, params)
	if err != nil {
		return artifact.Ref{}, err
	}
	return r.builder.Register(summaryKey(name, "Censor"), fn, inputs)
}

func summaryKey(selection, regressor string) string {
	return fmt.Sprintf("%s_%s", artifact.Label(selection), regressor)
}
