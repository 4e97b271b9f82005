package hcl_adapter

import (
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/selector"
	"github.com/zclconf/go-cty/cty"
)

func translateSelection(block *selectionBlock) (*selector.Selection, error) {
	sel := &selector.Selection{Name: block.Name}

	var err error
	if block.GreyMatter != nil {
		if sel.GreyMatter, err = translateTissue(block.GreyMatter); err != nil {
			return nil, cfgerror.Newf("grey_matter in selection %q: %v", block.Name, err)
		}
	}
	if block.WhiteMatter != nil {
		if sel.WhiteMatter, err = translateTissue(block.WhiteMatter); err != nil {
			return nil, cfgerror.Newf("white_matter in selection %q: %v", block.Name, err)
		}
	}
	if block.CerebrospinalFluid != nil {
		if sel.CerebrospinalFluid, err = translateTissue(block.CerebrospinalFluid); err != nil {
			return nil, cfgerror.Newf("cerebrospinal_fluid in selection %q: %v", block.Name, err)
		}
	}
	if block.TCompCor != nil {
		if sel.TCompCor, err = translateTCompCor(block.TCompCor); err != nil {
			return nil, cfgerror.Newf("tcompcor in selection %q: %v", block.Name, err)
		}
	}
	if block.ACompCor != nil {
		if sel.ACompCor, err = translateACompCor(block.ACompCor); err != nil {
			return nil, cfgerror.Newf("acompcor in selection %q: %v", block.Name, err)
		}
	}
	if block.GlobalSignal != nil {
		summary, err := summaryValue(block.GlobalSignal.Summary)
		if err != nil {
			return nil, cfgerror.Newf("global_signal in selection %q: %v", block.Name, err)
		}
		sel.GlobalSignal = &selector.GlobalSignalSelector{
			Summary: summary,
			Derivatives: selector.Derivatives{
				IncludeSquared:        block.GlobalSignal.IncludeSquared,
				IncludeDelayed:        block.GlobalSignal.IncludeDelayed,
				IncludeDelayedSquared: block.GlobalSignal.IncludeDelayedSquared,
			},
		}
	}
	if block.Motion != nil {
		sel.Motion = &selector.MotionSelector{
			Derivatives: selector.Derivatives{
				IncludeSquared:        block.Motion.IncludeSquared,
				IncludeDelayed:        block.Motion.IncludeDelayed,
				IncludeDelayedSquared: block.Motion.IncludeDelayedSquared,
			},
		}
	}
	if block.PolyOrt != nil {
		sel.PolyOrt = &selector.PolyOrtSelector{Degree: block.PolyOrt.Degree}
	}
	if block.Bandpass != nil {
		sel.Bandpass = &selector.BandpassSelector{
			TopFrequency:    block.Bandpass.TopFrequency,
			BottomFrequency: block.Bandpass.BottomFrequency,
		}
	}
	if block.Censor != nil {
		if sel.Censor, err = translateCensor(block.Censor); err != nil {
			return nil, cfgerror.Newf("censor in selection %q: %v", block.Name, err)
		}
	}
	return sel, nil
}

func translateTissue(block *tissueBlock) (*selector.TissueSelector, error) {
	summary, err := summaryValue(block.Summary)
	if err != nil {
		return nil, err
	}
	resolution, err := resolutionValue(block.ExtractionResolution)
	if err != nil {
		return nil, err
	}
	return &selector.TissueSelector{
		ExtractionResolution: resolution,
		ErodeMask:            block.ErodeMask,
		Summary:              summary,
		Derivatives: selector.Derivatives{
			IncludeSquared:        block.IncludeSquared,
			IncludeDelayed:        block.IncludeDelayed,
			IncludeDelayedSquared: block.IncludeDelayedSquared,
		},
	}, nil
}

func translateTCompCor(block *tCompCorBlock) (*selector.TCompCorSelector, error) {
	summary, err := summaryValue(block.Summary)
	if err != nil {
		return nil, err
	}
	threshold, err := thresholdValue(block.Threshold, true)
	if err != nil {
		return nil, err
	}
	return &selector.TCompCorSelector{
		Threshold: threshold,
		BySlice:   block.BySlice,
		Summary:   summary,
		Derivatives: selector.Derivatives{
			IncludeSquared:        block.IncludeSquared,
			IncludeDelayed:        block.IncludeDelayed,
			IncludeDelayedSquared: block.IncludeDelayedSquared,
		},
	}, nil
}

func translateACompCor(block *aCompCorBlock) (*selector.ACompCorSelector, error) {
	summary, err := summaryValue(block.Summary)
	if err != nil {
		return nil, err
	}
	resolution, err := resolutionValue(block.ExtractionResolution)
	if err != nil {
		return nil, err
	}
	tissues := make([]selector.Tissue, 0, len(block.Tissues))
	for _, name := range block.Tissues {
		tissue, err := selector.ParseTissue(name)
		if err != nil {
			return nil, err
		}
		tissues = append(tissues, tissue)
	}
	return &selector.ACompCorSelector{
		Tissues:              tissues,
		ExtractionResolution: resolution,
		ErodeMask:            block.ErodeMask,
		Summary:              summary,
		Derivatives: selector.Derivatives{
			IncludeSquared:        block.IncludeSquared,
			IncludeDelayed:        block.IncludeDelayed,
			IncludeDelayedSquared: block.IncludeDelayedSquared,
		},
	}, nil
}

func translateCensor(block *censorBlock) (*selector.CensorSelector, error) {
	method, err := selector.ParseCensorMethod(block.Method)
	if err != nil {
		return nil, err
	}
	thresholds := make([]selector.CensorThreshold, 0, len(block.Thresholds))
	for _, tb := range block.Thresholds {
		target, err := selector.ParseThresholdTarget(tb.Target)
		if err != nil {
			return nil, err
		}
		threshold, err := thresholdValue(tb.Value, false)
		if err != nil {
			return nil, err
		}
		thresholds = append(thresholds, selector.CensorThreshold{
			Target:    target,
			Threshold: threshold,
		})
	}
	return &selector.CensorSelector{
		Method:                method,
		PreviousTRsToRemove:   block.PreviousTRsToRemove,
		SubsequentTRsToRemove: block.SubsequentTRsToRemove,
		Thresholds:            thresholds,
	}, nil
}

func translateInputs(block *inputsBlock) *Inputs {
	inputs := &Inputs{
		Functional:       block.Functional,
		BrainMask:        block.BrainMask,
		GreyMatter:       block.GreyMatter,
		WhiteMatter:      block.WhiteMatter,
		CSFUnmasked:      block.CSFUnmasked,
		Ventricles:       block.Ventricles,
		Anatomical:       block.Anatomical,
		MotionParameters: block.MotionParameters,
		FD:               block.FD,
		DVARS:            block.DVARS,
	}
	if block.Transform != nil {
		inputs.Transform = &TransformSpec{
			Kind:     block.Transform.Kind,
			Matrices: block.Transform.Matrices,
		}
	}
	return inputs
}

// summaryValue accepts a method name string or an object {method,
// components}.
func summaryValue(v cty.Value) (kernel.Summary, error) {
	if v.IsNull() {
		return kernel.Summary{}, cfgerror.New("a summary is required")
	}
	if v.Type() == cty.String {
		method, err := kernel.ParseSummaryMethod(v.AsString())
		if err != nil {
			return kernel.Summary{}, err
		}
		return kernel.Summary{Method: method}, nil
	}
	if v.Type().IsObjectType() && v.Type().HasAttribute("method") {
		methodVal := v.GetAttr("method")
		if methodVal.Type() != cty.String {
			return kernel.Summary{}, cfgerror.New("summary method must be a string")
		}
		method, err := kernel.ParseSummaryMethod(methodVal.AsString())
		if err != nil {
			return kernel.Summary{}, err
		}
		summary := kernel.Summary{Method: method}
		if v.Type().HasAttribute("components") {
			components, err := ctyFloat(v.GetAttr("components"))
			if err != nil {
				return kernel.Summary{}, cfgerror.Newf("summary components: %v", err)
			}
			summary.Components = int(components)
		}
		return summary, nil
	}
	return kernel.Summary{}, cfgerror.Newf("summary must be a method name or an object with method and components, received %s", v.Type().FriendlyName())
}

// resolutionValue accepts a number of millimeters or the string "Functional".
func resolutionValue(v *cty.Value) (*selector.Resolution, error) {
	if v == nil || v.IsNull() {
		return nil, nil
	}
	if v.Type() == cty.Number {
		mm, err := ctyFloat(*v)
		if err != nil {
			return nil, err
		}
		return &selector.Resolution{Millimeters: mm}, nil
	}
	if v.Type() == cty.String {
		if v.AsString() == "Functional" {
			return &selector.Resolution{Functional: true}, nil
		}
		return nil, cfgerror.Newf("extraction_resolution string must be \"Functional\", received %q", v.AsString())
	}
	return nil, cfgerror.Newf("extraction_resolution must be a number or \"Functional\", received %s", v.Type().FriendlyName())
}

// thresholdValue accepts a plain number or a threshold string.
func thresholdValue(v cty.Value, allowPercentile bool) (kernel.Threshold, error) {
	if v.IsNull() {
		return kernel.Threshold{}, cfgerror.New("a threshold is required")
	}
	if v.Type() == cty.Number {
		value, err := ctyFloat(v)
		if err != nil {
			return kernel.Threshold{}, err
		}
		return kernel.AbsoluteThreshold(value), nil
	}
	if v.Type() == cty.String {
		return kernel.ParseThreshold(v.AsString(), allowPercentile)
	}
	return kernel.Threshold{}, cfgerror.Newf("threshold must be a number or a string, received %s", v.Type().FriendlyName())
}

func ctyFloat(v cty.Value) (float64, error) {
	if v.IsNull() || v.Type() != cty.Number {
		return 0, cfgerror.Newf("expected a number, received %s", v.Type().FriendlyName())
	}
	f, _ := v.AsBigFloat().Float64()
	return f, nil
}
