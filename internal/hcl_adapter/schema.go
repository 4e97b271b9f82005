// Package hcl_adapter loads selection files written in HCL and translates
// them into the typed selector model. Unknown top-level blocks and unknown
// regressor blocks inside a selection are silently skipped.
package hcl_adapter

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot is a struct used to decode all possible top-level blocks from any
// file.
type fileRoot struct {
	Selections []*selectionBlock `hcl:"selection,block"`
	Inputs     *inputsBlock      `hcl:"inputs,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

// selectionBlock represents a `selection` block: one regressor selection,
// labeled with its name. Remain absorbs unrecognized regressor blocks.
type selectionBlock struct {
	Name               string             `hcl:"name,label"`
	GreyMatter         *tissueBlock       `hcl:"grey_matter,block"`
	WhiteMatter        *tissueBlock       `hcl:"white_matter,block"`
	CerebrospinalFluid *tissueBlock       `hcl:"cerebrospinal_fluid,block"`
	TCompCor           *tCompCorBlock     `hcl:"tcompcor,block"`
	ACompCor           *aCompCorBlock     `hcl:"acompcor,block"`
	GlobalSignal       *globalSignalBlock `hcl:"global_signal,block"`
	Motion             *motionBlock       `hcl:"motion,block"`
	PolyOrt            *polyOrtBlock      `hcl:"poly_ort,block"`
	Bandpass           *bandpassBlock     `hcl:"bandpass,block"`
	Censor             *censorBlock       `hcl:"censor,block"`
	Remain             hcl.Body           `hcl:",remain"`
}

// tissueBlock configures a grey-matter, white-matter, or CSF regressor.
// extraction_resolution is a number of millimeters or the string
// "Functional"; summary is a method name or an object {method, components}.
type tissueBlock struct {
	ExtractionResolution  *cty.Value `hcl:"extraction_resolution,optional"`
	ErodeMask             bool       `hcl:"erode_mask,optional"`
	Summary               cty.Value  `hcl:"summary"`
	IncludeSquared        bool       `hcl:"include_squared,optional"`
	IncludeDelayed        bool       `hcl:"include_delayed,optional"`
	IncludeDelayedSquared bool       `hcl:"include_delayed_squared,optional"`
}

// tCompCorBlock configures a tCompCor regressor. threshold is a number or a
// "<k>SD"/"<p>PCT" string.
type tCompCorBlock struct {
	Threshold             cty.Value `hcl:"threshold"`
	BySlice               bool      `hcl:"by_slice,optional"`
	Summary               cty.Value `hcl:"summary"`
	IncludeSquared        bool      `hcl:"include_squared,optional"`
	IncludeDelayed        bool      `hcl:"include_delayed,optional"`
	IncludeDelayedSquared bool      `hcl:"include_delayed_squared,optional"`
}

// aCompCorBlock configures an aCompCor regressor over one or more tissues.
type aCompCorBlock struct {
	Tissues               []string   `hcl:"tissues"`
	ExtractionResolution  *cty.Value `hcl:"extraction_resolution,optional"`
	ErodeMask             bool       `hcl:"erode_mask,optional"`
	Summary               cty.Value  `hcl:"summary"`
	IncludeSquared        bool       `hcl:"include_squared,optional"`
	IncludeDelayed        bool       `hcl:"include_delayed,optional"`
	IncludeDelayedSquared bool       `hcl:"include_delayed_squared,optional"`
}

// globalSignalBlock configures the whole-brain summary regressor.
type globalSignalBlock struct {
	Summary               cty.Value `hcl:"summary"`
	IncludeSquared        bool      `hcl:"include_squared,optional"`
	IncludeDelayed        bool      `hcl:"include_delayed,optional"`
	IncludeDelayedSquared bool      `hcl:"include_delayed_squared,optional"`
}

// motionBlock configures the motion-parameter regressors.
type motionBlock struct {
	IncludeSquared        bool `hcl:"include_squared,optional"`
	IncludeDelayed        bool `hcl:"include_delayed,optional"`
	IncludeDelayedSquared bool `hcl:"include_delayed_squared,optional"`
}

// polyOrtBlock configures polynomial detrending.
type polyOrtBlock struct {
	Degree int `hcl:"degree"`
}

// bandpassBlock configures bandpass filtering, frequencies in Hz.
type bandpassBlock struct {
	TopFrequency    float64 `hcl:"top_frequency"`
	BottomFrequency float64 `hcl:"bottom_frequency,optional"`
}

// censorBlock configures timepoint censoring. Each threshold block is
// labeled with its target series, FD or DVARS.
type censorBlock struct {
	Method                string                  `hcl:"method"`
	PreviousTRsToRemove   int                     `hcl:"previous_trs_to_remove,optional"`
	SubsequentTRsToRemove int                     `hcl:"subsequent_trs_to_remove,optional"`
	Thresholds            []*censorThresholdBlock `hcl:"threshold,block"`
}

type censorThresholdBlock struct {
	Target string    `hcl:"target,label"`
	Value  cty.Value `hcl:"value"`
}

// inputsBlock names the file-based base resources of a run. All paths are
// optional; the derivation layer reports a configuration error when a
// selection needs a resource that was not supplied.
type inputsBlock struct {
	Functional       string            `hcl:"functional,optional"`
	BrainMask        string            `hcl:"brain_mask,optional"`
	GreyMatter       string            `hcl:"grey_matter,optional"`
	WhiteMatter      string            `hcl:"white_matter,optional"`
	CSFUnmasked      string            `hcl:"csf_unmasked,optional"`
	Ventricles       string            `hcl:"ventricles,optional"`
	Anatomical       map[string]string `hcl:"anatomical,optional"`
	MotionParameters string            `hcl:"motion_parameters,optional"`
	FD               string            `hcl:"fd,optional"`
	DVARS            string            `hcl:"dvars,optional"`
	Transform        *transformBlock   `hcl:"transform,block"`
}

// transformBlock names the precomputed transform a ventricle warp applies:
// either a single linear matrix, or a chain of initial, rigid, and affine
// matrices composed and inverted.
type transformBlock struct {
	Kind     string   `hcl:"kind"`
	Matrices []string `hcl:"matrices"`
}
