// Package selector models a nuisance-regressor selection as a closed, typed
// schema and derives its two addressable forms: the canonical identity string
// used for naming and caching, and the ordered mask-derivation steps consumed
// by the derivation cache.
package selector

import (
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/kernel"
)

// RegressorType enumerates the recognized regressor kinds. The declaration
// order is the canonical processing order; every consumer iterates via
// RegressorOrder, never over map keys.
type RegressorType int

const (
	RegGreyMatter RegressorType = iota
	RegWhiteMatter
	RegCerebrospinalFluid
	RegTCompCor
	RegACompCor
	RegGlobalSignal
	RegMotion
	RegPolyOrt
	RegBandpass
	RegCensor
)

// RegressorOrder is the fixed canonical processing order.
var RegressorOrder = [...]RegressorType{
	RegGreyMatter,
	RegWhiteMatter,
	RegCerebrospinalFluid,
	RegTCompCor,
	RegACompCor,
	RegGlobalSignal,
	RegMotion,
	RegPolyOrt,
	RegBandpass,
	RegCensor,
}

// String returns the configuration-facing name of the regressor type.
func (r RegressorType) String() string {
	switch r {
	case RegGreyMatter:
		return "GreyMatter"
	case RegWhiteMatter:
		return "WhiteMatter"
	case RegCerebrospinalFluid:
		return "CerebrospinalFluid"
	case RegTCompCor:
		return "tCompCor"
	case RegACompCor:
		return "aCompCor"
	case RegGlobalSignal:
		return "GlobalSignal"
	case RegMotion:
		return "Motion"
	case RegPolyOrt:
		return "PolyOrt"
	case RegBandpass:
		return "Bandpass"
	case RegCensor:
		return "Censor"
	}
	return "Unknown"
}

// code returns the short identity code emitted by the canonical codec.
func (r RegressorType) code() string {
	switch r {
	case RegGreyMatter:
		return "GM"
	case RegWhiteMatter:
		return "WM"
	case RegCerebrospinalFluid:
		return "CSF"
	case RegTCompCor:
		return "tC"
	case RegACompCor:
		return "aC"
	case RegGlobalSignal:
		return "G"
	case RegMotion:
		return "M"
	case RegPolyOrt:
		return "P"
	case RegBandpass:
		return "B"
	case RegCensor:
		return "C"
	}
	return ""
}

// Tissue enumerates the anatomically defined tissue compartments.
type Tissue int

const (
	TissueGreyMatter Tissue = iota
	TissueWhiteMatter
	TissueCerebrospinalFluid
)

// String returns the configuration-facing tissue name.
func (t Tissue) String() string {
	switch t {
	case TissueGreyMatter:
		return "GreyMatter"
	case TissueWhiteMatter:
		return "WhiteMatter"
	case TissueCerebrospinalFluid:
		return "CerebrospinalFluid"
	}
	return "Unknown"
}

// code returns the short tissue code used in canonical identities.
func (t Tissue) code() string {
	switch t {
	case TissueGreyMatter:
		return "GM"
	case TissueWhiteMatter:
		return "WM"
	case TissueCerebrospinalFluid:
		return "CSF"
	}
	return ""
}

// ParseTissue maps a configuration name onto a Tissue.
func ParseTissue(name string) (Tissue, error) {
	switch name {
	case "GreyMatter":
		return TissueGreyMatter, nil
	case "WhiteMatter":
		return TissueWhiteMatter, nil
	case "CerebrospinalFluid":
		return TissueCerebrospinalFluid, nil
	}
	return 0, cfgerror.Newf("unknown tissue %q", name)
}

// CensorMethod enumerates how censored timepoints are treated downstream.
type CensorMethod int

const (
	CensorKill CensorMethod = iota
	CensorZero
	CensorInterpolate
	CensorSpikeRegression
)

// code returns the single-letter identity code for the censor method.
func (m CensorMethod) code() string {
	switch m {
	case CensorKill:
		return "K"
	case CensorZero:
		return "Z"
	case CensorInterpolate:
		return "I"
	case CensorSpikeRegression:
		return "S"
	}
	return ""
}

// ParseCensorMethod maps a configuration name onto a CensorMethod.
func ParseCensorMethod(name string) (CensorMethod, error) {
	switch name {
	case "Kill":
		return CensorKill, nil
	case "Zero":
		return CensorZero, nil
	case "Interpolate":
		return CensorInterpolate, nil
	case "SpikeRegression":
		return CensorSpikeRegression, nil
	}
	return 0, cfgerror.Newf("unknown censor method %q", name)
}

// ThresholdTarget names the series a censor threshold applies to.
type ThresholdTarget int

const (
	TargetFD ThresholdTarget = iota
	TargetDVARS
)

// Name returns the configuration-facing target name, which is also the sort
// key for canonical threshold ordering.
func (t ThresholdTarget) Name() string {
	if t == TargetFD {
		return "FD"
	}
	return "DVARS"
}

// code returns the identity code for the target.
func (t ThresholdTarget) code() string {
	if t == TargetFD {
		return "FD"
	}
	return "DV"
}

// ParseThresholdTarget maps a configuration name onto a ThresholdTarget.
func ParseThresholdTarget(name string) (ThresholdTarget, error) {
	switch name {
	case "FD":
		return TargetFD, nil
	case "DVARS":
		return TargetDVARS, nil
	}
	return 0, cfgerror.Newf("unknown censor threshold type %q", name)
}

// Resolution names the grid a mask is extracted on: the functional grid
// itself, or an anatomical grid at an isotropic resolution in millimeters.
type Resolution struct {
	Functional  bool
	Millimeters float64 `validate:"gte=0"`
}

// Derivatives selects which transformed copies of a regressor are added to
// the model alongside the raw series.
type Derivatives struct {
	IncludeSquared        bool
	IncludeDelayed        bool
	IncludeDelayedSquared bool
}

// suffix returns the canonical derivative suffix: S, D, B, concatenated in
// that order, empty if none requested.
func (d Derivatives) suffix() string {
	var s string
	if d.IncludeSquared {
		s += "S"
	}
	if d.IncludeDelayed {
		s += "D"
	}
	if d.IncludeDelayedSquared {
		s += "B"
	}
	return s
}

// TissueSelector configures a GreyMatter, WhiteMatter or CerebrospinalFluid
// regressor.
type TissueSelector struct {
	ExtractionResolution *Resolution
	ErodeMask            bool
	Summary              kernel.Summary
	Derivatives
}

// TCompCorSelector configures a tCompCor regressor extracted from
// high-temporal-variance voxels.
type TCompCorSelector struct {
	Threshold kernel.Threshold
	BySlice   bool
	Summary   kernel.Summary
	Derivatives
}

// ACompCorSelector configures an aCompCor regressor extracted from one or
// more tissue compartments.
type ACompCorSelector struct {
	Tissues              []Tissue `validate:"min=1"`
	ExtractionResolution *Resolution
	ErodeMask            bool
	Summary              kernel.Summary
	Derivatives
}

// GlobalSignalSelector configures a whole-brain summary regressor.
type GlobalSignalSelector struct {
	Summary kernel.Summary
	Derivatives
}

// MotionSelector configures the motion-parameter regressors.
type MotionSelector struct {
	Derivatives
}

// PolyOrtSelector configures polynomial detrending.
type PolyOrtSelector struct {
	Degree int `validate:"gte=0"`
}

// BandpassSelector configures bandpass filtering.
type BandpassSelector struct {
	TopFrequency    float64 `validate:"gt=0"`
	BottomFrequency float64 `validate:"gte=0"`
}

// CensorThreshold is one censoring criterion: a target series plus the
// threshold applied to it.
type CensorThreshold struct {
	Target    ThresholdTarget
	Threshold kernel.Threshold
}

// CensorSelector configures timepoint censoring.
type CensorSelector struct {
	Method                CensorMethod
	PreviousTRsToRemove   int               `validate:"gte=0"`
	SubsequentTRsToRemove int               `validate:"gte=0"`
	Thresholds            []CensorThreshold `validate:"min=1"`
}

// Selection is one complete regressor selection. A nil field means the
// regressor type is not requested. The struct is immutable once built; both
// the canonical codec and the derivation cache only read it.
type Selection struct {
	Name string `validate:"required"`

	GreyMatter         *TissueSelector
	WhiteMatter        *TissueSelector
	CerebrospinalFluid *TissueSelector
	TCompCor           *TCompCorSelector
	ACompCor           *ACompCorSelector
	GlobalSignal       *GlobalSignalSelector
	Motion             *MotionSelector
	PolyOrt            *PolyOrtSelector
	Bandpass           *BandpassSelector
	Censor             *CensorSelector
}

// tissue returns the tissue selector for one of the three tissue regressor
// types, or nil.
func (s *Selection) tissue(r RegressorType) *TissueSelector {
	switch r {
	case RegGreyMatter:
		return s.GreyMatter
	case RegWhiteMatter:
		return s.WhiteMatter
	case RegCerebrospinalFluid:
		return s.CerebrospinalFluid
	}
	return nil
}
