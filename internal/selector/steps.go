package selector

import (
	"fmt"
	"strings"
)

// StepKind enumerates the mask-derivation stages in their fixed relative
// order: tissue, then resolution, then erosion.
type StepKind int

const (
	StepTissue StepKind = iota
	StepResolution
	StepErosion
)

// String returns the step name.
func (k StepKind) String() string {
	switch k {
	case StepTissue:
		return "tissue"
	case StepResolution:
		return "resolution"
	case StepErosion:
		return "erosion"
	}
	return "unknown"
}

// Step is one mask-derivation stage together with its key fragment.
type Step struct {
	Kind     StepKind
	Fragment string
}

// Descriptor holds the per-stage key fragments of one mask derivation. An
// empty fragment means the stage is not part of the derivation.
type Descriptor struct {
	Tissue     string
	Resolution string
	Erosion    string
}

// Steps returns the stages present in the descriptor, in fixed order.
func (d Descriptor) Steps() []Step {
	var steps []Step
	if d.Tissue != "" {
		steps = append(steps, Step{Kind: StepTissue, Fragment: d.Tissue})
	}
	if d.Resolution != "" {
		steps = append(steps, Step{Kind: StepResolution, Fragment: d.Resolution})
	}
	if d.Erosion != "" {
		steps = append(steps, Step{Kind: StepErosion, Fragment: d.Erosion})
	}
	return steps
}

// Key returns the full derivation key: all present fragments joined with '_'.
// Selections sharing a prefix of steps share the corresponding prefix keys,
// which is what lets the derivation cache reuse their artifacts.
func (d Descriptor) Key() string {
	return PrefixKey(d.Steps(), len(d.Steps()))
}

// PrefixKey joins the fragments of the first n steps with '_'.
func PrefixKey(steps []Step, n int) string {
	fragments := make([]string, 0, n)
	for _, s := range steps[:n] {
		fragments = append(fragments, s.Fragment)
	}
	return strings.Join(fragments, "_")
}

// FunctionalVariancePrefix marks tissue fragments derived from the functional
// variance rather than from an anatomical compartment.
const FunctionalVariancePrefix = "FunctionalVariance"

// resolutionFragment renders the resolution stage fragment.
func resolutionFragment(res *Resolution) string {
	if res == nil {
		return ""
	}
	if res.Functional {
		return "Functional"
	}
	return fmt.Sprintf("%gmm", res.Millimeters)
}

// erosionFragment renders the erosion stage fragment.
func erosionFragment(erode bool) string {
	if erode {
		return "Eroded"
	}
	return ""
}

// Descriptor returns the mask-derivation descriptor for a tissue regressor.
func (t *TissueSelector) Descriptor(tissue Tissue) Descriptor {
	return Descriptor{
		Tissue:     tissue.String(),
		Resolution: resolutionFragment(t.ExtractionResolution),
		Erosion:    erosionFragment(t.ErodeMask),
	}
}

// Descriptor returns the mask-derivation descriptor for a tCompCor
// regressor. The threshold and by-slice parameters are folded into the
// tissue fragment so distinct tCompCor configurations never collide on a
// cache key.
func (t *TCompCorSelector) Descriptor() Descriptor {
	fragment := FunctionalVariancePrefix
	if t.BySlice {
		fragment += "S"
	}
	fragment += thresholdPiece(t.Threshold, "%.2f")
	return Descriptor{Tissue: fragment}
}

// Descriptors returns one mask-derivation descriptor per requested tissue of
// an aCompCor regressor.
func (a *ACompCorSelector) Descriptors() []Descriptor {
	descriptors := make([]Descriptor, len(a.Tissues))
	for i, tissue := range a.Tissues {
		descriptors[i] = Descriptor{
			Tissue:     tissue.String(),
			Resolution: resolutionFragment(a.ExtractionResolution),
			Erosion:    erosionFragment(a.ErodeMask),
		}
	}
	return descriptors
}
