package selector

import (
	"testing"

	"github.com/vk/denoisegridgo/internal/kernel"
	"pgregory.net/rapid"
)

func genSummary(t *rapid.T) kernel.Summary {
	method := rapid.SampledFrom([]kernel.SummaryMethod{
		kernel.SummaryMean,
		kernel.SummaryNormMean,
		kernel.SummaryDetrendMean,
		kernel.SummaryDetrendNormMean,
		kernel.SummaryPC,
	}).Draw(t, "method")
	summary := kernel.Summary{Method: method}
	if method == kernel.SummaryPC {
		summary.Components = rapid.IntRange(1, 9).Draw(t, "components")
	}
	return summary
}

func genDerivatives(t *rapid.T) Derivatives {
	return Derivatives{
		IncludeSquared:        rapid.Bool().Draw(t, "squared"),
		IncludeDelayed:        rapid.Bool().Draw(t, "delayed"),
		IncludeDelayedSquared: rapid.Bool().Draw(t, "delayed_squared"),
	}
}

func genResolution(t *rapid.T) *Resolution {
	switch rapid.IntRange(0, 2).Draw(t, "resolution_kind") {
	case 0:
		return nil
	case 1:
		return &Resolution{Functional: true}
	default:
		return &Resolution{Millimeters: rapid.Float64Range(1, 4).Draw(t, "millimeters")}
	}
}

func genSelection(t *rapid.T) *Selection {
	sel := &Selection{Name: "generated"}
	if rapid.Bool().Draw(t, "has_wm") {
		sel.WhiteMatter = &TissueSelector{
			ExtractionResolution: genResolution(t),
			ErodeMask:            rapid.Bool().Draw(t, "wm_erode"),
			Summary:              genSummary(t),
			Derivatives:          genDerivatives(t),
		}
	}
	if rapid.Bool().Draw(t, "has_motion") {
		sel.Motion = &MotionSelector{Derivatives: genDerivatives(t)}
	}
	if rapid.Bool().Draw(t, "has_censor") {
		thresholds := []CensorThreshold{
			{Target: TargetFD, Threshold: kernel.AbsoluteThreshold(rapid.Float64Range(0.1, 2).Draw(t, "fd"))},
			{Target: TargetDVARS, Threshold: kernel.AbsoluteThreshold(rapid.Float64Range(0.1, 2).Draw(t, "dvars"))},
		}
		sel.Censor = &CensorSelector{
			Method:     rapid.SampledFrom([]CensorMethod{CensorKill, CensorZero, CensorInterpolate, CensorSpikeRegression}).Draw(t, "method"),
			Thresholds: thresholds,
		}
	}
	return sel
}

func TestCanonicalIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sel := genSelection(t)
		first := sel.Canonical()
		second := sel.Canonical()
		if first != second {
			t.Fatalf("canonicalization is not idempotent: %q vs %q", first, second)
		}
	})
}

func TestCanonicalIgnoresThresholdOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sel := genSelection(t)
		if sel.Censor == nil {
			t.Skip("no censor block generated")
		}
		permuted := *sel
		censor := *sel.Censor
		censor.Thresholds = []CensorThreshold{censor.Thresholds[1], censor.Thresholds[0]}
		permuted.Censor = &censor

		if sel.Canonical() != permuted.Canonical() {
			t.Fatalf("threshold order changed the identity: %q vs %q", sel.Canonical(), permuted.Canonical())
		}
	})
}
