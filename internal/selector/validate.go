package selector

import (
	"github.com/go-playground/validator/v10"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/kernel"
)

var validate = validator.New()

// Validate checks a selection once, before any derivation begins. It combines
// struct-tag validation with the cross-field rules the tags cannot express.
// All violations are configuration errors.
func (s *Selection) Validate() error {
	if err := validate.Struct(s); err != nil {
		return cfgerror.Newf("invalid selection %q: %v", s.Name, err)
	}

	for _, r := range RegressorOrder {
		if t := s.tissue(r); t != nil {
			if err := validateSummary(t.Summary); err != nil {
				return cfgerror.Newf("%s in selection %q: %v", r, s.Name, err)
			}
		}
	}
	if t := s.TCompCor; t != nil {
		if t.Threshold.Raw == "" && t.Threshold.Value == 0 {
			return cfgerror.Newf("tCompCor in selection %q requires a threshold", s.Name)
		}
		if err := validateSummary(t.Summary); err != nil {
			return cfgerror.Newf("tCompCor in selection %q: %v", s.Name, err)
		}
	}
	if a := s.ACompCor; a != nil {
		if err := validateSummary(a.Summary); err != nil {
			return cfgerror.Newf("aCompCor in selection %q: %v", s.Name, err)
		}
	}
	if g := s.GlobalSignal; g != nil {
		if err := validateSummary(g.Summary); err != nil {
			return cfgerror.Newf("GlobalSignal in selection %q: %v", s.Name, err)
		}
	}
	if b := s.Bandpass; b != nil && b.BottomFrequency >= b.TopFrequency {
		return cfgerror.Newf(
			"Bandpass in selection %q: bottom frequency %v must be below top frequency %v",
			s.Name, b.BottomFrequency, b.TopFrequency)
	}
	if c := s.Censor; c != nil {
		for _, ct := range c.Thresholds {
			if ct.Threshold.Kind == kernel.ThresholdPercentile {
				return cfgerror.Newf(
					"Censor in selection %q: percentile thresholds are not valid for %s censoring",
					s.Name, ct.Target.Name())
			}
		}
	}
	return nil
}

func validateSummary(s kernel.Summary) error {
	if s.Method == kernel.SummaryPC && s.Components < 1 {
		return cfgerror.Newf("PC summary requires at least one component, received %d", s.Components)
	}
	return nil
}
