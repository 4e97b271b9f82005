package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/denoisegridgo/internal/cfgerror"
	"github.com/vk/denoisegridgo/internal/kernel"
)

func TestValidateAcceptsCompleteSelection(t *testing.T) {
	sel := &Selection{
		Name: "ok",
		WhiteMatter: &TissueSelector{
			ExtractionResolution: &Resolution{Millimeters: 2},
			Summary:              kernel.Summary{Method: kernel.SummaryPC, Components: 5},
		},
		Motion: &MotionSelector{},
		Censor: &CensorSelector{
			Method: CensorKill,
			Thresholds: []CensorThreshold{
				{Target: TargetFD, Threshold: kernel.AbsoluteThreshold(0.5)},
			},
		},
	}
	require.NoError(t, sel.Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name string
		sel  *Selection
	}{
		{
			name: "missing name",
			sel:  &Selection{Motion: &MotionSelector{}},
		},
		{
			name: "pc summary without components",
			sel: &Selection{
				Name:        "s",
				WhiteMatter: &TissueSelector{Summary: kernel.Summary{Method: kernel.SummaryPC}},
			},
		},
		{
			name: "tcompcor without threshold",
			sel: &Selection{
				Name:     "s",
				TCompCor: &TCompCorSelector{Summary: kernel.Summary{Method: kernel.SummaryMean}},
			},
		},
		{
			name: "acompcor without tissues",
			sel: &Selection{
				Name:     "s",
				ACompCor: &ACompCorSelector{Summary: kernel.Summary{Method: kernel.SummaryPC, Components: 5}},
			},
		},
		{
			name: "bandpass bottom above top",
			sel: &Selection{
				Name:     "s",
				Bandpass: &BandpassSelector{TopFrequency: 0.01, BottomFrequency: 0.1},
			},
		},
		{
			name: "censor without thresholds",
			sel: &Selection{
				Name:   "s",
				Censor: &CensorSelector{Method: CensorKill},
			},
		},
		{
			name: "censor percentile threshold",
			sel: &Selection{
				Name: "s",
				Censor: &CensorSelector{
					Method: CensorKill,
					Thresholds: []CensorThreshold{
						{Target: TargetFD, Threshold: kernel.Threshold{Kind: kernel.ThresholdPercentile, Value: 5, Raw: "5PCT"}},
					},
				},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sel.Validate()
			require.Error(t, err)
			assert.True(t, cfgerror.Is(err))
		})
	}
}
