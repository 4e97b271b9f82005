package hcl_adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/selector"
)

func writeHCL(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTranslatesFullSelection(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "sel.hcl", `
selection "conservative" {
  white_matter {
    extraction_resolution = 2
    erode_mask            = true
    summary               = "Mean"
  }

  tcompcor {
    threshold = "1.5SD"
    by_slice  = true
    summary   = "Mean"
  }

  acompcor {
    tissues               = ["WhiteMatter", "CerebrospinalFluid"]
    extraction_resolution = 2
    summary = {
      method     = "PC"
      components = 5
    }
  }

  global_signal {
    summary         = "Mean"
    include_squared = true
  }

  motion {
    include_delayed = true
  }

  poly_ort {
    degree = 2
  }

  bandpass {
    top_frequency    = 0.1
    bottom_frequency = 0.01
  }

  censor {
    method                   = "SpikeRegression"
    previous_trs_to_remove   = 1
    subsequent_trs_to_remove = 2

    threshold "FD" {
      value = 0.5
    }
    threshold "DVARS" {
      value = "1.5SD"
    }
  }
}

inputs {
  functional        = "func.txt"
  brain_mask        = "mask.txt"
  white_matter      = "wm.txt"
  anatomical        = { "2mm" = "anat2.txt" }
  motion_parameters = "motion.txt"
  fd                = "fd.txt"
  dvars             = "dvars.txt"

  transform {
    kind     = "linear"
    matrices = ["xfm.mat"]
  }
}
`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Selections, 1)

	sel := model.Selections[0]
	assert.Equal(t, "conservative", sel.Name)

	require.NotNil(t, sel.WhiteMatter)
	require.NotNil(t, sel.WhiteMatter.ExtractionResolution)
	assert.Equal(t, 2.0, sel.WhiteMatter.ExtractionResolution.Millimeters)
	assert.True(t, sel.WhiteMatter.ErodeMask)
	assert.Equal(t, kernel.SummaryMean, sel.WhiteMatter.Summary.Method)

	require.NotNil(t, sel.TCompCor)
	assert.Equal(t, kernel.ThresholdStdDev, sel.TCompCor.Threshold.Kind)
	assert.Equal(t, "1.5SD", sel.TCompCor.Threshold.Raw)
	assert.True(t, sel.TCompCor.BySlice)

	require.NotNil(t, sel.ACompCor)
	assert.Equal(t, []selector.Tissue{selector.TissueWhiteMatter, selector.TissueCerebrospinalFluid}, sel.ACompCor.Tissues)
	assert.Equal(t, kernel.SummaryPC, sel.ACompCor.Summary.Method)
	assert.Equal(t, 5, sel.ACompCor.Summary.Components)

	require.NotNil(t, sel.GlobalSignal)
	assert.True(t, sel.GlobalSignal.Derivatives.IncludeSquared)

	require.NotNil(t, sel.Motion)
	assert.True(t, sel.Motion.Derivatives.IncludeDelayed)

	require.NotNil(t, sel.PolyOrt)
	assert.Equal(t, 2, sel.PolyOrt.Degree)

	require.NotNil(t, sel.Bandpass)
	assert.Equal(t, 0.1, sel.Bandpass.TopFrequency)
	assert.Equal(t, 0.01, sel.Bandpass.BottomFrequency)

	require.NotNil(t, sel.Censor)
	assert.Equal(t, selector.CensorSpikeRegression, sel.Censor.Method)
	assert.Equal(t, 1, sel.Censor.PreviousTRsToRemove)
	assert.Equal(t, 2, sel.Censor.SubsequentTRsToRemove)
	require.Len(t, sel.Censor.Thresholds, 2)
	assert.Equal(t, selector.TargetFD, sel.Censor.Thresholds[0].Target)
	assert.Equal(t, kernel.ThresholdAbsolute, sel.Censor.Thresholds[0].Threshold.Kind)
	assert.Equal(t, 0.5, sel.Censor.Thresholds[0].Threshold.Value)
	assert.Equal(t, selector.TargetDVARS, sel.Censor.Thresholds[1].Target)
	assert.Equal(t, "1.5SD", sel.Censor.Thresholds[1].Threshold.Raw)

	require.NotNil(t, model.Inputs)
	assert.Equal(t, "func.txt", model.Inputs.Functional)
	assert.Equal(t, map[string]string{"2mm": "anat2.txt"}, model.Inputs.Anatomical)
	require.NotNil(t, model.Inputs.Transform)
	assert.Equal(t, "linear", model.Inputs.Transform.Kind)
	assert.Equal(t, []string{"xfm.mat"}, model.Inputs.Transform.Matrices)
}

func TestLoadSkipsUnknownBlocks(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "sel.hcl", `
selection "minimal" {
  motion {}

  some_future_regressor {
    knob = 7
  }
}

some_future_toplevel {
  setting = true
}
`)

	model, err := NewLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, model.Selections, 1)
	assert.NotNil(t, model.Selections[0].Motion)
}

func TestLoadRejectsDuplicateSelectionNames(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "a.hcl", `
selection "dup" {
  motion {}
}
`)
	writeHCL(t, dir, "b.hcl", `
selection "dup" {
  motion {}
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already defined")
}

func TestLoadRejectsConflictingInputs(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "a.hcl", `
inputs {
  functional = "a.txt"
}
`)
	writeHCL(t, dir, "b.hcl", `
inputs {
  functional = "b.txt"
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inputs block")
}

func TestLoadRejectsInvalidSelection(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "sel.hcl", `
selection "bad" {
  bandpass {
    top_frequency    = 0.01
    bottom_frequency = 0.1
  }
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bottom frequency")
}

func TestLoadRejectsBadThresholdSpelling(t *testing.T) {
	dir := t.TempDir()
	writeHCL(t, dir, "sel.hcl", `
selection "bad" {
  tcompcor {
    threshold = "very high"
    summary   = "Mean"
  }
}
`)

	_, err := NewLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "very high")
}

func TestLoadIgnoresMissingPaths(t *testing.T) {
	model, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, model.Selections)
	assert.Nil(t, model.Inputs)
}
