// Package summarize exposes the timeseries-summary kernel: it reduces the
// voxels under one or more masks to regressor columns.
package summarize

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/vk/denoisegridgo/internal/artifact"
	"github.com/vk/denoisegridgo/internal/kernel"
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/internal/volume"
)

// Name is the registry name of this kernel.
const Name = "summarize"

// MaskSlotPrefix names the mask input slots: 'mask', 'mask2', and so on.
// The prefix keeps multi-mask summaries (several tissues feeding one
// component extraction) on ordinary input wiring.
const MaskSlotPrefix = "mask"

// Module implements the registry.Module interface for this package.
type Module struct{}

// Params configures one summary.
type Params struct {
	Summary kernel.Summary
}

// MaskSlot names the i-th mask input slot, counting from zero.
func MaskSlot(i int) string {
	if i == 0 {
		return MaskSlotPrefix
	}
	return fmt.Sprintf("%s%d", MaskSlotPrefix, i+1)
}

// Factory builds the summary kernel. Inputs: 'functional', a
// *volume.Series, plus one or more mask slots named by MaskSlot.
func Factory(params any) (artifact.BuilderFn, error) {
	p, ok := params.(Params)
	if !ok {
		return nil, fmt.Errorf("expected summarize.Params, received %T", params)
	}
	return func(ctx context.Context, inputs map[string]any) (any, error) {
		functional, err := registry.Input[*volume.Series](inputs, "functional")
		if err != nil {
			return nil, err
		}
		masks, err := maskInputs(inputs)
		if err != nil {
			return nil, err
		}
		return kernel.SummarizeTimeseries(functional, masks, p.Summary)
	}, nil
}

func maskInputs(inputs map[string]any) ([]*volume.Volume, error) {
	var slots []string
	for slot := range inputs {
		if strings.HasPrefix(slot, MaskSlotPrefix) {
			slots = append(slots, slot)
		}
	}
	if len(slots) == 0 {
		return nil, fmt.Errorf("missing input '%s'", MaskSlotPrefix)
	}
	sort.Strings(slots)

	masks := make([]*volume.Volume, 0, len(slots))
	for _, slot := range slots {
		mask, err := registry.Input[*volume.Volume](inputs, slot)
		if err != nil {
			return nil, err
		}
		masks = append(masks, mask)
	}
	return masks, nil
}

// Register registers the factory with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterFactory(Name, Factory)
}
