package app

import (
	"github.com/vk/denoisegridgo/internal/registry"
	"github.com/vk/denoisegridgo/kernels/censor"
	"github.com/vk/denoisegridgo/kernels/erode"
	"github.com/vk/denoisegridgo/kernels/maskmath"
	"github.com/vk/denoisegridgo/kernels/resample"
	"github.com/vk/denoisegridgo/kernels/summarize"
	"github.com/vk/denoisegridgo/kernels/variancemask"
	"github.com/vk/denoisegridgo/kernels/warp"
)

// coreModules is the definitive list of all kernel modules that are compiled
// into the denoisegridgo binary.
var coreModules = []registry.Module{
	&censor.Module{},
	&erode.Module{},
	&maskmath.Module{},
	&resample.Module{},
	&summarize.Module{},
	&variancemask.Module{},
	&warp.Module{},
}
