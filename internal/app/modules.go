package app

import (
	"github.com/vk/jigsaw/internal/registry"
	"github.com/vk/jigsaw/modules/arith"
	"github.com/vk/jigsaw/modules/env_vars"
	"github.com/vk/jigsaw/modules/loss"
	"github.com/vk/jigsaw/modules/print"
)

// coreModules is the definitive list of all piece modules compiled into the
// jigsaw binary.
var coreModules = []registry.Module{
	&arith.Module{},
	&env_vars.Module{},
	&loss.Module{},
	&print.Module{},
}
