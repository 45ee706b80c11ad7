package config

import (
	"github.com/tauraamui/bgreplace/internal/config"
	"github.com/tauraamui/bgreplace/pkg/configdef"
)

type Destroyer interface {
	configdef.Destroyer
}

func DefaultDestroyer() Destroyer {
	return config.DefaultDestroyer()
}
