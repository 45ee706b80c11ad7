package config

import (
	"github.com/tauraamui/bgreplace/internal/config"
	"github.com/tauraamui/bgreplace/pkg/configdef"
)

type Resolver interface {
	configdef.Resolver
}

func DefaultResolver() Resolver {
	return config.DefaultResolver()
}

func DefaultValues() configdef.Values {
	return config.DefaultValues()
}
