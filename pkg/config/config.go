package config

import (
	"github.com/tauraamui/bgreplace/internal/config"
	"github.com/tauraamui/bgreplace/pkg/configdef"
)

type CreateResolver interface {
	configdef.CreateResolver
}

func DefaultCreateResolver() CreateResolver {
	return config.DefaultCreateResolver()
}
