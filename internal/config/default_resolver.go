package config

import (
	"github.com/tauraamui/bgreplace/pkg/configdef"
)

func DefaultResolver() configdef.Resolver {
	return defaultResolver{}
}

type defaultResolver struct{}

func (d defaultResolver) Resolve() (configdef.Values, error) {
	return load()
}

func DefaultCreateResolver() configdef.CreateResolver {
	return defaultCreateResolver{}
}

type defaultCreateResolver struct {
	defaultCreator
	defaultResolver
}
