package config

import (
	"github.com/tauraamui/bgreplace/internal/config"
	"github.com/tauraamui/bgreplace/pkg/configdef"
)

type Creator interface {
	configdef.Creator
}

func DefaultCreator() Creator {
	return config.DefaultCreator()
}
