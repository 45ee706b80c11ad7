package config

import (
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/tauraamui/bgreplace/pkg/configdef"
	"github.com/tauraamui/bgreplace/pkg/log"
)

const (
	vendorName     = "tacusci"
	appName        = "bgreplace"
	configFileName = "config.json"

	configPathEnvKey   = "BGREPLACE_CONFIG"
	videoBackendEnvKey = "BGREPLACE_VIDEO_BACKEND"
	backgroundsEnvKey  = "BGREPLACE_BACKGROUNDS"
)

var fs afero.Fs = afero.NewOsFs()

// applyEnvOverrides lets the environment win over the file for the
// handful of values worth switching per shell.
func applyEnvOverrides(values *configdef.Values) {
	if backend := strings.TrimSpace(os.Getenv(videoBackendEnvKey)); len(backend) > 0 {
		log.Debug("Video backend overridden by environment: %s", backend)
		values.VideoBackend = backend
	}
	if dir := strings.TrimSpace(os.Getenv(backgroundsEnvKey)); len(dir) > 0 {
		log.Debug("Background directory overridden by environment: %s", dir)
		values.BackgroundDir = dir
	}
}
