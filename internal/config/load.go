package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/tauraamui/bgreplace/pkg/configdef"
	"github.com/tauraamui/bgreplace/pkg/log"
	"github.com/tauraamui/xerror"
)

func load() (configdef.Values, error) {
	configPath, err := resolveConfigPath()
	if err != nil {
		return configdef.Values{}, err
	}

	log.Info("Resolved config file location: %s", configPath)
	file, err := readConfigFile(configPath)
	if err != nil {
		return configdef.Values{}, err
	}

	// values absent from the file keep their defaults
	values := defaultValues()
	if err := unmarshal(file, &values); err != nil {
		return configdef.Values{}, err
	}

	applyEnvOverrides(&values)

	if err = values.RunValidate(); err != nil {
		return configdef.Values{}, xerror.Errorf("%w: %v", configdef.ErrInvalidConfig, err)
	}

	return values, nil
}

var readConfigFile = func(path string) ([]byte, error) {
	return afero.ReadFile(fs, path)
}

func unmarshal(content []byte, values *configdef.Values) error {
	err := json.Unmarshal(content, values)
	if err != nil {
		return errors.Errorf("parsing configuration error: %v", err)
	}
	return nil
}

func resolveConfigPath() (string, error) {
	configPath := os.Getenv(configPathEnvKey)
	if len(configPath) > 0 {
		return configPath, nil
	}

	configParentDir, err := userConfigDir()
	if err != nil {
		return "", xerror.Errorf("unable to resolve %s location: %w", configFileName, err)
	}

	return filepath.Join(
		configParentDir,
		vendorName,
		appName,
		configFileName), nil
}

var userConfigDir = func() (string, error) {
	return os.UserConfigDir()
}
