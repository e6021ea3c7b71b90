// Package config loads doctags configuration from .doctags.yaml, DOCTAGS_*
// environment variables and the variables GitHub Actions sets for a workflow.
//
// Precedence, highest first: values set with Set (flags), environment,
// config file, defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the config file searched for in the working directory.
const FileName = ".doctags.yaml"

var v *viper.Viper

// ConfigWarningWriter receives warnings about invalid values. Tests swap it
// to capture output.
var ConfigWarningWriter io.Writer = os.Stderr

// envBindings maps keys to the environment variables read for them, in
// order. Keys not listed use DOCTAGS_<KEY> with dots replaced by underscores.
var envBindings = map[string][]string{
	KeyToken:      {"DOCTAGS_GITHUB_TOKEN", "GITHUB_TOKEN"},
	KeyRepository: {"DOCTAGS_GITHUB_REPOSITORY", "GITHUB_REPOSITORY"},
	KeyServerURL:  {"DOCTAGS_GITHUB_SERVER_URL", "GITHUB_SERVER_URL"},
	KeyAPIURL:     {"DOCTAGS_GITHUB_API_URL", "GITHUB_API_URL"},
	KeyActor:      {"DOCTAGS_ACTOR", "GITHUB_ACTOR"},
	KeyEventName:  {"GITHUB_EVENT_NAME"},
	KeyEventPath:  {"GITHUB_EVENT_PATH"},
}

// Initialize reads configuration. An empty path searches the working
// directory for FileName; a missing file is not an error then. An explicit
// path must exist.
func Initialize(path string) error {
	v = viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("DOCTAGS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(strings.TrimSuffix(FileName, ".yaml"))
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// ResetForTesting drops all loaded configuration.
func ResetForTesting() {
	v = nil
}

func instance() *viper.Viper {
	if v == nil {
		_ = Initialize("")
	}
	return v
}

// ConfigFileUsed returns the path of the loaded config file, if any.
func ConfigFileUsed() string {
	return instance().ConfigFileUsed()
}

// GetString returns a string value.
func GetString(key string) string {
	return instance().GetString(key)
}

// GetInt returns an int value.
func GetInt(key string) int {
	return instance().GetInt(key)
}

// GetBool returns a bool value.
func GetBool(key string) bool {
	return instance().GetBool(key)
}

// Set overrides a value, typically from a command-line flag.
func Set(key string, value any) {
	instance().Set(key, value)
}

// AllSettings returns every resolved key and value.
func AllSettings() map[string]any {
	return instance().AllSettings()
}
