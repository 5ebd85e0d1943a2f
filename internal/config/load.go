package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/toyz/routeloader/internal/errors"
)

// FileName is the base name of the config file looked up by the CLI
const FileName = "routeloader"

// EnvPrefix prefixes environment overrides, e.g. ROUTELOADER_GENDIR
const EnvPrefix = "ROUTELOADER"

// NewViper returns a viper instance wired with defaults, the config file
// search path and environment overrides
func NewViper(configFile string) *viper.Viper {
	v := viper.New()
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return v
}

// SetDefaults registers the built-in defaults on v
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyDelimiter, d.Delimiter)
	v.SetDefault(KeyAOT, d.AOT)
	v.SetDefault(KeyModuleSuffix, d.ModuleSuffix)
	v.SetDefault(KeyFactorySuffix, d.FactorySuffix)
	v.SetDefault(KeyLoader, d.Loader)
	v.SetDefault(KeyGenDir, d.GenDir)
	v.SetDefault(KeyInline, d.Inline)
	v.SetDefault(KeyBySymbol, d.BySymbol)
}

// ReadFile reads the config file if there is one. A missing file is not an error.
func ReadFile(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return errors.WrapFileSystemError("read", "config file", err)
	}
	return nil
}

// Load builds a Config from v
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Delimiter:     v.GetString(KeyDelimiter),
		AOT:           v.GetBool(KeyAOT),
		ModuleSuffix:  v.GetString(KeyModuleSuffix),
		FactorySuffix: v.GetString(KeyFactorySuffix),
		Loader:        v.GetString(KeyLoader),
		GenDir:        v.GetString(KeyGenDir),
		Inline:        v.GetBool(KeyInline),
		BySymbol:      v.GetBool(KeyBySymbol),
		ProjectRoot:   v.GetString(KeyProjectRoot),
	}

	if v.IsSet(KeyDebug) {
		debug := v.GetBool(KeyDebug)
		cfg.Debug = &debug
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
