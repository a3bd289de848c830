package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment-variable prefix for config overrides
// (e.g. LGREP_CHUNKSIZE).
const EnvPrefix = "LGREP"

// Loader reads the user configuration file from one directory.
type Loader struct {
	dir string
}

// NewLoader builds a Loader that looks for config.json/.yml/.yaml in dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads the config file if present, falling back to Default() for
// any key it omits. A missing file is not an error. List-valued keys may
// be supplied as a single comma-separated string via an environment
// variable override, with each element trimmed; within the file itself
// they are native YAML/JSON arrays.
func (l *Loader) Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(l.dir)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	def := Default()
	v.SetDefault("model", def.Model)
	v.SetDefault("chunkSize", def.ChunkSize)
	v.SetDefault("chunkOverlap", def.ChunkOverlap)
	v.SetDefault("maxFileSize", def.MaxFileSize)
	v.SetDefault("excludes", def.Excludes)
	v.SetDefault("secretExcludes", def.SecretExcludes)
	v.SetDefault("contextFileLimit", def.ContextFileLimit)
	v.SetDefault("contextMaxTokens", def.ContextMaxTokens)
	v.SetDefault("contextGraphDepth", def.ContextGraphDepth)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	cfg := &Config{}
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(","),
		trimSliceElementsHook,
	)
	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// trimSliceElementsHook trims whitespace from each element of a
// string-slice-valued key, so `LGREP_EXCLUDES="a, b, c"` behaves the same
// as a YAML list with the same entries.
func trimSliceElementsHook(from, to reflect.Kind, data any) (any, error) {
	if from != reflect.Slice || to != reflect.Slice {
		return data, nil
	}
	items, ok := data.([]string)
	if !ok {
		return data, nil
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.TrimSpace(s)
	}
	return out, nil
}
