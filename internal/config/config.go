package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	pkerrors "github.com/thoreinstein/packidx/internal/errors"
	"github.com/thoreinstein/packidx/internal/filter"
	"github.com/thoreinstein/packidx/internal/paths"
	"github.com/thoreinstein/packidx/internal/vendor"
)

// EnvPrefix prefixes every environment override, e.g. PACKIDX_FILTER_PREDICATE.
const EnvPrefix = "PACKIDX"

// EnvConfigDir names a directory searched for config.yaml before the XDG one.
const EnvConfigDir = "PACKIDX_CONFIG_DIR"

// CurrentVersion is the only config schema version understood.
const CurrentVersion = 1

// Config represents the top-level configuration structure.
type Config struct {
	Version       int               `mapstructure:"version" yaml:"version"`
	CatalogPaths  []string          `mapstructure:"catalog_paths" yaml:"catalog_paths"`
	Filter        filter.Config     `mapstructure:"filter" yaml:"filter"`
	VendorAliases map[string]string `mapstructure:"vendor_aliases" yaml:"vendor_aliases,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Version:      CurrentVersion,
		CatalogPaths: []string{paths.CatalogDir()},
	}
}

// Init resets Viper and installs search paths, environment binding and
// defaults. Call it once before Load; calling it again discards any file
// chosen by a previous Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		viper.AddConfigPath(dir)
	}
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	def := Default()
	viper.SetDefault("version", def.Version)
	viper.SetDefault("catalog_paths", def.CatalogPaths)
	viper.SetDefault("filter.all_latest", false)
	viper.SetDefault("filter.excluded", []string{})
	viper.SetDefault("filter.use_latest", []string{})
	viper.SetDefault("filter.predicate", "")
	viper.SetDefault("vendor_aliases", map[string]string{})
}

// Load reads and validates the configuration. An explicit path must exist;
// with an empty path the search locations are tried and defaults are used
// when nothing is found.
func Load(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.Wrapf(pkerrors.ErrNotFound, "config file %s", path)
		}
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	switch errs := Validate(&cfg); len(errs) {
	case 0:
	case 1:
		return nil, errors.Wrap(errs[0], "validating config")
	default:
		return nil, errors.Wrap(errors.Join(errs...), "validating config")
	}
	return &cfg, nil
}

// FileUsed returns the config file Load read, or "" if defaults were used.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Vendors builds the vendor normalizer with the configured aliases.
func (c *Config) Vendors() *vendor.Table {
	return vendor.NewTable(c.VendorAliases)
}

// CatalogDirs returns the catalog paths with a leading "~" expanded.
func (c *Config) CatalogDirs() ([]string, error) {
	out := make([]string, 0, len(c.CatalogPaths))
	for _, p := range c.CatalogPaths {
		expanded, err := paths.ExpandHome(p)
		if err != nil {
			return nil, errors.Wrapf(err, "catalog path %s", p)
		}
		out = append(out, expanded)
	}
	return out, nil
}
