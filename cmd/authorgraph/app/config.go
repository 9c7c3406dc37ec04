package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/agentstation/authorgraph/pkg/constants"
	"github.com/agentstation/authorgraph/pkg/errors"
)

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool   `json:"verbose" yaml:"verbose"`
	Quiet   bool   `json:"quiet" yaml:"quiet"`
	NoColor bool   `json:"no_color" yaml:"no_color"`
	Format  string `json:"format" yaml:"format"`

	// Config file
	ConfigFile string `json:"config_file" yaml:"config_file"`

	// Engine configuration
	GraphPath      string        `json:"graph" yaml:"graph"`
	SourcesDir     string        `json:"sources_dir" yaml:"sources_dir"`
	Sources        []string      `json:"sources" yaml:"sources"`
	Concurrency    int           `json:"concurrency" yaml:"concurrency"`
	CacheCapacity  int           `json:"cache_capacity" yaml:"cache_capacity"`
	RateLimit      float64       `json:"rate_limit" yaml:"rate_limit"`
	RateBurst      int           `json:"rate_burst" yaml:"rate_burst"`
	SourceCacheTTL time.Duration `json:"source_cache_ttl" yaml:"source_cache_ttl"`
	DryRun         bool          `json:"dry_run" yaml:"dry_run"`

	// Logging configuration
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"`
	LogOutput string `json:"log_output" yaml:"log_output"`
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (bound after cobra parses them)
// 2. Environment variables (AUTHORGRAPH_*)
// 3. .env files
// 4. Config file (~/.authorgraph.yaml)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	v := newViper()
	return readConfig(v, configFile)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		GraphPath:      constants.DefaultGraphPath,
		SourcesDir:     constants.DefaultSourcesPath,
		Sources:        []string{},
		Concurrency:    constants.MaxConcurrentPublications,
		CacheCapacity:  constants.IdentifierCacheCapacity,
		RateLimit:      constants.DefaultRateLimit,
		RateBurst:      constants.BurstSize,
		SourceCacheTTL: constants.SourceCacheTTL,
		LogFormat:      "auto",
		LogOutput:      "stderr",
	}
}

// newViper creates a viper instance with env binding and defaults.
func newViper() *viper.Viper {
	// Load .env files first (before env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())
	return v
}

// setDefaults makes c the lowest-precedence layer of v.
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("verbose", c.Verbose)
	v.SetDefault("quiet", c.Quiet)
	v.SetDefault("no_color", c.NoColor)
	v.SetDefault("format", c.Format)
	v.SetDefault("graph", c.GraphPath)
	v.SetDefault("sources_dir", c.SourcesDir)
	v.SetDefault("sources", c.Sources)
	v.SetDefault("concurrency", c.Concurrency)
	v.SetDefault("cache_capacity", c.CacheCapacity)
	v.SetDefault("rate_limit", c.RateLimit)
	v.SetDefault("rate_burst", c.RateBurst)
	v.SetDefault("source_cache_ttl", c.SourceCacheTTL)
	v.SetDefault("dry_run", c.DryRun)
	v.SetDefault("log_level", c.LogLevel)
	v.SetDefault("log_format", c.LogFormat)
	v.SetDefault("log_output", c.LogOutput)
}

func readConfig(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		// Search for config in standard locations
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(constants.DefaultConfigFile)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// An explicit file must exist; the default one is optional
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		GraphPath:      v.GetString("graph"),
		SourcesDir:     v.GetString("sources_dir"),
		Sources:        v.GetStringSlice("sources"),
		Concurrency:    v.GetInt("concurrency"),
		CacheCapacity:  v.GetInt("cache_capacity"),
		RateLimit:      v.GetFloat64("rate_limit"),
		RateBurst:      v.GetInt("rate_burst"),
		SourceCacheTTL: v.GetDuration("source_cache_ttl"),
		DryRun:         v.GetBool("dry_run"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks numeric settings.
func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return errors.NewConfigError("config", "concurrency must be positive", nil)
	}
	if c.CacheCapacity <= 0 {
		return errors.NewConfigError("config", "cache_capacity must be positive", nil)
	}
	if c.RateLimit < 0 {
		return errors.NewConfigError("config", "rate_limit cannot be negative", nil)
	}
	if c.GraphPath == "" {
		return errors.NewConfigError("config", "graph path is required", nil)
	}
	return nil
}

// GraphFile returns the graph snapshot path, failing when it does not exist.
func (c *Config) GraphFile() (string, error) {
	path := filepath.Clean(c.GraphPath)
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.NewConfigError("graph", "graph snapshot not found at "+path, err)
	}
	if info.IsDir() {
		return "", errors.NewConfigError("graph", path+" is a directory", nil)
	}
	return path, nil
}

// LocalSourcesDir returns the local fixture directory. A missing default
// directory disables local sources; a missing configured one is an error.
func (c *Config) LocalSourcesDir() (string, error) {
	if c.SourcesDir == "" {
		return "", nil
	}
	if _, err := os.Stat(c.SourcesDir); err != nil {
		if c.SourcesDir == constants.DefaultSourcesPath && os.IsNotExist(err) {
			return "", nil
		}
		return "", errors.NewConfigError("sources", "sources directory not found at "+c.SourcesDir, err)
	}
	return c.SourcesDir, nil
}

// bindFlags binds every flag in flags to the viper key of the same name,
// with dashes mapped to underscores.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil || f.Name == "config" {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = errors.NewConfigError("config", "cannot bind flag "+f.Name, err)
		}
	})
	return bindErr
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}
