package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Merge   MergeConfig   `yaml:"merge" mapstructure:"merge"`
	Suggest SuggestConfig `yaml:"suggest" mapstructure:"suggest"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// MergeConfig configures clustering and merge resolution.
type MergeConfig struct {
	// SourcePriority ranks source names, highest priority first. Sources not
	// listed rank below all listed ones.
	SourcePriority []string `yaml:"source_priority" mapstructure:"source_priority"`
	// DefaultRegion is the ISO 3166-1 alpha-2 region used to expand national
	// trunk prefixes in phone numbers.
	DefaultRegion string `yaml:"default_region" mapstructure:"default_region"`
	// PhotoCeilingBytes is the largest encoded photo carried on a canonical
	// contact before the downsampling ladder runs.
	PhotoCeilingBytes int `yaml:"photo_ceiling_bytes" mapstructure:"photo_ceiling_bytes"`
}

// SuggestConfig configures the optional AI name-suggestion pass.
type SuggestConfig struct {
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	Model          string  `yaml:"model" mapstructure:"model"`
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	CallsPerSecond float64 `yaml:"calls_per_second" mapstructure:"calls_per_second"`
}

// BatchConfig configures pipeline concurrency.
type BatchConfig struct {
	MaxConcurrentRecords int `yaml:"max_concurrent_records" mapstructure:"max_concurrent_records"`
	MaxConcurrentMerges  int `yaml:"max_concurrent_merges" mapstructure:"max_concurrent_merges"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CONTACTPLUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "contactplus.db")
	v.SetDefault("merge.default_region", "AT")
	v.SetDefault("merge.photo_ceiling_bytes", 256*1024)
	v.SetDefault("suggest.enabled", false)
	v.SetDefault("suggest.model", "claude-haiku-4-5-20251001")
	v.SetDefault("suggest.timeout_secs", 10)
	v.SetDefault("suggest.calls_per_second", 2.0)
	v.SetDefault("batch.max_concurrent_records", 8)
	v.SetDefault("batch.max_concurrent_merges", 8)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
