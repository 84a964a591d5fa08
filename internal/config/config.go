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
	OCR     OCRConfig     `yaml:"ocr" mapstructure:"ocr"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Pricing PricingConfig `yaml:"pricing" mapstructure:"pricing"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// OCRConfig configures image text extraction.
type OCRConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	TesseractPath string `yaml:"tesseract_path" mapstructure:"tesseract_path"`
}

// ScrapeConfig configures the marketplace scraper.
type ScrapeConfig struct {
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Retries       int    `yaml:"retries" mapstructure:"retries"`
	MaxResults    int    `yaml:"max_results" mapstructure:"max_results"`
	DelaySecs     int    `yaml:"delay_secs" mapstructure:"delay_secs"`
	CacheTTLHours int    `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
	UserAgent     string `yaml:"user_agent" mapstructure:"user_agent"`

	// Circuit breaker settings for the scrape endpoint.
	BreakerFailures  int `yaml:"breaker_failures" mapstructure:"breaker_failures"`
	BreakerResetSecs int `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// PricingConfig configures price resolution.
type PricingConfig struct {
	MarkupPercent         float64 `yaml:"markup_percent" mapstructure:"markup_percent"`
	ResearchMarkupPercent float64 `yaml:"research_markup_percent" mapstructure:"research_markup_percent"`
	FallbackValue         float64 `yaml:"fallback_value" mapstructure:"fallback_value"`
	WriteBack             bool    `yaml:"write_back" mapstructure:"write_back"`
}

// BatchConfig configures batch image processing.
type BatchConfig struct {
	OCRConcurrency int `yaml:"ocr_concurrency" mapstructure:"ocr_concurrency"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("CARDINTEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "cardintel.db")
	v.SetDefault("ocr.provider", "tesseract")
	v.SetDefault("ocr.tesseract_path", "tesseract")
	v.SetDefault("scrape.timeout_secs", 30)
	v.SetDefault("scrape.retries", 3)
	v.SetDefault("scrape.max_results", 5)
	v.SetDefault("scrape.delay_secs", 2)
	v.SetDefault("scrape.cache_ttl_hours", 24)
	v.SetDefault("scrape.breaker_failures", 5)
	v.SetDefault("scrape.breaker_reset_secs", 60)
	v.SetDefault("scrape.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	v.SetDefault("pricing.markup_percent", 18.0)
	v.SetDefault("pricing.research_markup_percent", 15.0)
	v.SetDefault("pricing.fallback_value", 1.0)
	v.SetDefault("pricing.write_back", true)
	v.SetDefault("batch.ocr_concurrency", 4)
	v.SetDefault("server.port", 8080)
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

// Validate checks that the loaded configuration is internally consistent.
func (c *Config) Validate() error {
	var missing []string

	switch c.Store.Driver {
	case "sqlite", "postgres", "":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
		missing = append(missing, "store.database_url")
	}

	switch c.OCR.Provider {
	case "tesseract", "sidecar", "":
	default:
		return eris.Errorf("config: unknown ocr provider %q", c.OCR.Provider)
	}

	if c.Pricing.MarkupPercent < 0 {
		return eris.New("config: pricing.markup_percent must be >= 0")
	}
	if c.Pricing.FallbackValue < 0 {
		return eris.New("config: pricing.fallback_value must be >= 0")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return eris.Errorf("config: invalid server port %d", c.Server.Port)
	}

	if len(missing) > 0 {
		return eris.Errorf("config: missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
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
