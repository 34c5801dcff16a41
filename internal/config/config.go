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
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Upload     UploadConfig     `yaml:"upload" mapstructure:"upload"`
	Validation ValidationConfig `yaml:"validation" mapstructure:"validation"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the record store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file path
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port            int     `yaml:"port" mapstructure:"port"`
	UploadRateLimit float64 `yaml:"upload_rate_limit" mapstructure:"upload_rate_limit"` // uploads per second
	UploadBurst     int     `yaml:"upload_burst" mapstructure:"upload_burst"`
}

// UploadConfig bounds accepted report files.
type UploadConfig struct {
	MaxFileSizeMB int `yaml:"max_file_size_mb" mapstructure:"max_file_size_mb"`
}

// ValidationConfig holds the rule-engine tolerance knobs. The values mirror
// longstanding azstat practice but carry no documented derivation, so they
// are policy parameters rather than invariants.
type ValidationConfig struct {
	AnomalyThreshold     float64 `yaml:"anomaly_threshold" mapstructure:"anomaly_threshold"`           // relative revenue swing
	SoldOverageRatio     float64 `yaml:"sold_overage_ratio" mapstructure:"sold_overage_ratio"`         // sold qty vs produced
	OvercommitRatio      float64 `yaml:"overcommit_ratio" mapstructure:"overcommit_ratio"`             // sold+stock vs produced
	StockBalanceAbsTol   float64 `yaml:"stock_balance_abs_tol" mapstructure:"stock_balance_abs_tol"`   // row 2 vs 2.2-2.1
	DominanceShare       float64 `yaml:"dominance_share" mapstructure:"dominance_share"`               // single product share of sold value
	ZeroedRowFloor       float64 `yaml:"zeroed_row_floor" mapstructure:"zeroed_row_floor"`             // prior value above which now-zero is flagged
	AnomalyProductsShown int     `yaml:"anomaly_products_shown" mapstructure:"anomaly_products_shown"` // names listed per added/removed message
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
	v.SetEnvPrefix("AZSTAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "data/reports.db")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.upload_rate_limit", 5.0)
	v.SetDefault("server.upload_burst", 10)
	v.SetDefault("upload.max_file_size_mb", 10)
	v.SetDefault("validation.anomaly_threshold", 0.5)
	v.SetDefault("validation.sold_overage_ratio", 1.1)
	v.SetDefault("validation.overcommit_ratio", 1.5)
	v.SetDefault("validation.stock_balance_abs_tol", 1.0)
	v.SetDefault("validation.dominance_share", 0.8)
	v.SetDefault("validation.zeroed_row_floor", 1000.0)
	v.SetDefault("validation.anomaly_products_shown", 3)
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
