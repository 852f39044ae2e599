// Package config loads the indexer configuration from a YAML file plus
// environment overrides, and builds the process logger.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the full indexer configuration. It is loaded once at
// startup and treated as immutable for the process lifetime.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Ethereum   EthereumConfig   `mapstructure:"ethereum"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Shutdown   ShutdownConfig   `mapstructure:"shutdown"`
}

// ServerConfig contains HTTP read-API server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabaseConfig contains PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// EthereumConfig contains chain RPC and scan-window settings.
type EthereumConfig struct {
	RPCURL             string        `mapstructure:"rpc_url" validate:"required,url"`
	Confirmations      uint64        `mapstructure:"confirmations"`
	BackfillBlocks     uint64        `mapstructure:"backfill_blocks"`
	LookbackBlocks     uint64        `mapstructure:"lookback_blocks"`
	TokenDecimals      int32         `mapstructure:"token_decimals"`
	RPCPause           time.Duration `mapstructure:"rpc_pause"`
	RetryDelay         time.Duration `mapstructure:"retry_delay"`
	MaxRetryDelay      time.Duration `mapstructure:"max_retry_delay"`
	BlockNumberTimeout time.Duration `mapstructure:"block_number_timeout"`
	GetLogsTimeout     time.Duration `mapstructure:"get_logs_timeout"`
}

// WatchConfig points at the watchlist file holding exchange wallets and
// tracked token contracts.
type WatchConfig struct {
	WatchlistPath string `mapstructure:"watchlist_path" validate:"required"`
}

// MonitoringConfig contains metrics settings.
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// ShutdownConfig contains graceful shutdown settings.
type ShutdownConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "15s")
	viper.SetDefault("server.idle_timeout", "60s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "netflow")

	// Ethereum defaults
	viper.SetDefault("ethereum.confirmations", 2)
	viper.SetDefault("ethereum.backfill_blocks", 5000)
	viper.SetDefault("ethereum.lookback_blocks", 100)
	viper.SetDefault("ethereum.token_decimals", 18)
	viper.SetDefault("ethereum.rpc_pause", "200ms")
	viper.SetDefault("ethereum.retry_delay", "10s")
	viper.SetDefault("ethereum.max_retry_delay", "120s")
	viper.SetDefault("ethereum.block_number_timeout", "10s")
	viper.SetDefault("ethereum.get_logs_timeout", "15s")

	// Watch defaults
	viper.SetDefault("watch.watchlist_path", "watchlist.yaml")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")

	// Shutdown defaults
	viper.SetDefault("shutdown.timeout", "30s")
}
