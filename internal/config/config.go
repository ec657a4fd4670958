package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Jupiter  Jupiter  `mapstructure:"jupiter"`
	Trading  Trading  `mapstructure:"trading"`
	Logger   Logger   `mapstructure:"logger"`
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
}

// Jupiter holds the configuration for the Jupiter quote API client.
type Jupiter struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	// MaxRetries is the number of additional attempts after the first one.
	// Zero means a single attempt and no retry.
	MaxRetries int `mapstructure:"max_retries"`
	// UnitDecimals is the provider's smallest-unit scale: amounts are sent
	// as amount * 10^UnitDecimals. Jupiter quotes SOL in lamports (9).
	UnitDecimals int `mapstructure:"unit_decimals"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Database holds the configuration for the trade ledger database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Trading holds the defaults applied to trade requests.
type Trading struct {
	// BaseMint is the mint address of the base currency every trade is
	// quoted against (wrapped SOL on mainnet).
	BaseMint           string `mapstructure:"base_mint"`
	BaseSymbol         string `mapstructure:"base_symbol"`
	AssetSymbol        string `mapstructure:"asset_symbol"`
	DefaultSlippageBps int    `mapstructure:"default_slippage_bps"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("jupiter.base_url", "https://quote-api.jup.ag/v6")
	viper.SetDefault("jupiter.timeout", "10s")
	viper.SetDefault("jupiter.rate_limit", 10) // requests per second
	viper.SetDefault("jupiter.rate_limit_burst", 5)
	viper.SetDefault("jupiter.max_retries", 0)
	viper.SetDefault("jupiter.unit_decimals", 9)
	viper.SetDefault("trading.base_mint", "So11111111111111111111111111111111111111112")
	viper.SetDefault("trading.base_symbol", "SOL")
	viper.SetDefault("trading.asset_symbol", "CA")
	viper.SetDefault("trading.default_slippage_bps", 50)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
