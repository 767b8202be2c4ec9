package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the bridge server.
// Tags use mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort string `mapstructure:"HTTP_PORT"`
	// BaseURL is the public origin of the store, used for discovery
	// documents and redirect URLs.
	BaseURL string `mapstructure:"BASE_URL"`
	// CheckoutURL is the backend's native checkout page, to which recovered
	// sessions redirect.
	CheckoutURL string `mapstructure:"CHECKOUT_URL"`
	// LoginURL is the external login page unauthenticated principals are
	// sent to from the authorization endpoint.
	LoginURL string `mapstructure:"LOGIN_URL"`

	// StoreBackend selects the expiring key-value store: "memory" or "redis".
	StoreBackend string `mapstructure:"STORE_BACKEND"`
	RedisAddr    string `mapstructure:"REDIS_ADDR"`
	RedisPrefix  string `mapstructure:"REDIS_PREFIX"`

	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	AuthCodeTTLMin     int `mapstructure:"AUTH_CODE_TTL_MIN"`
	AccessTokenTTLHour int `mapstructure:"ACCESS_TOKEN_TTL_HOUR"`
	SessionTTLHour     int `mapstructure:"SESSION_TTL_HOUR"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`
}

// LoadConfig reads configuration from file, environment variables, and
// defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/ucp-bridge/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("CHECKOUT_URL", "http://localhost:3000/checkout")
	v.SetDefault("LOGIN_URL", "http://localhost:3000/login")
	v.SetDefault("STORE_BACKEND", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PREFIX", "ucp")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/ucp_bridge")
	v.SetDefault("MONGO_DB_NAME", "ucp_bridge")
	v.SetDefault("AUTH_CODE_TTL_MIN", 10)
	v.SetDefault("ACCESS_TOKEN_TTL_HOUR", 24)
	v.SetDefault("SESSION_TTL_HOUR", 24)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, we fall back to env and defaults.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
