package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

// Config carries everything the storefront process needs at startup.
// Values come from environment variables, with an optional .env file
// for local development.
type Config struct {
	ServerPort     string        `mapstructure:"SERVER_PORT"`
	BackendBaseURL string        `mapstructure:"BACKEND_BASE_URL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	PollInterval   time.Duration `mapstructure:"POLL_INTERVAL"`

	// CartBackend selects the cart persistence layer: memory, redis or mongo.
	CartBackend string `mapstructure:"CART_BACKEND"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDB     string `mapstructure:"MONGO_DB"`

	// Store pickup location, used for delivery distance fees.
	StoreLat float64 `mapstructure:"STORE_LAT"`
	StoreLng float64 `mapstructure:"STORE_LNG"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
}

const (
	CartBackendMemory = "memory"
	CartBackendRedis  = "redis"
	CartBackendMongo  = "mongo"
)

func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("SERVER_PORT", "8084")
	v.SetDefault("BACKEND_BASE_URL", "http://localhost:5000")
	v.SetDefault("REQUEST_TIMEOUT", 15*time.Second)
	v.SetDefault("POLL_INTERVAL", 10*time.Second)
	v.SetDefault("CART_BACKEND", CartBackendMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "storefront")
	v.SetDefault("STORE_LAT", 0.0)
	v.SetDefault("STORE_LNG", 0.0)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env file is fine, environment variables still apply.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.CartBackend {
	case CartBackendMemory, CartBackendRedis, CartBackendMongo:
	default:
		return fmt.Errorf("unknown cart backend %q", c.CartBackend)
	}
	if c.BackendBaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", c.PollInterval)
	}
	return nil
}
