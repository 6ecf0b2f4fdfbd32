package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mapbox MapboxConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

// MapboxConfig configures the directions provider. Token and endpoint are
// injected into the client explicitly so tests can point it at a stub
// server without touching process environment.
type MapboxConfig struct {
	AccessToken string        `env:"MAPBOX_ACCESS_TOKEN"`
	BaseURL     string        `env:"MAPBOX_BASE_URL, default=https://api.mapbox.com/directions/v5/mapbox"`
	Profile     string        `env:"MAPBOX_PROFILE,  default=driving-traffic"`
	Timeout     time.Duration `env:"MAPBOX_TIMEOUT,  default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=feedr_routing"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
