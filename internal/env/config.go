package env

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Config holds the connection settings of the command line tools.
type Config struct {
	Host     string        `env:"REDIS_HOST,default=localhost"`
	Port     int           `env:"REDIS_PORT,default=6379"`
	Protocol int           `env:"REDIS_PROTOCOL,default=2"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT,default=5s"`
}

// Addr returns the host:port address of the server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// LoadConfig reads .env.local when present, then the environment.
// Variables already set in the environment take precedence over the file.
func LoadConfig(ctx context.Context) (*Config, error) {
	config := Config{}

	if err := godotenv.Load(".env.local"); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("env: loading .env.local: %w", err)
		}
	}

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, err
	}

	switch config.Protocol {
	case 2, 3:
	default:
		return nil, fmt.Errorf("env: REDIS_PROTOCOL must be 2 or 3, got %d", config.Protocol)
	}

	return &config, nil
}
