package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		APIKeyHeader string `toml:"api_key_header"`
		RedisURL     string `toml:"redis_url"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("Database DSN is not specified in config")
	}
	if config.Auth.APIKeyHeader == "" {
		config.Auth.APIKeyHeader = "X-API-Key"
	}
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}

	logger.Debug.Printf("Loaded config: port=%s auth=%v", config.Server.Port, config.Server.EnableAuth)

	return &config, nil
}
