// Package config собирает настройки сервиса: значения по умолчанию,
// YAML-файл, .env и переменные окружения (в порядке возрастания приоритета).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v3"
)

const (
	StorageInMemory = "in-memory"
	StoragePostgres = "postgres"
)

var ErrInvalid = errors.New("invalid config")

type Postgres struct {
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	MaxIdleConns    int           `yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

// Config - настройки сервера.
type Config struct {
	Port        string `yaml:"port"`
	Storage     string `yaml:"storage"`
	DatabaseURL string `yaml:"databaseUrl"`
	JWTSecret   string `yaml:"jwtSecret"`
	// IndexCacheTTL <= 0 выключает кеш главной страницы
	IndexCacheTTL      time.Duration `yaml:"indexCacheTtl"`
	CORSAllowedOrigins []string      `yaml:"corsAllowedOrigins"`
	LogSQL             bool          `yaml:"logSql"`
	Postgres           Postgres      `yaml:"postgres"`
}

func Default() *Config {
	return &Config{
		Port:               "8080",
		Storage:            StorageInMemory,
		IndexCacheTTL:      20 * time.Second,
		CORSAllowedOrigins: []string{"*"},
		Postgres: Postgres{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
	}
}

// Load читает YAML из path и .env из envFile. Пустой путь пропускается,
// отсутствующий .env не считается ошибкой.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if envFile != "" {
		// godotenv не перезаписывает уже заданные переменные
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Port = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWTSecret = v
	}
	if v := os.Getenv("INDEX_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: INDEX_CACHE_TTL: %v", ErrInvalid, err)
		}
		c.IndexCacheTTL = d
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins := []string{}
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORSAllowedOrigins = origins
	}
	if v := os.Getenv("LOG_SQL"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: LOG_SQL: %v", ErrInvalid, err)
		}
		c.LogSQL = b
	}
	return nil
}

// Validate проверяет согласованность настроек.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageInMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL must be set for postgres storage", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown storage %q", ErrInvalid, c.Storage)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("%w: JWT_SECRET must be set", ErrInvalid)
	}
	if c.Port == "" {
		return fmt.Errorf("%w: port is empty", ErrInvalid)
	}
	return nil
}
