package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv string `envconfig:"APP_ENV" default:"development"`
	Port   string `envconfig:"PORT" default:"8080"`

	Database DatabaseConfig
	Render   RenderConfig
	Redis    RedisConfig

	PhotoDir   string `envconfig:"PHOTO_DIR" default:"data/photos"`
	PricesFile string `envconfig:"PRICES_FILE"`

	GoogleCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	PrintFolderID     string `envconfig:"PRINT_FOLDER_ID"`
	ChromePath        string `envconfig:"CHROME_PATH"`
}

type DatabaseConfig struct {
	URL      string `envconfig:"DATABASE_URL"`
	Host     string `envconfig:"DB_HOST"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

type RenderConfig struct {
	// Cache selects the render cache backend: memory, disk, redis or none.
	Cache      string  `envconfig:"RENDER_CACHE" default:"memory"`
	CacheDir   string  `envconfig:"RENDER_CACHE_DIR" default:"cache/renders"`
	CacheSize  int     `envconfig:"RENDER_CACHE_SIZE" default:"256"`
	Workers    int     `envconfig:"RENDER_WORKERS" default:"4"`
	Quality    float64 `envconfig:"JPEG_QUALITY" default:"0.95"`
	EagerPrint bool    `envconfig:"EAGER_PRINT" default:"true"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	TTLHours int    `envconfig:"REDIS_TTL_HOURS" default:"24"`
}

// Load reads .env outside production and then the process environment.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		// .env values override system variables, same as local development expects
		_ = godotenv.Overload(".env")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Port = strings.TrimPrefix(cfg.Port, ":")

	if cfg.Render.Quality <= 0 || cfg.Render.Quality > 1 {
		return nil, fmt.Errorf("JPEG_QUALITY must be in (0, 1], got %v", cfg.Render.Quality)
	}
	if cfg.Render.Workers < 1 {
		cfg.Render.Workers = 1
	}
	return &cfg, nil
}

// DSN returns DATABASE_URL or a connection string built from the DB_* variables.
// An empty DSN means no database is configured.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// LoggerMode is the logger.Init mode for AppEnv.
func (c *Config) LoggerMode() string {
	if c.IsProduction() {
		return "production"
	}
	return "development"
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}
