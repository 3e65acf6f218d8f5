package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

type Config struct {
	Port             string         `yaml:"port"`
	GinMode          string         `yaml:"gin_mode"`
	APIBaseURL       string         `yaml:"api_base_url"`
	APITimeout       time.Duration  `yaml:"api_timeout"`
	SessionBackend   string         `yaml:"session_backend"`
	SessionTTL       time.Duration  `yaml:"session_ttl"`
	CookieSecure     bool           `yaml:"cookie_secure"`
	PollInterval     time.Duration  `yaml:"poll_interval"`
	StatsConcurrency int            `yaml:"stats_concurrency"`
	JWTSecret        string         `yaml:"jwt_secret"`
	Database         DatabaseConfig `yaml:"database"`
	Redis            RedisConfig    `yaml:"redis"`
}

func defaults() Config {
	return Config{
		Port:             "8080",
		APIBaseURL:       "http://localhost:8081/api",
		APITimeout:       10 * time.Second,
		SessionBackend:   "db",
		SessionTTL:       12 * time.Hour,
		PollInterval:     15 * time.Second,
		StatsConcurrency: 8,
		JWTSecret:        "restaurant_dashboard_dev_secret",
		Database:         DatabaseConfig{Driver: "sqlite", DSN: "restaurant_dashboard.db"},
		Redis:            RedisConfig{Addr: "localhost:6379"},
	}
}

// Load builds the configuration from defaults, an optional .env file, an
// optional YAML file named by CONFIG_FILE, and finally the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.GinMode = getEnv("GIN_MODE", cfg.GinMode)
	cfg.APIBaseURL = getEnv("API_BASE_URL", cfg.APIBaseURL)
	cfg.APITimeout = getEnvAsDuration("API_TIMEOUT", cfg.APITimeout)
	cfg.SessionBackend = getEnv("SESSION_BACKEND", cfg.SessionBackend)
	cfg.SessionTTL = getEnvAsDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.CookieSecure = getEnvAsBool("COOKIE_SECURE", cfg.CookieSecure)
	cfg.PollInterval = getEnvAsDuration("POLL_INTERVAL", cfg.PollInterval)
	cfg.StatsConcurrency = getEnvAsInt("STATS_CONCURRENCY", cfg.StatsConcurrency)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DB_DSN", cfg.Database.DSN)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.Database = getEnvAsInt("REDIS_DB", cfg.Redis.Database)

	if cfg.StatsConcurrency < 1 {
		cfg.StatsConcurrency = 1
	}
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

// OpenDB connects to the configured database and migrates the given models
func OpenDB(db DatabaseConfig, models ...interface{}) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch db.Driver {
	case "", "sqlite":
		dialector = sqlite.Open(db.DSN)
	case "mysql":
		dialector = mysql.Open(db.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", db.Driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if len(models) > 0 {
		if err := conn.AutoMigrate(models...); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	log.Printf("✅ Database (%s) connected and migrated", db.Driver)
	return conn, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
