package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerAddr string `yaml:"server_addr"`
	LogLevel   string `yaml:"log_level"`

	DBDriver    string `yaml:"db_driver"`
	DatabaseURL string `yaml:"database_url"`

	SessionSecret  string        `yaml:"session_secret"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	SessionBackend string        `yaml:"session_backend"`
	// CookieSecure defaults to true except on the sqlite dev setup, which
	// serves plain HTTP.
	CookieSecure bool `yaml:"cookie_secure"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	CORSOrigins []string `yaml:"cors_origins"`
	CSRFEnabled bool     `yaml:"csrf_enabled"`

	KafkaBrokers []string `yaml:"kafka_brokers"`

	ESURL      string `yaml:"es_url"`
	ESUser     string `yaml:"es_user"`
	ESPassword string `yaml:"es_password"`
	ESIndex    string `yaml:"es_index"`
}

func defaults() *Config {
	return &Config{
		ServerAddr:     ":5000",
		LogLevel:       "info",
		DBDriver:       "sqlite",
		DatabaseURL:    "ecommerce.db",
		SessionTTL:     24 * time.Hour,
		SessionBackend: "db",
		ESIndex:        "products",
	}
}

// LoadConfig layers defaults, the optional YAML file named by CONFIG_FILE and
// the process environment, in that order.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Notice: .env file not found: %v. Using system environment variables", err)
	}

	cfg := defaults()
	cookieSet := false

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		set, err := loadFile(path, cfg)
		if err != nil {
			return nil, err
		}
		cookieSet = set
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if !cookieSet && os.Getenv("COOKIE_SECURE") == "" {
		cfg.CookieSecure = cfg.DBDriver != "sqlite"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile decodes the YAML file into cfg and reports whether it set
// cookie_secure.
func loadFile(path string, cfg *Config) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("open config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return false, fmt.Errorf("decode config file %s: %w", path, err)
	}

	var keys struct {
		CookieSecure *bool `yaml:"cookie_secure"`
	}
	if err := yaml.Unmarshal(data, &keys); err != nil {
		return false, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return keys.CookieSecure != nil, nil
}

func applyEnv(cfg *Config) error {
	envString("SERVER_ADDR", &cfg.ServerAddr)
	envString("LOG_LEVEL", &cfg.LogLevel)
	envString("DB_DRIVER", &cfg.DBDriver)
	envString("DATABASE_URL", &cfg.DatabaseURL)
	envString("SESSION_SECRET", &cfg.SessionSecret)
	envString("SESSION_BACKEND", &cfg.SessionBackend)
	envString("REDIS_ADDR", &cfg.RedisAddr)
	envString("REDIS_PASSWORD", &cfg.RedisPassword)
	envString("ES_URL", &cfg.ESURL)
	envString("ES_USER", &cfg.ESUser)
	envString("ES_PASSWORD", &cfg.ESPassword)
	envString("ES_INDEX", &cfg.ESIndex)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = CSV(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = CSV(v)
	}

	if v := os.Getenv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = d
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		cfg.RedisDB = n
	}
	for key, dst := range map[string]*bool{
		"COOKIE_SECURE": &cfg.CookieSecure,
		"CSRF_ENABLED":  &cfg.CSRFEnabled,
	} {
		if v := os.Getenv(key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = b
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return errors.New("missing required env SESSION_SECRET")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	switch c.SessionBackend {
	case "db":
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("SESSION_BACKEND=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}
	return nil
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
