package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	Port           int      `yaml:"port"`
	DBDriver       string   `yaml:"db_driver"`
	DatabaseURL    string   `yaml:"database_url"`
	MediaDir       string   `yaml:"media_dir"`
	MediaURLPrefix string   `yaml:"media_url_prefix"`
	CloudinaryURL  string   `yaml:"cloudinary_url"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	LogLevel       string   `yaml:"log_level"`
	LogFormat      string   `yaml:"log_format"`
	LogstashAddr   string   `yaml:"logstash_addr"`
	OtelEndpoint   string   `yaml:"otel_endpoint"`
	Env            string   `yaml:"env"`
	SeedDemoUsers  bool     `yaml:"seed_demo_users"`
	CORSOrigins    []string `yaml:"cors_origins"`
}

// Default returns the configuration used when nothing else is set.
func Default() Config {
	return Config{
		Port:           8080,
		DBDriver:       DriverSQLite,
		DatabaseURL:    "microtwit.db",
		MediaDir:       "./medias",
		MediaURLPrefix: "/medias",
		MaxUploadBytes: 10 << 20,
		LogLevel:       "info",
		LogFormat:      "json",
		Env:            "local",
		CORSOrigins:    []string{"*"},
	}
}

// Load resolves the configuration from flags, environment, an optional YAML
// file and defaults, in that order of precedence.
func Load(args []string) (Config, error) {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	var (
		port       int
		dsn        string
		driver     string
		configPath string
	)

	fs := flag.NewFlagSet("microtwit", flag.ContinueOnError)
	fs.IntVar(&port, "p", 0, "Server port")
	fs.StringVar(&dsn, "d", "", "Database DSN or SQLite path")
	fs.StringVar(&driver, "t", "", "Database driver (sqlite, postgres or mysql)")
	fs.StringVar(&configPath, "c", "", "YAML config file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_FILE")
	}
	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if port != 0 {
		cfg.Port = port
	}
	if dsn != "" {
		cfg.DatabaseURL = dsn
	}
	if driver != "" {
		cfg.DBDriver = driver
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMySQL:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DBDriver)
	}
	if c.Port <= 0 {
		return errors.New("port must be positive")
	}
	if c.DatabaseURL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload size must be positive")
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := getEnv("PORT"); v != "" {
		port, err := strconv.Atoi(strings.TrimPrefix(v, ":"))
		if err != nil {
			return errors.New("invalid PORT env variable")
		}
		cfg.Port = port
	}
	if v := getEnv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.New("invalid MAX_UPLOAD_BYTES env variable")
		}
		cfg.MaxUploadBytes = n
	}
	if v := getEnv("SEED_DEMO_USERS"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New("invalid SEED_DEMO_USERS env variable")
		}
		cfg.SeedDemoUsers = seed
	}
	if v := getEnv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitList(v)
	}

	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.MediaDir, "MEDIA_DIR")
	setString(&cfg.MediaURLPrefix, "MEDIA_URL_PREFIX")
	setString(&cfg.CloudinaryURL, "CLOUDINARY_URL")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")
	setString(&cfg.LogstashAddr, "LOGSTASH_ADDR")
	setString(&cfg.OtelEndpoint, "OTEL_EXPORTER_OTLP_ENDPOINT")
	setString(&cfg.Env, "APP_ENV")

	// Remote postgres configured through discrete variables.
	if host := getEnv("DB_HOST"); host != "" && getEnv("DATABASE_URL") == "" {
		cfg.DBDriver = DriverPostgres
		cfg.DatabaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host,
			getEnvDefault("DB_PORT", "5432"),
			getEnv("DB_USER"),
			getEnv("DB_PASSWORD"),
			getEnv("DB_NAME"),
			getEnvDefault("DB_SSLMODE", "require"),
		)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func getEnvDefault(key, fallback string) string {
	if v := getEnv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
