package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all portal configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Backend  BackendConfig  `yaml:"backend"`
	Session  SessionConfig  `yaml:"session"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
	Scan     ScanConfig     `yaml:"scan"`
}

type HTTPConfig struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	TrustProxy      bool          `yaml:"trust_proxy"`
}

// GRPCConfig configures the health endpoint. An empty Address disables it.
type GRPCConfig struct {
	Address     string `yaml:"address"`
	TLSCertFile string `yaml:"tls_cert_file"`
	TLSKeyFile  string `yaml:"tls_key_file"`
	CACertFile  string `yaml:"ca_cert_file"`
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	Secret       string        `yaml:"secret"`
	TTL          time.Duration `yaml:"ttl"`
	CookieName   string        `yaml:"cookie_name"`
	CookieSecure bool          `yaml:"cookie_secure"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // postgres, pgx, sqlite3 or sqlite
	DSN    string `yaml:"dsn"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ScanConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
	RecentLimit    int   `yaml:"recent_limit"`
}

var (
	ErrBackendURLMissing    = errors.New("BACKEND_URL not defined")
	ErrSessionSecretMissing = errors.New("SESSION_SECRET not defined")
	ErrDatabaseDSNMissing   = errors.New("DB_DSN not defined")
)

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:         ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		GRPC: GRPCConfig{
			Address: ":50051",
		},
		Backend: BackendConfig{
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			TTL:        24 * time.Hour,
			CookieName: "reloop_session",
		},
		Database: DatabaseConfig{
			Driver: "sqlite3",
			DSN:    "reloop.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Scan: ScanConfig{
			MaxUploadBytes: 10 << 20,
			RecentLimit:    5,
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// a .env file in the working directory and finally process environment variables.
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDatabase is Load for commands that only touch the journal database.
// It does not require the backend URL or the session secret.
func LoadDatabase(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateDatabase(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return ErrBackendURLMissing
	}
	if c.Session.Secret == "" {
		return ErrSessionSecretMissing
	}
	return c.validateDatabase()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "postgres", "pgx", "sqlite3", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return ErrDatabaseDSNMissing
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.HTTP.Address = getEnv("HTTP_ADDRESS", c.HTTP.Address)
	c.GRPC.Address = getEnv("GRPC_ADDRESS", c.GRPC.Address)
	c.GRPC.TLSCertFile = getEnv("GRPC_TLS_CERT", c.GRPC.TLSCertFile)
	c.GRPC.TLSKeyFile = getEnv("GRPC_TLS_KEY", c.GRPC.TLSKeyFile)
	c.GRPC.CACertFile = getEnv("GRPC_CA_CERT", c.GRPC.CACertFile)
	c.Backend.BaseURL = getEnv("BACKEND_URL", c.Backend.BaseURL)
	c.Session.Secret = getEnv("SESSION_SECRET", c.Session.Secret)
	c.Session.CookieName = getEnv("SESSION_COOKIE", c.Session.CookieName)
	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)

	var err error
	if c.HTTP.ShutdownTimeout, err = getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", c.HTTP.ShutdownTimeout); err != nil {
		return err
	}
	if c.Backend.Timeout, err = getEnvDuration("BACKEND_TIMEOUT", c.Backend.Timeout); err != nil {
		return err
	}
	if c.Session.TTL, err = getEnvDuration("SESSION_TTL", c.Session.TTL); err != nil {
		return err
	}
	if c.Session.CookieSecure, err = getEnvBool("SESSION_COOKIE_SECURE", c.Session.CookieSecure); err != nil {
		return err
	}
	if c.HTTP.TrustProxy, err = getEnvBool("HTTP_TRUST_PROXY", c.HTTP.TrustProxy); err != nil {
		return err
	}
	if c.Scan.RecentLimit, err = getEnvInt("SCAN_RECENT_LIMIT", c.Scan.RecentLimit); err != nil {
		return err
	}
	maxUpload, err := getEnvInt("SCAN_MAX_UPLOAD_BYTES", int(c.Scan.MaxUploadBytes))
	if err != nil {
		return err
	}
	c.Scan.MaxUploadBytes = int64(maxUpload)

	switch {
	case os.Getenv("DB_DSN") != "":
		c.Database.DSN = os.Getenv("DB_DSN")
	case (c.Database.Driver == "postgres" || c.Database.Driver == "pgx") && os.Getenv("DB_HOST") != "":
		c.Database.DSN = postgresDSN()
	case c.Database.Driver == "sqlite3" || c.Database.Driver == "sqlite":
		c.Database.DSN = getEnv("DB_PATH", c.Database.DSN)
	}
	return nil
}

func postgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		os.Getenv("DB_HOST"),
		getEnv("DB_PORT", "5432"),
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_DB"),
		getEnv("DB_SSLMODE", "disable"),
	)
}

// String returns a representation of the config with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{HTTP: %s, gRPC: %s, Backend: %s, DB: %s, Session: *** (masked) ***}",
		c.HTTP.Address, c.GRPC.Address, c.Backend.BaseURL, c.Database.Driver,
	)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	if value, exists := os.LookupEnv(key); exists {
		intVal, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
		}
		return intVal, nil
	}
	return defaultVal, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	if value, exists := os.LookupEnv(key); exists {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
		}
		return b, nil
	}
	return defaultVal, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		return d, nil
	}
	return defaultVal, nil
}
