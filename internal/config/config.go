package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

type Config struct {
	Env            string
	LogLevel       string
	LogFile        string
	ListenAddr     string
	DBType         string
	DBDSN          string
	DataDir        string
	AvatarDir      string
	PublicBaseURL  string
	SessionTTL     time.Duration
	AuthMode       string
	AuthServiceURL string
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads .env (if present) and the environment once; invalid config panics.
func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv(".env")
		c, err := FromEnv()
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// FromEnv builds and validates a Config from the current process environment.
func FromEnv() (*Config, error) {
	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("SESSION_TTL: %w", err)
	}
	listen := getEnv("LISTEN_ADDR", ":8088")
	c := &Config{
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFile:        getEnv("LOG_FILE", ""),
		ListenAddr:     listen,
		DBType:         getEnv("STORAGE_BACKEND", "file"),
		DBDSN:          getEnv("POSTGRES_DSN", ""),
		DataDir:        getEnv("DATA_DIR", "data"),
		AvatarDir:      getEnv("AVATAR_DIR", "data/avatars"),
		PublicBaseURL:  getEnv("PUBLIC_BASE_URL", "http://localhost"+listen),
		SessionTTL:     ttl,
		AuthMode:       getEnv("AUTH_MODE", "local"),
		AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.DBType != "file" && c.DBType != "postgres" {
		return errors.New("STORAGE_BACKEND must be one of: file, postgres")
	}
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && c.DataDir == "" {
		return errors.New("File storage requires DATA_DIR to be set")
	}
	if c.AuthMode != "local" && c.AuthMode != "remote" {
		return errors.New("AUTH_MODE must be one of: local, remote")
	}
	if c.AuthMode == "remote" && c.AuthServiceURL == "" {
		return errors.New("AUTH_SERVICE_URL is required when AUTH_MODE=remote")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadDotEnv sets KEY=VALUE pairs from path without overriding the real environment.
func loadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if _, set := os.LookupEnv(key); set {
			continue
		}
		os.Setenv(key, strings.Trim(strings.TrimSpace(value), `"'`))
	}
	return scanner.Err()
}
