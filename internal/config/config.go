package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	RemoteURL       string
	Namespaces      []string
	IntervalSeconds int
	VerifyingKeyHex string

	HTTPAddr    string
	PostgresDSN string
	LogLevel    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PolicyBundlePath string
}

func FromEnv() Config {
	return Config{
		RemoteURL:        envDefault("PLEXI_REMOTE_URL", "https://plexi.cloudflareclient.com"),
		Namespaces:       splitList(os.Getenv("PLEXI_NAMESPACES")),
		IntervalSeconds:  envIntDefault("PLEXI_INTERVAL_SECONDS", 60),
		VerifyingKeyHex:  os.Getenv("PLEXI_VERIFYING_KEY_HEX"),
		HTTPAddr:         envDefault("HTTP_ADDR", ":8080"),
		PostgresDSN:      os.Getenv("POSTGRES_DSN"),
		LogLevel:         envDefault("LOG_LEVEL", "info"),
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          envIntDefault("REDIS_DB", 0),
		PolicyBundlePath: os.Getenv("POLICY_BUNDLE_PATH"),
	}
}

func (c Config) Interval() time.Duration {
	if c.IntervalSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.IntervalSeconds) * time.Second
}

func splitList(v string) []string {
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

func envDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
