package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	LogLevel        string
	NatsURL         string
	NatsToken       string
	CompletionURL   string
	CompletionToken string
	CompletionModel string
	GraphBaseURL    string
	GraphToken      string
	CatalogAppID    string
	IncidentTTL     time.Duration
}

func Load() Config {
	return Config{
		Port:            envInt("STACEY_PORT", 8920),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
		CompletionURL:   envStr("COMPLETION_URL", ""),
		CompletionToken: envStr("COMPLETION_TOKEN", ""),
		CompletionModel: envStr("COMPLETION_MODEL", "text-davinci-003"),
		GraphBaseURL:    envStr("GRAPH_BASE_URL", "https://graph.microsoft.com/v1.0"),
		GraphToken:      envStr("GRAPH_TOKEN", ""),
		CatalogAppID:    envStr("STACEY_CATALOG_APP_ID", ""),
		IncidentTTL:     envDuration("STACEY_INCIDENT_TTL", 0),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
