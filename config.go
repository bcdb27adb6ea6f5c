package dossier

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ConfigFromEnv builds a Config from DOSSIER_* environment variables.
// A .env file in the working directory is loaded first when present.
//
//	DOSSIER_API_URL         backend base URL (required by NewClient)
//	DOSSIER_HTTP_TIMEOUT    per-request timeout, Go duration syntax
//	DOSSIER_TOKEN_PATH      file-backed token store location
//	DOSSIER_METRICS_ENABLED "true" to register Prometheus collectors
func ConfigFromEnv() Config {
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:   os.Getenv("DOSSIER_API_URL"),
		TokenPath: os.Getenv("DOSSIER_TOKEN_PATH"),
	}

	if v := os.Getenv("DOSSIER_HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
	if v := os.Getenv("DOSSIER_METRICS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.MetricsEnabled = b
		}
	}
	return cfg
}
