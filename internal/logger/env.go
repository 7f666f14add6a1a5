package logger

import (
	"os"
	"strconv"
)

// ConfigFromEnv reads LOG_LEVEL, LOG_FORMAT, SERVICE_NAME, APP_ENV and the
// LOG_FILE* rotation settings.
func ConfigFromEnv() *Config {
	return &Config{
		Level:       envString("LOG_LEVEL", "info"),
		Format:      envString("LOG_FORMAT", "json"),
		ServiceName: envString("SERVICE_NAME", "memerator"),
		Environment: envString("APP_ENV", "local"),
		File: &FileConfig{
			Path:       envString("LOG_FILE", "/var/log/memerator/app.log"),
			Only:       envBool("LOG_FILE_ONLY", false),
			MaxSizeMB:  envInt("LOG_MAX_SIZE", 100),
			MaxBackups: envInt("LOG_MAX_BACKUPS", 7),
			MaxAgeDays: envInt("LOG_MAX_AGE", 30),
			Compress:   envBool("LOG_COMPRESS", true),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return fallback
}
