package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded when present; variables already set in the process
// environment take precedence over it.
var envFile = ".env"

// parseEnv overlays values from the environment onto config.
func parseEnv(config *Config) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
	if err := applyEnv(config, os.LookupEnv); err != nil {
		panic(err)
	}
}

func applyEnv(config *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}

	var errs []error
	dur := func(name string, dst *time.Duration) {
		v, ok := lookup(name)
		if !ok || v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = d
	}
	integer := func(name string, dst *int) {
		v, ok := lookup(name)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			return
		}
		*dst = n
	}

	str("PORT", &config.Port)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	dur("ACCESS_TOKEN_VALIDITY", &config.AccessTokenValidityDuration)
	str("UPLOAD_BACKEND", &config.UploadBackend)
	str("UPLOAD_DIR", &config.UploadDir)
	str("UPLOAD_URL_PREFIX", &config.UploadURLPrefix)
	if v, ok := lookup("MAX_UPLOAD_SIZE"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE: %w", err))
		} else {
			config.MaxUploadSize = n
		}
	}
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	if v, ok := lookup("CORS_ALLOWED_ORIGINS"); ok && v != "" {
		config.CORSAllowedOrigins = splitList(v)
	}
	integer("RATE_LIMIT_AUTH", &config.RateLimitAuth)
	str("RATE_LIMIT_REDIS_ADDR", &config.RateLimitRedisAddr)
	str("RATE_LIMIT_REDIS_PASSWORD", &config.RateLimitRedisPassword)
	integer("RATE_LIMIT_REDIS_DB", &config.RateLimitRedisDB)
	str("LOG_LEVEL", &config.LogLevel)
	dur("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	dur("READ_HEADER_TIMEOUT", &config.ReadHeaderTimeout)

	return errors.Join(errs...)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
