package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/emphub/internal/flagx"
	"github.com/dmitrijs2005/emphub/internal/timex"
)

// JsonConfig is the on-disk shape of the JSON config file. Durations use
// timex.Duration so both "1m" and integer nanoseconds are accepted.
type JsonConfig struct {
	Port                        string         `json:"port"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	UploadBackend               string         `json:"upload_backend"`
	UploadDir                   string         `json:"upload_dir"`
	UploadURLPrefix             string         `json:"upload_url_prefix"`
	MaxUploadSize               int64          `json:"max_upload_size"`
	S3RootUser                  string         `json:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	CORSAllowedOrigins          []string       `json:"cors_allowed_origins"`
	RateLimitAuth               *int           `json:"rate_limit_auth"`
	RateLimitRedisAddr          string         `json:"rate_limit_redis_addr"`
	RateLimitRedisPassword      string         `json:"rate_limit_redis_password"`
	RateLimitRedisDB            int            `json:"rate_limit_redis_db"`
	LogLevel                    string         `json:"log_level"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout"`
	ReadHeaderTimeout           timex.Duration `json:"read_header_timeout"`
}

// parseJson overlays the file named by -c / -config onto config. Keys that are
// missing from the file leave the current value alone. An unreadable file or
// invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigFile(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setStr := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setStr(&config.Port, c.Port)
	setStr(&config.DatabaseDSN, c.DatabaseDSN)
	setStr(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	setStr(&config.UploadBackend, c.UploadBackend)
	setStr(&config.UploadDir, c.UploadDir)
	setStr(&config.UploadURLPrefix, c.UploadURLPrefix)
	if c.MaxUploadSize != 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	setStr(&config.S3RootUser, c.S3RootUser)
	setStr(&config.S3RootPassword, c.S3RootPassword)
	setStr(&config.S3Bucket, c.S3Bucket)
	setStr(&config.S3Region, c.S3Region)
	setStr(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	if len(c.CORSAllowedOrigins) > 0 {
		config.CORSAllowedOrigins = c.CORSAllowedOrigins
	}
	if c.RateLimitAuth != nil {
		config.RateLimitAuth = *c.RateLimitAuth
	}
	setStr(&config.RateLimitRedisAddr, c.RateLimitRedisAddr)
	setStr(&config.RateLimitRedisPassword, c.RateLimitRedisPassword)
	if c.RateLimitRedisDB != 0 {
		config.RateLimitRedisDB = c.RateLimitRedisDB
	}
	setStr(&config.LogLevel, c.LogLevel)
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.ReadHeaderTimeout.Duration != 0 {
		config.ReadHeaderTimeout = c.ReadHeaderTimeout.Duration
	}
}
