package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	OpenAIAPIKey           string
	OpenAIModel            string
	BadgeThreshold         float64
	PointsScalar           int
	ProcessingTimeout      time.Duration
	PointsCacheTTL         time.Duration
	UploadRatePerMinute    int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MENTORLENS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "MentorLens API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "mentorlens/sessions")
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("badge.threshold", 0.8)
	v.SetDefault("points.scalar", 300)
	v.SetDefault("processing.timeout", "10m")
	v.SetDefault("points.cache_ttl", "1m")
	v.SetDefault("upload.rate_per_minute", 30)

	processingTimeout, err := time.ParseDuration(v.GetString("processing.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid processing timeout: %w", err)
	}

	pointsCacheTTL, err := time.ParseDuration(v.GetString("points.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid points cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		OpenAIAPIKey:           v.GetString("openai.api_key"),
		OpenAIModel:            v.GetString("openai.model"),
		BadgeThreshold:         v.GetFloat64("badge.threshold"),
		PointsScalar:           v.GetInt("points.scalar"),
		ProcessingTimeout:      processingTimeout,
		PointsCacheTTL:         pointsCacheTTL,
		UploadRatePerMinute:    v.GetInt("upload.rate_per_minute"),
	}

	if cfg.BadgeThreshold <= 0 || cfg.BadgeThreshold > 1 {
		return Config{}, fmt.Errorf("badge threshold must be in (0, 1], got %v", cfg.BadgeThreshold)
	}

	if cfg.PointsScalar <= 0 {
		return Config{}, fmt.Errorf("points scalar must be positive, got %d", cfg.PointsScalar)
	}

	return cfg, nil
}
