package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like PROVIDERS_GOOGLE_MAPS_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay, ignored when absent.
	viper.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = viper.MergeInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func loadEnvFile() {
	candidates := []string{".env", "../.env", "../../.env"}
	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			_ = godotenv.Load(filepath.Clean(candidate))
			return
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "digital-assistant"
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = "development"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3978
	}
	if cfg.Server.MetricsPort == 0 {
		cfg.Server.MetricsPort = 9090
	}
	if cfg.Providers.Calendar == "" {
		cfg.Providers.Calendar = "google"
	}
	if cfg.Providers.Maps == "" {
		cfg.Providers.Maps = "google"
	}
	if cfg.Providers.GoogleMaps.Timeout == 0 {
		cfg.Providers.GoogleMaps.Timeout = 10000
	}
	if cfg.Providers.GoogleCalendar.Timeout == 0 {
		cfg.Providers.GoogleCalendar.Timeout = 10000
	}
	if cfg.Providers.GoogleCalendar.CalendarID == "" {
		cfg.Providers.GoogleCalendar.CalendarID = "primary"
	}
	if cfg.Providers.GoogleCalendar.TimeZone == "" {
		cfg.Providers.GoogleCalendar.TimeZone = "America/Los_Angeles"
	}
	if cfg.Assistant.CurrentAddress == "" {
		cfg.Assistant.CurrentAddress = "5905 Legacy Dr, Plano, TX"
	}
	if cfg.Assistant.CurrentCoordinates == "" {
		cfg.Assistant.CurrentCoordinates = "33.078855,-96.826350"
	}
	if cfg.Assistant.LocalRadius == "" {
		cfg.Assistant.LocalRadius = "5 miles"
	}
	if cfg.Assistant.TurnTimeout == 0 {
		cfg.Assistant.TurnTimeout = 30000
	}
	if cfg.Sessions.Backend == "" {
		cfg.Sessions.Backend = "memory"
	}
	if cfg.Sessions.TTL == 0 {
		cfg.Sessions.TTL = 3600
	}
	if cfg.Database.Elasticsearch.PlaceIndex == "" {
		cfg.Database.Elasticsearch.PlaceIndex = "places"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}
