package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig          `mapstructure:"app"`
	Server        ServerConfig       `mapstructure:"server"`
	Database      DatabaseConfig     `mapstructure:"database"`
	Providers     ProvidersConfig    `mapstructure:"providers"`
	Assistant     AssistantConfig    `mapstructure:"assistant"`
	Sessions      SessionConfig      `mapstructure:"sessions"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Logging       LoggingConfig      `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	PlaceIndex string   `mapstructure:"place_index"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ProvidersConfig selects and configures the calendar and maps vendors.
type ProvidersConfig struct {
	Calendar string `mapstructure:"calendar"` // "google" or "postgres"
	Maps     string `mapstructure:"maps"`     // "google" or "elasticsearch"

	GoogleMaps struct {
		APIKey       string `mapstructure:"api_key"`
		PlacesAPIKey string `mapstructure:"places_api_key"`
		Timeout      int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"google_maps"`

	GoogleCalendar struct {
		AccessToken string `mapstructure:"access_token"`
		CalendarID  string `mapstructure:"calendar_id"`
		TimeZone    string `mapstructure:"time_zone"`
		Timeout     int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"google_calendar"`
}

// AssistantConfig holds the conversational defaults for a fixed
// kiosk deployment (current location, local search radius).
type AssistantConfig struct {
	CurrentAddress     string `mapstructure:"current_address"`
	CurrentCoordinates string `mapstructure:"current_coordinates"`
	LocalRadius        string `mapstructure:"local_radius"` // e.g. "5 miles"
	TurnTimeout        int    `mapstructure:"turn_timeout"` // milliseconds
}

// SessionConfig controls per-conversation search session storage.
type SessionConfig struct {
	Backend string `mapstructure:"backend"` // "memory" or "redis"
	TTL     int    `mapstructure:"ttl"`     // seconds, redis backend only
}

// NotificationConfig holds settings for confirmation delivery.
type NotificationConfig struct {
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
		ToEmail   string `mapstructure:"to_email"`
	} `mapstructure:"email"`
	SMS struct {
		Enabled     bool   `mapstructure:"enabled"`
		PhoneNumber string `mapstructure:"phone_number"`
	} `mapstructure:"sms"`
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
