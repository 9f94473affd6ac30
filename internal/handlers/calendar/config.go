package calendar

import "time"

type Config struct {
	// Applied when no duration entity accompanies a creation request.
	DefaultDurationMinutes int
	Timeout                time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DefaultDurationMinutes: 60,
		Timeout:                30 * time.Second,
	}
}
