package navigator

import (
	"github.com/johnny-stegall/Digital-Assistant/internal/common/config"
	"github.com/johnny-stegall/Digital-Assistant/internal/place"
)

type Config struct {
	// Fallback coordinates when the client reports no location.
	CurrentCoordinates place.Coordinates
	// Radius phrase applied when the user gives no distance, e.g. "5 miles".
	LocalRadius string
}

func LoadConfig(assistant config.AssistantConfig) (*Config, error) {
	coords, err := place.ParseCoordinates(assistant.CurrentCoordinates)
	if err != nil {
		return nil, err
	}
	return &Config{
		CurrentCoordinates: coords,
		LocalRadius:        assistant.LocalRadius,
	}, nil
}
