package placedetails

type Config struct {
	// Length of the calendar hold created for a reservation.
	ReservationMinutes int
	// Approximate dollars per meal for one price tier.
	DollarsPerPriceTier int
}

func LoadConfig() *Config {
	return &Config{
		ReservationMinutes:  90,
		DollarsPerPriceTier: 15,
	}
}
