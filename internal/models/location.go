package models

type UserLocation struct {
	Coordinates Coordinates `json:"coordinates"`
	Accuracy    float64     `json:"accuracy"` // meters
	Name        string      `json:"name"`
}

// DefaultUserLocation is used when no position is available from the client.
func DefaultUserLocation() UserLocation {
	return UserLocation{
		Coordinates: Coordinates{Latitude: 37.7749, Longitude: -122.4194},
		Accuracy:    10,
		Name:        "San Francisco, CA",
	}
}
