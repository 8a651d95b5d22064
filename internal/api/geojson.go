package api

import (
	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(alerts []models.DisasterAlert) FeatureCollection {
	features := make([]Feature, 0, len(alerts))

	for _, a := range alerts {
		c := a.Location.Coordinates
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{c.Longitude, c.Latitude},
			},
			Properties: map[string]any{
				"id":          a.ID,
				"type":        a.Type,
				"typeLabel":   a.Type.Label(),
				"severity":    a.Severity,
				"color":       a.Severity.Color(),
				"title":       a.Title,
				"description": a.Description,
				"location":    a.Location.Name,
				"radiusKm":    a.Radius,
				"timestamp":   a.Timestamp,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
