package normalize

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genproto/googleapis/type/latlng"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

var (
	ErrUnsupportedCoordinates = errors.New("unsupported coordinate shape")
	ErrCoordinatesOutOfRange  = errors.New("coordinates out of range")
)

// geoPoint matches document-store geo-point values exposing accessors.
type geoPoint interface {
	GetLatitude() float64
	GetLongitude() float64
}

// Coordinates converts the coordinate shapes stores hand back into the
// canonical record. Accepted shapes:
//   - models.Coordinates or *models.Coordinates
//   - *latlng.LatLng (Firestore geo-point) or any value with GetLatitude/GetLongitude
//   - map[string]any with numeric "latitude" and "longitude" keys
//
// The result is range-checked before it is returned.
func Coordinates(v any) (models.Coordinates, error) {
	var c models.Coordinates

	switch p := v.(type) {
	case models.Coordinates:
		c = p
	case *models.Coordinates:
		if p == nil {
			return c, ErrUnsupportedCoordinates
		}
		c = *p
	case *latlng.LatLng:
		if p == nil {
			return c, ErrUnsupportedCoordinates
		}
		c = models.Coordinates{Latitude: p.GetLatitude(), Longitude: p.GetLongitude()}
	case geoPoint:
		c = models.Coordinates{Latitude: p.GetLatitude(), Longitude: p.GetLongitude()}
	case map[string]any:
		lat, latOK := number(p["latitude"])
		lon, lonOK := number(p["longitude"])
		if !latOK || !lonOK {
			return c, fmt.Errorf("%w: map without numeric latitude/longitude", ErrUnsupportedCoordinates)
		}
		c = models.Coordinates{Latitude: lat, Longitude: lon}
	default:
		return c, fmt.Errorf("%w: %T", ErrUnsupportedCoordinates, v)
	}

	if !c.Valid() {
		return c, fmt.Errorf("%w: %v,%v", ErrCoordinatesOutOfRange, c.Latitude, c.Longitude)
	}
	return c, nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
