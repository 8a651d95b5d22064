package geo

import (
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

const boundsPadDeg = 1e-7

// Rect is a lat/lng bounding box in degrees. When WrapsAntimeridian is set
// the longitude range is LngLo..180 plus -180..LngHi.
type Rect struct {
	LatLo             float64
	LatHi             float64
	LngLo             float64
	LngHi             float64
	WrapsAntimeridian bool
}

// BoundingRect returns a box containing every point within radiusKm of
// center. It is conservative and meant as a coarse pre-filter ahead of
// DistanceKm.
func BoundingRect(center models.Coordinates, radiusKm float64) Rect {
	if radiusKm < 0 {
		radiusKm = 0
	}
	ll := s2.LatLngFromDegrees(center.Latitude, center.Longitude)
	capRegion := s2.CapFromCenterAngle(s2.PointFromLatLng(ll), s1.Angle(radiusKm/EarthRadiusKm))
	// the radian round trip can land a hair inside the center
	rect := capRegion.RectBound().Expanded(s2.LatLngFromDegrees(boundsPadDeg, boundsPadDeg))

	return Rect{
		LatLo:             rect.Lat.Lo * degConv,
		LatHi:             rect.Lat.Hi * degConv,
		LngLo:             rect.Lng.Lo * degConv,
		LngHi:             rect.Lng.Hi * degConv,
		WrapsAntimeridian: rect.Lng.IsInverted(),
	}
}

func (r Rect) Contains(c models.Coordinates) bool {
	if c.Latitude < r.LatLo || c.Latitude > r.LatHi {
		return false
	}
	if r.WrapsAntimeridian {
		return c.Longitude >= r.LngLo || c.Longitude <= r.LngHi
	}
	return c.Longitude >= r.LngLo && c.Longitude <= r.LngHi
}
