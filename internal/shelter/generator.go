// Package shelter synthesizes plausible shelter locations around alerts for
// sources that carry no shelter data of their own.
package shelter

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/mmcloughlin/geohash"

	"github.com/mr1hm/go-disaster-alerts/internal/geo"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

const (
	MinDistanceKm = 20.0
	MaxDistanceKm = 50.0

	idPrecision = 9 // geohash chars, roughly 5m cells
)

// Generator projects 1-2 shelters per alert at a random bearing and a
// random distance in [MinDistanceKm, MaxDistanceKm). Output is not stable
// across calls unless the generator was built from a fixed seed.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator uses rng for every draw. A nil rng means an unseeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rng: rng}
}

func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed)))
}

// Capacity is the default head count for a shelter serving t.
func Capacity(t models.DisasterType) int {
	switch t {
	case models.DisasterTypeEarthquake:
		return 500
	case models.DisasterTypeWildfire:
		return 300
	default:
		return 200
	}
}

// ForAlerts generates shelters for every active alert.
func (g *Generator) ForAlerts(alerts []models.DisasterAlert) []models.SafetyShelter {
	shelters := make([]models.SafetyShelter, 0, len(alerts)*2)
	for _, a := range alerts {
		if !a.Active {
			continue
		}
		shelters = append(shelters, g.ForAlert(a)...)
	}
	return shelters
}

func (g *Generator) ForAlert(a models.DisasterAlert) []models.SafetyShelter {
	g.mu.Lock()
	count := 1 + g.rng.IntN(2)
	draws := make([][2]float64, count)
	for i := range draws {
		draws[i][0] = MinDistanceKm + g.rng.Float64()*(MaxDistanceKm-MinDistanceKm)
		draws[i][1] = g.rng.Float64() * 360
	}
	g.mu.Unlock()

	origin := a.Coordinates()
	name := a.Location.Name
	shelters := make([]models.SafetyShelter, 0, count)
	for i, d := range draws {
		c := geo.Destination(origin.Latitude, origin.Longitude, d[1], d[0])
		shelters = append(shelters, models.SafetyShelter{
			ID:          fmt.Sprintf("gen-%s-%d", geohash.EncodeWithPrecision(c.Latitude, c.Longitude, idPrecision), i+1),
			Name:        fmt.Sprintf("Emergency Shelter %d near %s", i+1, name),
			Coordinates: c,
			Address:     "Near " + name,
			Capacity:    Capacity(a.Type),
			Available:   true,
		})
	}
	return shelters
}
