package shelter

import (
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mr1hm/go-disaster-alerts/internal/geo"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

func quake(name string, lat, lon float64) models.DisasterAlert {
	return models.DisasterAlert{
		ID:       "q1",
		Type:     models.DisasterTypeEarthquake,
		Severity: models.AlertSeverityHigh,
		Location: models.Location{Name: name, Coordinates: models.Coordinates{Latitude: lat, Longitude: lon}},
		Active:   true,
	}
}

func TestForAlert_DistanceBand(t *testing.T) {
	g := NewSeededGenerator(42)
	origins := []models.DisasterAlert{
		quake("San Francisco, CA", 37.7749, -122.4194),
		quake("Honolulu, HI", 21.3069, -157.8583),
		quake("Date line", -16.5, 179.9),
		quake("Svalbard", 78.2, 15.6),
	}

	for i := 0; i < 200; i++ {
		a := origins[i%len(origins)]
		for _, s := range g.ForAlert(a) {
			d := geo.Distance(a.Coordinates(), s.Coordinates)
			assert.GreaterOrEqual(t, d, MinDistanceKm-1e-6, "shelter %s too close", s.ID)
			assert.Less(t, d, MaxDistanceKm+1e-6, "shelter %s too far", s.ID)
			assert.True(t, s.Coordinates.Valid(), "shelter %s out of range: %v", s.ID, s.Coordinates)
		}
	}
}

func TestForAlert_Fields(t *testing.T) {
	g := NewSeededGenerator(1)
	a := quake("San Francisco, CA", 37.7749, -122.4194)

	shelters := g.ForAlert(a)
	require.NotEmpty(t, shelters)
	require.LessOrEqual(t, len(shelters), 2)

	for i, s := range shelters {
		assert.Equal(t, "Near San Francisco, CA", s.Address)
		assert.True(t, strings.HasPrefix(s.Name, "Emergency Shelter "))
		assert.True(t, strings.HasSuffix(s.Name, " near San Francisco, CA"))
		assert.Contains(t, s.Name, []string{"Shelter 1", "Shelter 2"}[i])
		assert.Equal(t, 500, s.Capacity)
		assert.True(t, s.Available)
		assert.True(t, strings.HasPrefix(s.ID, "gen-"))
	}
}

func TestCapacity(t *testing.T) {
	assert.Equal(t, 500, Capacity(models.DisasterTypeEarthquake))
	assert.Equal(t, 300, Capacity(models.DisasterTypeWildfire))
	assert.Equal(t, 200, Capacity(models.DisasterTypeFlood))
	assert.Equal(t, 200, Capacity(models.DisasterTypeHurricane))
	assert.Equal(t, 200, Capacity(models.DisasterTypeTsunami))
}

func TestSeededGeneratorIsDeterministic(t *testing.T) {
	a := quake("San Francisco, CA", 37.7749, -122.4194)
	first := NewSeededGenerator(99).ForAlert(a)
	second := NewSeededGenerator(99).ForAlert(a)
	assert.Equal(t, first, second)
}

func TestForAlerts_SkipsInactiveAndCountsPerAlert(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(3, 4)))
	active := quake("A", 10, 10)
	inactive := quake("B", 20, 20)
	inactive.Active = false

	shelters := g.ForAlerts([]models.DisasterAlert{active, inactive, active})
	assert.GreaterOrEqual(t, len(shelters), 2)
	assert.LessOrEqual(t, len(shelters), 4)
	for _, s := range shelters {
		assert.Equal(t, "Near A", s.Address)
	}

	assert.Empty(t, g.ForAlerts(nil))
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	g := NewGenerator(nil)
	a := quake("A", 0, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.ForAlert(a)
			}
		}()
	}
	wg.Wait()
}
