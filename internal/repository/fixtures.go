package repository

import (
	"slices"
	"time"

	"github.com/mr1hm/go-disaster-alerts/internal/models"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func loc(name string, lat, lon float64) models.Location {
	return models.Location{Name: name, Coordinates: models.Coordinates{Latitude: lat, Longitude: lon}}
}

var fixtureAlerts = []models.DisasterAlert{
	{
		ID:          "1",
		Type:        models.DisasterTypeEarthquake,
		Severity:    models.AlertSeverityHigh,
		Title:       "Major Earthquake",
		Description: "7.2 magnitude earthquake detected near San Francisco",
		Location:    loc("San Francisco, CA", 37.7749, -122.4194),
		SafetyTips: []string{
			"Drop, cover, and hold on",
			"Stay away from windows and exterior walls",
			"If outside, stay in open areas away from buildings",
			"Be prepared for aftershocks",
		},
		Timestamp: at("2023-10-15T08:30:00Z"),
		Radius:    100,
		Active:    true,
	},
	{
		ID:          "2",
		Type:        models.DisasterTypeFlood,
		Severity:    models.AlertSeverityMedium,
		Title:       "Flash Flood Warning",
		Description: "Heavy rainfall causing flash flooding in Houston area",
		Location:    loc("Houston, TX", 29.7604, -95.3698),
		SafetyTips: []string{
			"Move to higher ground immediately",
			"Do not walk or drive through flood waters",
			"Stay away from storm drains and culverts",
			"Follow evacuation orders if given",
		},
		Timestamp: at("2023-09-22T14:45:00Z"),
		Radius:    50,
		Active:    true,
	},
	{
		ID:          "3",
		Type:        models.DisasterTypeWildfire,
		Severity:    models.AlertSeverityCritical,
		Title:       "Wildfire Spreading Rapidly",
		Description: "Fast-moving wildfire threatening residential areas in northern California",
		Location:    loc("Sonoma County, CA", 38.5078, -122.8097),
		SafetyTips: []string{
			"Follow evacuation orders immediately",
			"Pack emergency supplies and important documents",
			"Close all windows and doors before leaving",
			"Monitor local news for updates",
		},
		Timestamp: at("2023-11-03T10:15:00Z"),
		Radius:    75,
		Active:    true,
	},
	{
		ID:          "4",
		Type:        models.DisasterTypeHurricane,
		Severity:    models.AlertSeverityHigh,
		Title:       "Hurricane Approaching",
		Description: "Category 3 hurricane expected to make landfall within 24 hours",
		Location:    loc("Miami, FL", 25.7617, -80.1918),
		SafetyTips: []string{
			"Evacuate if in a vulnerable area or mobile home",
			"Secure outdoor items that could become projectiles",
			"Have emergency supplies ready",
			"Stay away from windows during the storm",
		},
		Timestamp: at("2023-08-30T09:00:00Z"),
		Radius:    200,
		Active:    true,
	},
	{
		ID:          "5",
		Type:        models.DisasterTypeTsunami,
		Severity:    models.AlertSeverityCritical,
		Title:       "Tsunami Warning",
		Description: "Possible tsunami following offshore earthquake",
		Location:    loc("Honolulu, HI", 21.3069, -157.8583),
		SafetyTips: []string{
			"Move immediately to higher ground",
			"Follow evacuation routes",
			"Stay away from the coast",
			"Do not return until officials say it is safe",
		},
		Timestamp: at("2023-12-05T05:30:00Z"),
		Radius:    150,
		Active:    true,
	},
	{
		ID:          "6",
		Type:        models.DisasterTypeFlood,
		Severity:    models.AlertSeverityHigh,
		Title:       "Monsoon Flooding",
		Description: "Severe flooding in Kerala due to intense monsoon rainfall",
		Location:    loc("Kochi, Kerala, India", 9.9312, 76.2673),
		SafetyTips: []string{
			"Evacuate to designated relief camps",
			"Stay away from floodwaters which may be contaminated",
			"Keep essential medicines and documents in waterproof containers",
			"Follow instructions from local disaster management authorities",
		},
		Timestamp: at("2023-07-18T06:15:00Z"),
		Radius:    80,
		Active:    true,
	},
	{
		ID:          "7",
		Type:        models.DisasterTypeEarthquake,
		Severity:    models.AlertSeverityMedium,
		Title:       "Earthquake in Himalayan Region",
		Description: "5.8 magnitude earthquake reported in Northern India",
		Location:    loc("Dehradun, Uttarakhand, India", 30.3165, 78.0322),
		SafetyTips: []string{
			"Stay away from buildings with visible damage",
			"Be prepared for aftershocks",
			"Keep emergency supplies handy",
			"Listen to local radio for updates and instructions",
		},
		Timestamp: at("2023-11-28T04:45:00Z"),
		Radius:    60,
		Active:    true,
	},
	{
		ID:          "8",
		Type:        models.DisasterTypeHurricane,
		Severity:    models.AlertSeverityCritical,
		Title:       "Cyclone Approaching Eastern Coast",
		Description: "Super Cyclone with wind speeds over 200 km/h approaching Odisha coast",
		Location:    loc("Bhubaneswar, Odisha, India", 20.2961, 85.8245),
		SafetyTips: []string{
			"Move to designated cyclone shelters immediately",
			"Secure loose items outside your home",
			"Keep emergency kit ready with food, water, and medicines",
			"Stay informed through official weather updates",
		},
		Timestamp: at("2023-06-08T11:30:00Z"),
		Radius:    180,
		Active:    true,
	},
}

func shelterAt(id, name string, lat, lon float64, address string, capacity int) models.SafetyShelter {
	return models.SafetyShelter{
		ID:          id,
		Name:        name,
		Coordinates: models.Coordinates{Latitude: lat, Longitude: lon},
		Address:     address,
		Capacity:    capacity,
		Available:   true,
	}
}

var fixtureShelters = []models.SafetyShelter{
	shelterAt("1", "Central High School Shelter", 37.7649, -122.4194, "123 Main St, San Francisco, CA", 500),
	shelterAt("2", "Community Center Shelter", 29.7504, -95.3698, "456 Oak Dr, Houston, TX", 300),
	shelterAt("3", "Red Cross Evacuation Center", 38.5178, -122.8197, "789 Pine Rd, Santa Rosa, CA", 450),
	shelterAt("4", "Hurricane Evacuation Center", 25.7717, -80.1918, "101 Beach Blvd, Miami, FL", 800),
	shelterAt("5", "Tsunami Relief Center", 21.3169, -157.8583, "555 Palm Ave, Honolulu, HI", 600),
	shelterAt("6", "Kerala State Relief Camp", 9.9389, 76.2569, "Government School, Ernakulam, Kerala, India", 350),
	shelterAt("7", "Uttarakhand Disaster Management Center", 30.3245, 78.0419, "Civil Lines, Dehradun, Uttarakhand, India", 250),
	shelterAt("8", "Odisha Super Cyclone Shelter", 20.2850, 85.8139, "Municipal Hall, Bhubaneswar, Odisha, India", 700),
	shelterAt("9", "Mumbai Flood Relief Center", 19.0760, 72.8777, "Municipal School, Dadar, Mumbai, Maharashtra, India", 500),
}

// FixtureAlerts returns a fresh copy of the built-in alert dataset. It
// seeds empty stores and backs every read fallback.
func FixtureAlerts() []models.DisasterAlert {
	out := make([]models.DisasterAlert, len(fixtureAlerts))
	for i, a := range fixtureAlerts {
		a.SafetyTips = slices.Clone(a.SafetyTips)
		out[i] = a
	}
	return out
}

func FixtureShelters() []models.SafetyShelter {
	return slices.Clone(fixtureShelters)
}
