package normalize

import "github.com/mr1hm/go-disaster-alerts/internal/models"

var baseTips = map[models.DisasterType][]string{
	models.DisasterTypeEarthquake: {
		"Drop, cover, and hold on",
		"Stay away from windows and exterior walls",
		"If outside, stay in open areas away from buildings",
		"Be prepared for aftershocks",
	},
	models.DisasterTypeFlood: {
		"Move to higher ground immediately",
		"Do not walk or drive through flood waters",
		"Stay away from storm drains and culverts",
		"Follow evacuation orders if given",
	},
	models.DisasterTypeWildfire: {
		"Follow evacuation orders immediately",
		"Pack emergency supplies and important documents",
		"Close all windows and doors before leaving",
		"Monitor local news for updates",
	},
	models.DisasterTypeHurricane: {
		"Evacuate if in a vulnerable area or mobile home",
		"Secure outdoor items that could become projectiles",
		"Have emergency supplies ready",
		"Stay away from windows during the storm",
	},
	models.DisasterTypeTsunami: {
		"Move immediately to higher ground",
		"Follow evacuation routes",
		"Stay away from the coast",
		"Do not return until officials say it is safe",
	},
}

var severeEarthquakeTips = []string{
	"Expect and prepare for potential infrastructure damage",
	"Check gas, water, and electric lines for damage",
}

// SafetyTips returns the ordered tips for a type and severity. The slice is
// freshly allocated on every call.
func SafetyTips(t models.DisasterType, s models.AlertSeverity) []string {
	tips := append([]string{}, baseTips[t]...)
	if t == models.DisasterTypeEarthquake && (s == models.AlertSeverityHigh || s == models.AlertSeverityCritical) {
		tips = append(tips, severeEarthquakeTips...)
	}
	return tips
}
