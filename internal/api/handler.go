package api

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-disaster-alerts/internal/geo"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/normalize"
	"github.com/mr1hm/go-disaster-alerts/internal/observability"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
	"github.com/mr1hm/go-disaster-alerts/internal/reports"
	"github.com/mr1hm/go-disaster-alerts/internal/repository"
	"github.com/mr1hm/go-disaster-alerts/internal/source"
)

type HandlerConfig struct {
	Source  source.Source
	Monitor *proximity.Monitor
	Reports *reports.Service
	// Metrics also enables GET /metrics when set.
	Metrics *observability.Metrics

	AlertRadiusKm   float64
	ShelterRadiusKm float64
}

type Handler struct {
	src     source.Source
	store   source.Store // nil unless src supports writes
	monitor *proximity.Monitor
	reports *reports.Service
	metrics *observability.Metrics

	alertRadiusKm   float64
	shelterRadiusKm float64
}

func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.AlertRadiusKm <= 0 {
		cfg.AlertRadiusKm = proximity.AlertRadiusKm
	}
	if cfg.ShelterRadiusKm <= 0 {
		cfg.ShelterRadiusKm = proximity.ShelterRadiusKm
	}
	store, _ := cfg.Source.(source.Store)
	return &Handler{
		src:             cfg.Source,
		store:           store,
		monitor:         cfg.Monitor,
		reports:         cfg.Reports,
		metrics:         cfg.Metrics,
		alertRadiusKm:   cfg.AlertRadiusKm,
		shelterRadiusKm: cfg.ShelterRadiusKm,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/alerts", h.getAlerts)
	api.GET("/alerts.geojson", h.getAlertsGeoJSON)
	api.GET("/alerts/near", h.getNearbyAlerts)
	api.GET("/alerts/:id", h.getAlert)
	api.GET("/shelters/near", h.getNearbyShelters)
	api.POST("/classify", h.classify)

	if h.monitor != nil {
		api.POST("/location", h.updateLocation)
	}
	if h.reports != nil {
		api.POST("/reports", h.submitReport)
	}
	if h.store != nil {
		api.POST("/alerts", h.createAlert)
		api.PUT("/alerts/:id", h.updateAlert)
		api.DELETE("/alerts/:id", h.deleteAlert)
		api.POST("/shelters", h.createShelter)
		api.PUT("/shelters/:id", h.updateShelter)
		api.DELETE("/shelters/:id", h.deleteShelter)
	}
	if h.metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// breakerReporter is implemented by feed-backed sources.
type breakerReporter interface {
	BreakerStates() map[string]string
}

func (h *Handler) health(c *gin.Context) {
	resp := gin.H{"status": "ok"}
	if h.monitor != nil {
		resp["monitoredAlerts"] = h.monitor.AlertCount()
		resp["warningSubscribers"] = h.monitor.Subscribers()
	}
	if br, ok := h.src.(breakerReporter); ok {
		resp["breakers"] = br.BreakerStates()
	}
	c.JSON(http.StatusOK, resp)
}

type nearbyAlert struct {
	models.DisasterAlert
	DistanceKm float64 `json:"distanceKm"`
	Distance   string  `json:"distance"`
}

type nearbyShelter struct {
	models.SafetyShelter
	DistanceKm       float64 `json:"distanceKm"`
	Distance         string  `json:"distance"`
	CoordinatesLabel string  `json:"coordinatesLabel"`
}

func withDistances(alerts []models.DisasterAlert, origin models.Coordinates) []nearbyAlert {
	out := make([]nearbyAlert, 0, len(alerts))
	for _, a := range alerts {
		d := geo.Distance(origin, a.Location.Coordinates)
		out = append(out, nearbyAlert{DisasterAlert: a, DistanceKm: round1(d), Distance: geo.DistanceDescription(d)})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func (h *Handler) getAlerts(c *gin.Context) {
	alerts := proximity.SortBySeverityThenRecency(h.src.GetActiveAlerts(c.Request.Context()))
	c.JSON(http.StatusOK, alerts)
}

func (h *Handler) getAlertsGeoJSON(c *gin.Context) {
	fc := toGeoJSON(h.src.GetActiveAlerts(c.Request.Context()))
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func (h *Handler) getNearbyAlerts(c *gin.Context) {
	origin, radius, err := parseNearbyQuery(c, h.alertRadiusKm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	alerts := h.src.GetAlertsNearLocation(c.Request.Context(), origin.Latitude, origin.Longitude, radius)
	c.JSON(http.StatusOK, withDistances(proximity.SortBySeverityThenRecency(alerts), origin))
}

func (h *Handler) getAlert(c *gin.Context) {
	a := h.src.GetAlertByID(c.Request.Context(), c.Param("id"))
	if a == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) getNearbyShelters(c *gin.Context) {
	origin, radius, err := parseNearbyQuery(c, h.shelterRadiusKm)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	shelters := h.src.GetNearbyShelters(c.Request.Context(), origin.Latitude, origin.Longitude, radius)
	out := make([]nearbyShelter, 0, len(shelters))
	for _, s := range shelters {
		d := geo.Distance(origin, s.Coordinates)
		out = append(out, nearbyShelter{
			SafetyShelter:    s,
			DistanceKm:       round1(d),
			Distance:         geo.DistanceDescription(d),
			CoordinatesLabel: geo.FormatCoordinates(s.Coordinates.Latitude, s.Coordinates.Longitude),
		})
	}
	c.JSON(http.StatusOK, out)
}

type classifyRequest struct {
	Type         string  `json:"type" binding:"required"`
	Magnitude    float64 `json:"magnitude"`
	WaterLevelFt float64 `json:"waterLevelFt"`
	WindSpeedMph float64 `json:"windSpeedMph"`
}

func (h *Handler) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid classify body"})
		return
	}
	t, ok := models.ParseDisasterType(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown disaster type %q", req.Type)})
		return
	}

	sev := normalize.Classify(t, normalize.Params{
		Magnitude:    req.Magnitude,
		WaterLevelFt: req.WaterLevelFt,
		WindSpeedMph: req.WindSpeedMph,
	})
	c.JSON(http.StatusOK, gin.H{
		"type":       t,
		"severity":   sev,
		"label":      sev.Label(),
		"color":      sev.Color(),
		"safetyTips": normalize.SafetyTips(t, sev),
	})
}

func (h *Handler) updateLocation(c *gin.Context) {
	var loc models.UserLocation
	if err := c.ShouldBindJSON(&loc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid location body"})
		return
	}
	if !loc.Coordinates.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return
	}

	if h.metrics != nil {
		h.metrics.LocationUpdates.Inc()
	}
	w, warned := h.monitor.Update(loc)
	alerts := []models.DisasterAlert{}
	if warned {
		alerts = w.Alerts
		if h.metrics != nil {
			h.metrics.ProximityWarnings.Inc()
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"warning": warned,
		"alerts":  withDistances(alerts, loc.Coordinates),
	})
}

func (h *Handler) submitReport(c *gin.Context) {
	var r models.Report
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report body"})
		return
	}

	accepted, err := h.reports.Submit(c.Request.Context(), r)
	if errors.Is(err, reports.ErrInvalidReport) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report", "fields": fieldErrors(err)})
		return
	}
	if err != nil {
		slog.Error("report submission failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to submit report"})
		return
	}
	c.JSON(http.StatusCreated, accepted)
}

// fieldErrors flattens validation errors into field -> message.
func fieldErrors(err error) map[string]string {
	fields := map[string]string{}
	var walk func(error)
	walk = func(err error) {
		switch u := err.(type) {
		case *models.FieldError:
			fields[u.Field] = u.Message
		case interface{ Unwrap() []error }:
			for _, e := range u.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return fields
}

func (h *Handler) createAlert(c *gin.Context) {
	var a models.DisasterAlert
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert body"})
		return
	}
	if len(a.SafetyTips) == 0 {
		a.SafetyTips = normalize.SafetyTips(a.Type, a.Severity)
	}
	if err := h.store.AddAlert(c.Request.Context(), &a); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handler) updateAlert(c *gin.Context) {
	var a models.DisasterAlert
	if err := c.ShouldBindJSON(&a); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid alert body"})
		return
	}
	a.ID = c.Param("id")
	if err := h.store.UpdateAlert(c.Request.Context(), &a); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) deleteAlert(c *gin.Context) {
	if err := h.store.DeleteAlert(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createShelter(c *gin.Context) {
	var s models.SafetyShelter
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shelter body"})
		return
	}
	if err := h.store.AddShelter(c.Request.Context(), &s); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

func (h *Handler) updateShelter(c *gin.Context) {
	var s models.SafetyShelter
	if err := c.ShouldBindJSON(&s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid shelter body"})
		return
	}
	s.ID = c.Param("id")
	if err := h.store.UpdateShelter(c.Request.Context(), &s); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) deleteShelter(c *gin.Context) {
	if err := h.store.DeleteShelter(c.Request.Context(), c.Param("id")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidRecord):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, repository.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	default:
		slog.Error("store write failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store write failed"})
	}
}

// parseNearbyQuery reads lat, lon and an optional radius (km).
func parseNearbyQuery(c *gin.Context, defaultRadius float64) (models.Coordinates, float64, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return models.Coordinates{}, 0, errors.New("lat is required and must be a number")
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		return models.Coordinates{}, 0, errors.New("lon is required and must be a number")
	}
	origin := models.Coordinates{Latitude: lat, Longitude: lon}
	if !origin.Valid() {
		return origin, 0, errors.New("coordinates out of range")
	}

	radius := defaultRadius
	if r := c.Query("radius"); r != "" {
		radius, err = strconv.ParseFloat(r, 64)
		if err != nil || radius < 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
			return origin, 0, fmt.Errorf("invalid radius %q", r)
		}
	}
	return origin, radius, nil
}
