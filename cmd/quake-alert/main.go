package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-disaster-alerts/internal/config"
	"github.com/mr1hm/go-disaster-alerts/internal/feed"
	"github.com/mr1hm/go-disaster-alerts/internal/geo"
	"github.com/mr1hm/go-disaster-alerts/internal/ingestion"
	"github.com/mr1hm/go-disaster-alerts/internal/logging"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/proximity"
	"github.com/mr1hm/go-disaster-alerts/internal/repository"
	"github.com/mr1hm/go-disaster-alerts/internal/shelter"
	"github.com/mr1hm/go-disaster-alerts/internal/source"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}

	home := models.DefaultUserLocation().Coordinates
	lat := flag.Float64("lat", home.Latitude, "latitude of the position to check")
	lon := flag.Float64("lon", home.Longitude, "longitude of the position to check")
	radius := flag.Float64("radius", cfg.Monitor.AlertRadiusKm, "search radius in km")
	src := flag.String("source", "seismic", "alert source: seismic, hazard, live or mock")
	shelters := flag.Bool("shelters", false, "also list shelters within the shelter radius")
	timeout := flag.Duration("timeout", 30*time.Second, "overall timeout")
	flag.Parse()

	// keep stdout for results
	logging.Setup("error", cfg.Logging.Format)

	origin := models.Coordinates{Latitude: *lat, Longitude: *lon}
	if !origin.Valid() {
		logging.Fatalf("coordinates out of range: %v,%v", *lat, *lon)
	}

	s, err := cliSource(*src, cfg)
	if err != nil {
		logging.Fatalf("%v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	alerts := proximity.SortBySeverityThenRecency(s.GetAlertsNearLocation(ctx, origin.Latitude, origin.Longitude, *radius))
	printAlerts(os.Stdout, origin, *radius, alerts)

	if *shelters {
		printShelters(os.Stdout, origin, s.GetNearbyShelters(ctx, origin.Latitude, origin.Longitude, cfg.Monitor.ShelterRadiusKm))
	}
	slog.Debug("quake-alert done", "alerts", len(alerts))
}

func cliSource(kind string, cfg *config.Config) (source.Source, error) {
	gen := shelter.NewSeededGenerator(cfg.Source.ShelterSeed)
	seismic := ingestion.NewSeismicSource(feed.NewClient(feed.Config{Name: "usgs", Timeout: cfg.Source.FeedTimeout}, nil), cfg.Source.USGSURL, gen)
	hazard := ingestion.NewHazardSource(feed.NewClient(feed.Config{Name: "eonet", Timeout: cfg.Source.FeedTimeout}, nil), cfg.Source.EONETURL, gen)

	switch strings.ToLower(kind) {
	case "seismic":
		return seismic, nil
	case "hazard":
		return hazard, nil
	case "live":
		return ingestion.NewLiveSource(gen, seismic, hazard), nil
	case "mock":
		return repository.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported source: %s", kind)
	}
}

func printAlerts(out io.Writer, origin models.Coordinates, radiusKm float64, alerts []models.DisasterAlert) {
	fmt.Fprintf(out, "%d active alerts within %.0f km of %s\n\n",
		len(alerts), radiusKm, geo.FormatCoordinates(origin.Latitude, origin.Longitude))
	if len(alerts) == 0 {
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEVERITY\tTYPE\tTITLE\tWHERE\tDISTANCE\tWHEN")
	for _, a := range alerts {
		d := geo.Distance(origin, a.Location.Coordinates)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.Severity, a.Type.Label(), a.Title, a.Location.Name,
			geo.DistanceDescription(d), a.Timestamp.Format(time.RFC822))
	}
	tw.Flush()
}

func printShelters(out io.Writer, origin models.Coordinates, shelters []models.SafetyShelter) {
	fmt.Fprintf(out, "\n%d shelters nearby\n\n", len(shelters))
	if len(shelters) == 0 {
		return
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tADDRESS\tCAPACITY\tDISTANCE")
	for _, s := range shelters {
		d := geo.Distance(origin, s.Coordinates)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", s.Name, s.Address, s.Capacity, geo.DistanceDescription(d))
	}
	tw.Flush()
}
