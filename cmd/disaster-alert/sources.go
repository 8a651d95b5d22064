package main

import (
	"context"
	"fmt"

	"github.com/mr1hm/go-disaster-alerts/internal/config"
	"github.com/mr1hm/go-disaster-alerts/internal/feed"
	"github.com/mr1hm/go-disaster-alerts/internal/ingestion"
	"github.com/mr1hm/go-disaster-alerts/internal/observability"
	"github.com/mr1hm/go-disaster-alerts/internal/repository"
	"github.com/mr1hm/go-disaster-alerts/internal/shelter"
	"github.com/mr1hm/go-disaster-alerts/internal/source"
)

// buildSource wires the backend selected by SOURCE. The returned close
// func releases whatever the backend holds open.
func buildSource(ctx context.Context, cfg *config.Config, metrics *observability.Metrics) (source.Source, func() error, error) {
	noop := func() error { return nil }

	var shelters *shelter.Generator
	if cfg.Source.ShelterSeed != 0 {
		shelters = shelter.NewSeededGenerator(cfg.Source.ShelterSeed)
	} else {
		shelters = shelter.NewGenerator(nil)
	}

	seismic := func() *ingestion.FeedSource {
		client := feed.NewClient(feed.Config{Name: "usgs", Timeout: cfg.Source.FeedTimeout}, metrics)
		return ingestion.NewSeismicSource(client, cfg.Source.USGSURL, shelters)
	}
	hazard := func() *ingestion.FeedSource {
		client := feed.NewClient(feed.Config{Name: "eonet", Timeout: cfg.Source.FeedTimeout}, metrics)
		return ingestion.NewHazardSource(client, cfg.Source.EONETURL, shelters)
	}

	switch cfg.Source.Kind {
	case config.SourceSeismic:
		return seismic(), noop, nil
	case config.SourceHazard:
		return hazard(), noop, nil
	case config.SourceLive:
		return ingestion.NewLiveSource(shelters, seismic(), hazard()), noop, nil
	case config.SourceMock:
		return repository.NewMemoryStore(), noop, nil
	case config.SourceSQLite:
		store, err := repository.NewSQLiteStore(cfg.DB.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return store, store.Close, nil
	case config.SourceFirestore:
		client, err := repository.NewFirestoreClient(ctx, cfg.Firestore.ProjectID)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewDocumentStore(client), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported source: %s", cfg.Source.Kind)
	}
}
