package ingestion

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mr1hm/go-disaster-alerts/internal/feed"
	"github.com/mr1hm/go-disaster-alerts/internal/models"
	"github.com/mr1hm/go-disaster-alerts/internal/shelter"
)

// NewLiveSource fetches every feed concurrently and concatenates the
// results in feed order. One feed failing does not hide the others; the
// failures are joined and logged by the caller.
func NewLiveSource(shelters *shelter.Generator, feeds ...*FeedSource) *FeedSource {
	var clients []*feed.Client
	for _, f := range feeds {
		clients = append(clients, f.clients...)
	}
	return &FeedSource{
		name:     "live",
		shelters: shelters,
		clients:  clients,
		fetch: func(ctx context.Context) ([]models.DisasterAlert, error) {
			results := make([][]models.DisasterAlert, len(feeds))
			errs := make([]error, len(feeds))

			var g errgroup.Group
			for i, f := range feeds {
				g.Go(func() error {
					results[i], errs[i] = f.fetch(ctx)
					return nil
				})
			}
			g.Wait()

			return slices.Concat(results...), errors.Join(errs...)
		},
	}
}
