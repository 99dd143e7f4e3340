// Package engine wires the catalog index, market client, and query
// coordinator into the one object the command dispatcher holds. It is
// constructed once at startup and passed down; there is no package-level
// state.
package engine

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/snowyfields/marketboard/internal/cache"
	"github.com/snowyfields/marketboard/internal/catalog"
	"github.com/snowyfields/marketboard/internal/config"
	"github.com/snowyfields/marketboard/internal/market"
	"github.com/snowyfields/marketboard/internal/model"
	"github.com/snowyfields/marketboard/internal/query"
)

type Engine struct {
	resolveLimit int
	index        *catalog.Index
	coord        *query.Coordinator
}

// New loads the catalog and assembles the engine. A catalog that cannot be
// loaded is the one fatal condition: the caller must refuse to serve.
func New(cfg *config.Config) (*Engine, error) {
	items, err := catalog.Load(cfg.CatalogPath, cfg.OverridePath)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	client := market.NewClient(market.ClientConfig{
		BaseURL:    cfg.BaseURL,
		Timeout:    cfg.FetchTimeout,
		RatePerSec: cfg.RatePerSec,
	})
	coord := query.New(cfg.Region, cfg.Origins, market.NewAggregator(client), cache.New(cfg.CacheTTL))

	log.WithFields(log.Fields{
		"items":   len(items),
		"region":  cfg.Region,
		"origins": len(cfg.Origins),
	}).Info("engine: ready")

	return &Engine{
		resolveLimit: cfg.ResolveLimit,
		index:        catalog.New(items),
		coord:        coord,
	}, nil
}

// Resolve maps a free-text keyword to candidate items. Zero hits means the
// name is unknown, several mean the caller should disambiguate; neither is
// an error.
func (e *Engine) Resolve(keyword string) []model.Candidate {
	return e.index.Resolve(keyword, e.resolveLimit)
}

// Query returns the cached or freshly aggregated market summary for a
// resolved item id. A summary with nil prices means the item exists but no
// origin currently has data for it.
func (e *Engine) Query(ctx context.Context, itemID int) (model.Result, error) {
	return e.coord.Query(ctx, itemID)
}
