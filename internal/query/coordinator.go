// Package query gates the market aggregator behind a TTL cache and a
// single-flight group. It is the one entry point the command layer calls
// for prices, and the only writer of the cache.
package query

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/snowyfields/marketboard/internal/cache"
	"github.com/snowyfields/marketboard/internal/model"
)

// Aggregator is the upstream pass a cache miss triggers. *market.Aggregator
// satisfies it.
type Aggregator interface {
	Compute(ctx context.Context, itemID int, origins []string) (*model.Summary, error)
}

// Coordinator collapses concurrent identical queries into one aggregation
// and serves repeats from cache until the TTL lapses.
type Coordinator struct {
	region  string
	origins []string
	agg     Aggregator
	store   *cache.Store
	flight  singleflight.Group
}

func New(region string, origins []string, agg Aggregator, store *cache.Store) *Coordinator {
	return &Coordinator{
		region:  region,
		origins: origins,
		agg:     agg,
		store:   store,
	}
}

// Query returns the market summary for itemID. The result says how it was
// obtained: a live cache hit, a ride on another caller's in-flight
// aggregation, or a fresh upstream pass. The single-flight group drops its
// in-flight entry when the aggregation settles, success or failure, so a
// failed pass never wedges later queries.
func (c *Coordinator) Query(ctx context.Context, itemID int) (model.Result, error) {
	key := cache.BuildKey(c.region, strconv.Itoa(itemID))

	if sum, ok := c.store.Get(key); ok {
		return model.Result{Summary: sum, FromCache: true}, nil
	}

	// Only the goroutine that actually runs the aggregation sees led=true;
	// everyone else joined an existing flight.
	var led bool
	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		led = true
		sum, err := c.agg.Compute(ctx, itemID, c.origins)
		if err != nil {
			return nil, err
		}
		c.store.Put(key, sum)
		return sum, nil
	})
	if err != nil {
		return model.Result{}, fmt.Errorf("query item %d: %w", itemID, err)
	}

	return model.Result{
		Summary:   v.(*model.Summary),
		FromCache: !led,
		Shared:    !led,
	}, nil
}
