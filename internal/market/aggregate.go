package market

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/snowyfields/marketboard/internal/model"
)

// Fetcher is the one upstream read the aggregator depends on. *Client
// satisfies it; tests substitute fakes.
type Fetcher interface {
	Fetch(ctx context.Context, origin string, itemID int) model.Reading
}

// Aggregator fans one item's query out across every configured origin and
// reduces the readings into a single summary.
type Aggregator struct {
	fetcher Fetcher
}

func NewAggregator(f Fetcher) *Aggregator {
	return &Aggregator{fetcher: f}
}

// Compute queries each origin independently and concurrently. Origins that
// fail or hold no data contribute nothing; a summary with nil prices is a
// valid success, not an error. Readings land in origin-ordered slots so the
// documented tie-breaks stay deterministic regardless of completion order.
func (a *Aggregator) Compute(ctx context.Context, itemID int, origins []string) (*model.Summary, error) {
	if len(origins) == 0 {
		return nil, fmt.Errorf("aggregate item %d: no origins configured", itemID)
	}

	readings := make([]model.Reading, len(origins))
	var wg sync.WaitGroup
	for i, origin := range origins {
		wg.Add(1)
		go func(slot int, origin string) {
			defer wg.Done()
			readings[slot] = a.fetcher.Fetch(ctx, origin, itemID)
		}(i, origin)
	}
	wg.Wait()

	return reduce(itemID, readings), nil
}

func reduce(itemID int, readings []model.Reading) *model.Summary {
	sum := &model.Summary{ItemID: itemID}

	var listingPrices, salePrices []int64
	for _, r := range readings {
		if r.ListingPrice != nil {
			listingPrices = append(listingPrices, *r.ListingPrice)
			// Strictly-less keeps the first origin on a tie.
			if sum.LowestPrice == nil || *r.ListingPrice < *sum.LowestPrice {
				p := *r.ListingPrice
				sum.LowestPrice = &p
				sum.LowestOrigin = r.Origin
			}
		}
		if r.SalePrice != nil {
			salePrices = append(salePrices, *r.SalePrice)
			// Origins are not time-ordered against each other, so the
			// first origin in configured order that saw a sale wins.
			if sum.Sale == nil {
				sum.Sale = &model.Sale{
					Price:    *r.SalePrice,
					Quantity: valueOrZero(r.SaleQuantity),
					Time:     valueOrZero(r.SaleTime),
				}
			}
		}
	}

	// What actually sold beats what is merely listed; listings only back
	// the average when no origin saw a sale.
	switch {
	case len(salePrices) > 0:
		sum.AveragePrice = roundedMean(salePrices)
	case len(listingPrices) > 0:
		sum.AveragePrice = roundedMean(listingPrices)
	}

	return sum
}

func roundedMean(vals []int64) *int64 {
	var total float64
	for _, v := range vals {
		total += float64(v)
	}
	m := int64(math.Round(total / float64(len(vals))))
	return &m
}

func valueOrZero(p *int64) int64 {
	if p != nil {
		return *p
	}
	return 0
}
