// Package market fetches and aggregates per-origin price data. One origin
// is one independent upstream endpoint (a world server or a pre-aggregated
// region endpoint); origins fail independently and the aggregate degrades
// rather than erroring.
package market

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/hashicorp/go-retryablehttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/snowyfields/marketboard/internal/model"
)

const userAgent = "marketboard/1.0"

// ClientConfig carries the upstream tunables.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration // per-fetch bound, covers retries
	RatePerSec float64       // global pacing across all origins
}

// Client issues one upstream read per (origin, item) pair.
type Client struct {
	base    string
	timeout time.Duration
	http    *retryablehttp.Client
	limiter *rate.Limiter
}

// NewClient builds the upstream client. Retries are transparent and bounded
// by the same per-fetch timeout as the initial attempt.
func NewClient(cfg ClientConfig) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = time.Second
	rc.Logger = stdlog.New(io.Discard, "", 0)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	perSec := cfg.RatePerSec
	if perSec <= 0 {
		perSec = 5
	}

	return &Client{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		http:    rc,
		limiter: rate.NewLimiter(rate.Limit(perSec), int(perSec)+1),
	}
}

// listing is one active offer; the upstream orders them cheapest-first.
type listing struct {
	PricePerUnit *int64 `json:"pricePerUnit"`
}

// sale is one completed transaction; the upstream orders them
// most-recent-first.
type sale struct {
	PricePerUnit *int64 `json:"pricePerUnit"`
	Quantity     *int64 `json:"quantity"`
	Timestamp    *int64 `json:"timestamp"`
}

type marketResponse struct {
	Listings      []listing `json:"listings"`
	RecentHistory []sale    `json:"recentHistory"`
}

// Fetch reads one origin's data for one item. It never returns an error:
// transport failure, timeout, a bad status, or an undecodable body all
// degrade to a Reading with no data, so a single dead origin cannot sink
// the aggregation it feeds.
func (c *Client) Fetch(ctx context.Context, origin string, itemID int) model.Reading {
	reading := model.Reading{Origin: origin}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		log.WithError(err).WithField("origin", origin).Debug("market: rate wait aborted")
		return reading
	}

	u := fmt.Sprintf("%s/%s/%d", c.base, url.PathEscape(origin), itemID)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		log.WithError(err).WithField("origin", origin).Warn("market: build request")
		return reading
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"origin": origin, "item": itemID}).
			Warn("market: origin unavailable")
		return reading
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		log.WithFields(log.Fields{"origin": origin, "item": itemID, "status": resp.StatusCode}).
			Warn("market: unexpected status")
		return reading
	}

	body, err := decodeBody(resp)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{"origin": origin, "item": itemID}).
			Warn("market: read body")
		return reading
	}

	var mr marketResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		log.WithError(err).WithFields(log.Fields{"origin": origin, "item": itemID}).
			Warn("market: undecodable body")
		return reading
	}

	// Listings arrive cheapest-first and history most-recent-first, so the
	// head of each is all we keep.
	if len(mr.Listings) > 0 {
		reading.ListingPrice = mr.Listings[0].PricePerUnit
	}
	if len(mr.RecentHistory) > 0 && mr.RecentHistory[0].PricePerUnit != nil {
		reading.SalePrice = mr.RecentHistory[0].PricePerUnit
		reading.SaleQuantity = mr.RecentHistory[0].Quantity
		reading.SaleTime = mr.RecentHistory[0].Timestamp
	}

	log.WithFields(log.Fields{
		"origin":  origin,
		"item":    itemID,
		"listing": reading.ListingPrice != nil,
		"sale":    reading.SalePrice != nil,
	}).Debug("market: reading")

	return reading
}

// decodeBody unwraps the content encodings we advertise. The transport does
// not decompress for us because Accept-Encoding is set explicitly.
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body
	switch resp.Header.Get("Content-Encoding") {
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}
