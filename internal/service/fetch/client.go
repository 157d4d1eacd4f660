package fetch

import (
	"context"
	"fmt"
	"time"

	"StressPulse/internal/domain/models"
	"StressPulse/internal/service/ratelimit"
	pkghttp "StressPulse/pkg/http"
)

// observationDTO is the wire shape served by indicator endpoints. A null
// value marks a day the source reported but had no reading for.
type observationDTO struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// Client pulls indicator observations over HTTP with bounded retries and
// an outbound rate limit shared across all sources.
type Client struct {
	http    *pkghttp.Client
	retries int
	limiter *ratelimit.Limiter
	maxRPS  float64
}

// NewClient creates a fetch client. retries counts attempts after the
// first; it is clamped at zero. maxRPS <= 0 disables rate limiting.
func NewClient(httpClient *pkghttp.Client, retries int, maxRPS float64) *Client {
	c := &Client{http: httpClient, retries: retries}
	if c.retries < 0 {
		c.retries = 0
	}
	if maxRPS > 0 {
		c.limiter = ratelimit.New()
		c.maxRPS = maxRPS
	}
	return c
}

// FetchSeries pulls all observations for one indicator endpoint. Transient
// failures are retried with linear backoff; a malformed payload is not.
func (c *Client) FetchSeries(ctx context.Context, code, url string) ([]models.Observation, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
		if err := c.waitForToken(ctx); err != nil {
			return nil, err
		}

		var dtos []observationDTO
		err := c.http.SendAndParse(ctx, &pkghttp.RequestOptions{
			Method: pkghttp.MethodGet,
			URL:    url,
		}, &dtos)
		if err != nil {
			lastErr = err
			continue
		}
		return decodeObservations(code, dtos)
	}
	return nil, fmt.Errorf("fetch %s: %w", code, lastErr)
}

func (c *Client) waitForToken(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	for !c.limiter.Allow("fetch", c.maxRPS, c.maxRPS) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

func decodeObservations(code string, dtos []observationDTO) ([]models.Observation, error) {
	obs := make([]models.Observation, 0, len(dtos))
	for i, dto := range dtos {
		d, err := time.Parse("2006-01-02", dto.Date)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: observation %d has bad date %q: %w", code, i, dto.Date, err)
		}
		obs = append(obs, models.Observation{Date: d, Value: dto.Value})
	}
	return obs, nil
}
