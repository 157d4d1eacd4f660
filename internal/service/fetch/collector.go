package fetch

import (
	"context"
	"time"

	domrepo "StressPulse/internal/domain/repository"
	applogger "StressPulse/pkg/logger"
	"StressPulse/pkg/workerpool"
)

// Source names one indicator endpoint.
type Source struct {
	Code string
	URL  string
}

// Collector fetches every configured source with bounded concurrency and
// writes the results into the raw store. One failing source never blocks
// the rest.
type Collector struct {
	client  *Client
	store   domrepo.RawDataStore
	pool    *workerpool.Pool
	sources []Source
	metrics domrepo.Metrics
	l       *applogger.Logger
}

func NewCollector(client *Client, store domrepo.RawDataStore, pool *workerpool.Pool, sources []Source, metrics domrepo.Metrics) *Collector {
	return &Collector{
		client:  client,
		store:   store,
		pool:    pool,
		sources: sources,
		metrics: metrics,
	}
}

// SetLogger injects a structured logger.
func (c *Collector) SetLogger(l *applogger.Logger) { c.l = l }

// CollectAll fetches and stores every source. It returns the codes that
// fetched and stored successfully; failed codes are logged and counted but
// do not error the batch.
func (c *Collector) CollectAll(ctx context.Context) []string {
	start := time.Now()
	okByIndex := make([]bool, len(c.sources))

	tasks := make([]workerpool.Task, len(c.sources))
	for i, src := range c.sources {
		i, src := i, src
		tasks[i] = workerpool.Task{
			Name: src.Code,
			Run: func(ctx context.Context) error {
				obs, err := c.client.FetchSeries(ctx, src.Code, src.URL)
				if err != nil {
					return err
				}
				if err := c.store.StoreObservations(ctx, src.Code, obs); err != nil {
					return err
				}
				okByIndex[i] = true
				return nil
			},
		}
	}

	failures := c.pool.RunAll(ctx, tasks)
	for _, f := range failures {
		if c.metrics != nil {
			c.metrics.RecordFetch(f.Name, false)
		}
		if c.l != nil {
			c.l.Warn("indicator fetch failed",
				applogger.String("code", f.Name),
				applogger.Error(f.Err),
			)
		}
	}

	var collected []string
	for i, ok := range okByIndex {
		if ok {
			collected = append(collected, c.sources[i].Code)
			if c.metrics != nil {
				c.metrics.RecordFetch(c.sources[i].Code, true)
			}
		}
	}

	if c.metrics != nil {
		c.metrics.RecordLatency("collect_all", time.Since(start).Seconds())
	}
	if c.l != nil {
		c.l.Info("collection finished",
			applogger.Int("sources", len(c.sources)),
			applogger.Int("collected", len(collected)),
			applogger.Int("failed", len(failures)),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return collected
}
