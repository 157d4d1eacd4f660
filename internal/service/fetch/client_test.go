package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkghttp "StressPulse/pkg/http"
)

func TestFetchSeriesDecodesObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"date": "2024-01-02", "value": 18.5},
			{"date": "2024-01-03", "value": null}
		]`))
	}))
	defer srv.Close()

	c := NewClient(pkghttp.NewClient(), 0, 0)
	obs, err := c.FetchSeries(context.Background(), "VIX", srv.URL)
	require.NoError(t, err)
	require.Len(t, obs, 2)

	assert.Equal(t, "2024-01-02", obs[0].Date.Format("2006-01-02"))
	require.NotNil(t, obs[0].Value)
	assert.InDelta(t, 18.5, *obs[0].Value, 0)
	assert.Nil(t, obs[1].Value, "null readings are preserved as missing")
}

func TestFetchSeriesRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`[{"date": "2024-01-02", "value": 1.0}]`))
	}))
	defer srv.Close()

	c := NewClient(pkghttp.NewClient(), 2, 0)
	obs, err := c.FetchSeries(context.Background(), "VIX", srv.URL)
	require.NoError(t, err)
	assert.Len(t, obs, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetchSeriesExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(pkghttp.NewClient(), 1, 0)
	_, err := c.FetchSeries(context.Background(), "VIX", srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VIX")
}

func TestFetchSeriesBadDateIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[{"date": "01/02/2024", "value": 1.0}]`))
	}))
	defer srv.Close()

	c := NewClient(pkghttp.NewClient(), 3, 0)
	_, err := c.FetchSeries(context.Background(), "VIX", srv.URL)
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "malformed payloads fail fast")
}
