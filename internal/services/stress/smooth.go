package stress

import (
	"fmt"

	"StressPulse/internal/domain/models"
)

// Smoothing methods for the composite series.
const (
	SmoothEMA = "ema"
	SmoothSMA = "sma"
)

// ValidateSmoothing checks the configured method and window.
func ValidateSmoothing(method string, window int) error {
	if method != SmoothEMA && method != SmoothSMA {
		return &models.ConfigError{
			Field:  "stress.smoothing.method",
			Reason: fmt.Sprintf("must be %q or %q, got %q", SmoothEMA, SmoothSMA, method),
		}
	}
	if window < 1 {
		return &models.ConfigError{
			Field:  "stress.smoothing.window",
			Reason: fmt.Sprintf("must be >= 1, got %d", window),
		}
	}
	return nil
}

// Smooth applies the configured smoother to the series and returns a series
// of equal length.
func Smooth(xs []float64, method string, window int) []float64 {
	if method == SmoothSMA {
		return sma(xs, window)
	}
	return ema(xs, window)
}

// sma is a trailing rolling mean. Early points average the available
// prefix.
func sma(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		n := window
		if i+1 < window {
			n = i + 1
		} else if i >= window {
			sum -= xs[i-window]
		}
		out[i] = sum / float64(n)
	}
	return out
}

// ema is an exponential moving average with span = window, seeded by the
// simple mean of the first window points. Points before the seed carry the
// running prefix mean.
func ema(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	alpha := 2.0 / (float64(window) + 1.0)

	sum := 0.0
	for i, x := range xs {
		if i < window {
			sum += x
			out[i] = sum / float64(i+1)
			continue
		}
		out[i] = alpha*x + (1-alpha)*out[i-1]
	}
	return out
}
