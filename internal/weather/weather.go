// Package weather looks up the forecast for a match's city and start time.
package weather

import (
	"context"
	"time"
)

// Unavailable is reported when no forecast covers the requested instant.
const Unavailable = "unavailable"

// Report is the weather snapshot stored on a match.
type Report struct {
	Weather     string `json:"weather"`
	RainWarning bool   `json:"rain_warning"`
}

// Provider returns the forecast for city at the given instant. Failures are
// classified as apperror.KindUpstream.
type Provider interface {
	Lookup(ctx context.Context, city string, at time.Time) (Report, error)
}

// Disabled is used when no forecast API key is configured.
type Disabled struct{}

func (Disabled) Lookup(context.Context, string, time.Time) (Report, error) {
	return Report{}, nil
}
