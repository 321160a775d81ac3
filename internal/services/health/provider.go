// Package health talks to the external health-data provider and shapes its
// samples into per-day records.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/averlow/healthdash/internal/models"
)

// MetricKind identifies one sample series exposed by the provider.
type MetricKind string

const (
	KindBodyMass     MetricKind = "body_mass"
	KindStepCount    MetricKind = "step_count"
	KindActiveEnergy MetricKind = "active_energy"
	KindSleep        MetricKind = "sleep"
)

// Provider is the facade over the health-data source. Implementations must
// distinguish "no data for a day" (absent field) from a fetch failure
// (returned error).
type Provider interface {
	// RequestAccess verifies the provider is reachable and authorized.
	RequestAccess(ctx context.Context) error

	// FetchDailySamples returns one DailyMetric per calendar day in
	// [from, to] that has at least one sample. Days without any samples
	// are omitted; individual absent fields are nil.
	FetchDailySamples(ctx context.Context, from, to time.Time) ([]models.DailyMetric, error)
}

// AuthError means provider access was denied or is unavailable on this
// host. Fatal for the sync attempt; the orchestrator does not retry.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("health provider access denied: %s", e.Reason)
}

// FetchError is a network or provider query failure for one metric kind.
// Distinct from "no data", which is a valid absent field.
type FetchError struct {
	Kind MetricKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s samples: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
