package bands

import (
	"context"
	"errors"

	"github.com/payewise/takehome-api/internal/resilience"
	"github.com/payewise/takehome-api/internal/tax"
)

// Guarded wraps a band source with a circuit breaker so a failing
// external table fails fast instead of stalling every calculation.
type Guarded struct {
	source  tax.BandSource
	breaker *resilience.Breaker
}

// NewGuarded wraps source with the given breaker.
func NewGuarded(source tax.BandSource, breaker *resilience.Breaker) (*Guarded, error) {
	if source == nil {
		return nil, errors.New("bands: source is required")
	}
	if breaker == nil {
		return nil, errors.New("bands: breaker is required")
	}
	return &Guarded{source: source, breaker: breaker}, nil
}

// BandsFor implements tax.BandSource.
func (g *Guarded) BandsFor(ctx context.Context, year tax.Year) (tax.Bands, error) {
	if !g.breaker.Allow(ctx) {
		return tax.Bands{}, resilience.ErrOpenCircuit
	}
	b, err := g.source.BandsFor(ctx, year)
	// A missing row is a data problem, not a dependency failure.
	g.breaker.Report(ctx, err == nil || errors.Is(err, ErrNotFound))
	return b, err
}
