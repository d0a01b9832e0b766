package bands

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/payewise/takehome-api/internal/resilience"
	"github.com/payewise/takehome-api/internal/tax"
)

type outcomeSource struct {
	calls int
	err   error
}

func (s *outcomeSource) BandsFor(_ context.Context, year tax.Year) (tax.Bands, error) {
	s.calls++
	if s.err != nil {
		return tax.Bands{}, s.err
	}
	return tax.Bands{Year: year}, nil
}

func TestGuardedFailsFastOnceOpen(t *testing.T) {
	source := &outcomeSource{err: errors.New("connection refused")}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Target:       "tax-bands-test",
		MinRequests:  2,
		FailureRatio: 0.5,
		OpenFor:      time.Minute,
	})
	guarded, err := NewGuarded(source, breaker)
	if err != nil {
		t.Fatalf("new guarded: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := guarded.BandsFor(ctx, tax.Year2024To2025); err == nil {
			t.Fatal("expected source error")
		}
	}

	_, err = guarded.BandsFor(ctx, tax.Year2024To2025)
	if !errors.Is(err, resilience.ErrOpenCircuit) {
		t.Fatalf("expected ErrOpenCircuit, got %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("open breaker should not reach the source, got %d calls", source.calls)
	}
}

func TestGuardedTreatsMissingRowAsHealthy(t *testing.T) {
	source := &outcomeSource{err: fmt.Errorf("%w: 2024/2025", ErrNotFound)}
	breaker := resilience.NewBreaker(resilience.BreakerConfig{
		Target:       "tax-bands-missing-row",
		MinRequests:  1,
		FailureRatio: 0.5,
		OpenFor:      time.Minute,
	})
	guarded, err := NewGuarded(source, breaker)
	if err != nil {
		t.Fatalf("new guarded: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := guarded.BandsFor(ctx, tax.Year2024To2025)
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("call %d: expected ErrNotFound, got %v", i, err)
		}
	}
	if source.calls != 5 {
		t.Fatalf("missing rows must not open the breaker, got %d calls", source.calls)
	}
}
