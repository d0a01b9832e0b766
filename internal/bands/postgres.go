package bands

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/payewise/takehome-api/internal/obs"
	"github.com/payewise/takehome-api/internal/tax"
)

const selectBands = `
SELECT
    personal_allowance::text,
    income_limit_for_personal_allowance::text,
    basic_rate_limit::text,
    higher_rate_limit::text,
    ni_primary_threshold::text,
    ni_upper_earnings_limit::text
FROM tax_bands
WHERE tax_year = $1`

// Postgres reads band thresholds from the tax_bands table. Rows hold
// annual amounts; cmd/tools/bandloader owns schema and writes.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres band source.
func NewPostgres(pool *pgxpool.Pool) (*Postgres, error) {
	if pool == nil {
		return nil, errors.New("bands: pgx pool is required")
	}
	return &Postgres{pool: pool}, nil
}

// BandsFor implements tax.BandSource.
func (p *Postgres) BandsFor(ctx context.Context, year tax.Year) (tax.Bands, error) {
	var raw [6]string
	err := p.pool.QueryRow(ctx, selectBands, string(year)).
		Scan(&raw[0], &raw[1], &raw[2], &raw[3], &raw[4], &raw[5])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if obs.BandLookupsTotal != nil {
				obs.BandLookupsTotal.WithLabelValues("postgres", "miss").Inc()
			}
			return tax.Bands{}, fmt.Errorf("%w: %s", ErrNotFound, year)
		}
		if obs.BandLookupsTotal != nil {
			obs.BandLookupsTotal.WithLabelValues("postgres", "error").Inc()
		}
		return tax.Bands{}, fmt.Errorf("query tax bands: %w", err)
	}

	b := tax.Bands{Year: year}
	for i, field := range []*decimal.Decimal{
		&b.PersonalAllowance,
		&b.IncomeLimitForPersonalAllowance,
		&b.BasicRateLimit,
		&b.HigherRateLimit,
		&b.NIPrimaryThreshold,
		&b.NIUpperEarningsLimit,
	} {
		v, err := decimal.NewFromString(raw[i])
		if err != nil {
			return tax.Bands{}, fmt.Errorf("tax bands for %s: %w", year, err)
		}
		*field = v
	}
	if err := b.Validate(); err != nil {
		return tax.Bands{}, err
	}
	if obs.BandLookupsTotal != nil {
		obs.BandLookupsTotal.WithLabelValues("postgres", "hit").Inc()
	}
	return b, nil
}
