package bands

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/payewise/takehome-api/internal/obs"
	"github.com/payewise/takehome-api/internal/tax"
)

// ErrNotFound is returned when a tax year has no row in the band table.
var ErrNotFound = errors.New("tax bands not found")

//go:embed tax-bands.csv
var bandTable []byte

var weeksPerYear = decimal.NewFromInt(52)

// Embedded serves band thresholds from the table compiled into the
// binary. National Insurance thresholds are stored as weekly amounts,
// the form HMRC publishes them in, and annualised once at load.
type Embedded struct {
	byYear map[tax.Year]tax.Bands
}

// NewEmbedded parses the embedded band table.
func NewEmbedded() (*Embedded, error) {
	byYear, err := parseBandTable(bytes.NewReader(bandTable))
	if err != nil {
		return nil, fmt.Errorf("parse embedded band table: %w", err)
	}
	return &Embedded{byYear: byYear}, nil
}

// BandsFor implements tax.BandSource.
func (e *Embedded) BandsFor(_ context.Context, year tax.Year) (tax.Bands, error) {
	b, ok := e.byYear[year]
	if !ok {
		if obs.BandLookupsTotal != nil {
			obs.BandLookupsTotal.WithLabelValues("embedded", "miss").Inc()
		}
		return tax.Bands{}, fmt.Errorf("%w: %s", ErrNotFound, year)
	}
	if obs.BandLookupsTotal != nil {
		obs.BandLookupsTotal.WithLabelValues("embedded", "hit").Inc()
	}
	return b, nil
}

// All returns every band row in the table keyed by tax year. The loader
// tool uses it to seed external stores.
func (e *Embedded) All() map[tax.Year]tax.Bands {
	all := make(map[tax.Year]tax.Bands, len(e.byYear))
	for year, b := range e.byYear {
		all[year] = b
	}
	return all
}

func parseBandTable(r io.Reader) (map[tax.Year]tax.Bands, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("band table has no rows")
	}
	byYear := make(map[tax.Year]tax.Bands, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != 7 {
			return nil, fmt.Errorf("band row %q: expected 7 columns, got %d", record[0], len(record))
		}
		year, err := tax.ParseYear(record[0])
		if err != nil {
			return nil, err
		}
		if _, exists := byYear[year]; exists {
			return nil, fmt.Errorf("duplicate band row for %s", year)
		}
		values := make([]decimal.Decimal, 6)
		for i, raw := range record[1:] {
			v, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("band row for %s, column %d: %w", year, i+2, err)
			}
			values[i] = v
		}
		b := tax.Bands{
			Year:                            year,
			PersonalAllowance:               values[0],
			IncomeLimitForPersonalAllowance: values[1],
			BasicRateLimit:                  values[2],
			HigherRateLimit:                 values[3],
			NIPrimaryThreshold:              values[4].Mul(weeksPerYear),
			NIUpperEarningsLimit:            values[5].Mul(weeksPerYear),
		}
		if err := b.Validate(); err != nil {
			return nil, err
		}
		byYear[year] = b
	}
	return byYear, nil
}
