package tax

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Bands holds the six annual threshold amounts that shape one tax year:
// the personal allowance and the income limit past which it tapers, the
// upper bounds of the basic and higher income tax bands, and the primary
// threshold and upper earnings limit for National Insurance.
type Bands struct {
	Year                            Year            `json:"taxYear"`
	PersonalAllowance               decimal.Decimal `json:"personalAllowance"`
	IncomeLimitForPersonalAllowance decimal.Decimal `json:"incomeLimitForPersonalAllowance"`
	BasicRateLimit                  decimal.Decimal `json:"basicRateLimit"`
	HigherRateLimit                 decimal.Decimal `json:"higherRateLimit"`
	NIPrimaryThreshold              decimal.Decimal `json:"niPrimaryThreshold"`
	NIUpperEarningsLimit            decimal.Decimal `json:"niUpperEarningsLimit"`
}

// BandSource supplies band thresholds per tax year. Implementations
// return an error when a supported year has no band row; the calculator
// treats that as a data integrity failure and never substitutes defaults.
type BandSource interface {
	BandsFor(ctx context.Context, year Year) (Bands, error)
}

// Validate reports an error when any threshold is negative. Providers
// call it once after loading a row; the engine assumes validated bands.
func (b Bands) Validate() error {
	thresholds := []struct {
		name  string
		value decimal.Decimal
	}{
		{"personal_allowance", b.PersonalAllowance},
		{"income_limit_for_personal_allowance", b.IncomeLimitForPersonalAllowance},
		{"basic_rate_limit", b.BasicRateLimit},
		{"higher_rate_limit", b.HigherRateLimit},
		{"ni_primary_threshold", b.NIPrimaryThreshold},
		{"ni_upper_earnings_limit", b.NIUpperEarningsLimit},
	}
	for _, t := range thresholds {
		if t.value.IsNegative() {
			return fmt.Errorf("band %s for %s is negative", t.name, b.Year)
		}
	}
	return nil
}
