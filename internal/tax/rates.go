package tax

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Rates is the rate schedule applied to band portions for one tax year.
// The allowance band below the first checkpoint is always rated at zero
// and is not part of the schedule.
type Rates struct {
	Basic      decimal.Decimal
	Higher     decimal.Decimal
	Additional decimal.Decimal
	NIMain     decimal.Decimal
	NIUpper    decimal.Decimal
}

// DefaultRates returns the schedule used for every supported year unless
// overridden: 20%, 40% and 45% income tax with 8% and 2% National
// Insurance. HMRC varied the NI main rate within some historic years;
// use CalculatorConfig.RateOverrides to represent those exactly.
func DefaultRates() Rates {
	return Rates{
		Basic:      decimal.RequireFromString("0.2"),
		Higher:     decimal.RequireFromString("0.4"),
		Additional: decimal.RequireFromString("0.45"),
		NIMain:     decimal.RequireFromString("0.08"),
		NIUpper:    decimal.RequireFromString("0.02"),
	}
}

func (r Rates) validate() error {
	for _, rate := range []decimal.Decimal{r.Basic, r.Higher, r.Additional, r.NIMain, r.NIUpper} {
		if rate.IsNegative() {
			return errors.New("rates must not be negative")
		}
	}
	return nil
}
