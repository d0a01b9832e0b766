package tax

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Calculator computes take-home pay for an annual salary in a given tax
// year. It is safe for concurrent use.
type Calculator struct {
	source BandSource
	rates  map[Year]Rates
}

// CalculatorConfig groups Calculator dependencies.
type CalculatorConfig struct {
	// Source supplies band thresholds per tax year. Required.
	Source BandSource
	// RateOverrides replaces the default rate schedule for specific
	// years. Years not present use DefaultRates.
	RateOverrides map[Year]Rates
}

// NewCalculator constructs a Calculator.
func NewCalculator(cfg CalculatorConfig) (*Calculator, error) {
	if cfg.Source == nil {
		return nil, errors.New("tax: band source is required")
	}
	rates := make(map[Year]Rates, len(cfg.RateOverrides))
	for year, r := range cfg.RateOverrides {
		if err := r.validate(); err != nil {
			return nil, fmt.Errorf("tax: rates for %s: %w", year, err)
		}
		rates[year] = r
	}
	return &Calculator{source: cfg.Source, rates: rates}, nil
}

// Calculate computes the net income for an annual salary.
// preTaxAdjustments is the yearly total of salary sacrifices such as
// pension contributions; it reduces taxable income and take-home pay but
// not National Insurance, which is charged on the full salary.
func (c *Calculator) Calculate(ctx context.Context, taxYear string, salary, preTaxAdjustments decimal.Decimal) (NetIncome, error) {
	return c.CalculateWithDeductions(ctx, taxYear, salary, preTaxAdjustments, nil)
}

// CalculateWithDeductions behaves like Calculate and additionally carries
// the supplied payslip line items through to the result. Their amounts
// are rounded with the rest of the fields but are not part of
// TotalDeductions, which covers tax and National Insurance only.
func (c *Calculator) CalculateWithDeductions(ctx context.Context, taxYear string, salary, preTaxAdjustments decimal.Decimal, deductions []Deduction) (NetIncome, error) {
	year, err := ParseYear(taxYear)
	if err != nil {
		return NetIncome{}, err
	}
	bands, err := c.source.BandsFor(ctx, year)
	if err != nil {
		return NetIncome{}, fmt.Errorf("bands for %s: %w", year, err)
	}
	rates := c.ratesFor(year)

	salaryLessAdjustments := salary.Sub(preTaxAdjustments)
	allowance := personalAllowanceFor(
		salaryLessAdjustments,
		bands.PersonalAllowance,
		bands.IncomeLimitForPersonalAllowance,
	)
	tax := calculateContributions(
		salaryLessAdjustments,
		[]checkpoint{
			checkpointAt(allowance),
			checkpointAt(bands.BasicRateLimit),
			checkpointAt(bands.HigherRateLimit),
		},
		[]decimal.Decimal{decimal.Zero, rates.Basic, rates.Higher, rates.Additional},
	)
	// NI ignores pre-tax adjustments; it is due on the full salary.
	nationalInsurance := calculateContributions(
		salary,
		[]checkpoint{
			checkpointAt(bands.NIPrimaryThreshold),
			checkpointAt(bands.NIUpperEarningsLimit),
		},
		[]decimal.Decimal{decimal.Zero, rates.NIMain, rates.NIUpper},
	)
	totalDeductions := tax.Add(nationalInsurance)

	return NewNetIncome(NetIncome{
		Salary:            salary,
		TaxYear:           year,
		PreTaxAdjustments: preTaxAdjustments,
		PersonalAllowance: allowance,
		TaxableIncome:     salaryLessAdjustments.Sub(allowance),
		Tax:               tax,
		NationalInsurance: nationalInsurance,
		OtherDeductions:   deductions,
		TotalDeductions:   totalDeductions,
		TakeHomePay:       salaryLessAdjustments.Sub(totalDeductions),
	}), nil
}

func (c *Calculator) ratesFor(year Year) Rates {
	if r, ok := c.rates[year]; ok {
		return r
	}
	return DefaultRates()
}
