package tax

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

type staticSource struct {
	bands map[Year]Bands
	err   error
}

func (s staticSource) BandsFor(_ context.Context, year Year) (Bands, error) {
	if s.err != nil {
		return Bands{}, s.err
	}
	b, ok := s.bands[year]
	if !ok {
		return Bands{}, fmt.Errorf("no band row for %s", year)
	}
	return b, nil
}

func fixtureBands() map[Year]Bands {
	row := func(year Year, pa, il, brl, hrl, pt, uel string) Bands {
		return Bands{
			Year:                            year,
			PersonalAllowance:               dec(pa),
			IncomeLimitForPersonalAllowance: dec(il),
			BasicRateLimit:                  dec(brl),
			HigherRateLimit:                 dec(hrl),
			NIPrimaryThreshold:              dec(pt),
			NIUpperEarningsLimit:            dec(uel),
		}
	}
	return map[Year]Bands{
		Year2019To2020: row(Year2019To2020, "12500", "100000", "50000", "150000", "8632", "50024"),
		Year2020To2021: row(Year2020To2021, "12500", "100000", "50000", "150000", "9516", "50024"),
		Year2021To2022: row(Year2021To2022, "12570", "100000", "50270", "150000", "9568", "50284"),
		Year2022To2023: row(Year2022To2023, "12570", "100000", "50270", "150000", "12584", "50284"),
		Year2023To2024: row(Year2023To2024, "12570", "100000", "50270", "125140", "12584", "50284"),
		Year2024To2025: row(Year2024To2025, "12570", "100000", "50270", "125140", "12584", "50284"),
	}
}

func newTestCalculator(t *testing.T) *Calculator {
	t.Helper()
	calc, err := NewCalculator(CalculatorConfig{Source: staticSource{bands: fixtureBands()}})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func TestCalculateTakeHomeByYear(t *testing.T) {
	calc := newTestCalculator(t)

	cases := []struct {
		name              string
		taxYear           string
		salary            string
		adjustments       string
		personalAllowance string
		taxableIncome     string
		tax               string
		nationalInsurance string
		totalDeductions   string
		takeHomePay       string
	}{
		{
			name:    "basic and higher rate",
			taxYear: "2024/2025", salary: "52000", adjustments: "0",
			personalAllowance: "12570", taxableIncome: "39430",
			tax: "8232", nationalInsurance: "3050.32",
			totalDeductions: "11282.32", takeHomePay: "40717.68",
		},
		{
			name:    "tapered allowance with pension sacrifice",
			taxYear: "2024/2025", salary: "130000", adjustments: "5000",
			personalAllowance: "70", taxableIncome: "124930",
			tax: "39932", nationalInsurance: "4610.32",
			totalDeductions: "44542.32", takeHomePay: "80457.68",
		},
		{
			name:    "additional rate with no allowance",
			taxYear: "2023/2024", salary: "200000", adjustments: "0",
			personalAllowance: "0", taxableIncome: "200000",
			tax: "73689", nationalInsurance: "6010.32",
			totalDeductions: "79699.32", takeHomePay: "120300.68",
		},
		{
			name:    "higher rate before the threshold change",
			taxYear: "2022/2023", salary: "60000", adjustments: "0",
			personalAllowance: "12570", taxableIncome: "47430",
			tax: "11432", nationalInsurance: "3210.32",
			totalDeductions: "14642.32", takeHomePay: "45357.68",
		},
		{
			name:    "basic rate only",
			taxYear: "2019/2020", salary: "30000", adjustments: "0",
			personalAllowance: "12500", taxableIncome: "17500",
			tax: "3500", nationalInsurance: "1709.44",
			totalDeductions: "5209.44", takeHomePay: "24790.56",
		},
		{
			name:    "salary below every threshold",
			taxYear: "2020/2021", salary: "8000", adjustments: "0",
			personalAllowance: "8000", taxableIncome: "0",
			tax: "0", nationalInsurance: "0",
			totalDeductions: "0", takeHomePay: "8000",
		},
		{
			name:    "fractional salary and adjustments",
			taxYear: "2021/2022", salary: "45678.90", adjustments: "1234.56",
			personalAllowance: "12570", taxableIncome: "31874.34",
			tax: "6374.87", nationalInsurance: "2888.87",
			totalDeductions: "9263.74", takeHomePay: "35180.60",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := calc.Calculate(context.Background(), tc.taxYear, dec(tc.salary), dec(tc.adjustments))
			if err != nil {
				t.Fatalf("calculate: %v", err)
			}
			if string(result.TaxYear) != tc.taxYear {
				t.Errorf("tax year: expected %s, got %s", tc.taxYear, result.TaxYear)
			}
			assertAmount(t, "salary", result.Salary, tc.salary)
			assertAmount(t, "pre-tax adjustments", result.PreTaxAdjustments, tc.adjustments)
			assertAmount(t, "personal allowance", result.PersonalAllowance, tc.personalAllowance)
			assertAmount(t, "taxable income", result.TaxableIncome, tc.taxableIncome)
			assertAmount(t, "tax", result.Tax, tc.tax)
			assertAmount(t, "national insurance", result.NationalInsurance, tc.nationalInsurance)
			assertAmount(t, "total deductions", result.TotalDeductions, tc.totalDeductions)
			assertAmount(t, "take-home pay", result.TakeHomePay, tc.takeHomePay)
			if len(result.OtherDeductions) != 0 {
				t.Errorf("expected no deductions, got %v", result.OtherDeductions)
			}
		})
	}
}

func TestCalculateRejectsUnknownYear(t *testing.T) {
	calc := newTestCalculator(t)

	_, err := calc.Calculate(context.Background(), "bad-year", decimal.Zero, decimal.Zero)
	if !errors.Is(err, ErrInvalidTaxYear) {
		t.Fatalf("expected ErrInvalidTaxYear, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad-year") {
		t.Fatalf("error should name the offending year, got %q", err.Error())
	}
}

func TestCalculatePropagatesSourceError(t *testing.T) {
	sourceErr := errors.New("band table unreachable")
	calc, err := NewCalculator(CalculatorConfig{Source: staticSource{err: sourceErr}})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	_, err = calc.Calculate(context.Background(), "2024/2025", dec("50000"), decimal.Zero)
	if !errors.Is(err, sourceErr) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	calc := newTestCalculator(t)

	first, err := calc.Calculate(context.Background(), "2024/2025", dec("87654.32"), dec("1000"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	second, err := calc.Calculate(context.Background(), "2024/2025", dec("87654.32"), dec("1000"))
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("identical inputs produced different results:\n%+v\n%+v", first, second)
	}
}

func TestCalculateWithDeductionsPassesLineItemsThrough(t *testing.T) {
	calc := newTestCalculator(t)

	deductions := []Deduction{
		{Name: "student loan", Amount: dec("155.005")},
		{Name: "cycle to work", Amount: dec("83.30")},
	}
	result, err := calc.CalculateWithDeductions(context.Background(), "2024/2025", dec("52000"), decimal.Zero, deductions)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if len(result.OtherDeductions) != 2 {
		t.Fatalf("expected 2 deductions, got %d", len(result.OtherDeductions))
	}
	if result.OtherDeductions[0].Name != "student loan" {
		t.Errorf("deduction order not preserved: %+v", result.OtherDeductions)
	}
	assertAmount(t, "first deduction", result.OtherDeductions[0].Amount, "155.01")
	assertAmount(t, "second deduction", result.OtherDeductions[1].Amount, "83.30")
	// Line items never feed the totals.
	assertAmount(t, "total deductions", result.TotalDeductions, "11282.32")
	assertAmount(t, "take-home pay", result.TakeHomePay, "40717.68")
}

func TestCalculateAppliesRateOverrides(t *testing.T) {
	overridden := DefaultRates()
	overridden.NIMain = dec("0.12")
	calc, err := NewCalculator(CalculatorConfig{
		Source:        staticSource{bands: fixtureBands()},
		RateOverrides: map[Year]Rates{Year2021To2022: overridden},
	})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	result, err := calc.Calculate(context.Background(), "2021/2022", dec("30000"), decimal.Zero)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// (30000 - 9568) * 0.12
	assertAmount(t, "national insurance", result.NationalInsurance, "2451.84")

	other, err := calc.Calculate(context.Background(), "2020/2021", dec("30000"), decimal.Zero)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// (30000 - 9516) * 0.08; other years keep the default schedule.
	assertAmount(t, "national insurance", other.NationalInsurance, "1638.72")
}

func TestNewCalculatorValidation(t *testing.T) {
	if _, err := NewCalculator(CalculatorConfig{}); err == nil {
		t.Fatal("expected error for missing band source")
	}

	negative := DefaultRates()
	negative.Basic = dec("-0.2")
	_, err := NewCalculator(CalculatorConfig{
		Source:        staticSource{bands: fixtureBands()},
		RateOverrides: map[Year]Rates{Year2024To2025: negative},
	})
	if err == nil {
		t.Fatal("expected error for negative rate override")
	}
}

func assertAmount(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %s, got %s", field, want, got)
	}
}
