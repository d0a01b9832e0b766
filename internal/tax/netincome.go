package tax

import "github.com/shopspring/decimal"

// Deduction is a named payslip line item carried through to the result
// unchanged. Deductions never feed the tax or National Insurance totals.
type Deduction struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// NetIncome is the take-home breakdown for one salary and tax year.
// Construct it with NewNetIncome so every monetary field is rounded to
// the nearest penny.
type NetIncome struct {
	Salary            decimal.Decimal `json:"salary"`
	TaxYear           Year            `json:"taxYear"`
	PreTaxAdjustments decimal.Decimal `json:"preTaxAdjustments"`
	PersonalAllowance decimal.Decimal `json:"personalAllowance"`
	TaxableIncome     decimal.Decimal `json:"taxableIncome"`
	Tax               decimal.Decimal `json:"tax"`
	NationalInsurance decimal.Decimal `json:"nationalInsurance"`
	OtherDeductions   []Deduction     `json:"otherDeductions"`
	TotalDeductions   decimal.Decimal `json:"totalDeductions"`
	TakeHomePay       decimal.Decimal `json:"takeHomePay"`
}

// NewNetIncome rounds every monetary field, including deduction amounts,
// to two decimal places with halves rounding up. Rounding happens here
// and nowhere else in the calculation.
func NewNetIncome(n NetIncome) NetIncome {
	n.Salary = roundPenny(n.Salary)
	n.PreTaxAdjustments = roundPenny(n.PreTaxAdjustments)
	n.PersonalAllowance = roundPenny(n.PersonalAllowance)
	n.TaxableIncome = roundPenny(n.TaxableIncome)
	n.Tax = roundPenny(n.Tax)
	n.NationalInsurance = roundPenny(n.NationalInsurance)
	n.TotalDeductions = roundPenny(n.TotalDeductions)
	n.TakeHomePay = roundPenny(n.TakeHomePay)
	rounded := make([]Deduction, len(n.OtherDeductions))
	for i, d := range n.OtherDeductions {
		rounded[i] = Deduction{Name: d.Name, Amount: roundPenny(d.Amount)}
	}
	n.OtherDeductions = rounded
	return n
}

func roundPenny(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
