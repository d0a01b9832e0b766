package tax

import "github.com/shopspring/decimal"

var two = decimal.NewFromInt(2)

// checkpoint is the upper bound of one progressive band interval. An
// unbounded checkpoint absorbs whatever amount remains.
type checkpoint struct {
	bound     decimal.Decimal
	unbounded bool
}

func checkpointAt(bound decimal.Decimal) checkpoint {
	return checkpoint{bound: bound}
}

func unboundedCheckpoint() checkpoint {
	return checkpoint{unbounded: true}
}

// spreadOverCheckpoints splits value across the intervals between zero
// and each successive checkpoint. The value 10 spread over checkpoints
// [1, 3, 5] yields [1, 2, 2, 5]: 1 fills the first interval, 2 the
// second, 2 the third, and 5 is left over. A strictly positive remainder
// past the last checkpoint is appended as one final portion, so the
// result holds len(checkpoints) or len(checkpoints)+1 values and always
// sums to the input exactly. Checkpoints must be non-decreasing.
func spreadOverCheckpoints(value decimal.Decimal, checkpoints []checkpoint) []decimal.Decimal {
	portions := make([]decimal.Decimal, 0, len(checkpoints)+1)
	previous := decimal.Zero
	for _, cp := range checkpoints {
		portion := value
		if !cp.unbounded {
			width := cp.bound.Sub(previous)
			if width.LessThan(portion) {
				portion = width
			}
			previous = cp.bound
		}
		portions = append(portions, portion)
		value = value.Sub(portion)
	}
	if value.GreaterThan(decimal.Zero) {
		portions = append(portions, value)
	}
	return portions
}

// calculateContributions spreads amount over the checkpoints and applies
// the matching rate to each portion. rates carries one entry per interval
// plus one for any amount past the final checkpoint; unused trailing
// rates are ignored.
func calculateContributions(amount decimal.Decimal, checkpoints []checkpoint, rates []decimal.Decimal) decimal.Decimal {
	portions := spreadOverCheckpoints(amount, checkpoints)
	total := decimal.Zero
	for i, portion := range portions {
		if i >= len(rates) {
			break
		}
		total = total.Add(portion.Mul(rates[i]))
	}
	return total
}

// personalAllowanceFor returns the tax-free allowance for the given
// income. Income at or below the allowance is untaxed in full; past the
// income limit the allowance tapers away at one pound for every two
// pounds earned, floored at zero.
func personalAllowanceFor(income, allowance, incomeLimit decimal.Decimal) decimal.Decimal {
	if income.LessThanOrEqual(allowance) {
		return income
	}
	excess := income.Sub(incomeLimit)
	if excess.IsNegative() {
		excess = decimal.Zero
	}
	tapered := allowance.Sub(excess.Div(two))
	if tapered.IsNegative() {
		return decimal.Zero
	}
	return tapered
}
