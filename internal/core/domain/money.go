package domain

import "github.com/shopspring/decimal"

// AmountTolerance is the absolute tolerance used for every monetary
// comparison in the system. Currency rounding (equal splits of odd totals,
// percentage splits) legitimately leaves sums up to one cent off, so sums are
// never compared with strict equality.
var AmountTolerance = decimal.New(1, -2) // 0.01

// AmountsMatch reports whether two monetary amounts are equal within
// AmountTolerance.
func AmountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(AmountTolerance)
}
