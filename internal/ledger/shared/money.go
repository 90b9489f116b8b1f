package shared

import "github.com/shopspring/decimal"

// BalanceTolerance is the maximum allowed |debits - credits| for an entry.
// Rounding of per-line amounts to two places can leave up to half a cent.
var BalanceTolerance = decimal.New(5, -3)

// SheetTolerance is the maximum imbalance accepted when checking that
// assets equal liabilities plus net assets on the balance sheet.
var SheetTolerance = decimal.New(1, -2)

// Balanced reports whether debits and credits agree within BalanceTolerance.
func Balanced(debits, credits decimal.Decimal) bool {
	return debits.Sub(credits).Abs().LessThanOrEqual(BalanceTolerance)
}
