package reports

import (
	"github.com/shopspring/decimal"
)

// TrialBalanceItem is one account row of the trial balance.
type TrialBalanceItem struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Debits        string `json:"debits"`
	Credits       string `json:"credits"`
}

// TrialBalance lists per-account posted totals for one period. Total debits
// equal total credits within tolerance for any consistent ledger, because
// every contributing entry individually balances.
type TrialBalance struct {
	PeriodCode   string             `json:"period_code"`
	Items        []TrialBalanceItem `json:"items"`
	TotalDebits  string             `json:"total_debits"`
	TotalCredits string             `json:"total_credits"`
}

// BuildTrialBalance folds period-scoped account activity into a trial
// balance. Rows arrive ordered by account number.
func BuildTrialBalance(periodCode string, rows []AccountActivity) TrialBalance {
	tb := TrialBalance{PeriodCode: periodCode, Items: make([]TrialBalanceItem, 0, len(rows))}
	var debits, credits decimal.Decimal
	for _, r := range rows {
		tb.Items = append(tb.Items, TrialBalanceItem{
			AccountNumber: r.AccountNumber,
			AccountName:   r.AccountName,
			Debits:        r.Debit.StringFixed(2),
			Credits:       r.Credit.StringFixed(2),
		})
		debits = debits.Add(r.Debit)
		credits = credits.Add(r.Credit)
	}
	tb.TotalDebits = debits.StringFixed(2)
	tb.TotalCredits = credits.StringFixed(2)
	return tb
}
