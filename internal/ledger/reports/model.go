package reports

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/ledger/accounts"
)

// AccountActivity is one account's posted debit/credit totals over some
// period range. It is the single input shape for every report builder.
type AccountActivity struct {
	AccountID     uuid.UUID
	AccountNumber string
	AccountName   string
	Type          accounts.AccountType
	NormalBalance accounts.NormalBalance
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// SignedBalance folds debit and credit into one amount oriented by the
// account's normal balance: credit-normal accounts grow with credits,
// debit-normal accounts grow with debits.
func (a AccountActivity) SignedBalance() decimal.Decimal {
	if a.NormalBalance == accounts.NormalCredit {
		return a.Credit.Sub(a.Debit)
	}
	return a.Debit.Sub(a.Credit)
}

// FundActivity is one fund's cumulative posted net over a period range.
type FundActivity struct {
	FundID uuid.UUID
	Net    decimal.Decimal
}
