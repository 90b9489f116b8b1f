package reports

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/ledger/funds"
)

// FundBalanceItem is one fund's cumulative balance.
type FundBalanceItem struct {
	FundID   uuid.UUID `json:"fund_id"`
	FundCode string    `json:"fund_code"`
	FundName string    `json:"fund_name"`
	FundType string    `json:"fund_type"`
	Balance  string    `json:"balance"`
}

// FundBalances reports each fund's cumulative net of posted lines as of the
// end of a period.
type FundBalances struct {
	PeriodCode string            `json:"period_code"`
	Items      []FundBalanceItem `json:"items"`
	Total      string            `json:"total"`
}

// BuildFundBalances joins fund activity onto the active fund list. Active
// funds with no posted lines still appear with a zero balance.
func BuildFundBalances(periodCode string, all []funds.Fund, activity []FundActivity) FundBalances {
	byFund := make(map[uuid.UUID]decimal.Decimal, len(activity))
	for _, a := range activity {
		byFund[a.FundID] = a.Net
	}
	out := FundBalances{PeriodCode: periodCode, Items: make([]FundBalanceItem, 0, len(all))}
	var total decimal.Decimal
	for _, f := range all {
		balance := byFund[f.ID]
		out.Items = append(out.Items, FundBalanceItem{
			FundID:   f.ID,
			FundCode: f.Code,
			FundName: f.Name,
			FundType: string(f.Type),
			Balance:  balance.StringFixed(2),
		})
		total = total.Add(balance)
	}
	out.Total = total.StringFixed(2)
	return out
}
