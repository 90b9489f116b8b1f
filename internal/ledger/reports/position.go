package reports

import (
	"github.com/shopspring/decimal"

	"github.com/fundament-gl/fundament/internal/ledger/accounts"
	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

// PositionItem is one balance-sheet account row, signed.
type PositionItem struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Balance       string `json:"balance"`
}

// PositionSection groups one class of balance-sheet accounts.
type PositionSection struct {
	Items []PositionItem `json:"items"`
	Total string         `json:"total"`
}

// NetAssetsSection is equity plus retained earnings.
type NetAssetsSection struct {
	Items            []PositionItem `json:"items"`
	RetainedEarnings string         `json:"retained_earnings"`
	Total            string         `json:"total"`
}

// StatementOfFinancialPosition is the nonprofit balance sheet as of the end
// of a period. Unlike the statement of activities it is cumulative over all
// periods ending on or before the target, and balances keep their sign.
type StatementOfFinancialPosition struct {
	AsOfPeriodCode string           `json:"as_of_period_code"`
	Assets         PositionSection  `json:"assets"`
	Liabilities    PositionSection  `json:"liabilities"`
	NetAssets      NetAssetsSection `json:"net_assets"`
	IsBalanced     bool             `json:"is_balanced"`
}

// BuildStatementOfFinancialPosition folds cumulative activity into the
// balance sheet. Retained earnings carries the cumulative revenue-minus-
// expense net into net assets, which is what keeps the statement balanced:
// is_balanced must hold for any ledger whose entries all individually
// balance.
func BuildStatementOfFinancialPosition(asOfPeriodCode string, rows []AccountActivity) StatementOfFinancialPosition {
	out := StatementOfFinancialPosition{
		AsOfPeriodCode: asOfPeriodCode,
		Assets:         PositionSection{Items: []PositionItem{}},
		Liabilities:    PositionSection{Items: []PositionItem{}},
		NetAssets:      NetAssetsSection{Items: []PositionItem{}},
	}
	var assets, liabilities, equity, retained decimal.Decimal
	for _, r := range rows {
		balance := r.SignedBalance()
		item := PositionItem{
			AccountNumber: r.AccountNumber,
			AccountName:   r.AccountName,
			Balance:       balance.StringFixed(2),
		}
		switch r.Type {
		case accounts.TypeAsset:
			out.Assets.Items = append(out.Assets.Items, item)
			assets = assets.Add(balance)
		case accounts.TypeLiability:
			out.Liabilities.Items = append(out.Liabilities.Items, item)
			liabilities = liabilities.Add(balance)
		case accounts.TypeEquity:
			out.NetAssets.Items = append(out.NetAssets.Items, item)
			equity = equity.Add(balance)
		case accounts.TypeRevenue:
			retained = retained.Add(r.Credit.Sub(r.Debit))
		case accounts.TypeExpense:
			retained = retained.Sub(r.Debit.Sub(r.Credit))
		}
	}
	netAssets := equity.Add(retained)
	out.Assets.Total = assets.StringFixed(2)
	out.Liabilities.Total = liabilities.StringFixed(2)
	out.NetAssets.RetainedEarnings = retained.StringFixed(2)
	out.NetAssets.Total = netAssets.StringFixed(2)
	out.IsBalanced = assets.Sub(liabilities.Add(netAssets)).Abs().LessThan(shared.SheetTolerance)
	return out
}
