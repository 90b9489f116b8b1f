package reports

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fundament-gl/fundament/internal/ledger/accounts"
	"github.com/fundament-gl/fundament/internal/ledger/funds"
)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func activity(number, name string, typ accounts.AccountType, normal accounts.NormalBalance, debit, credit string) AccountActivity {
	return AccountActivity{
		AccountID:     uuid.New(),
		AccountNumber: number,
		AccountName:   name,
		Type:          typ,
		NormalBalance: normal,
		Debit:         amt(debit),
		Credit:        amt(credit),
	}
}

func TestBuildTrialBalance(t *testing.T) {
	rows := []AccountActivity{
		activity("1000", "Cash", accounts.TypeAsset, accounts.NormalDebit, "600.00", "100.00"),
		activity("4000", "Donations", accounts.TypeRevenue, accounts.NormalCredit, "100.00", "600.00"),
	}
	tb := BuildTrialBalance("2026-03", rows)
	require.Len(t, tb.Items, 2)
	require.Equal(t, "700.00", tb.TotalDebits)
	require.Equal(t, "700.00", tb.TotalCredits)
	require.Equal(t, "1000", tb.Items[0].AccountNumber)
	require.Equal(t, "600.00", tb.Items[0].Debits)
}

func TestBuildStatementOfActivities(t *testing.T) {
	rows := []AccountActivity{
		activity("4000", "Donations", accounts.TypeRevenue, accounts.NormalCredit, "0.00", "500.00"),
		activity("5000", "Rent", accounts.TypeExpense, accounts.NormalDebit, "200.00", "0.00"),
	}
	soa := BuildStatementOfActivities("2026-03", rows)
	require.Equal(t, "500.00", soa.Revenue.Total)
	require.Equal(t, "200.00", soa.Expenses.Total)
	require.Equal(t, "300.00", soa.ChangeInNetAssets)
}

func TestBuildStatementOfActivitiesAbsoluteValues(t *testing.T) {
	// A revenue account driven net-debit (sign flipped, e.g. by a reversal
	// posted into a different account) reports its absolute value and adds
	// to the total instead of subtracting.
	rows := []AccountActivity{
		activity("4000", "Donations", accounts.TypeRevenue, accounts.NormalCredit, "0.00", "500.00"),
		activity("4100", "Grants", accounts.TypeRevenue, accounts.NormalCredit, "200.00", "0.00"),
	}
	soa := BuildStatementOfActivities("2026-03", rows)
	require.Equal(t, "700.00", soa.Revenue.Total)
}

func TestBuildStatementOfFinancialPosition(t *testing.T) {
	rows := []AccountActivity{
		activity("1000", "Cash", accounts.TypeAsset, accounts.NormalDebit, "800.00", "300.00"),
		activity("2000", "Payables", accounts.TypeLiability, accounts.NormalCredit, "0.00", "100.00"),
		activity("3000", "Opening equity", accounts.TypeEquity, accounts.NormalCredit, "0.00", "50.00"),
		activity("4000", "Donations", accounts.TypeRevenue, accounts.NormalCredit, "0.00", "600.00"),
		activity("5000", "Rent", accounts.TypeExpense, accounts.NormalDebit, "250.00", "0.00"),
	}
	sofp := BuildStatementOfFinancialPosition("2026-03", rows)
	require.Equal(t, "500.00", sofp.Assets.Total)
	require.Equal(t, "100.00", sofp.Liabilities.Total)
	require.Equal(t, "350.00", sofp.NetAssets.RetainedEarnings)
	require.Equal(t, "400.00", sofp.NetAssets.Total)
	require.True(t, sofp.IsBalanced)
}

func TestBuildStatementOfFinancialPositionKeepsSign(t *testing.T) {
	// Balance-sheet accounts are signed, unlike the statement of
	// activities. An overdrawn equity account reports negative.
	rows := []AccountActivity{
		activity("3000", "Opening equity", accounts.TypeEquity, accounts.NormalCredit, "75.00", "25.00"),
	}
	sofp := BuildStatementOfFinancialPosition("2026-03", rows)
	require.Equal(t, "-50.00", sofp.NetAssets.Items[0].Balance)
	require.Equal(t, "-50.00", sofp.NetAssets.Total)
}

func TestBuildFundBalances(t *testing.T) {
	general := funds.Fund{ID: uuid.New(), Code: "GEN", Name: "General", Type: funds.TypeUnrestricted}
	building := funds.Fund{ID: uuid.New(), Code: "BLD", Name: "Building", Type: funds.TypeTemporarilyRestricted}
	dormant := funds.Fund{ID: uuid.New(), Code: "END", Name: "Endowment", Type: funds.TypePermanentlyRestricted}

	fb := BuildFundBalances("2026-03", []funds.Fund{general, building, dormant}, []FundActivity{
		{FundID: general.ID, Net: amt("150.00")},
		{FundID: building.ID, Net: amt("-25.00")},
	})
	require.Len(t, fb.Items, 3)
	require.Equal(t, "150.00", fb.Items[0].Balance)
	require.Equal(t, "-25.00", fb.Items[1].Balance)
	// Active funds with no posted activity still appear at zero.
	require.Equal(t, "0.00", fb.Items[2].Balance)
	require.Equal(t, "125.00", fb.Total)
}
