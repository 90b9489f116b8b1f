package journals

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fundament-gl/fundament/internal/ledger/shared"
)

func amt(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func twoLines(debit, credit string) []LineInput {
	return []LineInput{
		{AccountID: uuid.New(), Debit: amt(debit)},
		{AccountID: uuid.New(), Credit: amt(credit)},
	}
}

func TestValidateBalanced(t *testing.T) {
	in := CreateInput{Lines: twoLines("100.00", "100.00")}
	require.NoError(t, in.Validate())
}

func TestValidateUnbalanced(t *testing.T) {
	in := CreateInput{Lines: twoLines("100.00", "50.00")}
	err := in.Validate()
	require.True(t, shared.IsValidation(err))
}

func TestValidateWithinTolerance(t *testing.T) {
	// 0.005 off still passes; 0.006 does not.
	in := CreateInput{Lines: twoLines("100.005", "100.00")}
	require.NoError(t, in.Validate())

	in = CreateInput{Lines: twoLines("100.006", "100.00")}
	require.Error(t, in.Validate())
}

func TestValidateTooFewLines(t *testing.T) {
	in := CreateInput{Lines: []LineInput{{AccountID: uuid.New(), Debit: amt("10.00")}}}
	require.True(t, shared.IsValidation(in.Validate()))
}

func TestValidateBothSides(t *testing.T) {
	in := CreateInput{Lines: []LineInput{
		{AccountID: uuid.New(), Debit: amt("10.00"), Credit: amt("10.00")},
		{AccountID: uuid.New()},
	}}
	err := in.Validate()
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, 1, ve.Line)
}

func TestValidateNegativeAmount(t *testing.T) {
	in := CreateInput{Lines: []LineInput{
		{AccountID: uuid.New(), Debit: amt("-10.00")},
		{AccountID: uuid.New(), Credit: amt("-10.00")},
	}}
	require.True(t, shared.IsValidation(in.Validate()))
}

func TestValidateZeroSubstance(t *testing.T) {
	// Individual zero lines are tolerated, but an entry made only of zero
	// lines has no economic substance and is rejected.
	in := CreateInput{Lines: []LineInput{
		{AccountID: uuid.New()},
		{AccountID: uuid.New()},
	}}
	require.True(t, shared.IsValidation(in.Validate()))

	in = CreateInput{Lines: []LineInput{
		{AccountID: uuid.New()},
		{AccountID: uuid.New(), Debit: amt("5.00")},
		{AccountID: uuid.New(), Credit: amt("5.00")},
	}}
	require.NoError(t, in.Validate())
}

func TestNormalizeRoundsBeforeBalanceCheck(t *testing.T) {
	in := CreateInput{
		EntryDate: time.Date(2026, 3, 10, 14, 30, 0, 0, time.UTC),
		Lines: []LineInput{
			{AccountID: uuid.New(), Debit: amt("33.333")},
			{AccountID: uuid.New(), Credit: amt("33.334")},
		},
	}
	in.Normalize()
	require.Equal(t, "33.33", in.Lines[0].Debit.StringFixed(2))
	require.Equal(t, "33.33", in.Lines[1].Credit.StringFixed(2))
	require.NoError(t, in.Validate())
	require.Equal(t, SourceManual, in.Source)
	require.Equal(t, "USD", in.Lines[0].Currency)
	require.True(t, in.Lines[0].ExchangeRate.Equal(decimal.NewFromInt(1)))
}
