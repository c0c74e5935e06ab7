package domain_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitclub/split_expense_app/internal/core/domain"
)

func TestNewLedger_Zeroed(t *testing.T) {
	ledger := domain.NewLedger("ada")

	assert.Equal(t, "ada", ledger.UserID)
	assert.True(t, ledger.TotalPayment.IsZero())
	assert.True(t, ledger.TotalYouOwe.IsZero())
	assert.True(t, ledger.TotalYouGetBack.IsZero())
	assert.Empty(t, ledger.Balances)
}

func TestLedger_BalanceGetOrCreate(t *testing.T) {
	ledger := domain.NewLedger("ada")

	b := ledger.Balance("bob")
	require.NotNil(t, b)
	assert.Equal(t, "bob", b.CounterpartyID)
	assert.True(t, b.AmountOwedToCounterparty.IsZero())

	b.AmountOwedToCounterparty = decimal.NewFromInt(25)

	// Second access returns the same record, not a fresh one.
	again := ledger.Balance("bob")
	assert.Same(t, b, again)
	assert.True(t, again.AmountOwedToCounterparty.Equal(decimal.NewFromInt(25)))
	assert.Len(t, ledger.Balances, 1)
}

func TestLedger_BalanceNilMap(t *testing.T) {
	ledger := &domain.Ledger{UserID: "ada"}

	b := ledger.Balance("bob")
	require.NotNil(t, b)
	assert.Len(t, ledger.Balances, 1)
}

func TestLedger_NetOutstanding(t *testing.T) {
	ledger := domain.NewLedger("ada")
	ledger.TotalYouGetBack = decimal.NewFromInt(60)
	ledger.TotalYouOwe = decimal.NewFromInt(100)

	assert.True(t, ledger.NetOutstanding().Equal(decimal.NewFromInt(-40)))
}

func TestLedger_SortedBalances(t *testing.T) {
	ledger := domain.NewLedger("ada")
	ledger.Balance("carol")
	ledger.Balance("bob")
	ledger.Balance("dan")

	sorted := ledger.SortedBalances()
	require.Len(t, sorted, 3)
	assert.Equal(t, "bob", sorted[0].CounterpartyID)
	assert.Equal(t, "carol", sorted[1].CounterpartyID)
	assert.Equal(t, "dan", sorted[2].CounterpartyID)
}

func TestAmountsMatch(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		want bool
	}{
		{"exact", "100", "100", true},
		{"within tolerance", "100", "99.99", true},
		{"at tolerance", "100", "100.01", true},
		{"beyond tolerance", "100", "100.011", false},
		{"order independent", "99.99", "100", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := decimal.NewFromString(tc.a)
			require.NoError(t, err)
			b, err := decimal.NewFromString(tc.b)
			require.NoError(t, err)
			assert.Equal(t, tc.want, domain.AmountsMatch(a, b))
		})
	}
}
