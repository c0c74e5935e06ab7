package services_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitclub/split_expense_app/internal/apperrors"
	"github.com/splitclub/split_expense_app/internal/core/domain"
	"github.com/splitclub/split_expense_app/internal/core/services"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func sumOwed(splits []domain.SplitLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range splits {
		sum = sum.Add(line.AmountOwed)
	}
	return sum
}

func TestComputeSplits_Equal(t *testing.T) {
	svc := services.NewSplitService()

	splits, err := svc.ComputeSplits(domain.SplitEqual, []string{"u1", "u2", "u3"}, nil, dec("90"))
	require.NoError(t, err)
	require.Len(t, splits, 3)

	for _, line := range splits {
		assert.True(t, line.AmountOwed.Equal(dec("30")), "uneven share: %s", line.AmountOwed)
	}
	assert.True(t, domain.AmountsMatch(sumOwed(splits), dec("90")))
}

func TestComputeSplits_EqualIndivisibleTotal(t *testing.T) {
	svc := services.NewSplitService()

	// 100 / 3 does not terminate; shares must still sum back within tolerance.
	splits, err := svc.ComputeSplits(domain.SplitEqual, []string{"u1", "u2", "u3"}, nil, dec("100"))
	require.NoError(t, err)
	require.Len(t, splits, 3)

	assert.True(t, domain.AmountsMatch(sumOwed(splits), dec("100")))
	assert.True(t, splits[0].AmountOwed.Equal(splits[1].AmountOwed))
	assert.True(t, splits[1].AmountOwed.Equal(splits[2].AmountOwed))
}

func TestComputeSplits_Exact(t *testing.T) {
	svc := services.NewSplitService()

	splits, err := svc.ComputeSplits(domain.SplitExact,
		[]string{"u1", "u2"},
		[]decimal.Decimal{dec("70.50"), dec("29.50")},
		dec("100"))
	require.NoError(t, err)
	require.Len(t, splits, 2)

	assert.True(t, splits[0].AmountOwed.Equal(dec("70.50")))
	assert.True(t, splits[1].AmountOwed.Equal(dec("29.50")))
	assert.True(t, domain.AmountsMatch(sumOwed(splits), dec("100")))
}

func TestComputeSplits_ExactSumMismatch(t *testing.T) {
	svc := services.NewSplitService()

	_, err := svc.ComputeSplits(domain.SplitExact,
		[]string{"u1", "u2"},
		[]decimal.Decimal{dec("70"), dec("29")},
		dec("100"))
	assert.ErrorIs(t, err, services.ErrSplitAmountMismatch)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestComputeSplits_ExactWithinTolerance(t *testing.T) {
	svc := services.NewSplitService()

	// Off by exactly a cent is still accepted.
	splits, err := svc.ComputeSplits(domain.SplitExact,
		[]string{"u1", "u2"},
		[]decimal.Decimal{dec("70.00"), dec("29.99")},
		dec("100"))
	require.NoError(t, err)
	assert.Len(t, splits, 2)
}

func TestComputeSplits_Unequal(t *testing.T) {
	svc := services.NewSplitService()

	splits, err := svc.ComputeSplits(domain.SplitUnequal,
		[]string{"u1", "u2", "u3"},
		[]decimal.Decimal{dec("50"), dec("30"), dec("20")},
		dec("100"))
	require.NoError(t, err)
	require.Len(t, splits, 3)
	assert.True(t, domain.AmountsMatch(sumOwed(splits), dec("100")))
}

func TestComputeSplits_ZeroAmountLineAllowed(t *testing.T) {
	svc := services.NewSplitService()

	splits, err := svc.ComputeSplits(domain.SplitUnequal,
		[]string{"u1", "u2"},
		[]decimal.Decimal{dec("100"), dec("0")},
		dec("100"))
	require.NoError(t, err)
	require.Len(t, splits, 2)
	assert.True(t, splits[1].AmountOwed.IsZero())
}

func TestComputeSplits_Percentage(t *testing.T) {
	svc := services.NewSplitService()

	splits, err := svc.ComputeSplits(domain.SplitPercentage,
		[]string{"u1", "u2", "u3"},
		[]decimal.Decimal{dec("50"), dec("30"), dec("20")},
		dec("200"))
	require.NoError(t, err)
	require.Len(t, splits, 3)

	assert.True(t, splits[0].AmountOwed.Equal(dec("100")))
	assert.True(t, splits[1].AmountOwed.Equal(dec("60")))
	assert.True(t, splits[2].AmountOwed.Equal(dec("40")))
	assert.True(t, domain.AmountsMatch(sumOwed(splits), dec("200")))
}

func TestComputeSplits_PercentageSum(t *testing.T) {
	svc := services.NewSplitService()
	participants := []string{"u1", "u2"}

	cases := []struct {
		name     string
		percents []decimal.Decimal
		wantErr  bool
	}{
		{"exactly 100", []decimal.Decimal{dec("60"), dec("40")}, false},
		{"99.99 within tolerance", []decimal.Decimal{dec("60"), dec("39.99")}, false},
		{"100.01 within tolerance", []decimal.Decimal{dec("60"), dec("40.01")}, false},
		{"99.98 rejected", []decimal.Decimal{dec("60"), dec("39.98")}, true},
		{"100.02 rejected", []decimal.Decimal{dec("60"), dec("40.02")}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.ComputeSplits(domain.SplitPercentage, participants, tc.percents, dec("100"))
			if tc.wantErr {
				assert.ErrorIs(t, err, services.ErrPercentageMismatch)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestComputeSplits_CountMismatch(t *testing.T) {
	svc := services.NewSplitService()

	_, err := svc.ComputeSplits(domain.SplitExact,
		[]string{"u1", "u2", "u3"},
		[]decimal.Decimal{dec("50"), dec("50")},
		dec("100"))
	assert.ErrorIs(t, err, services.ErrSplitCountMismatch)

	_, err = svc.ComputeSplits(domain.SplitPercentage,
		[]string{"u1"},
		[]decimal.Decimal{dec("50"), dec("50")},
		dec("100"))
	assert.ErrorIs(t, err, services.ErrSplitCountMismatch)
}

func TestComputeSplits_EmptyParticipants(t *testing.T) {
	svc := services.NewSplitService()

	for _, policy := range []domain.SplitPolicy{domain.SplitEqual, domain.SplitExact, domain.SplitUnequal, domain.SplitPercentage} {
		_, err := svc.ComputeSplits(policy, nil, nil, dec("100"))
		assert.ErrorIs(t, err, services.ErrEmptyParticipants, "policy %s", policy)
	}
}

func TestComputeSplits_UnknownPolicy(t *testing.T) {
	svc := services.NewSplitService()

	_, err := svc.ComputeSplits(domain.SplitPolicy("HALVSIES"), []string{"u1"}, nil, dec("100"))
	assert.ErrorIs(t, err, services.ErrInvalidSplitPolicy)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestValidateSplitRequest(t *testing.T) {
	svc := services.NewSplitService()

	good := []domain.SplitLine{
		{UserID: "u1", AmountOwed: dec("60")},
		{UserID: "u2", AmountOwed: dec("40")},
	}
	assert.NoError(t, svc.ValidateSplitRequest(good, dec("100")))

	bad := []domain.SplitLine{
		{UserID: "u1", AmountOwed: dec("60")},
		{UserID: "u2", AmountOwed: dec("39")},
	}
	assert.ErrorIs(t, svc.ValidateSplitRequest(bad, dec("100")), services.ErrSplitAmountMismatch)
}
