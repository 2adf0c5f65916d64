package allocation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSplitWaterfall(t *testing.T) {
	// 500 paid against 100 of fines and 150 of interest: 100/150/250.
	alloc, err := Split(d("500"), d("100"), d("150"))
	require.NoError(t, err)
	assert.True(t, alloc.Fines.Equal(d("100")), "fines portion")
	assert.True(t, alloc.Interest.Equal(d("150")), "interest portion")
	assert.True(t, alloc.Principal.Equal(d("250")), "principal portion")
	assert.True(t, alloc.Total().Equal(d("500")), "portions must sum to the amount")
}

func TestSplitAmountSmallerThanFines(t *testing.T) {
	alloc, err := Split(d("40"), d("100"), d("150"))
	require.NoError(t, err)
	assert.True(t, alloc.Fines.Equal(d("40")))
	assert.True(t, alloc.Interest.IsZero())
	assert.True(t, alloc.Principal.IsZero())
}

func TestSplitNoFinesNoInterest(t *testing.T) {
	alloc, err := Split(d("300"), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, alloc.Fines.IsZero())
	assert.True(t, alloc.Interest.IsZero())
	assert.True(t, alloc.Principal.Equal(d("300")))
}

func TestSplitNegativeCapsTreatedAsZero(t *testing.T) {
	alloc, err := Split(d("300"), d("-5"), d("-10"))
	require.NoError(t, err)
	assert.True(t, alloc.Principal.Equal(d("300")))
}

func TestSplitRejectsNonPositiveAmount(t *testing.T) {
	_, err := Split(decimal.Zero, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrAmountNotPositive)

	_, err = Split(d("-10"), decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrAmountNotPositive)
}

func TestDistributeFinesOldestFirst(t *testing.T) {
	fines := []domain.Fine{
		{FineID: "f1", Amount: d("60"), PaidAmount: d("10")}, // 50 outstanding
		{FineID: "f2", Amount: d("30")},                      // 30 outstanding
		{FineID: "f3", Amount: d("20")},                      // 20 outstanding
	}

	payments := DistributeFines(d("70"), fines)
	require.Len(t, payments, 2)
	assert.Equal(t, "f1", payments[0].FineID)
	assert.True(t, payments[0].Amount.Equal(d("50")))
	assert.Equal(t, "f2", payments[1].FineID)
	assert.True(t, payments[1].Amount.Equal(d("20")), "second fine paid partially")
}

func TestDistributeFinesSkipsSettled(t *testing.T) {
	fines := []domain.Fine{
		{FineID: "f1", Amount: d("25"), PaidAmount: d("25")},
		{FineID: "f2", Amount: d("40")},
	}

	payments := DistributeFines(d("40"), fines)
	require.Len(t, payments, 1)
	assert.Equal(t, "f2", payments[0].FineID)
	assert.True(t, payments[0].Amount.Equal(d("40")))
}

func TestFlatInterest(t *testing.T) {
	// 10000 at 12% for 6 months: 10000 * 0.12 * 0.5 = 600
	got := FlatInterest(d("10000"), d("12"), 6)
	assert.True(t, got.Equal(d("600")), "got %s", got)
}

func TestReducingInterest(t *testing.T) {
	// 10000 at 12% over 12 months: 10000 * 0.01 * 6.5 = 650
	got := ReducingInterest(d("10000"), d("12"), 12)
	assert.True(t, got.Equal(d("650")), "got %s", got)
}

func TestRemainingInterest(t *testing.T) {
	assert.True(t, RemainingInterest(d("600"), d("150")).Equal(d("450")))
	assert.True(t, RemainingInterest(d("600"), d("900")).IsZero(), "overpaid interest floors at zero")
	assert.True(t, RemainingInterest(d("600"), decimal.Zero).Equal(d("600")))
}

func TestFlatSchedule(t *testing.T) {
	loan := domain.Loan{
		Principal:      d("12000"),
		InterestRate:   d("12"),
		InterestType:   domain.InterestTypeFlat,
		DurationMonths: 12,
		TotalInterest:  d("1440"),
		DisbursedAt:    time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	rows := Schedule(loan)
	require.Len(t, rows, 12)

	assert.True(t, rows[0].Principal.Equal(d("1000")))
	assert.True(t, rows[0].Interest.Equal(d("120")))
	assert.Equal(t, time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC), rows[0].DueDate)

	var totalP, totalI decimal.Decimal
	for _, r := range rows {
		totalP = totalP.Add(r.Principal)
		totalI = totalI.Add(r.Interest)
	}
	assert.True(t, totalP.Equal(loan.Principal), "schedule principal must sum to the loan principal")
	assert.True(t, totalI.Equal(loan.TotalInterest), "schedule interest must sum to the total interest")
	assert.True(t, rows[11].Balance.IsZero(), "balance reaches zero on the last row")
}

func TestReducingSchedule(t *testing.T) {
	loan := domain.Loan{
		Principal:      d("10000"),
		InterestRate:   d("12"),
		InterestType:   domain.InterestTypeReducing,
		DurationMonths: 12,
		DisbursedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	rows := Schedule(loan)
	require.Len(t, rows, 12)

	// First month's interest is 1% of the full principal.
	assert.True(t, rows[0].Interest.Equal(d("100")))
	assert.True(t, rows[11].Balance.IsZero(), "balance reaches zero on the last row")

	var totalP decimal.Decimal
	for i, r := range rows {
		totalP = totalP.Add(r.Principal)
		if i > 0 {
			assert.True(t, r.Interest.LessThan(rows[i-1].Interest),
				"reducing interest falls every month")
		}
	}
	assert.True(t, totalP.Equal(loan.Principal), "schedule principal must sum to the loan principal")
}

func TestReducingScheduleZeroRate(t *testing.T) {
	loan := domain.Loan{
		Principal:      d("1200"),
		InterestRate:   decimal.Zero,
		InterestType:   domain.InterestTypeReducing,
		DurationMonths: 12,
		DisbursedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	rows := Schedule(loan)
	require.Len(t, rows, 12)
	assert.True(t, rows[0].Principal.Equal(d("100")))
	assert.True(t, rows[0].Interest.IsZero())
	assert.True(t, rows[11].Balance.IsZero())
}
