// Package allocation implements the repayment waterfall and the loan
// interest arithmetic. Money arriving against a loan settles outstanding
// fines first, then unpaid interest, and whatever remains reduces the
// principal. The three portions always sum exactly to the amount paid.
package allocation

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

var ErrAmountNotPositive = errors.New("allocation amount must be positive")

var twelve = decimal.NewFromInt(12)
var hundred = decimal.NewFromInt(100)

// Split applies the waterfall to amount. outstandingFines and
// remainingInterest cap their respective portions; negative caps are
// treated as zero.
func Split(amount, outstandingFines, remainingInterest decimal.Decimal) (domain.Allocation, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.Allocation{}, ErrAmountNotPositive
	}
	if outstandingFines.IsNegative() {
		outstandingFines = decimal.Zero
	}
	if remainingInterest.IsNegative() {
		remainingInterest = decimal.Zero
	}

	fines := decimal.Min(amount, outstandingFines)
	remaining := amount.Sub(fines)
	interest := decimal.Min(remaining, remainingInterest)
	principal := remaining.Sub(interest)

	return domain.Allocation{
		Fines:     fines,
		Interest:  interest,
		Principal: principal,
	}, nil
}

// DistributeFines spreads a fine portion across the given fines in order,
// filling each fine's outstanding remainder before moving to the next.
// The fines slice is expected in creation order so the oldest settles first.
func DistributeFines(portion decimal.Decimal, fines []domain.Fine) []domain.FinePayment {
	payments := make([]domain.FinePayment, 0, len(fines))
	left := portion
	for _, f := range fines {
		if left.LessThanOrEqual(decimal.Zero) {
			break
		}
		due := f.Outstanding()
		if due.LessThanOrEqual(decimal.Zero) {
			continue
		}
		paid := decimal.Min(left, due)
		payments = append(payments, domain.FinePayment{FineID: f.FineID, Amount: paid})
		left = left.Sub(paid)
	}
	return payments
}

// FlatInterest is principal * rate/100 * months/12: simple interest on the
// full principal for the loan term.
func FlatInterest(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	years := decimal.NewFromInt(int64(months)).Div(twelve)
	return principal.Mul(annualRate).Div(hundred).Mul(years).Round(2)
}

// ReducingInterest approximates total interest on a reducing balance as the
// average of the first and last month's interest times the term:
// principal * (months+1)/2 * monthlyRate.
func ReducingInterest(principal, annualRate decimal.Decimal, months int) decimal.Decimal {
	monthlyRate := annualRate.Div(hundred).Div(twelve)
	avgMonths := decimal.NewFromInt(int64(months) + 1).Div(decimal.NewFromInt(2))
	return principal.Mul(monthlyRate).Mul(avgMonths).Round(2)
}

// TotalInterest picks the interest formula for the loan's type.
func TotalInterest(principal, annualRate decimal.Decimal, interestType domain.InterestType, months int) decimal.Decimal {
	if interestType == domain.InterestTypeReducing {
		return ReducingInterest(principal, annualRate, months)
	}
	return FlatInterest(principal, annualRate, months)
}

// RemainingInterest is the loan's total interest minus what prior
// repayments already put toward interest, floored at zero.
func RemainingInterest(totalInterest, priorInterestPaid decimal.Decimal) decimal.Decimal {
	rem := totalInterest.Sub(decimal.Min(priorInterestPaid, totalInterest))
	if rem.IsNegative() {
		return decimal.Zero
	}
	return rem
}
