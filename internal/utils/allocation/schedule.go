package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// Schedule builds the amortization schedule for a loan from its terms.
// Flat loans split principal and interest evenly; reducing loans pay a
// constant installment with interest charged on the running balance. The
// final row absorbs rounding remainders so the schedule totals match the
// loan exactly.
func Schedule(loan domain.Loan) []domain.ScheduleInstallment {
	if loan.DurationMonths <= 0 {
		return nil
	}
	if loan.InterestType == domain.InterestTypeReducing {
		return reducingSchedule(loan)
	}
	return flatSchedule(loan)
}

func flatSchedule(loan domain.Loan) []domain.ScheduleInstallment {
	n := loan.DurationMonths
	months := decimal.NewFromInt(int64(n))
	principalPer := loan.Principal.Div(months).Round(2)
	interestPer := loan.TotalInterest.Div(months).Round(2)

	rows := make([]domain.ScheduleInstallment, n)
	balance := loan.Principal
	principalLeft := loan.Principal
	interestLeft := loan.TotalInterest
	for i := 0; i < n; i++ {
		p, in := principalPer, interestPer
		if i == n-1 {
			p, in = principalLeft, interestLeft
		}
		balance = balance.Sub(p)
		rows[i] = domain.ScheduleInstallment{
			Number:    i + 1,
			DueDate:   loan.DisbursedAt.AddDate(0, i+1, 0),
			Principal: p,
			Interest:  in,
			Total:     p.Add(in),
			Balance:   balance,
		}
		principalLeft = principalLeft.Sub(p)
		interestLeft = interestLeft.Sub(in)
	}
	return rows
}

func reducingSchedule(loan domain.Loan) []domain.ScheduleInstallment {
	n := loan.DurationMonths
	monthlyRate := loan.InterestRate.Div(hundred).Div(twelve)

	// EMI = P*r*(1+r)^n / ((1+r)^n - 1); zero-rate loans fall back to a
	// straight principal split.
	var emi decimal.Decimal
	if monthlyRate.IsZero() {
		emi = loan.Principal.Div(decimal.NewFromInt(int64(n))).Round(2)
	} else {
		factor := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(int64(n)))
		emi = loan.Principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1))).Round(2)
	}

	rows := make([]domain.ScheduleInstallment, n)
	balance := loan.Principal
	for i := 0; i < n; i++ {
		interest := balance.Mul(monthlyRate).Round(2)
		principal := emi.Sub(interest)
		if i == n-1 || principal.GreaterThan(balance) {
			// Final installment clears whatever principal is left.
			principal = balance
		}
		balance = balance.Sub(principal)
		rows[i] = domain.ScheduleInstallment{
			Number:    i + 1,
			DueDate:   loan.DisbursedAt.AddDate(0, i+1, 0),
			Principal: principal,
			Interest:  interest,
			Total:     principal.Add(interest),
			Balance:   balance,
		}
	}
	return rows
}
