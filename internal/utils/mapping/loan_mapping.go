package mapping

import (
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	"github.com/saccokit/sacco-ledger/internal/models"
)

// ToModelLoan converts a domain Loan to a model Loan
func ToModelLoan(d domain.Loan) models.Loan {
	return models.Loan{
		LoanID:         d.LoanID,
		MemberID:       d.MemberID,
		Principal:      d.Principal,
		InterestRate:   d.InterestRate,
		InterestType:   string(d.InterestType),
		DurationMonths: d.DurationMonths,
		TotalInterest:  d.TotalInterest,
		TotalPayable:   d.TotalPayable,
		RepaidAmount:   d.RepaidAmount,
		Status:         string(d.Status),
		DisbursedAt:    d.DisbursedAt,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainLoan converts a model Loan to a domain Loan
func ToDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:         m.LoanID,
		MemberID:       m.MemberID,
		Principal:      m.Principal,
		InterestRate:   m.InterestRate,
		InterestType:   domain.InterestType(m.InterestType),
		DurationMonths: m.DurationMonths,
		TotalInterest:  m.TotalInterest,
		TotalPayable:   m.TotalPayable,
		RepaidAmount:   m.RepaidAmount,
		Status:         domain.LoanStatus(m.Status),
		DisbursedAt:    m.DisbursedAt,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoanSlice converts a slice of model Loans
func ToDomainLoanSlice(ms []models.Loan) []domain.Loan {
	ds := make([]domain.Loan, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainLoan(m)
	}
	return ds
}

// ToModelFine converts a domain Fine to a model Fine
func ToModelFine(d domain.Fine) models.Fine {
	return models.Fine{
		FineID:      d.FineID,
		MemberID:    d.MemberID,
		LoanID:      d.LoanID,
		Amount:      d.Amount,
		PaidAmount:  d.PaidAmount,
		Status:      string(d.Status),
		Reason:      d.Reason,
		LeviedAt:    d.LeviedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainFine converts a model Fine to a domain Fine
func ToDomainFine(m models.Fine) domain.Fine {
	return domain.Fine{
		FineID:      m.FineID,
		MemberID:    m.MemberID,
		LoanID:      m.LoanID,
		Amount:      m.Amount,
		PaidAmount:  m.PaidAmount,
		Status:      domain.FineStatus(m.Status),
		Reason:      m.Reason,
		LeviedAt:    m.LeviedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainFineSlice converts a slice of model Fines
func ToDomainFineSlice(ms []models.Fine) []domain.Fine {
	ds := make([]domain.Fine, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainFine(m)
	}
	return ds
}
