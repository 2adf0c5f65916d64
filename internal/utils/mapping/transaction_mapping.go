package mapping

import (
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	"github.com/saccokit/sacco-ledger/internal/models"
)

// ToModelDeposit converts a domain Deposit to a model Deposit
func ToModelDeposit(d domain.Deposit) models.Deposit {
	return models.Deposit{
		DepositID:   d.DepositID,
		MemberID:    d.MemberID,
		AccountID:   d.AccountID,
		DepositType: string(d.Type),
		Amount:      d.Amount,
		Reference:   d.Reference,
		Description: d.Description,
		TxnDate:     d.Date,
		IsVoided:    d.IsVoided,
		VoidedAt:    d.VoidedAt,
		VoidReason:  d.VoidReason,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDeposit converts a model Deposit to a domain Deposit
func ToDomainDeposit(m models.Deposit) domain.Deposit {
	return domain.Deposit{
		DepositID:   m.DepositID,
		MemberID:    m.MemberID,
		AccountID:   m.AccountID,
		Type:        domain.DepositType(m.DepositType),
		Amount:      m.Amount,
		Reference:   m.Reference,
		Description: m.Description,
		Date:        m.TxnDate,
		IsVoided:    m.IsVoided,
		VoidedAt:    m.VoidedAt,
		VoidReason:  m.VoidReason,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainDepositSlice converts a slice of model Deposits
func ToDomainDepositSlice(ms []models.Deposit) []domain.Deposit {
	ds := make([]domain.Deposit, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainDeposit(m)
	}
	return ds
}

// ToModelWithdrawal converts a domain Withdrawal to a model Withdrawal
func ToModelWithdrawal(d domain.Withdrawal) models.Withdrawal {
	return models.Withdrawal{
		WithdrawalID:   d.WithdrawalID,
		MemberID:       d.MemberID,
		AccountID:      d.AccountID,
		WithdrawalType: string(d.Type),
		Amount:         d.Amount,
		Reference:      d.Reference,
		Description:    d.Description,
		TxnDate:        d.Date,
		IsVoided:       d.IsVoided,
		VoidedAt:       d.VoidedAt,
		VoidReason:     d.VoidReason,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainWithdrawal converts a model Withdrawal to a domain Withdrawal
func ToDomainWithdrawal(m models.Withdrawal) domain.Withdrawal {
	return domain.Withdrawal{
		WithdrawalID: m.WithdrawalID,
		MemberID:     m.MemberID,
		AccountID:    m.AccountID,
		Type:         domain.WithdrawalType(m.WithdrawalType),
		Amount:       m.Amount,
		Reference:    m.Reference,
		Description:  m.Description,
		Date:         m.TxnDate,
		IsVoided:     m.IsVoided,
		VoidedAt:     m.VoidedAt,
		VoidReason:   m.VoidReason,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainWithdrawalSlice converts a slice of model Withdrawals
func ToDomainWithdrawalSlice(ms []models.Withdrawal) []domain.Withdrawal {
	ds := make([]domain.Withdrawal, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainWithdrawal(m)
	}
	return ds
}

// ToModelRepayment converts a domain Repayment to a model Repayment
func ToModelRepayment(d domain.Repayment) models.Repayment {
	return models.Repayment{
		RepaymentID:      d.RepaymentID,
		LoanID:           d.LoanID,
		MemberID:         d.MemberID,
		AccountID:        d.AccountID,
		Amount:           d.Amount,
		FinesPortion:     d.Allocation.Fines,
		InterestPortion:  d.Allocation.Interest,
		PrincipalPortion: d.Allocation.Principal,
		Reference:        d.Reference,
		Description:      d.Description,
		TxnDate:          d.Date,
		IsVoided:         d.IsVoided,
		VoidedAt:         d.VoidedAt,
		VoidReason:       d.VoidReason,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainRepayment converts a model Repayment to a domain Repayment
func ToDomainRepayment(m models.Repayment) domain.Repayment {
	return domain.Repayment{
		RepaymentID: m.RepaymentID,
		LoanID:      m.LoanID,
		MemberID:    m.MemberID,
		AccountID:   m.AccountID,
		Amount:      m.Amount,
		Allocation: domain.Allocation{
			Fines:     m.FinesPortion,
			Interest:  m.InterestPortion,
			Principal: m.PrincipalPortion,
		},
		Reference:   m.Reference,
		Description: m.Description,
		Date:        m.TxnDate,
		IsVoided:    m.IsVoided,
		VoidedAt:    m.VoidedAt,
		VoidReason:  m.VoidReason,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainRepaymentSlice converts a slice of model Repayments
func ToDomainRepaymentSlice(ms []models.Repayment) []domain.Repayment {
	ds := make([]domain.Repayment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainRepayment(m)
	}
	return ds
}
