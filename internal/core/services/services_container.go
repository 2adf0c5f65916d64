package services

import (
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
	portssvc "github.com/saccokit/sacco-ledger/internal/core/ports/services"
)

// NewServiceContainer wires every application service over one repository
// provider. currency is the cooperative's operating currency.
func NewServiceContainer(repos portsrepo.RepositoryProvider, currency string) *portssvc.ServiceContainer {
	post := &posting{
		journalRepo:  repos.JournalRepo,
		accountRepo:  repos.AccountRepo,
		memberRepo:   repos.MemberRepo,
		categoryRepo: repos.CategoryLedgerRepo,
	}

	accountSvc := NewAccountService(repos.AccountRepo, repos.JournalRepo, currency)

	return &portssvc.ServiceContainer{
		Account:        accountSvc,
		Member:         NewMemberService(repos.MemberRepo),
		Deposit:        NewDepositService(repos.TxManager, repos.DepositRepo, accountSvc, post),
		Withdrawal:     NewWithdrawalService(repos.TxManager, repos.WithdrawalRepo, accountSvc, post),
		Repayment:      NewRepaymentService(repos.TxManager, repos.RepaymentRepo, repos.LoanRepo, repos.FineRepo, accountSvc, post),
		Loan:           NewLoanService(repos.TxManager, repos.LoanRepo, repos.FineRepo, accountSvc, post),
		Ledger:         NewLedgerService(repos.JournalRepo, repos.AccountRepo),
		CategoryLedger: NewCategoryLedgerService(repos.CategoryLedgerRepo),
		Reconciliation: NewReconciliationService(repos),
	}
}
