package pgsql

import (
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every repository over one pool (or, in tests,
// a pgxmock pool).
func NewRepositoryProvider(db DBConn) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:          NewPgxTxManager(db),
		AccountRepo:        newPgxAccountRepository(db),
		MemberRepo:         newPgxMemberRepository(db),
		JournalRepo:        newPgxJournalRepository(db),
		DepositRepo:        newPgxDepositRepository(db),
		WithdrawalRepo:     newPgxWithdrawalRepository(db),
		RepaymentRepo:      newPgxRepaymentRepository(db),
		LoanRepo:           newPgxLoanRepository(db),
		FineRepo:           newPgxFineRepository(db),
		CategoryLedgerRepo: newPgxCategoryLedgerRepository(db),
	}
}
