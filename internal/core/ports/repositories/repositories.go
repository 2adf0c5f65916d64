package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager          TxManager
	AccountRepo        AccountRepositoryFacade
	MemberRepo         MemberRepositoryFacade
	JournalRepo        JournalRepositoryFacade
	DepositRepo        DepositRepository
	WithdrawalRepo     WithdrawalRepository
	RepaymentRepo      RepaymentRepository
	LoanRepo           LoanRepository
	FineRepo           FineRepository
	CategoryLedgerRepo CategoryLedgerRepository
}
