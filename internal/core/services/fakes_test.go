package services_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
)

// The fakes below are in-memory implementations of the repository ports.
// They keep the same error contracts as the pgsql repositories (ErrNotFound,
// ErrDuplicate, ErrConflict) so the services under test behave as they
// would against the real store.

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- accounts ---

type fakeAccountRepo struct {
	accounts map[string]*domain.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *fakeAccountRepo) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if acc, ok := r.accounts[accountID]; ok {
		cp := *acc
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeAccountRepo) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	for _, acc := range r.accounts {
		if acc.Code == code {
			cp := *acc
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeAccountRepo) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	out := make(map[string]domain.Account)
	for _, id := range accountIDs {
		if acc, ok := r.accounts[id]; ok {
			out[id] = *acc
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListAccounts(ctx context.Context, financialOnly bool, limit int, offset int) ([]domain.Account, error) {
	var ids []string
	for id, acc := range r.accounts {
		if financialOnly && !acc.Type.IsFinancial() {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []domain.Account
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, *r.accounts[id])
	}
	return out, nil
}

func (r *fakeAccountRepo) SaveAccount(ctx context.Context, account domain.Account) error {
	for _, acc := range r.accounts {
		if acc.Code == account.Code {
			return apperrors.ErrDuplicate
		}
	}
	cp := account
	r.accounts[account.AccountID] = &cp
	return nil
}

func (r *fakeAccountRepo) UpdateAccount(ctx context.Context, account domain.Account) error {
	existing, ok := r.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	account.Balance = existing.Balance
	cp := account
	r.accounts[account.AccountID] = &cp
	return nil
}

func (r *fakeAccountRepo) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	acc, ok := r.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.IsActive = false
	return nil
}

func (r *fakeAccountRepo) LockAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.FindAccountsByIDs(ctx, accountIDs)
}

func (r *fakeAccountRepo) ApplyBalanceDeltas(ctx context.Context, deltas map[string]decimal.Decimal, userID string, now time.Time) error {
	for id, delta := range deltas {
		if delta.IsZero() {
			continue
		}
		acc, ok := r.accounts[id]
		if !ok {
			return apperrors.ErrNotFound
		}
		acc.Balance = acc.Balance.Add(delta)
	}
	return nil
}

func (r *fakeAccountRepo) SetAccountBalance(ctx context.Context, accountID string, balance decimal.Decimal, userID string, now time.Time) error {
	acc, ok := r.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.Balance = balance
	return nil
}

// --- members ---

type fakeMemberRepo struct {
	members map[string]*domain.Member
	ledger  []domain.MemberLedgerEntry
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[string]*domain.Member)}
}

func (r *fakeMemberRepo) FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	if m, ok := r.members[memberID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeMemberRepo) ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error) {
	var ids []string
	for id := range r.members {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var out []domain.Member
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, *r.members[id])
	}
	return out, nil
}

func (r *fakeMemberRepo) SaveMember(ctx context.Context, member domain.Member) error {
	cp := member
	r.members[member.MemberID] = &cp
	return nil
}

func (r *fakeMemberRepo) ApplyMemberDeltas(ctx context.Context, memberID string, savingsDelta, loanDelta decimal.Decimal) error {
	m, ok := r.members[memberID]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.Balance = m.Balance.Add(savingsDelta)
	m.LoanBalance = m.LoanBalance.Add(loanDelta)
	return nil
}

func (r *fakeMemberRepo) SetMemberBalances(ctx context.Context, memberID string, balance, loanBalance decimal.Decimal) error {
	m, ok := r.members[memberID]
	if !ok {
		return apperrors.ErrNotFound
	}
	m.Balance = balance
	m.LoanBalance = loanBalance
	return nil
}

func (r *fakeMemberRepo) ListMemberLedger(ctx context.Context, memberID string, limit int, offset int) ([]domain.MemberLedgerEntry, error) {
	var out []domain.MemberLedgerEntry
	for i := len(r.ledger) - 1; i >= 0; i-- {
		if r.ledger[i].MemberID == memberID {
			out = append(out, r.ledger[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeMemberRepo) FindLedgerEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.MemberLedgerEntry, error) {
	var out []domain.MemberLedgerEntry
	for _, e := range r.ledger {
		if e.SourceKind == kind && e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) SumMemberLedger(ctx context.Context, memberID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.ledger {
		if e.MemberID != memberID {
			continue
		}
		switch e.Type {
		case domain.LedgerContribution, domain.LedgerDeposit, domain.LedgerWithdrawal, domain.LedgerAdjustment:
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

func (r *fakeMemberRepo) SaveMemberLedgerEntry(ctx context.Context, entry domain.MemberLedgerEntry) error {
	r.ledger = append(r.ledger, entry)
	return nil
}

func (r *fakeMemberRepo) DeleteMemberLedgerEntry(ctx context.Context, entryID string) error {
	for i, e := range r.ledger {
		if e.EntryID == entryID {
			r.ledger = append(r.ledger[:i], r.ledger[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeMemberRepo) DeleteLedgerEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error {
	kept := r.ledger[:0]
	for _, e := range r.ledger {
		if !(e.SourceKind == kind && e.SourceID == sourceID) {
			kept = append(kept, e)
		}
	}
	r.ledger = kept
	return nil
}

// --- journal ---

type fakeJournalRepo struct {
	entries []domain.JournalEntry
	// financial marks account IDs whose movements count as money flow.
	financial map[string]bool
}

func (r *fakeJournalRepo) FindEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	for _, e := range r.entries {
		if e.EntryID == entryID {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeJournalRepo) FindEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	for _, e := range r.entries {
		if e.SourceKind == kind && e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeJournalRepo) FindEntryByReference(ctx context.Context, reference string) (*domain.JournalEntry, error) {
	for _, e := range r.entries {
		if e.Reference != nil && *e.Reference == reference {
			return &e, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeJournalRepo) ListEntries(ctx context.Context, limit int, nextToken *string) ([]domain.JournalEntry, *string, error) {
	// Single page, newest first. Enough for the scans under test.
	if nextToken != nil {
		return nil, nil, nil
	}
	out := make([]domain.JournalEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		out = append(out, r.entries[i])
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil, nil
}

func (r *fakeJournalRepo) FilterEntries(ctx context.Context, filter domain.JournalFilter, limit int, offset int) ([]domain.JournalEntry, error) {
	var matched []domain.JournalEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if filter.AccountID != nil && e.DebitAccountID != *filter.AccountID && e.CreditAccountID != *filter.AccountID {
			continue
		}
		if filter.Category != nil && e.Category != *filter.Category {
			continue
		}
		if filter.From != nil && e.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && e.Date.After(*filter.To) {
			continue
		}
		matched = append(matched, e)
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *fakeJournalRepo) ListEntriesByAccount(ctx context.Context, accountID string, from, to *time.Time) ([]domain.JournalEntry, error) {
	var out []domain.JournalEntry
	for _, e := range r.entries {
		if e.DebitAccountID != accountID && e.CreditAccountID != accountID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeJournalRepo) SumDebitsAndCredits(ctx context.Context, accountID string) (decimal.Decimal, decimal.Decimal, error) {
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range r.entries {
		if e.DebitAccountID == accountID {
			debits = debits.Add(e.DebitAmount)
		}
		if e.CreditAccountID == accountID {
			credits = credits.Add(e.CreditAmount)
		}
	}
	return debits, credits, nil
}

func (r *fakeJournalRepo) SumMoneyFlow(ctx context.Context, from, to *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	moneyIn, moneyOut := decimal.Zero, decimal.Zero
	for _, e := range r.entries {
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && e.Date.After(*to) {
			continue
		}
		if r.financial[e.DebitAccountID] {
			moneyIn = moneyIn.Add(e.DebitAmount)
		}
		if r.financial[e.CreditAccountID] {
			moneyOut = moneyOut.Add(e.CreditAmount)
		}
	}
	return moneyIn, moneyOut, nil
}

func (r *fakeJournalRepo) Summarize(ctx context.Context) (*domain.LedgerSummary, error) {
	summary := &domain.LedgerSummary{EntryCount: len(r.entries)}
	for _, e := range r.entries {
		summary.TotalDebits = summary.TotalDebits.Add(e.DebitAmount)
		summary.TotalCredits = summary.TotalCredits.Add(e.CreditAmount)
	}
	return summary, nil
}

func (r *fakeJournalRepo) SaveEntries(ctx context.Context, entries []domain.JournalEntry) error {
	for _, entry := range entries {
		if entry.Reference != nil {
			for _, existing := range r.entries {
				if existing.Reference != nil && *existing.Reference == *entry.Reference {
					return apperrors.ErrDuplicate
				}
			}
		}
		r.entries = append(r.entries, entry)
	}
	return nil
}

func (r *fakeJournalRepo) DeleteReversalEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error {
	kept := r.entries[:0]
	for _, e := range r.entries {
		if !(e.SourceKind == kind && e.SourceID == sourceID && e.IsReversal) {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

func (r *fakeJournalRepo) DeleteEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error {
	kept := r.entries[:0]
	for _, e := range r.entries {
		if !(e.SourceKind == kind && e.SourceID == sourceID) {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

// --- deposits / withdrawals / repayments ---

type fakeDepositRepo struct {
	deposits map[string]*domain.Deposit
	order    []string
}

func newFakeDepositRepo() *fakeDepositRepo {
	return &fakeDepositRepo{deposits: make(map[string]*domain.Deposit)}
}

func (r *fakeDepositRepo) SaveDeposit(ctx context.Context, deposit domain.Deposit) error {
	cp := deposit
	r.deposits[deposit.DepositID] = &cp
	r.order = append(r.order, deposit.DepositID)
	return nil
}

func (r *fakeDepositRepo) UpdateDeposit(ctx context.Context, deposit domain.Deposit) error {
	if _, ok := r.deposits[deposit.DepositID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := deposit
	r.deposits[deposit.DepositID] = &cp
	return nil
}

func (r *fakeDepositRepo) FindDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error) {
	if d, ok := r.deposits[depositID]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeDepositRepo) ListDeposits(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Deposit, error) {
	var out []domain.Deposit
	skipped := 0
	for _, id := range r.order {
		d, ok := r.deposits[id]
		if !ok || (memberID != nil && d.MemberID != *memberID) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, *d)
	}
	return out, nil
}

func (r *fakeDepositRepo) MarkDepositVoided(ctx context.Context, depositID string, reason string, userID string, now time.Time) error {
	d, ok := r.deposits[depositID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if d.IsVoided {
		return apperrors.ErrConflict
	}
	d.IsVoided = true
	d.VoidedAt = &now
	d.VoidReason = &reason
	return nil
}

func (r *fakeDepositRepo) DeleteDeposit(ctx context.Context, depositID string) error {
	if _, ok := r.deposits[depositID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.deposits, depositID)
	return nil
}

type fakeWithdrawalRepo struct {
	withdrawals map[string]*domain.Withdrawal
	order       []string
}

func newFakeWithdrawalRepo() *fakeWithdrawalRepo {
	return &fakeWithdrawalRepo{withdrawals: make(map[string]*domain.Withdrawal)}
}

func (r *fakeWithdrawalRepo) SaveWithdrawal(ctx context.Context, withdrawal domain.Withdrawal) error {
	cp := withdrawal
	r.withdrawals[withdrawal.WithdrawalID] = &cp
	r.order = append(r.order, withdrawal.WithdrawalID)
	return nil
}

func (r *fakeWithdrawalRepo) UpdateWithdrawal(ctx context.Context, withdrawal domain.Withdrawal) error {
	if _, ok := r.withdrawals[withdrawal.WithdrawalID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := withdrawal
	r.withdrawals[withdrawal.WithdrawalID] = &cp
	return nil
}

func (r *fakeWithdrawalRepo) FindWithdrawalByID(ctx context.Context, withdrawalID string) (*domain.Withdrawal, error) {
	if w, ok := r.withdrawals[withdrawalID]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeWithdrawalRepo) ListWithdrawals(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Withdrawal, error) {
	var out []domain.Withdrawal
	for _, id := range r.order {
		w, ok := r.withdrawals[id]
		if !ok {
			continue
		}
		if memberID != nil && (w.MemberID == nil || *w.MemberID != *memberID) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, *w)
	}
	return out, nil
}

func (r *fakeWithdrawalRepo) MarkWithdrawalVoided(ctx context.Context, withdrawalID string, reason string, userID string, now time.Time) error {
	w, ok := r.withdrawals[withdrawalID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if w.IsVoided {
		return apperrors.ErrConflict
	}
	w.IsVoided = true
	w.VoidedAt = &now
	w.VoidReason = &reason
	return nil
}

func (r *fakeWithdrawalRepo) DeleteWithdrawal(ctx context.Context, withdrawalID string) error {
	if _, ok := r.withdrawals[withdrawalID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.withdrawals, withdrawalID)
	return nil
}

type fakeRepaymentRepo struct {
	repayments   map[string]*domain.Repayment
	finePayments map[string][]domain.FinePayment
	order        []string
}

func newFakeRepaymentRepo() *fakeRepaymentRepo {
	return &fakeRepaymentRepo{
		repayments:   make(map[string]*domain.Repayment),
		finePayments: make(map[string][]domain.FinePayment),
	}
}

func (r *fakeRepaymentRepo) SaveRepayment(ctx context.Context, repayment domain.Repayment, finePayments []domain.FinePayment) error {
	cp := repayment
	r.repayments[repayment.RepaymentID] = &cp
	r.finePayments[repayment.RepaymentID] = finePayments
	r.order = append(r.order, repayment.RepaymentID)
	return nil
}

func (r *fakeRepaymentRepo) UpdateRepayment(ctx context.Context, repayment domain.Repayment, finePayments []domain.FinePayment) error {
	if _, ok := r.repayments[repayment.RepaymentID]; !ok {
		return apperrors.ErrNotFound
	}
	cp := repayment
	r.repayments[repayment.RepaymentID] = &cp
	r.finePayments[repayment.RepaymentID] = finePayments
	return nil
}

func (r *fakeRepaymentRepo) FindRepaymentByID(ctx context.Context, repaymentID string) (*domain.Repayment, error) {
	if rp, ok := r.repayments[repaymentID]; ok {
		cp := *rp
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeRepaymentRepo) ListRepaymentsByLoan(ctx context.Context, loanID string) ([]domain.Repayment, error) {
	var out []domain.Repayment
	for _, id := range r.order {
		if rp, ok := r.repayments[id]; ok && rp.LoanID == loanID {
			out = append(out, *rp)
		}
	}
	return out, nil
}

func (r *fakeRepaymentRepo) FindFinePaymentsByRepayment(ctx context.Context, repaymentID string) ([]domain.FinePayment, error) {
	return r.finePayments[repaymentID], nil
}

func (r *fakeRepaymentRepo) MarkRepaymentVoided(ctx context.Context, repaymentID string, reason string, userID string, now time.Time) error {
	rp, ok := r.repayments[repaymentID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if rp.IsVoided {
		return apperrors.ErrConflict
	}
	rp.IsVoided = true
	rp.VoidedAt = &now
	rp.VoidReason = &reason
	return nil
}

func (r *fakeRepaymentRepo) DeleteRepayment(ctx context.Context, repaymentID string) error {
	if _, ok := r.repayments[repaymentID]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.repayments, repaymentID)
	delete(r.finePayments, repaymentID)
	return nil
}

// --- loans and fines ---

type fakeLoanRepo struct {
	loans map[string]*domain.Loan
	order []string
}

func newFakeLoanRepo() *fakeLoanRepo {
	return &fakeLoanRepo{loans: make(map[string]*domain.Loan)}
}

func (r *fakeLoanRepo) SaveLoan(ctx context.Context, loan domain.Loan) error {
	cp := loan
	r.loans[loan.LoanID] = &cp
	r.order = append(r.order, loan.LoanID)
	return nil
}

func (r *fakeLoanRepo) FindLoanByID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if l, ok := r.loans[loanID]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeLoanRepo) FindLoanByIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	return r.FindLoanByID(ctx, loanID)
}

func (r *fakeLoanRepo) ListLoansByMember(ctx context.Context, memberID string) ([]domain.Loan, error) {
	var out []domain.Loan
	for _, id := range r.order {
		if l, ok := r.loans[id]; ok && l.MemberID == memberID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLoanRepo) ApplyRepaidDelta(ctx context.Context, loanID string, delta decimal.Decimal, status domain.LoanStatus, userID string) error {
	l, ok := r.loans[loanID]
	if !ok {
		return apperrors.ErrNotFound
	}
	l.RepaidAmount = l.RepaidAmount.Add(delta)
	l.Status = status
	return nil
}

type fakeFineRepo struct {
	fines map[string]*domain.Fine
	order []string
}

func newFakeFineRepo() *fakeFineRepo {
	return &fakeFineRepo{fines: make(map[string]*domain.Fine)}
}

func (r *fakeFineRepo) SaveFine(ctx context.Context, fine domain.Fine) error {
	cp := fine
	r.fines[fine.FineID] = &cp
	r.order = append(r.order, fine.FineID)
	return nil
}

func (r *fakeFineRepo) FindFineByID(ctx context.Context, fineID string) (*domain.Fine, error) {
	if f, ok := r.fines[fineID]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeFineRepo) ListOutstandingFines(ctx context.Context, memberID string, loanID *string) ([]domain.Fine, error) {
	var out []domain.Fine
	for _, id := range r.order {
		f, ok := r.fines[id]
		if !ok || f.MemberID != memberID || f.Status == domain.FineStatusPaid {
			continue
		}
		if loanID != nil && (f.LoanID == nil || *f.LoanID != *loanID) {
			continue
		}
		out = append(out, *f)
	}
	return out, nil
}

func (r *fakeFineRepo) ListFinesByMember(ctx context.Context, memberID string) ([]domain.Fine, error) {
	var out []domain.Fine
	for _, id := range r.order {
		if f, ok := r.fines[id]; ok && f.MemberID == memberID {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFineRepo) ApplyFinePayment(ctx context.Context, fineID string, paid decimal.Decimal, status domain.FineStatus, userID string) error {
	f, ok := r.fines[fineID]
	if !ok {
		return apperrors.ErrNotFound
	}
	f.PaidAmount = f.PaidAmount.Add(paid)
	f.Status = status
	return nil
}

// --- category ledgers ---

type fakeCategoryRepo struct {
	ledgers map[string]*domain.CategoryLedger
	entries []domain.CategoryLedgerEntry
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{ledgers: make(map[string]*domain.CategoryLedger)}
}

func (r *fakeCategoryRepo) FindCategoryLedgerByName(ctx context.Context, name string) (*domain.CategoryLedger, error) {
	for _, l := range r.ledgers {
		if l.Name == name {
			cp := *l
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *fakeCategoryRepo) SaveCategoryLedger(ctx context.Context, ledger domain.CategoryLedger) error {
	for _, l := range r.ledgers {
		if l.Name == ledger.Name {
			return apperrors.ErrDuplicate
		}
	}
	cp := ledger
	r.ledgers[ledger.CategoryLedgerID] = &cp
	return nil
}

func (r *fakeCategoryRepo) ListCategoryLedgers(ctx context.Context) ([]domain.CategoryLedger, error) {
	var ids []string
	for id := range r.ledgers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]domain.CategoryLedger, 0, len(ids))
	for _, id := range ids {
		out = append(out, *r.ledgers[id])
	}
	return out, nil
}

func (r *fakeCategoryRepo) ApplyCategoryDeltas(ctx context.Context, categoryLedgerID string, totalDelta, balanceDelta decimal.Decimal, userID string) (decimal.Decimal, error) {
	l, ok := r.ledgers[categoryLedgerID]
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	l.TotalAmount = l.TotalAmount.Add(totalDelta)
	l.Balance = l.Balance.Add(balanceDelta)
	return l.Balance, nil
}

func (r *fakeCategoryRepo) SaveCategoryEntry(ctx context.Context, entry domain.CategoryLedgerEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeCategoryRepo) ListCategoryEntries(ctx context.Context, categoryLedgerID string, limit int, offset int) ([]domain.CategoryLedgerEntry, error) {
	var out []domain.CategoryLedgerEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CategoryLedgerID == categoryLedgerID {
			out = append(out, r.entries[i])
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCategoryRepo) FindCategoryEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.CategoryLedgerEntry, error) {
	var out []domain.CategoryLedgerEntry
	for _, e := range r.entries {
		if e.SourceKind == kind && e.SourceID == sourceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) DeleteCategoryEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error {
	kept := r.entries[:0]
	for _, e := range r.entries {
		if !(e.SourceKind == kind && e.SourceID == sourceID) {
			kept = append(kept, e)
		}
	}
	r.entries = kept
	return nil
}

func (r *fakeCategoryRepo) DeleteCategoryEntry(ctx context.Context, entryID string) error {
	for i, e := range r.entries {
		if e.EntryID == entryID {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (r *fakeCategoryRepo) FindDuplicateCategoryEntries(ctx context.Context) ([]domain.CategoryLedgerEntry, error) {
	type key struct {
		ledgerID string
		kind     domain.SourceKind
		sourceID string
		amount   string
	}
	seen := make(map[key]bool)
	var dupes []domain.CategoryLedgerEntry
	for _, e := range r.entries {
		k := key{e.CategoryLedgerID, e.SourceKind, e.SourceID, e.Amount.String()}
		if seen[k] {
			dupes = append(dupes, e)
			continue
		}
		seen[k] = true
	}
	return dupes, nil
}

func (r *fakeCategoryRepo) SumCategoryEntries(ctx context.Context, categoryLedgerID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, e := range r.entries {
		if e.CategoryLedgerID == categoryLedgerID {
			sum = sum.Add(e.Amount)
		}
	}
	return sum, nil
}

// --- harness ---

// testBooks bundles the fakes behind one RepositoryProvider so each suite
// can inspect every book after driving the services.
type testBooks struct {
	accounts    *fakeAccountRepo
	members     *fakeMemberRepo
	journal     *fakeJournalRepo
	deposits    *fakeDepositRepo
	withdrawals *fakeWithdrawalRepo
	repayments  *fakeRepaymentRepo
	loans       *fakeLoanRepo
	fines       *fakeFineRepo
	categories  *fakeCategoryRepo
}

func newTestBooks() *testBooks {
	return &testBooks{
		accounts:    newFakeAccountRepo(),
		members:     newFakeMemberRepo(),
		journal:     &fakeJournalRepo{financial: make(map[string]bool)},
		deposits:    newFakeDepositRepo(),
		withdrawals: newFakeWithdrawalRepo(),
		repayments:  newFakeRepaymentRepo(),
		loans:       newFakeLoanRepo(),
		fines:       newFakeFineRepo(),
		categories:  newFakeCategoryRepo(),
	}
}

func (b *testBooks) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:          fakeTxManager{},
		AccountRepo:        b.accounts,
		MemberRepo:         b.members,
		JournalRepo:        b.journal,
		DepositRepo:        b.deposits,
		WithdrawalRepo:     b.withdrawals,
		RepaymentRepo:      b.repayments,
		LoanRepo:           b.loans,
		FineRepo:           b.fines,
		CategoryLedgerRepo: b.categories,
	}
}

func (b *testBooks) addAccount(id, code, name string, accType domain.AccountType, balance decimal.Decimal) {
	b.journal.financial[id] = accType.IsFinancial()
	b.accounts.accounts[id] = &domain.Account{
		AccountID: id,
		Code:      code,
		Name:      name,
		Type:      accType,
		Currency:  "KES",
		Balance:   balance,
		IsActive:  true,
	}
}

func (b *testBooks) addMember(id, name string) {
	b.members.members[id] = &domain.Member{
		MemberID: id,
		Name:     name,
		IsActive: true,
	}
}
