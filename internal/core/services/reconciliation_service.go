package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
	"github.com/saccokit/sacco-ledger/internal/middleware"
)

// reconcilePageSize bounds each listing round trip during a scan.
const reconcilePageSize = 200

// driftTolerance is the smallest account drift worth flagging. Differences
// below one cent are rounding noise, not missing money.
var driftTolerance = decimal.NewFromFloat(0.01)

// ReconciliationService walks the four books and reports (or repairs)
// every place where a stored balance drifted from the entries backing it.
type ReconciliationService struct {
	repos portsrepo.RepositoryProvider
}

func NewReconciliationService(repos portsrepo.RepositoryProvider) *ReconciliationService {
	return &ReconciliationService{repos: repos}
}

func (s *ReconciliationService) Reconcile(ctx context.Context) (*domain.ReconciliationReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	report := &domain.ReconciliationReport{}
	if err := s.checkAccounts(ctx, report, nil); err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, report, nil); err != nil {
		return nil, err
	}
	if err := s.checkCategories(ctx, report, nil); err != nil {
		return nil, err
	}
	if err := s.checkEntries(ctx, report); err != nil {
		return nil, err
	}
	if err := s.checkSources(ctx, report); err != nil {
		return nil, err
	}
	if err := s.checkDuplicates(ctx, report); err != nil {
		return nil, err
	}

	logger.Info("reconciliation finished",
		slog.Int("accounts", report.AccountsChecked),
		slog.Int("members", report.MembersChecked),
		slog.Int("categories", report.CategoriesChecked),
		slog.Int("entries", report.EntriesChecked),
		slog.Int("findings", len(report.Findings)))
	return report, nil
}

// Backfill recomputes every stored balance from the entries and overwrites
// the ones that drifted, reporting each repair as a finding.
func (s *ReconciliationService) Backfill(ctx context.Context, userID string) (*domain.ReconciliationReport, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	report := &domain.ReconciliationReport{}
	now := time.Now()
	err := s.repos.TxManager.WithinTx(ctx, func(ctx context.Context) error {
		repairAccount := func(accountID string, computed decimal.Decimal) error {
			return s.repos.AccountRepo.SetAccountBalance(ctx, accountID, computed, userID, now)
		}
		if err := s.checkAccounts(ctx, report, repairAccount); err != nil {
			return err
		}

		repairMember := func(member domain.Member, savings, loans decimal.Decimal) error {
			return s.repos.MemberRepo.SetMemberBalances(ctx, member.MemberID, savings, loans)
		}
		if err := s.checkMembers(ctx, report, repairMember); err != nil {
			return err
		}

		repairCategory := func(ledger domain.CategoryLedger, net decimal.Decimal) error {
			_, err := s.repos.CategoryLedgerRepo.ApplyCategoryDeltas(ctx, ledger.CategoryLedgerID, decimal.Zero, net.Sub(ledger.Balance), userID)
			return err
		}
		return s.checkCategories(ctx, report, repairCategory)
	})
	if err != nil {
		logger.Error("backfill failed", slog.Any("error", err))
		return nil, err
	}

	logger.Info("backfill finished", slog.Int("repairs", len(report.Findings)))
	return report, nil
}

func (s *ReconciliationService) checkAccounts(ctx context.Context, report *domain.ReconciliationReport, repair func(accountID string, computed decimal.Decimal) error) error {
	for offset := 0; ; offset += reconcilePageSize {
		accounts, err := s.repos.AccountRepo.ListAccounts(ctx, false, reconcilePageSize, offset)
		if err != nil {
			return err
		}
		for _, acc := range accounts {
			report.AccountsChecked++
			debits, credits, err := s.repos.JournalRepo.SumDebitsAndCredits(ctx, acc.AccountID)
			if err != nil {
				return err
			}
			computed := debits.Sub(credits)
			if computed.Sub(acc.Balance).Abs().LessThan(driftTolerance) {
				continue
			}
			report.Findings = append(report.Findings, domain.Finding{
				Kind:      domain.FindingBalanceMismatch,
				SubjectID: acc.AccountID,
				Detail:    fmt.Sprintf("account %s stored balance drifted from journal", acc.Code),
				Expected:  computed,
				Actual:    acc.Balance,
			})
			if repair != nil {
				if err := repair(acc.AccountID, computed); err != nil {
					return err
				}
			}
		}
		if len(accounts) < reconcilePageSize {
			return nil
		}
	}
}

func (s *ReconciliationService) checkMembers(ctx context.Context, report *domain.ReconciliationReport, repair func(member domain.Member, savings, loans decimal.Decimal) error) error {
	for offset := 0; ; offset += reconcilePageSize {
		members, err := s.repos.MemberRepo.ListMembers(ctx, reconcilePageSize, offset)
		if err != nil {
			return err
		}
		for _, m := range members {
			report.MembersChecked++
			savings, err := s.repos.MemberRepo.SumMemberLedger(ctx, m.MemberID)
			if err != nil {
				return err
			}

			loans, err := s.repos.LoanRepo.ListLoansByMember(ctx, m.MemberID)
			if err != nil {
				return err
			}
			loanOutstanding := decimal.Zero
			for _, l := range loans {
				loanOutstanding = loanOutstanding.Add(l.OutstandingBalance())
			}

			if !savings.Equal(m.Balance) {
				report.Findings = append(report.Findings, domain.Finding{
					Kind:      domain.FindingMemberMismatch,
					SubjectID: m.MemberID,
					Detail:    "member savings balance drifted from personal ledger",
					Expected:  savings,
					Actual:    m.Balance,
				})
			}
			if !loanOutstanding.Equal(m.LoanBalance) {
				report.Findings = append(report.Findings, domain.Finding{
					Kind:      domain.FindingMemberMismatch,
					SubjectID: m.MemberID,
					Detail:    "member loan balance drifted from loan book",
					Expected:  loanOutstanding,
					Actual:    m.LoanBalance,
				})
			}
			if repair != nil && (!savings.Equal(m.Balance) || !loanOutstanding.Equal(m.LoanBalance)) {
				if err := repair(m, savings, loanOutstanding); err != nil {
					return err
				}
			}
		}
		if len(members) < reconcilePageSize {
			return nil
		}
	}
}

func (s *ReconciliationService) checkCategories(ctx context.Context, report *domain.ReconciliationReport, repair func(ledger domain.CategoryLedger, net decimal.Decimal) error) error {
	ledgers, err := s.repos.CategoryLedgerRepo.ListCategoryLedgers(ctx)
	if err != nil {
		return err
	}
	for _, ledger := range ledgers {
		report.CategoriesChecked++
		net, err := s.repos.CategoryLedgerRepo.SumCategoryEntries(ctx, ledger.CategoryLedgerID)
		if err != nil {
			return err
		}
		if net.Equal(ledger.Balance) {
			continue
		}
		report.Findings = append(report.Findings, domain.Finding{
			Kind:      domain.FindingCategoryMismatch,
			SubjectID: ledger.CategoryLedgerID,
			Detail:    fmt.Sprintf("category %q balance drifted from its entries", ledger.Name),
			Expected:  net,
			Actual:    ledger.Balance,
		})
		if repair != nil {
			if err := repair(ledger, net); err != nil {
				return err
			}
		}
	}
	return nil
}

// checkEntries walks the whole journal looking for unbalanced pairs and
// entries whose source transaction no longer exists.
func (s *ReconciliationService) checkEntries(ctx context.Context, report *domain.ReconciliationReport) error {
	var token *string
	for {
		entries, next, err := s.repos.JournalRepo.ListEntries(ctx, reconcilePageSize, token)
		if err != nil {
			return err
		}
		for _, e := range entries {
			report.EntriesChecked++
			if !e.DebitAmount.Equal(e.CreditAmount) {
				report.Findings = append(report.Findings, domain.Finding{
					Kind:      domain.FindingUnbalancedEntry,
					SubjectID: e.EntryID,
					Detail:    "debit amount differs from credit amount",
					Expected:  e.DebitAmount,
					Actual:    e.CreditAmount,
				})
			}

			exists, err := s.sourceExists(ctx, e.SourceKind, e.SourceID)
			if err != nil {
				return err
			}
			if !exists {
				report.Findings = append(report.Findings, domain.Finding{
					Kind:      domain.FindingOrphanEntry,
					SubjectID: e.EntryID,
					Detail:    fmt.Sprintf("entry references missing %s %s", e.SourceKind, e.SourceID),
				})
			}
		}
		if next == nil {
			return nil
		}
		token = next
	}
}

func (s *ReconciliationService) sourceExists(ctx context.Context, kind domain.SourceKind, sourceID string) (bool, error) {
	var err error
	switch kind {
	case domain.SourceDeposit:
		_, err = s.repos.DepositRepo.FindDepositByID(ctx, sourceID)
	case domain.SourceWithdrawal:
		_, err = s.repos.WithdrawalRepo.FindWithdrawalByID(ctx, sourceID)
	case domain.SourceRepayment:
		_, err = s.repos.RepaymentRepo.FindRepaymentByID(ctx, sourceID)
	case domain.SourceLoan:
		_, err = s.repos.LoanRepo.FindLoanByID(ctx, sourceID)
	case domain.SourceFine:
		_, err = s.repos.FineRepo.FindFineByID(ctx, sourceID)
	default:
		// Diagnostic entries are not tied to a source transaction.
		return true, nil
	}
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}

// checkDuplicates flags category entries posted more than once for the
// same source. These are reported but never auto-repaired: removing a
// row is a judgement call for the operator.
func (s *ReconciliationService) checkDuplicates(ctx context.Context, report *domain.ReconciliationReport) error {
	dupes, err := s.repos.CategoryLedgerRepo.FindDuplicateCategoryEntries(ctx)
	if err != nil {
		return err
	}
	for _, e := range dupes {
		report.Findings = append(report.Findings, domain.Finding{
			Kind:      domain.FindingDuplicateEntry,
			SubjectID: e.EntryID,
			Detail:    fmt.Sprintf("category entry duplicates %s %s", e.SourceKind, e.SourceID),
			Actual:    e.Amount,
		})
	}
	return nil
}

// checkSources walks the source transactions the other way around,
// flagging live ones that left no journal postings behind.
func (s *ReconciliationService) checkSources(ctx context.Context, report *domain.ReconciliationReport) error {
	requireEntries := func(kind domain.SourceKind, sourceID, label string) error {
		entries, err := s.repos.JournalRepo.FindEntriesBySource(ctx, kind, sourceID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			report.Findings = append(report.Findings, domain.Finding{
				Kind:      domain.FindingMissingEntry,
				SubjectID: sourceID,
				Detail:    label + " has no journal postings",
			})
		}
		return nil
	}

	for offset := 0; ; offset += reconcilePageSize {
		deposits, err := s.repos.DepositRepo.ListDeposits(ctx, nil, reconcilePageSize, offset)
		if err != nil {
			return err
		}
		for _, d := range deposits {
			if err := requireEntries(domain.SourceDeposit, d.DepositID, "deposit"); err != nil {
				return err
			}
		}
		if len(deposits) < reconcilePageSize {
			break
		}
	}

	for offset := 0; ; offset += reconcilePageSize {
		withdrawals, err := s.repos.WithdrawalRepo.ListWithdrawals(ctx, nil, reconcilePageSize, offset)
		if err != nil {
			return err
		}
		for _, w := range withdrawals {
			if err := requireEntries(domain.SourceWithdrawal, w.WithdrawalID, "withdrawal"); err != nil {
				return err
			}
		}
		if len(withdrawals) < reconcilePageSize {
			break
		}
	}

	// Loans, their repayments and fines hang off members.
	for offset := 0; ; offset += reconcilePageSize {
		members, err := s.repos.MemberRepo.ListMembers(ctx, reconcilePageSize, offset)
		if err != nil {
			return err
		}
		for _, m := range members {
			loans, err := s.repos.LoanRepo.ListLoansByMember(ctx, m.MemberID)
			if err != nil {
				return err
			}
			for _, l := range loans {
				if err := requireEntries(domain.SourceLoan, l.LoanID, "loan"); err != nil {
					return err
				}
				repayments, err := s.repos.RepaymentRepo.ListRepaymentsByLoan(ctx, l.LoanID)
				if err != nil {
					return err
				}
				for _, r := range repayments {
					if err := requireEntries(domain.SourceRepayment, r.RepaymentID, "repayment"); err != nil {
						return err
					}
				}
			}

			fines, err := s.repos.FineRepo.ListFinesByMember(ctx, m.MemberID)
			if err != nil {
				return err
			}
			for _, f := range fines {
				if err := requireEntries(domain.SourceFine, f.FineID, "fine"); err != nil {
					return err
				}
			}
		}
		if len(members) < reconcilePageSize {
			break
		}
	}
	return nil
}
