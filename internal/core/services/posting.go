package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
)

// posting is the shared engine behind every transaction coordinator: it
// writes journal entries, keeps account balances in lockstep with them, and
// mirrors movements into the member and category books. All methods expect
// to run inside a TxManager.WithinTx callback.
type posting struct {
	journalRepo  portsrepo.JournalRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	memberRepo   portsrepo.MemberRepositoryFacade
	categoryRepo portsrepo.CategoryLedgerRepository
}

// savingsAffecting reports whether a personal ledger entry type moves the
// member's savings balance. Loan repayments and fine payments are paid in
// cash and only annotate the ledger.
func savingsAffecting(t domain.MemberLedgerEntryType) bool {
	switch t {
	case domain.LedgerContribution, domain.LedgerDeposit, domain.LedgerWithdrawal, domain.LedgerAdjustment:
		return true
	}
	return false
}

// entryDeltas folds journal entries into per-account balance changes using
// the universal convention: debit increases, credit decreases.
func entryDeltas(entries []domain.JournalEntry) map[string]decimal.Decimal {
	deltas := make(map[string]decimal.Decimal)
	for _, e := range entries {
		deltas[e.DebitAccountID] = deltas[e.DebitAccountID].Add(e.DebitAmount)
		deltas[e.CreditAccountID] = deltas[e.CreditAccountID].Sub(e.CreditAmount)
	}
	return deltas
}

// postEntries validates and persists journal entries, locking the touched
// accounts and applying their balance deltas in the same transaction.
func (p *posting) postEntries(ctx context.Context, entries []domain.JournalEntry, userID string, now time.Time) error {
	if len(entries) == 0 {
		return nil
	}

	accountIDs := make([]string, 0, len(entries)*2)
	seen := make(map[string]bool)
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		for _, id := range []string{e.DebitAccountID, e.CreditAccountID} {
			if !seen[id] {
				seen[id] = true
				accountIDs = append(accountIDs, id)
			}
		}
	}

	locked, err := p.accountRepo.LockAccountsByIDs(ctx, accountIDs)
	if err != nil {
		return err
	}
	if len(locked) != len(accountIDs) {
		return fmt.Errorf("%w: one or more posting accounts do not exist", apperrors.ErrNotFound)
	}

	if err := p.journalRepo.SaveEntries(ctx, entries); err != nil {
		return err
	}
	return p.accountRepo.ApplyBalanceDeltas(ctx, entryDeltas(entries), userID, now)
}

// reverseEntries mints mirrored reversal entries for everything a source
// transaction originally posted: sides swapped, reference prefixed, flagged
// as reversals, sharing the source key. It returns the minted entries.
func (p *posting) reverseEntries(ctx context.Context, kind domain.SourceKind, sourceID string, userID string, now time.Time) ([]domain.JournalEntry, error) {
	originals, err := p.journalRepo.FindEntriesBySource(ctx, kind, sourceID)
	if err != nil {
		return nil, err
	}

	var reversals []domain.JournalEntry
	for _, e := range originals {
		if e.IsReversal {
			continue
		}
		var voidRef *string
		if e.Reference != nil {
			r := domain.VoidReferencePrefix + *e.Reference
			voidRef = &r
		}
		reversals = append(reversals, domain.JournalEntry{
			EntryID:         uuid.NewString(),
			Date:            now,
			Reference:       voidRef,
			Description:     "Reversal of: " + e.Description,
			Narration:       e.Narration,
			DebitAccountID:  e.CreditAccountID,
			DebitAmount:     e.CreditAmount,
			CreditAccountID: e.DebitAccountID,
			CreditAmount:    e.DebitAmount,
			Category:        e.Category,
			SourceKind:      kind,
			SourceID:        sourceID,
			IsReversal:      true,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		})
	}
	if len(reversals) == 0 {
		return nil, fmt.Errorf("%w: no postings found for %s %s", apperrors.ErrNotFound, kind, sourceID)
	}

	if err := p.postEntries(ctx, reversals, userID, now); err != nil {
		return nil, err
	}
	return reversals, nil
}

// unpostSource removes every trace a live source transaction left in the
// three derived books, reversing the balance effect of the removed rows.
// Voided sources go through unpostVoid instead, which keeps the original
// postings as an audit trail.
func (p *posting) unpostSource(ctx context.Context, kind domain.SourceKind, sourceID string, userID string, now time.Time) error {
	entries, err := p.journalRepo.FindEntriesBySource(ctx, kind, sourceID)
	if err != nil {
		return err
	}
	if len(entries) > 0 {
		deltas := entryDeltas(entries)
		for id, delta := range deltas {
			deltas[id] = delta.Neg()
		}
		if err := p.accountRepo.ApplyBalanceDeltas(ctx, deltas, userID, now); err != nil {
			return err
		}
		if err := p.journalRepo.DeleteEntriesBySource(ctx, kind, sourceID); err != nil {
			return err
		}
	}

	ledgerEntries, err := p.memberRepo.FindLedgerEntriesBySource(ctx, kind, sourceID)
	if err != nil {
		return err
	}
	savingsDeltas := make(map[string]decimal.Decimal)
	for _, e := range ledgerEntries {
		if savingsAffecting(e.Type) {
			savingsDeltas[e.MemberID] = savingsDeltas[e.MemberID].Sub(e.Amount)
		}
	}
	for memberID, delta := range savingsDeltas {
		if delta.IsZero() {
			continue
		}
		if err := p.memberRepo.ApplyMemberDeltas(ctx, memberID, delta, decimal.Zero); err != nil {
			return err
		}
	}
	if len(ledgerEntries) > 0 {
		if err := p.memberRepo.DeleteLedgerEntriesBySource(ctx, kind, sourceID); err != nil {
			return err
		}
	}

	categoryEntries, err := p.categoryRepo.FindCategoryEntriesBySource(ctx, kind, sourceID)
	if err != nil {
		return err
	}
	for _, e := range categoryEntries {
		totalDelta := decimal.Zero
		if e.Amount.IsPositive() {
			totalDelta = e.Amount.Neg()
		}
		if _, err := p.categoryRepo.ApplyCategoryDeltas(ctx, e.CategoryLedgerID, totalDelta, e.Amount.Neg(), userID); err != nil {
			return err
		}
	}
	if len(categoryEntries) > 0 {
		if err := p.categoryRepo.DeleteCategoryEntriesBySource(ctx, kind, sourceID); err != nil {
			return err
		}
	}
	return nil
}

// unpostVoid strips only what voiding minted: the reversal journal entries
// and the void-prefixed member and category rows. The original postings stay
// as an audit trail, so removing the reversals re-applies their balance
// effect.
func (p *posting) unpostVoid(ctx context.Context, kind domain.SourceKind, sourceID string, userID string, now time.Time) error {
	entries, err := p.journalRepo.FindEntriesBySource(ctx, kind, sourceID)
	if err != nil {
		return err
	}
	var reversals []domain.JournalEntry
	for _, e := range entries {
		if e.IsReversal {
			reversals = append(reversals, e)
		}
	}
	if len(reversals) > 0 {
		deltas := entryDeltas(reversals)
		for id, delta := range deltas {
			deltas[id] = delta.Neg()
		}
		if err := p.accountRepo.ApplyBalanceDeltas(ctx, deltas, userID, now); err != nil {
			return err
		}
		if err := p.journalRepo.DeleteReversalEntriesBySource(ctx, kind, sourceID); err != nil {
			return err
		}
	}

	ledgerEntries, err := p.memberRepo.FindLedgerEntriesBySource(ctx, kind, sourceID)
	if err != nil {
		return err
	}
	for _, e := range ledgerEntries {
		if !strings.HasPrefix(e.Reference, domain.VoidReferencePrefix) {
			continue
		}
		if savingsAffecting(e.Type) && !e.Amount.IsZero() {
			if err := p.memberRepo.ApplyMemberDeltas(ctx, e.MemberID, e.Amount.Neg(), decimal.Zero); err != nil {
				return err
			}
		}
		if err := p.memberRepo.DeleteMemberLedgerEntry(ctx, e.EntryID); err != nil {
			return err
		}
	}

	categoryEntries, err := p.categoryRepo.FindCategoryEntriesBySource(ctx, kind, sourceID)
	if err != nil {
		return err
	}
	for _, e := range categoryEntries {
		if e.Reference == nil || !strings.HasPrefix(*e.Reference, domain.VoidReferencePrefix) {
			continue
		}
		totalDelta := decimal.Zero
		if e.Amount.IsPositive() {
			totalDelta = e.Amount.Neg()
		}
		if _, err := p.categoryRepo.ApplyCategoryDeltas(ctx, e.CategoryLedgerID, totalDelta, e.Amount.Neg(), userID); err != nil {
			return err
		}
		if err := p.categoryRepo.DeleteCategoryEntry(ctx, e.EntryID); err != nil {
			return err
		}
	}
	return nil
}

// appendMemberEntry applies the entry's savings effect (when it has one)
// and writes the personal ledger row with the balance snapshot taken after
// the movement.
func (p *posting) appendMemberEntry(ctx context.Context, entry domain.MemberLedgerEntry) error {
	if savingsAffecting(entry.Type) && !entry.Amount.IsZero() {
		if err := p.memberRepo.ApplyMemberDeltas(ctx, entry.MemberID, entry.Amount, decimal.Zero); err != nil {
			return err
		}
	}

	member, err := p.memberRepo.FindMemberByID(ctx, entry.MemberID)
	if err != nil {
		return err
	}
	entry.BalanceAfter = member.Balance
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	return p.memberRepo.SaveMemberLedgerEntry(ctx, entry)
}

// ensureCategory finds the named category ledger, creating it on first use.
func (p *posting) ensureCategory(ctx context.Context, name string, kind domain.CategoryKind, userID string, now time.Time) (*domain.CategoryLedger, error) {
	ledger, err := p.categoryRepo.FindCategoryLedgerByName(ctx, name)
	if err == nil {
		return ledger, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	created := domain.CategoryLedger{
		CategoryLedgerID: uuid.NewString(),
		Name:             name,
		Kind:             kind,
		TotalAmount:      decimal.Zero,
		Balance:          decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}
	if err := p.categoryRepo.SaveCategoryLedger(ctx, created); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return p.categoryRepo.FindCategoryLedgerByName(ctx, name)
		}
		return nil, err
	}
	return &created, nil
}

// appendCategoryEntry moves a category ledger: positive amounts grow both
// the gross total and the balance, negative amounts (reversals) only pull
// the balance back down.
func (p *posting) appendCategoryEntry(ctx context.Context, categoryName string, kind domain.CategoryKind, entry domain.CategoryLedgerEntry, userID string, now time.Time) error {
	ledger, err := p.ensureCategory(ctx, categoryName, kind, userID, now)
	if err != nil {
		return err
	}

	totalDelta := decimal.Zero
	if entry.Amount.IsPositive() {
		totalDelta = entry.Amount
	}
	balanceAfter, err := p.categoryRepo.ApplyCategoryDeltas(ctx, ledger.CategoryLedgerID, totalDelta, entry.Amount, userID)
	if err != nil {
		return err
	}

	entry.CategoryLedgerID = ledger.CategoryLedgerID
	entry.BalanceAfter = balanceAfter
	if entry.EntryID == "" {
		entry.EntryID = uuid.NewString()
	}
	entry.AuditFields = domain.AuditFields{
		CreatedAt:     now,
		CreatedBy:     userID,
		LastUpdatedAt: now,
		LastUpdatedBy: userID,
	}
	return p.categoryRepo.SaveCategoryEntry(ctx, entry)
}
