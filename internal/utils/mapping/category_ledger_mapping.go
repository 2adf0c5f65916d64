package mapping

import (
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	"github.com/saccokit/sacco-ledger/internal/models"
)

// ToModelCategoryLedger converts a domain CategoryLedger to its model
func ToModelCategoryLedger(d domain.CategoryLedger) models.CategoryLedger {
	return models.CategoryLedger{
		CategoryLedgerID: d.CategoryLedgerID,
		Name:             d.Name,
		Kind:             string(d.Kind),
		TotalAmount:      d.TotalAmount,
		Balance:          d.Balance,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategoryLedger converts a model CategoryLedger to its domain form
func ToDomainCategoryLedger(m models.CategoryLedger) domain.CategoryLedger {
	return domain.CategoryLedger{
		CategoryLedgerID: m.CategoryLedgerID,
		Name:             m.Name,
		Kind:             domain.CategoryKind(m.Kind),
		TotalAmount:      m.TotalAmount,
		Balance:          m.Balance,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCategoryLedgerSlice converts a slice of model CategoryLedgers
func ToDomainCategoryLedgerSlice(ms []models.CategoryLedger) []domain.CategoryLedger {
	ds := make([]domain.CategoryLedger, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCategoryLedger(m)
	}
	return ds
}

// ToModelCategoryLedgerEntry converts a domain entry to its model
func ToModelCategoryLedgerEntry(d domain.CategoryLedgerEntry) models.CategoryLedgerEntry {
	return models.CategoryLedgerEntry{
		EntryID:          d.EntryID,
		CategoryLedgerID: d.CategoryLedgerID,
		MemberID:         d.MemberID,
		Amount:           d.Amount,
		Description:      d.Description,
		Reference:        d.Reference,
		SourceKind:       string(d.SourceKind),
		SourceID:         d.SourceID,
		BalanceAfter:     d.BalanceAfter,
		EntryDate:        d.Date,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCategoryLedgerEntry converts a model entry to its domain form
func ToDomainCategoryLedgerEntry(m models.CategoryLedgerEntry) domain.CategoryLedgerEntry {
	return domain.CategoryLedgerEntry{
		EntryID:          m.EntryID,
		CategoryLedgerID: m.CategoryLedgerID,
		MemberID:         m.MemberID,
		Amount:           m.Amount,
		Description:      m.Description,
		Reference:        m.Reference,
		SourceKind:       domain.SourceKind(m.SourceKind),
		SourceID:         m.SourceID,
		BalanceAfter:     m.BalanceAfter,
		Date:             m.EntryDate,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCategoryLedgerEntrySlice converts a slice of model entries
func ToDomainCategoryLedgerEntrySlice(ms []models.CategoryLedgerEntry) []domain.CategoryLedgerEntry {
	ds := make([]domain.CategoryLedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCategoryLedgerEntry(m)
	}
	return ds
}
