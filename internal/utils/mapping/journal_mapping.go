package mapping

import (
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	"github.com/saccokit/sacco-ledger/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:         d.EntryID,
		EntryDate:       d.Date,
		Reference:       d.Reference,
		Description:     d.Description,
		Narration:       d.Narration,
		DebitAccountID:  d.DebitAccountID,
		DebitAmount:     d.DebitAmount,
		CreditAccountID: d.CreditAccountID,
		CreditAmount:    d.CreditAmount,
		Category:        d.Category,
		SourceKind:      string(d.SourceKind),
		SourceID:        d.SourceID,
		IsReversal:      d.IsReversal,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:         m.EntryID,
		Date:            m.EntryDate,
		Reference:       m.Reference,
		Description:     m.Description,
		Narration:       m.Narration,
		DebitAccountID:  m.DebitAccountID,
		DebitAmount:     m.DebitAmount,
		CreditAccountID: m.CreditAccountID,
		CreditAmount:    m.CreditAmount,
		Category:        m.Category,
		SourceKind:      domain.SourceKind(m.SourceKind),
		SourceID:        m.SourceID,
		IsReversal:      m.IsReversal,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainJournalEntrySlice converts a slice of model entries
func ToDomainJournalEntrySlice(ms []models.JournalEntry) []domain.JournalEntry {
	ds := make([]domain.JournalEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainJournalEntry(m)
	}
	return ds
}
