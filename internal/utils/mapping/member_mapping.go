package mapping

import (
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	"github.com/saccokit/sacco-ledger/internal/models"
)

// ToModelMember converts a domain Member to a model Member
func ToModelMember(d domain.Member) models.Member {
	return models.Member{
		MemberID:    d.MemberID,
		Name:        d.Name,
		Balance:     d.Balance,
		LoanBalance: d.LoanBalance,
		IsActive:    d.IsActive,
	}
}

// ToDomainMember converts a model Member to a domain Member
func ToDomainMember(m models.Member) domain.Member {
	return domain.Member{
		MemberID:    m.MemberID,
		Name:        m.Name,
		Balance:     m.Balance,
		LoanBalance: m.LoanBalance,
		IsActive:    m.IsActive,
	}
}

// ToModelMemberLedgerEntry converts a domain ledger entry to its model
func ToModelMemberLedgerEntry(d domain.MemberLedgerEntry) models.MemberLedgerEntry {
	return models.MemberLedgerEntry{
		EntryID:      d.EntryID,
		MemberID:     d.MemberID,
		EntryType:    string(d.Type),
		Amount:       d.Amount,
		Description:  d.Description,
		Reference:    d.Reference,
		SourceKind:   string(d.SourceKind),
		SourceID:     d.SourceID,
		BalanceAfter: d.BalanceAfter,
		EntryDate:    d.Date,
	}
}

// ToDomainMemberLedgerEntry converts a model ledger entry to its domain form
func ToDomainMemberLedgerEntry(m models.MemberLedgerEntry) domain.MemberLedgerEntry {
	return domain.MemberLedgerEntry{
		EntryID:      m.EntryID,
		MemberID:     m.MemberID,
		Type:         domain.MemberLedgerEntryType(m.EntryType),
		Amount:       m.Amount,
		Description:  m.Description,
		Reference:    m.Reference,
		SourceKind:   domain.SourceKind(m.SourceKind),
		SourceID:     m.SourceID,
		BalanceAfter: m.BalanceAfter,
		Date:         m.EntryDate,
	}
}

// ToDomainMemberLedgerEntrySlice converts a slice of model entries
func ToDomainMemberLedgerEntrySlice(ms []models.MemberLedgerEntry) []domain.MemberLedgerEntry {
	ds := make([]domain.MemberLedgerEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMemberLedgerEntry(m)
	}
	return ds
}
