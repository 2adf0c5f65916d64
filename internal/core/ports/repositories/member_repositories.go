package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// MemberReader defines read operations for member data
type MemberReader interface {
	// FindMemberByID retrieves a member by its unique identifier.
	FindMemberByID(ctx context.Context, memberID string) (*domain.Member, error)

	// ListMembers retrieves a paginated list of members.
	ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error)
}

// MemberWriter defines write operations for member data
type MemberWriter interface {
	// SaveMember persists a new member.
	SaveMember(ctx context.Context, member domain.Member) error

	// ApplyMemberDeltas adds the deltas to the member's savings and loan balances.
	ApplyMemberDeltas(ctx context.Context, memberID string, savingsDelta, loanDelta decimal.Decimal) error

	// SetMemberBalances overwrites both cached balances with recomputed values.
	SetMemberBalances(ctx context.Context, memberID string, balance, loanBalance decimal.Decimal) error
}

// MemberLedgerReader defines read operations for member personal ledgers
type MemberLedgerReader interface {
	// ListMemberLedger retrieves a member's ledger entries, newest first.
	ListMemberLedger(ctx context.Context, memberID string, limit int, offset int) ([]domain.MemberLedgerEntry, error)

	// FindLedgerEntriesBySource retrieves the entries minted by one source transaction.
	FindLedgerEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) ([]domain.MemberLedgerEntry, error)

	// SumMemberLedger returns the signed net of the member's savings-moving
	// entries, skipping the informational repayment and fine rows.
	SumMemberLedger(ctx context.Context, memberID string) (decimal.Decimal, error)
}

// MemberLedgerWriter defines write operations for member personal ledgers
type MemberLedgerWriter interface {
	// SaveMemberLedgerEntry appends one personal ledger entry.
	SaveMemberLedgerEntry(ctx context.Context, entry domain.MemberLedgerEntry) error

	// DeleteLedgerEntriesBySource removes the entries minted by one source transaction.
	DeleteLedgerEntriesBySource(ctx context.Context, kind domain.SourceKind, sourceID string) error

	// DeleteMemberLedgerEntry removes a single personal ledger entry.
	DeleteMemberLedgerEntry(ctx context.Context, entryID string) error
}

// MemberRepositoryFacade combines all member-related repository interfaces
type MemberRepositoryFacade interface {
	MemberReader
	MemberWriter
	MemberLedgerReader
	MemberLedgerWriter
}
