package services

import (
	"context"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
	"github.com/saccokit/sacco-ledger/internal/dto"
)

// MemberSvcFacade exposes member lookups and the personal ledger.
type MemberSvcFacade interface {
	// CreateMember registers a member with zeroed balances.
	CreateMember(ctx context.Context, req dto.CreateMemberRequest, userID string) (*domain.Member, error)

	// GetMemberByID retrieves a member.
	GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error)

	// ListMembers retrieves a paginated list of members.
	ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error)

	// GetMemberLedger retrieves a member's personal ledger, newest first.
	GetMemberLedger(ctx context.Context, memberID string, limit int, offset int) ([]domain.MemberLedgerEntry, error)
}
