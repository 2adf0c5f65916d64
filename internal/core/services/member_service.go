package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portsrepo "github.com/saccokit/sacco-ledger/internal/core/ports/repositories"
	"github.com/saccokit/sacco-ledger/internal/dto"
	"github.com/saccokit/sacco-ledger/internal/middleware"
)

type MemberService struct {
	memberRepo portsrepo.MemberRepositoryFacade
}

func NewMemberService(memberRepo portsrepo.MemberRepositoryFacade) *MemberService {
	return &MemberService{memberRepo: memberRepo}
}

func (s *MemberService) CreateMember(ctx context.Context, req dto.CreateMemberRequest, userID string) (*domain.Member, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	member := domain.Member{
		MemberID:    uuid.NewString(),
		Name:        req.Name,
		Balance:     decimal.Zero,
		LoanBalance: decimal.Zero,
		IsActive:    true,
	}
	if err := s.memberRepo.SaveMember(ctx, member); err != nil {
		if !errors.Is(err, apperrors.ErrDuplicate) {
			logger.Error("failed to save member", slog.Any("error", err))
		}
		return nil, err
	}
	logger.Info("member created", slog.String("memberID", member.MemberID))
	return &member, nil
}

func (s *MemberService) GetMemberByID(ctx context.Context, memberID string) (*domain.Member, error) {
	return s.memberRepo.FindMemberByID(ctx, memberID)
}

func (s *MemberService) ListMembers(ctx context.Context, limit int, offset int) ([]domain.Member, error) {
	return s.memberRepo.ListMembers(ctx, limit, offset)
}

func (s *MemberService) GetMemberLedger(ctx context.Context, memberID string, limit int, offset int) ([]domain.MemberLedgerEntry, error) {
	// Surface a 404 for unknown members instead of an empty ledger.
	if _, err := s.memberRepo.FindMemberByID(ctx, memberID); err != nil {
		return nil, err
	}
	return s.memberRepo.ListMemberLedger(ctx, memberID, limit, offset)
}
