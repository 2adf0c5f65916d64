package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// CreateMemberRequest defines the data needed to register a member.
type CreateMemberRequest struct {
	Name string `json:"name" binding:"required"`
}

// MemberResponse defines the data returned for a member.
type MemberResponse struct {
	MemberID    string          `json:"memberID"`
	Name        string          `json:"name"`
	Balance     decimal.Decimal `json:"balance"`
	LoanBalance decimal.Decimal `json:"loanBalance"`
	IsActive    bool            `json:"isActive"`
}

// ToMemberResponse converts a domain.Member to MemberResponse DTO
func ToMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		MemberID:    m.MemberID,
		Name:        m.Name,
		Balance:     m.Balance,
		LoanBalance: m.LoanBalance,
		IsActive:    m.IsActive,
	}
}

// ToListMemberResponse converts a slice of domain.Member to response DTOs
func ToListMemberResponse(members []domain.Member) []MemberResponse {
	res := make([]MemberResponse, len(members))
	for i := range members {
		res[i] = ToMemberResponse(&members[i])
	}
	return res
}

// MemberLedgerEntryResponse is one personal ledger row.
type MemberLedgerEntryResponse struct {
	EntryID      string          `json:"entryID"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Reference    string          `json:"reference"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Date         time.Time       `json:"date"`
}

// ToMemberLedgerResponse converts personal ledger entries to response DTOs
func ToMemberLedgerResponse(entries []domain.MemberLedgerEntry) []MemberLedgerEntryResponse {
	res := make([]MemberLedgerEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = MemberLedgerEntryResponse{
			EntryID:      e.EntryID,
			Type:         string(e.Type),
			Amount:       e.Amount,
			Description:  e.Description,
			Reference:    e.Reference,
			BalanceAfter: e.BalanceAfter,
			Date:         e.Date,
		}
	}
	return res
}

// ListMembersParams defines query parameters for member and ledger listings.
type ListMembersParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}
