package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/saccokit/sacco-ledger/internal/core/domain"
)

// JournalEntryResponse is one debit/credit pair of the journal.
type JournalEntryResponse struct {
	EntryID         string          `json:"entryID"`
	Date            time.Time       `json:"date"`
	Reference       *string         `json:"reference"`
	Description     string          `json:"description"`
	Narration       string          `json:"narration"`
	DebitAccountID  string          `json:"debitAccountID"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
	CreditAccountID string          `json:"creditAccountID"`
	CreditAmount    decimal.Decimal `json:"creditAmount"`
	Category        string          `json:"category"`
	SourceKind      string          `json:"sourceKind"`
	SourceID        string          `json:"sourceID"`
	IsReversal      bool            `json:"isReversal"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its DTO
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	return JournalEntryResponse{
		EntryID:         e.EntryID,
		Date:            e.Date,
		Reference:       e.Reference,
		Description:     e.Description,
		Narration:       e.Narration,
		DebitAccountID:  e.DebitAccountID,
		DebitAmount:     e.DebitAmount,
		CreditAccountID: e.CreditAccountID,
		CreditAmount:    e.CreditAmount,
		Category:        e.Category,
		SourceKind:      string(e.SourceKind),
		SourceID:        e.SourceID,
		IsReversal:      e.IsReversal,
	}
}

// ListEntriesResponse wraps a journal page with its continuation token.
type ListEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ToListEntriesResponse converts a journal page to its DTO
func ToListEntriesResponse(entries []domain.JournalEntry, nextToken *string) ListEntriesResponse {
	res := ListEntriesResponse{
		Entries:   make([]JournalEntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		res.Entries[i] = ToJournalEntryResponse(&entries[i])
	}
	return res
}

// ListEntriesParams defines query parameters for paging and filtering
// the journal. When any filter field is set the token paging is ignored
// in favour of offset paging over the filtered rows.
type ListEntriesParams struct {
	Limit     int        `form:"limit,default=50"`
	NextToken *string    `form:"nextToken"`
	Offset    int        `form:"offset,default=0"`
	AccountID *string    `form:"accountID"`
	Category  *string    `form:"category"`
	From      *time.Time `form:"from" time_format:"2006-01-02"`
	To        *time.Time `form:"to" time_format:"2006-01-02"`
}

// ToJournalFilter builds the domain filter from the bound query params.
func (p ListEntriesParams) ToJournalFilter() domain.JournalFilter {
	return domain.JournalFilter{
		AccountID: p.AccountID,
		Category:  p.Category,
		From:      p.From,
		To:        p.To,
	}
}

// StatementParams bounds a per-account statement by entry date.
type StatementParams struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}

// StatementLineResponse is one account statement row with running balance.
type StatementLineResponse struct {
	Entry          JournalEntryResponse `json:"entry"`
	Side           string               `json:"side"`
	Amount         decimal.Decimal      `json:"amount"`
	RunningBalance decimal.Decimal      `json:"runningBalance"`
}

// ToStatementResponse converts statement lines to response DTOs
func ToStatementResponse(lines []domain.AccountLedgerLine) []StatementLineResponse {
	res := make([]StatementLineResponse, len(lines))
	for i, l := range lines {
		res[i] = StatementLineResponse{
			Entry:          ToJournalEntryResponse(&l.Entry),
			Side:           l.Side,
			Amount:         l.Amount,
			RunningBalance: l.RunningBalance,
		}
	}
	return res
}

// LedgerSummaryResponse aggregates the whole journal.
type LedgerSummaryResponse struct {
	EntryCount   int             `json:"entryCount"`
	TotalDebits  decimal.Decimal `json:"totalDebits"`
	TotalCredits decimal.Decimal `json:"totalCredits"`
	TotalAssets  decimal.Decimal `json:"totalAssets"`
}

// ToLedgerSummaryResponse converts a domain.LedgerSummary to its DTO
func ToLedgerSummaryResponse(s *domain.LedgerSummary) LedgerSummaryResponse {
	return LedgerSummaryResponse{
		EntryCount:   s.EntryCount,
		TotalDebits:  s.TotalDebits,
		TotalCredits: s.TotalCredits,
		TotalAssets:  s.TotalAssets,
	}
}

// MoneyFlowResponse totals movements through the financial accounts.
type MoneyFlowResponse struct {
	From     *time.Time      `json:"from,omitempty"`
	To       *time.Time      `json:"to,omitempty"`
	MoneyIn  decimal.Decimal `json:"moneyIn"`
	MoneyOut decimal.Decimal `json:"moneyOut"`
	Net      decimal.Decimal `json:"net"`
}

// ToMoneyFlowResponse converts a domain.MoneyFlow to its DTO
func ToMoneyFlowResponse(f *domain.MoneyFlow) MoneyFlowResponse {
	return MoneyFlowResponse{
		From:     f.From,
		To:       f.To,
		MoneyIn:  f.MoneyIn,
		MoneyOut: f.MoneyOut,
		Net:      f.Net,
	}
}

// CategoryLedgerResponse is one per-category summary book.
type CategoryLedgerResponse struct {
	CategoryLedgerID string          `json:"categoryLedgerID"`
	Name             string          `json:"name"`
	Kind             string          `json:"kind"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Balance          decimal.Decimal `json:"balance"`
}

// ToListCategoryLedgerResponse converts category ledgers to DTOs
func ToListCategoryLedgerResponse(ls []domain.CategoryLedger) []CategoryLedgerResponse {
	res := make([]CategoryLedgerResponse, len(ls))
	for i, l := range ls {
		res[i] = CategoryLedgerResponse{
			CategoryLedgerID: l.CategoryLedgerID,
			Name:             l.Name,
			Kind:             string(l.Kind),
			TotalAmount:      l.TotalAmount,
			Balance:          l.Balance,
		}
	}
	return res
}

// CategorySummaryResponse nets income against expense categories.
type CategorySummaryResponse struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	Net          decimal.Decimal `json:"net"`
}

// ToCategorySummaryResponse converts a domain.CategorySummary to its DTO
func ToCategorySummaryResponse(s *domain.CategorySummary) CategorySummaryResponse {
	return CategorySummaryResponse{
		TotalIncome:  s.TotalIncome,
		TotalExpense: s.TotalExpense,
		Net:          s.Net,
	}
}

// CategoryLedgerEntryResponse is one category ledger movement.
type CategoryLedgerEntryResponse struct {
	EntryID      string          `json:"entryID"`
	MemberID     *string         `json:"memberID,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	Reference    *string         `json:"reference"`
	SourceKind   string          `json:"sourceKind"`
	SourceID     string          `json:"sourceID"`
	BalanceAfter decimal.Decimal `json:"balanceAfter"`
	Date         time.Time       `json:"date"`
}

// ToListCategoryEntryResponse converts category entries to DTOs
func ToListCategoryEntryResponse(es []domain.CategoryLedgerEntry) []CategoryLedgerEntryResponse {
	res := make([]CategoryLedgerEntryResponse, len(es))
	for i, e := range es {
		res[i] = CategoryLedgerEntryResponse{
			EntryID:      e.EntryID,
			MemberID:     e.MemberID,
			Amount:       e.Amount,
			Description:  e.Description,
			Reference:    e.Reference,
			SourceKind:   string(e.SourceKind),
			SourceID:     e.SourceID,
			BalanceAfter: e.BalanceAfter,
			Date:         e.Date,
		}
	}
	return res
}

// FindingResponse is one reconciliation discrepancy.
type FindingResponse struct {
	Kind      string          `json:"kind"`
	SubjectID string          `json:"subjectID"`
	Detail    string          `json:"detail"`
	Expected  decimal.Decimal `json:"expected"`
	Actual    decimal.Decimal `json:"actual"`
}

// ReconciliationReportResponse is the outcome of a reconciliation run.
type ReconciliationReportResponse struct {
	AccountsChecked   int               `json:"accountsChecked"`
	MembersChecked    int               `json:"membersChecked"`
	CategoriesChecked int               `json:"categoriesChecked"`
	EntriesChecked    int               `json:"entriesChecked"`
	Clean             bool              `json:"clean"`
	Findings          []FindingResponse `json:"findings"`
}

// ToReconciliationReportResponse converts a domain report to its DTO
func ToReconciliationReportResponse(r *domain.ReconciliationReport) ReconciliationReportResponse {
	res := ReconciliationReportResponse{
		AccountsChecked:   r.AccountsChecked,
		MembersChecked:    r.MembersChecked,
		CategoriesChecked: r.CategoriesChecked,
		EntriesChecked:    r.EntriesChecked,
		Clean:             r.Clean(),
		Findings:          make([]FindingResponse, len(r.Findings)),
	}
	for i, f := range r.Findings {
		res.Findings[i] = FindingResponse{
			Kind:      string(f.Kind),
			SubjectID: f.SubjectID,
			Detail:    f.Detail,
			Expected:  f.Expected,
			Actual:    f.Actual,
		}
	}
	return res
}
