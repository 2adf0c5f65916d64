package domain

import (
	"github.com/shopspring/decimal"
)

// FindingKind classifies a reconciliation discrepancy.
type FindingKind string

const (
	FindingBalanceMismatch  FindingKind = "balance_mismatch"   // stored account balance differs from recomputed
	FindingOrphanEntry      FindingKind = "orphan_entry"       // journal entry whose source transaction is missing
	FindingMissingEntry     FindingKind = "missing_entry"      // source transaction with no journal postings
	FindingMemberMismatch   FindingKind = "member_mismatch"    // member ledger net differs from member balance
	FindingCategoryMismatch FindingKind = "category_mismatch"  // category entries net differs from category balance
	FindingUnbalancedEntry  FindingKind = "unbalanced_entry"   // debit amount differs from credit amount
	FindingDuplicateEntry   FindingKind = "duplicate_entry"    // same source posted more than once to a category
)

// Finding is one discrepancy surfaced by a reconciliation run. Expected
// and Actual carry the recomputed and stored values for mismatches;
// they are zero for structural findings.
type Finding struct {
	Kind      FindingKind
	SubjectID string // account, member, category or entry identifier
	Detail    string
	Expected  decimal.Decimal
	Actual    decimal.Decimal
}

// ReconciliationReport is the outcome of checking the four books
// against each other.
type ReconciliationReport struct {
	AccountsChecked   int
	MembersChecked    int
	CategoriesChecked int
	EntriesChecked    int
	Findings          []Finding
}

// Clean reports whether the run surfaced no discrepancies.
func (r ReconciliationReport) Clean() bool {
	return len(r.Findings) == 0
}
