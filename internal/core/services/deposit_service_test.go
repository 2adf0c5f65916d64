package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portssvc "github.com/saccokit/sacco-ledger/internal/core/ports/services"
	"github.com/saccokit/sacco-ledger/internal/core/services"
	"github.com/saccokit/sacco-ledger/internal/dto"
)

const (
	testCashAccountID = "acc-cash"
	testMemberID      = "mem-1"
	testUserID        = "user-1"
)

type DepositServiceTestSuite struct {
	suite.Suite
	books     *testBooks
	container *portssvc.ServiceContainer
	ctx       context.Context
}

func (s *DepositServiceTestSuite) SetupTest() {
	s.books = newTestBooks()
	s.container = services.NewServiceContainer(s.books.provider(), "KES")
	s.ctx = context.Background()
	s.books.addAccount(testCashAccountID, domain.CodeCashbox, "Cashbox", domain.AccountCash, decimal.Zero)
	s.books.addMember(testMemberID, "Achieng")
}

func (s *DepositServiceTestSuite) createDeposit(amount int64, depositType domain.DepositType) *domain.Deposit {
	deposit, err := s.container.Deposit.CreateDeposit(s.ctx, dto.CreateDepositRequest{
		MemberID:  testMemberID,
		AccountID: testCashAccountID,
		Type:      depositType,
		Amount:    decimal.NewFromInt(amount),
	}, testUserID)
	s.Require().NoError(err)
	return deposit
}

// A posted deposit must land in all four books at once.
func (s *DepositServiceTestSuite) TestCreateDeposit_UpdatesAllFourBooks() {
	deposit := s.createDeposit(1000, domain.DepositTypeDeposit)

	cash, err := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.Require().NoError(err)
	s.True(cash.Balance.Equal(decimal.NewFromInt(1000)), "cash account should hold the deposit")

	payable, err := s.books.accounts.FindAccountByCode(s.ctx, domain.CodeMemberSavingsPayable)
	s.Require().NoError(err)
	s.True(payable.Balance.Equal(decimal.NewFromInt(-1000)), "savings payable should carry the credit")

	member, err := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.Require().NoError(err)
	s.True(member.Balance.Equal(decimal.NewFromInt(1000)))

	ledger, err := s.books.members.ListMemberLedger(s.ctx, testMemberID, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(ledger, 1)
	s.Equal(domain.LedgerDeposit, ledger[0].Type)
	s.True(ledger[0].BalanceAfter.Equal(decimal.NewFromInt(1000)))
	s.Equal(domain.SourceDeposit, ledger[0].SourceKind)
	s.Equal(deposit.DepositID, ledger[0].SourceID)

	category, err := s.books.categories.FindCategoryLedgerByName(s.ctx, "Member Deposits")
	s.Require().NoError(err)
	s.True(category.Balance.Equal(decimal.NewFromInt(1000)))
	s.True(category.TotalAmount.Equal(decimal.NewFromInt(1000)))

	entries, err := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceDeposit, deposit.DepositID)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.True(entries[0].DebitAmount.Equal(entries[0].CreditAmount))
	s.Equal(testCashAccountID, entries[0].DebitAccountID)
}

func (s *DepositServiceTestSuite) TestCreateDeposit_ContributionCreditsIncome() {
	s.createDeposit(500, domain.DepositTypeContribution)

	income, err := s.books.accounts.FindAccountByCode(s.ctx, domain.CodeContributionReceived)
	s.Require().NoError(err)
	s.True(income.Balance.Equal(decimal.NewFromInt(-500)))

	category, err := s.books.categories.FindCategoryLedgerByName(s.ctx, "Monthly Contribution")
	s.Require().NoError(err)
	s.True(category.Balance.Equal(decimal.NewFromInt(500)))
}

func (s *DepositServiceTestSuite) TestCreateDeposit_RejectsNonPositiveAmount() {
	_, err := s.container.Deposit.CreateDeposit(s.ctx, dto.CreateDepositRequest{
		MemberID:  testMemberID,
		AccountID: testCashAccountID,
		Type:      domain.DepositTypeDeposit,
		Amount:    decimal.Zero,
	}, testUserID)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *DepositServiceTestSuite) TestCreateDeposit_RejectsDuplicateReference() {
	ref := "DEP-240101-AAAA"
	req := dto.CreateDepositRequest{
		MemberID:  testMemberID,
		AccountID: testCashAccountID,
		Type:      domain.DepositTypeDeposit,
		Amount:    decimal.NewFromInt(100),
		Reference: &ref,
	}
	_, err := s.container.Deposit.CreateDeposit(s.ctx, req, testUserID)
	s.Require().NoError(err)

	_, err = s.container.Deposit.CreateDeposit(s.ctx, req, testUserID)
	assert.ErrorIs(s.T(), err, apperrors.ErrDuplicate)
}

func (s *DepositServiceTestSuite) TestVoidDeposit_ReversesAllBooks() {
	deposit := s.createDeposit(1000, domain.DepositTypeDeposit)

	voided, err := s.container.Deposit.VoidDeposit(s.ctx, deposit.DepositID, "keyed in twice", testUserID)
	s.Require().NoError(err)
	s.True(voided.IsVoided)
	s.Require().NotNil(voided.VoidReason)
	s.Equal("keyed in twice", *voided.VoidReason)

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.IsZero(), "void should give the cash back")

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.Balance.IsZero())

	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceDeposit, deposit.DepositID)
	s.Require().Len(entries, 2, "original and reversal should both remain")
	s.True(entries[1].IsReversal)
	s.Require().NotNil(entries[1].Reference)
	s.Equal(domain.VoidReferencePrefix+*deposit.Reference, *entries[1].Reference)

	// Gross total keeps the original inflow; balance nets to zero.
	category, _ := s.books.categories.FindCategoryLedgerByName(s.ctx, "Member Deposits")
	s.True(category.Balance.IsZero())
	s.True(category.TotalAmount.Equal(decimal.NewFromInt(1000)))
}

func (s *DepositServiceTestSuite) TestVoidDeposit_TwiceConflicts() {
	deposit := s.createDeposit(1000, domain.DepositTypeDeposit)

	_, err := s.container.Deposit.VoidDeposit(s.ctx, deposit.DepositID, "first", testUserID)
	s.Require().NoError(err)

	_, err = s.container.Deposit.VoidDeposit(s.ctx, deposit.DepositID, "second", testUserID)
	assert.ErrorIs(s.T(), err, apperrors.ErrConflict)
}

func (s *DepositServiceTestSuite) TestUpdateDeposit_VoidedConflicts() {
	deposit := s.createDeposit(1000, domain.DepositTypeDeposit)
	_, err := s.container.Deposit.VoidDeposit(s.ctx, deposit.DepositID, "oops", testUserID)
	s.Require().NoError(err)

	amount := decimal.NewFromInt(700)
	_, err = s.container.Deposit.UpdateDeposit(s.ctx, deposit.DepositID, dto.UpdateDepositRequest{Amount: &amount}, testUserID)
	assert.ErrorIs(s.T(), err, apperrors.ErrConflict)
}

func (s *DepositServiceTestSuite) TestUpdateDeposit_RepostsChangedAmount() {
	deposit := s.createDeposit(1000, domain.DepositTypeDeposit)

	amount := decimal.NewFromInt(700)
	updated, err := s.container.Deposit.UpdateDeposit(s.ctx, deposit.DepositID, dto.UpdateDepositRequest{Amount: &amount}, testUserID)
	s.Require().NoError(err)
	s.True(updated.Amount.Equal(amount))

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(amount))

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.Balance.Equal(amount))

	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceDeposit, deposit.DepositID)
	s.Require().Len(entries, 1, "old postings should be replaced, not stacked")
	s.True(entries[0].DebitAmount.Equal(amount))
}

func (s *DepositServiceTestSuite) TestDeleteDeposit_LiveRestoresBalances() {
	deposit := s.createDeposit(1000, domain.DepositTypeDeposit)

	err := s.container.Deposit.DeleteDeposit(s.ctx, deposit.DepositID, testUserID)
	s.Require().NoError(err)

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.IsZero())

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.Balance.IsZero())

	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceDeposit, deposit.DepositID)
	s.Empty(entries)

	_, err = s.books.deposits.FindDepositByID(s.ctx, deposit.DepositID)
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func (s *DepositServiceTestSuite) TestDeleteDeposit_VoidedKeepsOriginalPostings() {
	deposit := s.createDeposit(1000, domain.DepositTypeDeposit)
	_, err := s.container.Deposit.VoidDeposit(s.ctx, deposit.DepositID, "oops", testUserID)
	s.Require().NoError(err)

	err = s.container.Deposit.DeleteDeposit(s.ctx, deposit.DepositID, testUserID)
	s.Require().NoError(err)

	// Deleting a voided deposit strips only what the void minted; the
	// original postings stay behind as the audit trail, so removing the
	// reversal puts the money back.
	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceDeposit, deposit.DepositID)
	s.Require().Len(entries, 1)
	s.False(entries[0].IsReversal)
	s.True(entries[0].DebitAmount.Equal(decimal.NewFromInt(1000)))

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(decimal.NewFromInt(1000)))

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.Balance.Equal(decimal.NewFromInt(1000)))

	ledger, _ := s.books.members.FindLedgerEntriesBySource(s.ctx, domain.SourceDeposit, deposit.DepositID)
	s.Require().Len(ledger, 1)
	s.Equal(domain.LedgerDeposit, ledger[0].Type)

	catEntries, _ := s.books.categories.FindCategoryEntriesBySource(s.ctx, domain.SourceDeposit, deposit.DepositID)
	s.Require().Len(catEntries, 1)
	s.True(catEntries[0].Amount.Equal(decimal.NewFromInt(1000)))
	category, _ := s.books.categories.FindCategoryLedgerByName(s.ctx, "Member Deposits")
	s.True(category.Balance.Equal(decimal.NewFromInt(1000)))

	_, err = s.books.deposits.FindDepositByID(s.ctx, deposit.DepositID)
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func TestDepositServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DepositServiceTestSuite))
}
