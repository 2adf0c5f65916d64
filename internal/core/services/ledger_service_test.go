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

type LedgerServiceTestSuite struct {
	suite.Suite
	books     *testBooks
	container *portssvc.ServiceContainer
	ctx       context.Context
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.books = newTestBooks()
	s.container = services.NewServiceContainer(s.books.provider(), "KES")
	s.ctx = context.Background()
	s.books.addAccount(testCashAccountID, domain.CodeCashbox, "Cashbox", domain.AccountCash, decimal.Zero)
	s.books.addMember(testMemberID, "Achieng")

	_, err := s.container.Deposit.CreateDeposit(s.ctx, dto.CreateDepositRequest{
		MemberID:  testMemberID,
		AccountID: testCashAccountID,
		Type:      domain.DepositTypeDeposit,
		Amount:    decimal.NewFromInt(1000),
	}, testUserID)
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) withdraw(amount int64) {
	memberID := testMemberID
	_, err := s.container.Withdrawal.CreateWithdrawal(s.ctx, dto.CreateWithdrawalRequest{
		MemberID:  &memberID,
		AccountID: testCashAccountID,
		Type:      domain.WithdrawalTypeMember,
		Amount:    decimal.NewFromInt(amount),
	}, testUserID)
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) TestGetAccountStatement_RunningBalance() {
	s.withdraw(400)

	lines, err := s.container.Ledger.GetAccountStatement(s.ctx, testCashAccountID, nil, nil)
	s.Require().NoError(err)
	s.Require().Len(lines, 2)

	s.Equal("debit", lines[0].Side)
	s.True(lines[0].Amount.Equal(decimal.NewFromInt(1000)))
	s.True(lines[0].RunningBalance.Equal(decimal.NewFromInt(1000)))

	s.Equal("credit", lines[1].Side)
	s.True(lines[1].Amount.Equal(decimal.NewFromInt(400)))
	s.True(lines[1].RunningBalance.Equal(decimal.NewFromInt(600)))
}

func (s *LedgerServiceTestSuite) TestGetAccountStatement_UnknownAccount() {
	_, err := s.container.Ledger.GetAccountStatement(s.ctx, "acc-missing", nil, nil)
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestFilterEntries_ByCategory() {
	_, err := s.container.Deposit.CreateDeposit(s.ctx, dto.CreateDepositRequest{
		MemberID:  testMemberID,
		AccountID: testCashAccountID,
		Type:      domain.DepositTypeContribution,
		Amount:    decimal.NewFromInt(200),
	}, testUserID)
	s.Require().NoError(err)

	category := services.CategoryMonthlyContribution
	entries, err := s.container.Ledger.FilterEntries(s.ctx, domain.JournalFilter{Category: &category}, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(services.CategoryMonthlyContribution, entries[0].Category)
	s.True(entries[0].DebitAmount.Equal(decimal.NewFromInt(200)))
}

func (s *LedgerServiceTestSuite) TestFilterEntries_UnknownAccount() {
	accountID := "acc-missing"
	_, err := s.container.Ledger.FilterEntries(s.ctx, domain.JournalFilter{AccountID: &accountID}, 10, 0)
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestGetMoneyFlow() {
	s.withdraw(400)

	flow, err := s.container.Ledger.GetMoneyFlow(s.ctx, nil, nil)
	s.Require().NoError(err)
	s.True(flow.MoneyIn.Equal(decimal.NewFromInt(1000)))
	s.True(flow.MoneyOut.Equal(decimal.NewFromInt(400)))
	s.True(flow.Net.Equal(decimal.NewFromInt(600)))
}

func (s *LedgerServiceTestSuite) TestGetCategorySummary() {
	s.withdraw(400)

	summary, err := s.container.CategoryLedger.GetCategorySummary(s.ctx)
	s.Require().NoError(err)
	s.True(summary.TotalIncome.Equal(decimal.NewFromInt(1000)))
	s.True(summary.TotalExpense.Equal(decimal.NewFromInt(400)))
	s.True(summary.Net.Equal(decimal.NewFromInt(600)))
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
