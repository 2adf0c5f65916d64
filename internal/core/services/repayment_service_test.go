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

type RepaymentServiceTestSuite struct {
	suite.Suite
	books     *testBooks
	container *portssvc.ServiceContainer
	ctx       context.Context
	loan      *domain.Loan
}

func (s *RepaymentServiceTestSuite) SetupTest() {
	s.books = newTestBooks()
	s.container = services.NewServiceContainer(s.books.provider(), "KES")
	s.ctx = context.Background()
	s.books.addAccount(testCashAccountID, domain.CodeCashbox, "Cashbox", domain.AccountCash, decimal.NewFromInt(5000))
	s.books.addMember(testMemberID, "Achieng")

	// 1000 at 15% flat over 12 months: 150 interest, 1150 payable.
	loan, err := s.container.Loan.CreateLoan(s.ctx, dto.CreateLoanRequest{
		MemberID:       testMemberID,
		Principal:      decimal.NewFromInt(1000),
		InterestRate:   decimal.NewFromInt(15),
		InterestType:   domain.InterestTypeFlat,
		DurationMonths: 12,
		AccountID:      testCashAccountID,
	}, testUserID)
	s.Require().NoError(err)
	s.loan = loan
}

func (s *RepaymentServiceTestSuite) accrueFine(amount int64, reason string) *domain.Fine {
	fine, err := s.container.Loan.AccrueFine(s.ctx, dto.CreateFineRequest{
		MemberID: testMemberID,
		LoanID:   &s.loan.LoanID,
		Amount:   decimal.NewFromInt(amount),
		Reason:   reason,
	}, testUserID)
	s.Require().NoError(err)
	return fine
}

func (s *RepaymentServiceTestSuite) TestCreateLoan_DisbursementPostings() {
	s.True(s.loan.TotalInterest.Equal(decimal.NewFromInt(150)))
	s.True(s.loan.TotalPayable.Equal(decimal.NewFromInt(1150)))

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(decimal.NewFromInt(4000)))

	loansLedger, err := s.books.accounts.FindAccountByCode(s.ctx, domain.CodeLoansLedger)
	s.Require().NoError(err)
	s.True(loansLedger.Balance.Equal(decimal.NewFromInt(1000)))

	receivable, err := s.books.accounts.FindAccountByCode(s.ctx, domain.CodeInterestReceivable)
	s.Require().NoError(err)
	s.True(receivable.Balance.Equal(decimal.NewFromInt(150)))

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.LoanBalance.Equal(decimal.NewFromInt(1150)))

	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceLoan, s.loan.LoanID)
	s.Len(entries, 2, "principal and interest accrual pairs")
}

func (s *RepaymentServiceTestSuite) TestPreviewAllocation_Waterfall() {
	s.accrueFine(60, "late payment")
	s.accrueFine(40, "missed meeting")

	alloc, err := s.container.Repayment.PreviewAllocation(s.ctx, s.loan.LoanID, dto.PreviewAllocationRequest{
		Amount: decimal.NewFromInt(500),
	})
	s.Require().NoError(err)
	s.True(alloc.Fines.Equal(decimal.NewFromInt(100)))
	s.True(alloc.Interest.Equal(decimal.NewFromInt(150)))
	s.True(alloc.Principal.Equal(decimal.NewFromInt(250)))
	s.True(alloc.Total().Equal(decimal.NewFromInt(500)))
}

func (s *RepaymentServiceTestSuite) TestCreateRepayment_SettlesFinesOldestFirst() {
	first := s.accrueFine(60, "late payment")
	second := s.accrueFine(40, "missed meeting")

	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(500),
	}, testUserID)
	s.Require().NoError(err)

	s.True(repayment.Allocation.Fines.Equal(decimal.NewFromInt(100)))
	s.True(repayment.Allocation.Interest.Equal(decimal.NewFromInt(150)))
	s.True(repayment.Allocation.Principal.Equal(decimal.NewFromInt(250)))

	f1, _ := s.books.fines.FindFineByID(s.ctx, first.FineID)
	s.Equal(domain.FineStatusPaid, f1.Status)
	f2, _ := s.books.fines.FindFineByID(s.ctx, second.FineID)
	s.Equal(domain.FineStatusPaid, f2.Status)

	loan, _ := s.books.loans.FindLoanByID(s.ctx, s.loan.LoanID)
	s.True(loan.RepaidAmount.Equal(decimal.NewFromInt(400)), "fines do not count toward the loan")
	s.Equal(domain.LoanStatusActive, loan.Status)

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.LoanBalance.Equal(decimal.NewFromInt(750)))

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(decimal.NewFromInt(4500)))

	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceRepayment, repayment.RepaymentID)
	s.Len(entries, 3, "one pair per waterfall portion")
}

func (s *RepaymentServiceTestSuite) TestCreateRepayment_PartialFine() {
	fine := s.accrueFine(60, "late payment")

	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(25),
	}, testUserID)
	s.Require().NoError(err)
	s.True(repayment.Allocation.Fines.Equal(decimal.NewFromInt(25)))
	s.True(repayment.Allocation.Interest.IsZero())
	s.True(repayment.Allocation.Principal.IsZero())

	f, _ := s.books.fines.FindFineByID(s.ctx, fine.FineID)
	s.Equal(domain.FineStatusPartial, f.Status)
	s.True(f.Outstanding().Equal(decimal.NewFromInt(35)))

	loan, _ := s.books.loans.FindLoanByID(s.ctx, s.loan.LoanID)
	s.True(loan.RepaidAmount.IsZero())
}

func (s *RepaymentServiceTestSuite) TestCreateRepayment_RejectsOverpayment() {
	_, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(1151),
	}, testUserID)
	assert.ErrorIs(s.T(), err, apperrors.ErrValidation)
}

func (s *RepaymentServiceTestSuite) TestCreateRepayment_CompletesLoan() {
	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(1150),
	}, testUserID)
	s.Require().NoError(err)
	s.True(repayment.Allocation.Interest.Equal(decimal.NewFromInt(150)))
	s.True(repayment.Allocation.Principal.Equal(decimal.NewFromInt(1000)))

	loan, _ := s.books.loans.FindLoanByID(s.ctx, s.loan.LoanID)
	s.Equal(domain.LoanStatusCompleted, loan.Status)
	s.True(loan.OutstandingBalance().IsZero())

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.LoanBalance.IsZero())

	// A settled loan takes no further repayments.
	_, err = s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(10),
	}, testUserID)
	assert.ErrorIs(s.T(), err, apperrors.ErrConflict)
}

func (s *RepaymentServiceTestSuite) TestVoidRepayment_RollsBackLoanAndFines() {
	fine := s.accrueFine(100, "late payment")

	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(500),
	}, testUserID)
	s.Require().NoError(err)

	_, err = s.container.Repayment.VoidRepayment(s.ctx, repayment.RepaymentID, "bounced", testUserID)
	s.Require().NoError(err)

	f, _ := s.books.fines.FindFineByID(s.ctx, fine.FineID)
	s.Equal(domain.FineStatusUnpaid, f.Status)
	s.True(f.PaidAmount.IsZero())

	loan, _ := s.books.loans.FindLoanByID(s.ctx, s.loan.LoanID)
	s.True(loan.RepaidAmount.IsZero())
	s.Equal(domain.LoanStatusActive, loan.Status)

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.LoanBalance.Equal(decimal.NewFromInt(1150)))

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(decimal.NewFromInt(4000)))

	_, err = s.container.Repayment.VoidRepayment(s.ctx, repayment.RepaymentID, "again", testUserID)
	assert.ErrorIs(s.T(), err, apperrors.ErrConflict)

	// The next repayment sees the restored fine and interest.
	alloc, err := s.container.Repayment.PreviewAllocation(s.ctx, s.loan.LoanID, dto.PreviewAllocationRequest{
		Amount: decimal.NewFromInt(500),
	})
	s.Require().NoError(err)
	s.True(alloc.Fines.Equal(decimal.NewFromInt(100)))
	s.True(alloc.Interest.Equal(decimal.NewFromInt(150)))
}

func (s *RepaymentServiceTestSuite) TestUpdateRepayment_ReallocatesChangedAmount() {
	fine := s.accrueFine(100, "late payment")

	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(500),
	}, testUserID)
	s.Require().NoError(err)

	amount := decimal.NewFromInt(300)
	updated, err := s.container.Repayment.UpdateRepayment(s.ctx, repayment.RepaymentID, dto.UpdateRepaymentRequest{Amount: &amount}, testUserID)
	s.Require().NoError(err)
	s.True(updated.Amount.Equal(amount))
	s.True(updated.Allocation.Fines.Equal(decimal.NewFromInt(100)))
	s.True(updated.Allocation.Interest.Equal(decimal.NewFromInt(150)))
	s.True(updated.Allocation.Principal.Equal(decimal.NewFromInt(50)))

	f, _ := s.books.fines.FindFineByID(s.ctx, fine.FineID)
	s.Equal(domain.FineStatusPaid, f.Status)
	s.True(f.PaidAmount.Equal(decimal.NewFromInt(100)))

	loan, _ := s.books.loans.FindLoanByID(s.ctx, s.loan.LoanID)
	s.True(loan.RepaidAmount.Equal(decimal.NewFromInt(200)))

	member, _ := s.books.members.FindMemberByID(s.ctx, testMemberID)
	s.True(member.LoanBalance.Equal(decimal.NewFromInt(950)))

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(decimal.NewFromInt(4300)))

	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceRepayment, repayment.RepaymentID)
	s.Len(entries, 3, "old postings should be replaced, not stacked")
}

func (s *RepaymentServiceTestSuite) TestUpdateRepayment_DescriptionOnlyKeepsPostings() {
	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(300),
	}, testUserID)
	s.Require().NoError(err)

	desc := "corrected receipt note"
	updated, err := s.container.Repayment.UpdateRepayment(s.ctx, repayment.RepaymentID, dto.UpdateRepaymentRequest{Description: &desc}, testUserID)
	s.Require().NoError(err)
	s.Equal(desc, updated.Description)
	s.True(updated.Allocation.Interest.Equal(repayment.Allocation.Interest))

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(decimal.NewFromInt(4300)))

	loan, _ := s.books.loans.FindLoanByID(s.ctx, s.loan.LoanID)
	s.True(loan.RepaidAmount.Equal(decimal.NewFromInt(300)))
}

func (s *RepaymentServiceTestSuite) TestUpdateRepayment_VoidedConflicts() {
	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(300),
	}, testUserID)
	s.Require().NoError(err)

	_, err = s.container.Repayment.VoidRepayment(s.ctx, repayment.RepaymentID, "bounced", testUserID)
	s.Require().NoError(err)

	amount := decimal.NewFromInt(200)
	_, err = s.container.Repayment.UpdateRepayment(s.ctx, repayment.RepaymentID, dto.UpdateRepaymentRequest{Amount: &amount}, testUserID)
	assert.ErrorIs(s.T(), err, apperrors.ErrConflict)
}

func (s *RepaymentServiceTestSuite) TestDeleteRepayment_VoidedKeepsOriginalPostings() {
	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(300),
	}, testUserID)
	s.Require().NoError(err)

	_, err = s.container.Repayment.VoidRepayment(s.ctx, repayment.RepaymentID, "bounced", testUserID)
	s.Require().NoError(err)

	err = s.container.Repayment.DeleteRepayment(s.ctx, repayment.RepaymentID, testUserID)
	s.Require().NoError(err)

	// Only the void-minted rows go; the original postings stay and their
	// balance effect comes back.
	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceRepayment, repayment.RepaymentID)
	s.Require().NotEmpty(entries)
	for _, e := range entries {
		s.False(e.IsReversal)
	}

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(decimal.NewFromInt(4300)))

	ledger, _ := s.books.members.FindLedgerEntriesBySource(s.ctx, domain.SourceRepayment, repayment.RepaymentID)
	s.Require().Len(ledger, 1)
	s.Equal(domain.LedgerRepayment, ledger[0].Type)
	s.True(ledger[0].Amount.Equal(decimal.NewFromInt(300)))
}

func (s *RepaymentServiceTestSuite) TestDeleteRepayment_LiveRollsBackState() {
	repayment, err := s.container.Repayment.CreateRepayment(s.ctx, dto.CreateRepaymentRequest{
		LoanID:    s.loan.LoanID,
		AccountID: testCashAccountID,
		Amount:    decimal.NewFromInt(300),
	}, testUserID)
	s.Require().NoError(err)

	err = s.container.Repayment.DeleteRepayment(s.ctx, repayment.RepaymentID, testUserID)
	s.Require().NoError(err)

	loan, _ := s.books.loans.FindLoanByID(s.ctx, s.loan.LoanID)
	s.True(loan.RepaidAmount.IsZero())

	cash, _ := s.books.accounts.FindAccountByID(s.ctx, testCashAccountID)
	s.True(cash.Balance.Equal(decimal.NewFromInt(4000)))

	entries, _ := s.books.journal.FindEntriesBySource(s.ctx, domain.SourceRepayment, repayment.RepaymentID)
	s.Empty(entries)

	_, err = s.books.repayments.FindRepaymentByID(s.ctx, repayment.RepaymentID)
	assert.ErrorIs(s.T(), err, apperrors.ErrNotFound)
}

func TestRepaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RepaymentServiceTestSuite))
}
