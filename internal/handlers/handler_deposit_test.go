package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	"github.com/saccokit/sacco-ledger/internal/core/domain"
	portssvc "github.com/saccokit/sacco-ledger/internal/core/ports/services"
	"github.com/saccokit/sacco-ledger/internal/dto"
	"github.com/saccokit/sacco-ledger/internal/handlers"
	"github.com/saccokit/sacco-ledger/internal/middleware"
	"github.com/saccokit/sacco-ledger/internal/platform/config"
)

// --- Mock DepositService ---
type MockDepositService struct {
	mock.Mock
}

func (m *MockDepositService) CreateDeposit(ctx context.Context, req dto.CreateDepositRequest, userID string) (*domain.Deposit, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}
func (m *MockDepositService) GetDepositByID(ctx context.Context, depositID string) (*domain.Deposit, error) {
	args := m.Called(ctx, depositID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}
func (m *MockDepositService) ListDeposits(ctx context.Context, memberID *string, limit int, offset int) ([]domain.Deposit, error) {
	args := m.Called(ctx, memberID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Deposit), args.Error(1)
}
func (m *MockDepositService) UpdateDeposit(ctx context.Context, depositID string, req dto.UpdateDepositRequest, userID string) (*domain.Deposit, error) {
	args := m.Called(ctx, depositID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}
func (m *MockDepositService) VoidDeposit(ctx context.Context, depositID string, reason string, userID string) (*domain.Deposit, error) {
	args := m.Called(ctx, depositID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}
func (m *MockDepositService) DeleteDeposit(ctx context.Context, depositID string, userID string) error {
	args := m.Called(ctx, depositID, userID)
	return args.Error(0)
}

// Ensure mock implements the interface
var _ portssvc.DepositSvcFacade = (*MockDepositService)(nil)

type DepositHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockDepositService *MockDepositService
}

func (suite *DepositHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockDepositService = new(MockDepositService)

	cfg := &config.Config{DefaultCurrency: "KES"}
	services := &portssvc.ServiceContainer{
		Deposit: suite.mockDepositService,
	}
	handlers.RegisterRoutes(suite.router, cfg, services)
}

func (suite *DepositHandlerTestSuite) TestCreateDeposit_Success() {
	memberID := uuid.NewString()
	accountID := uuid.NewString()
	actorID := uuid.NewString()
	amount := decimal.NewFromInt(500)

	reference := "DEP-240310-TEST"
	expected := &domain.Deposit{
		DepositID: uuid.NewString(),
		MemberID:  memberID,
		AccountID: accountID,
		Type:      domain.DepositTypeDeposit,
		Amount:    amount,
		Reference: &reference,
		Date:      time.Now(),
	}

	suite.mockDepositService.On("CreateDeposit",
		mock.Anything,
		mock.MatchedBy(func(req dto.CreateDepositRequest) bool {
			return req.MemberID == memberID && req.Amount.Equal(amount)
		}),
		actorID,
	).Return(expected, nil).Once()

	body, _ := json.Marshal(gin.H{
		"memberID":  memberID,
		"accountID": accountID,
		"type":      "deposit",
		"amount":    amount,
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/deposits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.ActorIDHeader, actorID)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.DepositResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.DepositID, resp.DepositID)
	suite.True(resp.Amount.Equal(amount))

	suite.mockDepositService.AssertExpectations(suite.T())
}

func (suite *DepositHandlerTestSuite) TestCreateDeposit_DefaultsActorToSystem() {
	memberID := uuid.NewString()
	expected := &domain.Deposit{DepositID: uuid.NewString(), MemberID: memberID}

	suite.mockDepositService.On("CreateDeposit",
		mock.Anything, mock.Anything, middleware.DefaultActorID,
	).Return(expected, nil).Once()

	body, _ := json.Marshal(gin.H{
		"memberID":  memberID,
		"accountID": uuid.NewString(),
		"type":      "contribution",
		"amount":    decimal.NewFromInt(100),
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/deposits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)
	suite.mockDepositService.AssertExpectations(suite.T())
}

func (suite *DepositHandlerTestSuite) TestCreateDeposit_MissingFieldsRejected() {
	body, _ := json.Marshal(gin.H{"amount": decimal.NewFromInt(100)})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/deposits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockDepositService.AssertNotCalled(suite.T(), "CreateDeposit")
}

func (suite *DepositHandlerTestSuite) TestCreateDeposit_ValidationErrorMapsTo400() {
	suite.mockDepositService.On("CreateDeposit",
		mock.Anything, mock.Anything, mock.Anything,
	).Return(nil, fmt.Errorf("%w: deposit amount must be positive", apperrors.ErrValidation)).Once()

	body, _ := json.Marshal(gin.H{
		"memberID":  uuid.NewString(),
		"accountID": uuid.NewString(),
		"type":      "deposit",
		"amount":    decimal.NewFromInt(-5),
	})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/deposits", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockDepositService.AssertExpectations(suite.T())
}

func (suite *DepositHandlerTestSuite) TestGetDeposit_NotFound() {
	depositID := uuid.NewString()
	suite.mockDepositService.On("GetDepositByID", mock.Anything, depositID).
		Return(nil, apperrors.NewNotFoundError("deposit not found")).Once()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/deposits/"+depositID, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockDepositService.AssertExpectations(suite.T())
}

func (suite *DepositHandlerTestSuite) TestVoidDeposit_ConflictMapsTo409() {
	depositID := uuid.NewString()
	suite.mockDepositService.On("VoidDeposit", mock.Anything, depositID, "duplicate entry", middleware.DefaultActorID).
		Return(nil, fmt.Errorf("%w: deposit %s is already voided", apperrors.ErrConflict, depositID)).Once()

	body, _ := json.Marshal(dto.VoidRequest{Reason: "duplicate entry"})
	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/deposits/%s/void", depositID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
	suite.mockDepositService.AssertExpectations(suite.T())
}

func (suite *DepositHandlerTestSuite) TestDeleteDeposit_NoContent() {
	depositID := uuid.NewString()
	suite.mockDepositService.On("DeleteDeposit", mock.Anything, depositID, middleware.DefaultActorID).
		Return(nil).Once()

	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/deposits/"+depositID, nil)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockDepositService.AssertExpectations(suite.T())
}

func TestDepositHandler(t *testing.T) {
	suite.Run(t, new(DepositHandlerTestSuite))
}
