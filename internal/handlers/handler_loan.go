package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saccokit/sacco-ledger/internal/apperrors"
	portssvc "github.com/saccokit/sacco-ledger/internal/core/ports/services"
	"github.com/saccokit/sacco-ledger/internal/dto"
	"github.com/saccokit/sacco-ledger/internal/middleware"
)

// loanHandler handles HTTP requests for loans and fines.
type loanHandler struct {
	loanService portssvc.LoanSvcFacade
}

func newLoanHandler(ls portssvc.LoanSvcFacade) *loanHandler {
	return &loanHandler{
		loanService: ls,
	}
}

// registerLoanRoutes registers routes related to loans and fines.
func registerLoanRoutes(rg *gin.RouterGroup, loanService portssvc.LoanSvcFacade) {
	h := newLoanHandler(loanService)

	loans := rg.Group("/loans")
	{
		loans.POST("", h.createLoan)
		loans.GET("", h.listLoans)
		loans.GET("/:id", h.getLoan)
		loans.GET("/:id/schedule", h.getSchedule)
	}

	fines := rg.Group("/fines")
	{
		fines.POST("", h.accrueFine)
		fines.GET("", h.listFines)
	}
}

// createLoan disburses a loan: cash out, interest accrued, member liable.
func (h *loanHandler) createLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateLoanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createLoan", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	loan, err := h.loanService.CreateLoan(c.Request.Context(), req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to create loan")
		return
	}

	logger.Info("Loan disbursed", slog.String("loan_id", loan.LoanID), slog.String("member_id", loan.MemberID))
	c.JSON(http.StatusCreated, dto.ToLoanResponse(loan))
}

// getLoan retrieves a loan by ID.
func (h *loanHandler) getLoan(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	loan, err := h.loanService.GetLoanByID(c.Request.Context(), loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		} else {
			logger.Error("Failed to get loan", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve loan"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToLoanResponse(loan))
}

// listLoans lists a member's loans. The member filter is required because
// loans are always viewed through a member's file.
func (h *loanHandler) listLoans(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	memberID := c.Query("memberID")
	if memberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "memberID query parameter is required"})
		return
	}

	loans, err := h.loanService.ListLoansByMember(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		} else {
			logger.Error("Failed to list loans", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list loans"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListLoanResponse(loans))
}

// getSchedule builds the loan's amortization schedule from its terms.
func (h *loanHandler) getSchedule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	schedule, err := h.loanService.GetSchedule(c.Request.Context(), loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		} else {
			logger.Error("Failed to build loan schedule", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build loan schedule"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToScheduleResponse(schedule))
}

// accrueFine levies a fine against a member, optionally tied to a loan.
func (h *loanHandler) accrueFine(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateFineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	fine, err := h.loanService.AccrueFine(c.Request.Context(), req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to accrue fine")
		return
	}

	logger.Info("Fine accrued", slog.String("fine_id", fine.FineID), slog.String("member_id", fine.MemberID))
	c.JSON(http.StatusCreated, dto.ToFineResponse(fine))
}

// listFines lists a member's fines, oldest first.
func (h *loanHandler) listFines(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	memberID := c.Query("memberID")
	if memberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "memberID query parameter is required"})
		return
	}

	fines, err := h.loanService.ListFinesByMember(c.Request.Context(), memberID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Member not found"})
		} else {
			logger.Error("Failed to list fines", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list fines"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListFineResponse(fines))
}
