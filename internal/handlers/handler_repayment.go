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

// repaymentHandler handles HTTP requests for loan repayments.
type repaymentHandler struct {
	repaymentService portssvc.RepaymentSvcFacade
}

func newRepaymentHandler(rs portssvc.RepaymentSvcFacade) *repaymentHandler {
	return &repaymentHandler{
		repaymentService: rs,
	}
}

// registerRepaymentRoutes registers repayment routes, including the
// loan-scoped allocation preview.
func registerRepaymentRoutes(rg *gin.RouterGroup, repaymentService portssvc.RepaymentSvcFacade) {
	h := newRepaymentHandler(repaymentService)

	repayments := rg.Group("/repayments")
	{
		repayments.POST("", h.createRepayment)
		repayments.GET("", h.listRepayments)
		repayments.GET("/:id", h.getRepayment)
		repayments.PUT("/:id", h.updateRepayment)
		repayments.POST("/:id/void", h.voidRepayment)
		repayments.DELETE("/:id", h.deleteRepayment)
	}

	loans := rg.Group("/loans")
	{
		loans.POST("/:id/repayments/preview", h.previewAllocation)
	}
}

// previewAllocation shows how an amount would split across fines, interest
// and principal without posting anything.
func (h *repaymentHandler) previewAllocation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Param("id")

	var req dto.PreviewAllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	alloc, err := h.repaymentService.PreviewAllocation(c.Request.Context(), loanID, req)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to preview allocation", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to preview allocation"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToAllocationResponse(*alloc))
}

// createRepayment posts a repayment through the fines, interest and
// principal waterfall.
func (h *repaymentHandler) createRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createRepayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	repayment, err := h.repaymentService.CreateRepayment(c.Request.Context(), req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to create repayment")
		return
	}

	logger.Info("Repayment posted", slog.String("repayment_id", repayment.RepaymentID), slog.String("loan_id", repayment.LoanID))
	c.JSON(http.StatusCreated, dto.ToRepaymentResponse(repayment))
}

// getRepayment retrieves a repayment with its allocation breakdown.
func (h *repaymentHandler) getRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	repaymentID := c.Param("id")

	repayment, err := h.repaymentService.GetRepaymentByID(c.Request.Context(), repaymentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Repayment not found"})
		} else {
			logger.Error("Failed to get repayment", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve repayment"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToRepaymentResponse(repayment))
}

// listRepayments lists the repayments posted against a loan.
func (h *repaymentHandler) listRepayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	loanID := c.Query("loanID")
	if loanID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "loanID query parameter is required"})
		return
	}

	repayments, err := h.repaymentService.ListRepaymentsByLoan(c.Request.Context(), loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Loan not found"})
		} else {
			logger.Error("Failed to list repayments", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list repayments"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListRepaymentResponse(repayments))
}

// updateRepayment amends a repayment, re-running the allocation waterfall
// when a money field changed.
func (h *repaymentHandler) updateRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	repaymentID := c.Param("id")

	var req dto.UpdateRepaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	repayment, err := h.repaymentService.UpdateRepayment(c.Request.Context(), repaymentID, req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to update repayment")
		return
	}

	logger.Info("Repayment updated", slog.String("repayment_id", repaymentID))
	c.JSON(http.StatusOK, dto.ToRepaymentResponse(repayment))
}

// voidRepayment reverses a repayment and rolls back loan and fine state.
func (h *repaymentHandler) voidRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	repaymentID := c.Param("id")

	var req dto.VoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	repayment, err := h.repaymentService.VoidRepayment(c.Request.Context(), repaymentID, req.Reason, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to void repayment")
		return
	}

	logger.Info("Repayment voided", slog.String("repayment_id", repaymentID))
	c.JSON(http.StatusOK, dto.ToRepaymentResponse(repayment))
}

// deleteRepayment removes a repayment and every entry keyed to it.
func (h *repaymentHandler) deleteRepayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	repaymentID := c.Param("id")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	if err := h.repaymentService.DeleteRepayment(c.Request.Context(), repaymentID, actorID); err != nil {
		respondTransactionError(c, logger, err, "Failed to delete repayment")
		return
	}

	logger.Info("Repayment deleted", slog.String("repayment_id", repaymentID))
	c.Status(http.StatusNoContent)
}
