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

// depositHandler handles HTTP requests for the deposit lifecycle.
type depositHandler struct {
	depositService portssvc.DepositSvcFacade
}

func newDepositHandler(ds portssvc.DepositSvcFacade) *depositHandler {
	return &depositHandler{
		depositService: ds,
	}
}

// registerDepositRoutes registers routes related to deposits.
func registerDepositRoutes(rg *gin.RouterGroup, depositService portssvc.DepositSvcFacade) {
	h := newDepositHandler(depositService)

	deposits := rg.Group("/deposits")
	{
		deposits.POST("", h.createDeposit)
		deposits.GET("", h.listDeposits)
		deposits.GET("/:id", h.getDeposit)
		deposits.PUT("/:id", h.updateDeposit)
		deposits.POST("/:id/void", h.voidDeposit)
		deposits.DELETE("/:id", h.deleteDeposit)
	}
}

// createDeposit posts a contribution or savings deposit across all books.
func (h *depositHandler) createDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createDeposit", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	deposit, err := h.depositService.CreateDeposit(c.Request.Context(), req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to create deposit")
		return
	}

	logger.Info("Deposit created", slog.String("deposit_id", deposit.DepositID), slog.String("member_id", deposit.MemberID))
	c.JSON(http.StatusCreated, dto.ToDepositResponse(deposit))
}

// getDeposit retrieves a deposit by ID.
func (h *depositHandler) getDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	depositID := c.Param("id")

	deposit, err := h.depositService.GetDepositByID(c.Request.Context(), depositID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Deposit not found"})
		} else {
			logger.Error("Failed to get deposit", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve deposit"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToDepositResponse(deposit))
}

// listDeposits lists deposits, optionally filtered by member.
func (h *depositHandler) listDeposits(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	deposits, err := h.depositService.ListDeposits(c.Request.Context(), params.MemberID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list deposits", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list deposits"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListDepositResponse(deposits))
}

// updateDeposit amends a live deposit, rebuilding postings if money fields changed.
func (h *depositHandler) updateDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	depositID := c.Param("id")

	var req dto.UpdateDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	deposit, err := h.depositService.UpdateDeposit(c.Request.Context(), depositID, req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to update deposit")
		return
	}

	c.JSON(http.StatusOK, dto.ToDepositResponse(deposit))
}

// voidDeposit reverses a deposit with mirrored entries, keeping the audit trail.
func (h *depositHandler) voidDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	depositID := c.Param("id")

	var req dto.VoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	deposit, err := h.depositService.VoidDeposit(c.Request.Context(), depositID, req.Reason, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to void deposit")
		return
	}

	logger.Info("Deposit voided", slog.String("deposit_id", depositID))
	c.JSON(http.StatusOK, dto.ToDepositResponse(deposit))
}

// deleteDeposit removes a deposit and every entry keyed to it.
func (h *depositHandler) deleteDeposit(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	depositID := c.Param("id")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	if err := h.depositService.DeleteDeposit(c.Request.Context(), depositID, actorID); err != nil {
		respondTransactionError(c, logger, err, "Failed to delete deposit")
		return
	}

	logger.Info("Deposit deleted", slog.String("deposit_id", depositID))
	c.Status(http.StatusNoContent)
}

// respondTransactionError maps service errors from the transaction
// coordinators onto HTTP statuses. The fallback message is used for
// unexpected errors so internals never leak to clients.
func respondTransactionError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
