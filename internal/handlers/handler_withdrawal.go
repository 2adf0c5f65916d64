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

// withdrawalHandler handles HTTP requests for the withdrawal lifecycle.
type withdrawalHandler struct {
	withdrawalService portssvc.WithdrawalSvcFacade
}

func newWithdrawalHandler(ws portssvc.WithdrawalSvcFacade) *withdrawalHandler {
	return &withdrawalHandler{
		withdrawalService: ws,
	}
}

// registerWithdrawalRoutes registers routes related to withdrawals.
func registerWithdrawalRoutes(rg *gin.RouterGroup, withdrawalService portssvc.WithdrawalSvcFacade) {
	h := newWithdrawalHandler(withdrawalService)

	withdrawals := rg.Group("/withdrawals")
	{
		withdrawals.POST("", h.createWithdrawal)
		withdrawals.GET("", h.listWithdrawals)
		withdrawals.GET("/:id", h.getWithdrawal)
		withdrawals.PUT("/:id", h.updateWithdrawal)
		withdrawals.POST("/:id/void", h.voidWithdrawal)
		withdrawals.DELETE("/:id", h.deleteWithdrawal)
	}
}

// createWithdrawal posts a member savings withdrawal or a group expense.
func (h *withdrawalHandler) createWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createWithdrawal", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	withdrawal, err := h.withdrawalService.CreateWithdrawal(c.Request.Context(), req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to create withdrawal")
		return
	}

	logger.Info("Withdrawal created", slog.String("withdrawal_id", withdrawal.WithdrawalID))
	c.JSON(http.StatusCreated, dto.ToWithdrawalResponse(withdrawal))
}

// getWithdrawal retrieves a withdrawal by ID.
func (h *withdrawalHandler) getWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	withdrawalID := c.Param("id")

	withdrawal, err := h.withdrawalService.GetWithdrawalByID(c.Request.Context(), withdrawalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Withdrawal not found"})
		} else {
			logger.Error("Failed to get withdrawal", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve withdrawal"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToWithdrawalResponse(withdrawal))
}

// listWithdrawals lists withdrawals, optionally filtered by member.
func (h *withdrawalHandler) listWithdrawals(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	withdrawals, err := h.withdrawalService.ListWithdrawals(c.Request.Context(), params.MemberID, params.Limit, params.Offset)
	if err != nil {
		logger.Error("Failed to list withdrawals", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list withdrawals"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListWithdrawalResponse(withdrawals))
}

// updateWithdrawal amends a live withdrawal.
func (h *withdrawalHandler) updateWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	withdrawalID := c.Param("id")

	var req dto.UpdateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	withdrawal, err := h.withdrawalService.UpdateWithdrawal(c.Request.Context(), withdrawalID, req, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to update withdrawal")
		return
	}

	c.JSON(http.StatusOK, dto.ToWithdrawalResponse(withdrawal))
}

// voidWithdrawal reverses a withdrawal with mirrored entries.
func (h *withdrawalHandler) voidWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	withdrawalID := c.Param("id")

	var req dto.VoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	withdrawal, err := h.withdrawalService.VoidWithdrawal(c.Request.Context(), withdrawalID, req.Reason, actorID)
	if err != nil {
		respondTransactionError(c, logger, err, "Failed to void withdrawal")
		return
	}

	logger.Info("Withdrawal voided", slog.String("withdrawal_id", withdrawalID))
	c.JSON(http.StatusOK, dto.ToWithdrawalResponse(withdrawal))
}

// deleteWithdrawal removes a withdrawal and every entry keyed to it.
func (h *withdrawalHandler) deleteWithdrawal(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	withdrawalID := c.Param("id")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	if err := h.withdrawalService.DeleteWithdrawal(c.Request.Context(), withdrawalID, actorID); err != nil {
		respondTransactionError(c, logger, err, "Failed to delete withdrawal")
		return
	}

	logger.Info("Withdrawal deleted", slog.String("withdrawal_id", withdrawalID))
	c.Status(http.StatusNoContent)
}
