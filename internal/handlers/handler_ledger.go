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

// ledgerHandler exposes read views over the journal.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{
		ledgerService: ls,
	}
}

// registerLedgerRoutes registers journal read routes, including the
// per-account statement.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ledgerService)

	ledger := rg.Group("/ledger")
	{
		ledger.GET("/entries", h.listEntries)
		ledger.GET("/summary", h.getSummary)
		ledger.GET("/money-flow", h.getMoneyFlow)
	}

	rg.GET("/accounts/:id/statement", h.getAccountStatement)
}

// listEntries pages through the journal, newest first.
func (h *ledgerHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	if filter := params.ToJournalFilter(); !filter.IsZero() {
		entries, err := h.ledgerService.FilterEntries(c.Request.Context(), filter, params.Limit, params.Offset)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			} else {
				logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list journal entries"})
			}
			return
		}
		c.JSON(http.StatusOK, dto.ToListEntriesResponse(entries, nil))
		return
	}

	entries, nextToken, err := h.ledgerService.ListEntries(c.Request.Context(), params.Limit, params.NextToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list journal entries", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list journal entries"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListEntriesResponse(entries, nextToken))
}

// getAccountStatement replays an account's postings with running balances.
func (h *ledgerHandler) getAccountStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("id")

	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	lines, err := h.ledgerService.GetAccountStatement(c.Request.Context(), accountID, params.From, params.To)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		} else {
			logger.Error("Failed to build account statement", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build account statement"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToStatementResponse(lines))
}

// getMoneyFlow totals movements through the financial accounts over an
// optional date range.
func (h *ledgerHandler) getMoneyFlow(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	flow, err := h.ledgerService.GetMoneyFlow(c.Request.Context(), params.From, params.To)
	if err != nil {
		logger.Error("Failed to compute money flow", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute money flow"})
		return
	}

	c.JSON(http.StatusOK, dto.ToMoneyFlowResponse(flow))
}

// getSummary aggregates the whole journal.
func (h *ledgerHandler) getSummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.ledgerService.GetSummary(c.Request.Context())
	if err != nil {
		logger.Error("Failed to summarize journal", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize journal"})
		return
	}

	c.JSON(http.StatusOK, dto.ToLedgerSummaryResponse(summary))
}
