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

// categoryLedgerHandler exposes the per-category summary books.
type categoryLedgerHandler struct {
	categoryService portssvc.CategoryLedgerSvcFacade
}

func newCategoryLedgerHandler(cs portssvc.CategoryLedgerSvcFacade) *categoryLedgerHandler {
	return &categoryLedgerHandler{
		categoryService: cs,
	}
}

// registerCategoryLedgerRoutes registers routes for the category books.
func registerCategoryLedgerRoutes(rg *gin.RouterGroup, categoryService portssvc.CategoryLedgerSvcFacade) {
	h := newCategoryLedgerHandler(categoryService)

	categories := rg.Group("/category-ledgers")
	{
		categories.GET("", h.listCategoryLedgers)
		categories.GET("/summary", h.getCategorySummary)
		categories.GET("/:name/entries", h.getCategoryEntries)
	}
}

// listCategoryLedgers lists every category book with its running totals.
func (h *categoryLedgerHandler) listCategoryLedgers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	ledgers, err := h.categoryService.ListCategoryLedgers(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list category ledgers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list category ledgers"})
		return
	}

	c.JSON(http.StatusOK, dto.ToListCategoryLedgerResponse(ledgers))
}

// getCategorySummary nets income categories against expense categories.
func (h *categoryLedgerHandler) getCategorySummary(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	summary, err := h.categoryService.GetCategorySummary(c.Request.Context())
	if err != nil {
		logger.Error("Failed to summarize category ledgers", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to summarize category ledgers"})
		return
	}

	c.JSON(http.StatusOK, dto.ToCategorySummaryResponse(summary))
}

// getCategoryEntries lists a category's entries, newest first.
func (h *categoryLedgerHandler) getCategoryEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	name := c.Param("name")

	var params dto.ListMembersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	entries, err := h.categoryService.GetCategoryEntries(c.Request.Context(), name, params.Limit, params.Offset)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category ledger not found"})
		} else {
			logger.Error("Failed to list category entries", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list category entries"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToListCategoryEntryResponse(entries))
}
