package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/saccokit/sacco-ledger/internal/core/ports/services"
	"github.com/saccokit/sacco-ledger/internal/dto"
	"github.com/saccokit/sacco-ledger/internal/middleware"
)

// reconciliationHandler exposes the cross-book diagnostics.
type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{
		reconciliationService: rs,
	}
}

// registerReconciliationRoutes registers the diagnostics routes. Both are
// POST: reconcile scans every book and backfill rewrites stored balances.
func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(reconciliationService)

	diagnostics := rg.Group("/diagnostics")
	{
		diagnostics.POST("/reconcile", h.reconcile)
		diagnostics.POST("/backfill", h.backfill)
	}
}

// reconcile compares stored balances against recomputed ones and reports
// every discrepancy without changing anything.
func (h *reconciliationHandler) reconcile(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	report, err := h.reconciliationService.Reconcile(c.Request.Context())
	if err != nil {
		logger.Error("Reconciliation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}

	logger.Info("Reconciliation completed", slog.Int("findings", len(report.Findings)))
	c.JSON(http.StatusOK, dto.ToReconciliationReportResponse(report))
}

// backfill recomputes and overwrites stored balances from the journal and
// the personal and category ledgers.
func (h *reconciliationHandler) backfill(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		actorID = middleware.DefaultActorID
	}

	report, err := h.reconciliationService.Backfill(c.Request.Context(), actorID)
	if err != nil {
		logger.Error("Backfill failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Backfill failed"})
		return
	}

	logger.Info("Backfill completed", slog.Int("findings_repaired", len(report.Findings)))
	c.JSON(http.StatusOK, dto.ToReconciliationReportResponse(report))
}
