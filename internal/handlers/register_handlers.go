package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/saccokit/sacco-ledger/internal/core/ports/services"
	"github.com/saccokit/sacco-ledger/internal/middleware"
	"github.com/saccokit/sacco-ledger/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Every posting records who did it, so the actor is resolved for the
	// whole group.
	v1 := r.Group("/api/v1", middleware.ActorMiddleware())

	registerAccountRoutes(v1, services.Account)
	registerMemberRoutes(v1, services.Member)
	registerDepositRoutes(v1, services.Deposit)
	registerWithdrawalRoutes(v1, services.Withdrawal)
	registerLoanRoutes(v1, services.Loan)
	registerRepaymentRoutes(v1, services.Repayment)
	registerLedgerRoutes(v1, services.Ledger)
	registerCategoryLedgerRoutes(v1, services.CategoryLedger)

	// Backfill rewrites stored balances, so the diagnostics surface stays
	// behind a config switch.
	if cfg.DiagnosticsEnabled {
		registerReconciliationRoutes(v1, services.Reconciliation)
	}
}
