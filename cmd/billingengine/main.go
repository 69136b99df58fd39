package main

import (
	"context"
	"flag"
	stdlog "log"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/config"
	"github.com/leasebill/billing-engine/internal/domain/proration"
	"github.com/leasebill/billing-engine/internal/logger"
	pgclient "github.com/leasebill/billing-engine/internal/postgres"
	"github.com/leasebill/billing-engine/internal/principal"
	pgrepo "github.com/leasebill/billing-engine/internal/repository/postgres"
	"github.com/leasebill/billing-engine/internal/service"
	"github.com/leasebill/billing-engine/internal/types"
)

// The engine has no HTTP surface of its own (spec.md §6): it is invoked by
// an external scheduler, once per billing period, and exits. This binary is
// that invocation.
func main() {
	orgID := flag.String("org", "", "organization to run the monthly rent invoice run for")
	periodStartFlag := flag.String("period-start", "", "billing period start, YYYY-MM-DD")
	periodEndFlag := flag.String("period-end", "", "billing period end, YYYY-MM-DD")
	idempotencyKey := flag.String("idempotency-key", "", "optional retry key; a repeat call with the same key returns the prior run instead of re-executing it")
	flag.Parse()

	if *orgID == "" || *periodStartFlag == "" || *periodEndFlag == "" {
		stdlog.Fatal("org, period-start and period-end are required")
	}

	periodStart, err := time.Parse("2006-01-02", *periodStartFlag)
	if err != nil {
		stdlog.Fatalf("invalid period-start: %v", err)
	}
	periodEnd, err := time.Parse("2006-01-02", *periodEndFlag)
	if err != nil {
		stdlog.Fatalf("invalid period-end: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		stdlog.Fatalf("invalid config: %v", err)
	}

	log, err := logger.NewLoggerAtLevel(cfg.Logging.Level)
	if err != nil {
		stdlog.Fatalf("failed to create logger: %v", err)
	}

	go serveHealth(cfg.Server.HealthAddress, log)

	db, err := pgclient.New(pgclient.Config{
		DSN:          cfg.Postgres.GetDSN(),
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	}, log)
	if err != nil {
		log.Fatalw("failed to connect to postgres", "error", err)
	}

	unitOfWork := pgrepo.NewUnitOfWork(db)
	prorationCalc := proration.NewCalculator()
	clk := clock.New()
	princ := principal.Static{Org: *orgID, User: "system"}

	generation := service.NewInvoiceGenerationService(unitOfWork, prorationCalc, clk, princ, log)
	orchestrator := service.NewInvoiceRunOrchestrator(unitOfWork, generation, clk, princ, log)

	run, err := orchestrator.ExecuteMonthlyRent(context.Background(), periodStart, periodEnd, cfg.Billing.DefaultProrationMethod, *idempotencyKey)
	if err != nil {
		log.Fatalw("invoice run failed", "error", err)
	}

	log.Infow("invoice run finished",
		"run_id", run.ID, "status", run.Status,
		"total", run.TotalLeases, "success", run.SuccessCount, "failure", run.FailureCount)

	if run.Status == types.RunStatusFailed {
		log.Fatalw("invoice run completed with failures", "error_messages", run.ErrorMessages)
	}
}

// serveHealth exposes a liveness probe for the duration of the run. The
// engine has no other HTTP surface (spec.md §6); this exists only so a
// scheduler supervising the process can tell it is still running.
func serveHealth(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		log.Warnw("health endpoint stopped", "error", err)
	}
}
