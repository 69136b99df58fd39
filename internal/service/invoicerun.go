package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sourcegraph/conc/pool"

	"github.com/leasebill/billing-engine/internal/clock"
	"github.com/leasebill/billing-engine/internal/domain/invoicerun"
	"github.com/leasebill/billing-engine/internal/domain/lease"
	"github.com/leasebill/billing-engine/internal/domain/uow"
	ierr "github.com/leasebill/billing-engine/internal/errors"
	"github.com/leasebill/billing-engine/internal/logger"
	"github.com/leasebill/billing-engine/internal/principal"
	"github.com/leasebill/billing-engine/internal/types"
)

// MaxConcurrentLeases bounds how many leases a single run processes at
// once. The run must not process the same lease twice concurrently
// (spec.md §5); each goroutine owns exactly one lease.
const MaxConcurrentLeases = 8

// InvoiceRunOrchestrator is C10: bulk invoice generation across every
// active lease in an organization for one billing period.
type InvoiceRunOrchestrator struct {
	uow        uow.UnitOfWork
	generation *InvoiceGenerationService
	clock      clock.Provider
	principal  principal.Current
	logger     *logger.Logger
}

func NewInvoiceRunOrchestrator(
	unitOfWork uow.UnitOfWork,
	generation *InvoiceGenerationService,
	clk clock.Provider,
	princ principal.Current,
	log *logger.Logger,
) *InvoiceRunOrchestrator {
	return &InvoiceRunOrchestrator{
		uow:        unitOfWork,
		generation: generation,
		clock:      clk,
		principal:  princ,
		logger:     log,
	}
}

// ExecuteMonthlyRent implements spec.md §4.10's run algorithm: one run
// record, a stable lease enumeration, per-lease C6 calls that never halt
// the run on failure, and a final status computed from the accumulated
// counts.
//
// idempotencyKey, when non-empty, lets a caller retry of a crashed or
// timed-out request be recognized as a retry: a prior run already recorded
// under the same (org, key) is returned as-is instead of running again.
func (o *InvoiceRunOrchestrator) ExecuteMonthlyRent(ctx context.Context, periodStart, periodEnd time.Time, method types.ProrationMethod, idempotencyKey string) (*invoicerun.Run, error) {
	orgID := o.principal.OrgID()
	now := o.clock.NowUTC()

	run := &invoicerun.Run{
		ID:              types.GenerateSortableID(types.PrefixRun),
		RunAt:           now,
		PeriodStart:     periodStart,
		PeriodEnd:       periodEnd,
		ProrationMethod: method,
		IdempotencyKey:  idempotencyKey,
		Status:          types.RunStatusRunning,
		BaseModel: types.BaseModel{
			OrgID:     orgID,
			Status:    types.StatusActive,
			CreatedBy: o.principal.UserID(),
			UpdatedBy: o.principal.UserID(),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}

	var leases []*lease.Lease
	var isRetry bool
	err := o.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		if existing, ok, err := stores.Runs.FindByIdempotencyKey(ctx, orgID, idempotencyKey); err != nil {
			return err
		} else if ok {
			run = existing
			isRetry = true
			return nil
		}

		if err := stores.Runs.Create(ctx, run); err != nil {
			return err
		}

		return backoff.Retry(func() error {
			var err error
			leases, err = stores.Leases.ListActive(ctx, orgID)
			if err != nil && ierr.IsDatabase(err) {
				return err // transient, retry
			}
			return backoff.Permanent(err)
		}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3))
	})
	if err != nil {
		return nil, err
	}
	if isRetry {
		o.logger.Infow("invoice run idempotency key matched a prior run, skipping re-execution",
			"org_id", orgID, "run_id", run.ID, "idempotency_key", idempotencyKey)
		return run, nil
	}

	sort.Slice(leases, func(i, j int) bool { return leases[i].ID < leases[j].ID })

	run.TotalLeases = len(leases)

	type outcome struct {
		leaseID string
		failMsg string
	}
	outcomes := make([]outcome, len(leases))

	p := pool.New().WithMaxGoroutines(MaxConcurrentLeases)
	for i, l := range leases {
		i, l := i, l
		p.Go(func() {
			res, err := o.generation.Generate(ctx, l.ID, periodStart, periodEnd, method)
			switch {
			case err != nil:
				outcomes[i] = outcome{leaseID: l.ID, failMsg: err.Error()}
			case !res.Success:
				outcomes[i] = outcome{leaseID: l.ID, failMsg: res.ErrorMessage}
			}
		})
	}
	p.Wait()

	for _, oc := range outcomes {
		if oc.failMsg != "" {
			run.FailureCount++
			run.ErrorMessages = append(run.ErrorMessages, fmt.Sprintf("lease %s: %s", oc.leaseID, oc.failMsg))
		} else {
			run.SuccessCount++
		}
	}
	run.Finalize()
	run.UpdatedBy = o.principal.UserID()
	run.UpdatedAt = o.clock.NowUTC()

	if err := o.uow.Execute(ctx, func(ctx context.Context, stores uow.Stores) error {
		return stores.Runs.Update(ctx, run)
	}); err != nil {
		return nil, err
	}

	o.logger.Infow("invoice run completed",
		"org_id", orgID, "run_id", run.ID, "total", run.TotalLeases,
		"success", run.SuccessCount, "failure", run.FailureCount, "status", run.Status)

	return run, nil
}
