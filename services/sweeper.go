package services

import (
	"context"
	"errors"

	"github.com/wealth-horizon/BloomVest/utils"
)

// SweepFailure records one order that could not be reconciled during a sweep
type SweepFailure struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// SweepSummary aggregates the outcome of a polling sweep
type SweepSummary struct {
	Checked int            `json:"checked"`
	Applied int            `json:"applied"`
	Pending int            `json:"pending"`
	Failed  []SweepFailure `json:"failed,omitempty"`
}

// Sweeper walks all PENDING transactions and reconciles each one. It is the
// safety net for webhook deliveries that never arrived.
type Sweeper struct {
	Store      Store
	Reconciler *ReconciliationService
}

// NewSweeper builds a sweeper over the given store and reconciler
func NewSweeper(store Store, reconciler *ReconciliationService) *Sweeper {
	return &Sweeper{Store: store, Reconciler: reconciler}
}

// SweepPending reconciles every pending transaction (for one user when
// userID is non-zero). Orders are independent: a failure on one is recorded
// and the sweep moves on. The context is checked between orders so a
// shutdown stops the sweep at a clean boundary; work already done stands,
// because each order is idempotent on its own.
func (s *Sweeper) SweepPending(ctx context.Context, userID uint) (SweepSummary, error) {
	summary := SweepSummary{}

	pending, err := s.Store.ListPending(ctx, userID)
	if err != nil {
		return summary, err
	}
	utils.LogInfo("Sweep started: %d pending transaction(s)", len(pending))

	for _, txn := range pending {
		if err := ctx.Err(); err != nil {
			utils.LogInfo("Sweep interrupted after %d of %d orders: %v", summary.Checked, len(pending), err)
			return summary, err
		}

		summary.Checked++
		result, err := s.Reconciler.Reconcile(ctx, txn.OrderID)
		if err != nil {
			if errors.Is(err, ErrProviderUnavailable) {
				utils.LogError("Sweep: provider unavailable for order %s: %v", txn.OrderID, err)
			} else {
				utils.LogError("Sweep: failed to reconcile order %s: %v", txn.OrderID, err)
			}
			summary.Failed = append(summary.Failed, SweepFailure{OrderID: txn.OrderID, Reason: err.Error()})
			continue
		}

		if result.WasNoOp {
			summary.Pending++
		} else {
			summary.Applied++
		}
	}

	utils.LogInfo("Sweep finished: checked %d, applied %d, still pending %d, failed %d",
		summary.Checked, summary.Applied, summary.Pending, len(summary.Failed))
	return summary, nil
}
