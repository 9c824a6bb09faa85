package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wealth-horizon/BloomVest/cashfree"
	"github.com/wealth-horizon/BloomVest/models"
	"github.com/wealth-horizon/BloomVest/utils"
)

// Gateway is the payment provider surface the reconciler queries. The
// Cashfree client satisfies it; tests substitute a stub.
type Gateway interface {
	GetOrder(ctx context.Context, orderID string) (*cashfree.Order, error)
	GetPayments(ctx context.Context, orderID string) ([]cashfree.Payment, error)
}

// Notifier receives best-effort notifications after a transaction reaches
// SUCCESS. Failures are logged, never propagated.
type Notifier interface {
	NotifySuccess(txn models.Transaction, weightInGrams float64)
}

// ReconciliationResult reports what a reconcile call did
type ReconciliationResult struct {
	OrderID       string                   `json:"order_id"`
	AppliedStatus models.TransactionStatus `json:"applied_status"`
	WasNoOp       bool                     `json:"was_no_op"`
	WeightCredited float64                 `json:"weight_credited,omitempty"`
}

// ReconciliationService fetches authoritative order status from the
// gateway and applies it to the local transaction record, idempotently.
// All status writes and ledger credits in the system flow through here.
type ReconciliationService struct {
	Store           Store
	Gateway         Gateway
	Accumulator     *InvestmentAccumulator
	Notifier        Notifier
	ProviderTimeout time.Duration
}

// NewReconciliationService wires the reconciler. notifier may be nil.
func NewReconciliationService(store Store, gateway Gateway, accumulator *InvestmentAccumulator, notifier Notifier) *ReconciliationService {
	return &ReconciliationService{
		Store:           store,
		Gateway:         gateway,
		Accumulator:     accumulator,
		Notifier:        notifier,
		ProviderTimeout: 15 * time.Second,
	}
}

// Reconcile brings the transaction for orderID in line with the provider's
// view. Safe to call any number of times, from webhooks and sweeps
// concurrently: a terminal transaction is never touched again, and the
// conditional status update ensures at most one caller credits the ledger.
func (s *ReconciliationService) Reconcile(ctx context.Context, orderID string) (ReconciliationResult, error) {
	result := ReconciliationResult{OrderID: orderID}

	txn, err := s.Store.FindTransaction(ctx, orderID)
	if err != nil {
		return result, err
	}

	if txn.Status.IsTerminal() {
		utils.LogDebug("Order %s already terminal (%s), skipping", orderID, txn.Status)
		result.AppliedStatus = txn.Status
		result.WasNoOp = true
		return result, nil
	}

	providerCtx, cancel := context.WithTimeout(ctx, s.ProviderTimeout)
	defer cancel()

	order, err := s.Gateway.GetOrder(providerCtx, orderID)
	if err != nil {
		return result, fmt.Errorf("%w: order %s: %v", ErrProviderUnavailable, orderID, err)
	}

	mapped := cashfree.MapOrderStatus(order.OrderStatus)
	rawPayload := encodeRawPayload(order)
	cfPaymentID := s.lookupPaymentID(providerCtx, orderID, mapped)

	if !mapped.IsTerminal() {
		// Still pending at the provider; refresh the audit snapshot only.
		if err := s.Store.SavePendingSnapshot(ctx, orderID, cfPaymentID, rawPayload); err != nil {
			return result, err
		}
		result.AppliedStatus = models.TransactionStatusPending
		result.WasNoOp = true
		return result, nil
	}

	var weight float64
	err = s.Store.WithinTransaction(ctx, func(store Store) error {
		applied, err := store.UpdateTransactionStatus(ctx, orderID, mapped, models.TransactionStatusPending, cfPaymentID, rawPayload)
		if err != nil {
			return err
		}
		if !applied {
			// A concurrent reconciliation won the race; nothing to credit.
			result.WasNoOp = true
			return nil
		}
		if mapped == models.TransactionStatusSuccess {
			weight, err = s.Accumulator.Accumulate(ctx, store, txn.UserID, txn.MetalType, txn.Amount)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return result, err
	}

	result.AppliedStatus = mapped
	if result.WasNoOp {
		utils.LogInfo("Order %s: terminal transition already applied by a concurrent reconciliation", orderID)
		return result, nil
	}

	result.WeightCredited = weight
	utils.LogInfo("Order %s reconciled: %s -> %s (provider status %q)", orderID, txn.Status, mapped, order.OrderStatus)

	if mapped == models.TransactionStatusSuccess && s.Notifier != nil {
		applied := *txn
		applied.Status = mapped
		applied.CFPaymentID = cfPaymentID
		go s.Notifier.NotifySuccess(applied, weight)
	}
	return result, nil
}

// lookupPaymentID asks the provider which payment settled the order. Best
// effort: reconciliation proceeds without it.
func (s *ReconciliationService) lookupPaymentID(ctx context.Context, orderID string, mapped models.TransactionStatus) string {
	if !mapped.IsTerminal() {
		return ""
	}
	payments, err := s.Gateway.GetPayments(ctx, orderID)
	if err != nil {
		utils.LogDebug("Payment lookup failed for order %s: %v", orderID, err)
		return ""
	}
	for _, p := range payments {
		if cashfree.MapOrderStatus(p.PaymentStatus) == models.TransactionStatusSuccess {
			return p.CFPaymentID.String()
		}
	}
	if len(payments) > 0 {
		return payments[len(payments)-1].CFPaymentID.String()
	}
	return ""
}

func encodeRawPayload(order *cashfree.Order) string {
	if order.Raw != nil {
		if data, err := json.Marshal(order.Raw); err == nil {
			return string(data)
		}
	}
	data, err := json.Marshal(order)
	if err != nil {
		return ""
	}
	return string(data)
}
