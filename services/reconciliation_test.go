package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wealth-horizon/BloomVest/cashfree"
	"github.com/wealth-horizon/BloomVest/models"
)

// memStore is an in-memory Store. The conditional update is atomic under
// the mutex, mirroring the row-level guard the real database provides.
type memStore struct {
	mu          sync.Mutex
	txns        map[string]*models.Transaction
	investments map[string]*models.Investment

	upsertCalls int
	failUpdate  error
	failUpsert  error
}

func newMemStore(txns ...models.Transaction) *memStore {
	s := &memStore{
		txns:        make(map[string]*models.Transaction),
		investments: make(map[string]*models.Investment),
	}
	for i := range txns {
		txn := txns[i]
		s.txns[txn.OrderID] = &txn
	}
	return s
}

func invKey(userID uint, metal string) string {
	return fmt.Sprintf("%d|%s", userID, metal)
}

func (s *memStore) CreateTransaction(_ context.Context, txn *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txns[txn.OrderID] = txn
	return nil
}

func (s *memStore) FindTransaction(_ context.Context, orderID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.txns[orderID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
	}
	copied := *txn
	return &copied, nil
}

func (s *memStore) ListPending(_ context.Context, userID uint) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []models.Transaction
	for _, txn := range s.txns {
		if txn.Status == models.TransactionStatusPending && (userID == 0 || txn.UserID == userID) {
			pending = append(pending, *txn)
		}
	}
	return pending, nil
}

func (s *memStore) SavePendingSnapshot(_ context.Context, orderID, cfPaymentID, rawPayload string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.txns[orderID]
	if !ok || txn.Status != models.TransactionStatusPending {
		return nil
	}
	txn.RawPayload = rawPayload
	if cfPaymentID != "" {
		txn.CFPaymentID = cfPaymentID
	}
	return nil
}

func (s *memStore) UpdateTransactionStatus(_ context.Context, orderID string, status, expected models.TransactionStatus, cfPaymentID, rawPayload string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return false, s.failUpdate
	}
	txn, ok := s.txns[orderID]
	if !ok || txn.Status != expected {
		return false, nil
	}
	txn.Status = status
	txn.RawPayload = rawPayload
	if cfPaymentID != "" {
		txn.CFPaymentID = cfPaymentID
	}
	return true, nil
}

func (s *memStore) UpsertInvestment(_ context.Context, userID uint, metalType string, deltaAmount, deltaWeight float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertCalls++
	if s.failUpsert != nil {
		return s.failUpsert
	}
	key := invKey(userID, metalType)
	inv, ok := s.investments[key]
	if !ok {
		s.investments[key] = &models.Investment{
			UserID:        userID,
			MetalType:     metalType,
			TotalAmount:   deltaAmount,
			WeightInGrams: deltaWeight,
		}
		return nil
	}
	inv.TotalAmount += deltaAmount
	inv.WeightInGrams += deltaWeight
	return nil
}

func (s *memStore) WithinTransaction(_ context.Context, fn func(Store) error) error {
	return fn(s)
}

func (s *memStore) transaction(orderID string) models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.txns[orderID]
}

func (s *memStore) investment(userID uint, metal string) (models.Investment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.investments[invKey(userID, metal)]
	if !ok {
		return models.Investment{}, false
	}
	return *inv, true
}

// stubGateway serves canned provider responses
type stubGateway struct {
	orderStatus string
	payments    []cashfree.Payment
	err         error
	onGetOrder  func()
}

func (g *stubGateway) GetOrder(_ context.Context, orderID string) (*cashfree.Order, error) {
	if g.onGetOrder != nil {
		g.onGetOrder()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &cashfree.Order{
		OrderID:     orderID,
		OrderStatus: g.orderStatus,
		Raw:         map[string]interface{}{"order_id": orderID, "order_status": g.orderStatus},
	}, nil
}

func (g *stubGateway) GetPayments(_ context.Context, _ string) ([]cashfree.Payment, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.payments, nil
}

func newTestReconciler(store Store, gateway Gateway) *ReconciliationService {
	prices := StaticPriceFeed{"gold": 5500, "silver": 70}
	return NewReconciliationService(store, gateway, NewInvestmentAccumulator(prices), nil)
}

func pendingTxn(orderID string, userID uint, amount float64, metal string) models.Transaction {
	return models.Transaction{
		OrderID:   orderID,
		UserID:    userID,
		Amount:    amount,
		MetalType: metal,
		Status:    models.TransactionStatusPending,
	}
}

func TestReconcileUnknownOrder(t *testing.T) {
	store := newMemStore()
	svc := newTestReconciler(store, &stubGateway{orderStatus: "PAID"})

	_, err := svc.Reconcile(context.Background(), "order_missing")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestReconcileTerminalIsNoOp(t *testing.T) {
	txn := pendingTxn("ord_done", 1, 1000, models.MetalTypeGold)
	txn.Status = models.TransactionStatusSuccess
	store := newMemStore(txn)
	gateway := &stubGateway{orderStatus: "PAID"}
	svc := newTestReconciler(store, gateway)

	result, err := svc.Reconcile(context.Background(), "ord_done")
	require.NoError(t, err)
	assert.True(t, result.WasNoOp)
	assert.Equal(t, models.TransactionStatusSuccess, result.AppliedStatus)
	assert.Equal(t, 0, store.upsertCalls, "terminal transaction must not touch the ledger")
}

func TestReconcileActiveStaysPending(t *testing.T) {
	store := newMemStore(pendingTxn("ord_active", 1, 1000, models.MetalTypeGold))
	svc := newTestReconciler(store, &stubGateway{orderStatus: "ACTIVE"})

	result, err := svc.Reconcile(context.Background(), "ord_active")
	require.NoError(t, err)
	assert.True(t, result.WasNoOp)
	assert.Equal(t, models.TransactionStatusPending, result.AppliedStatus)

	assert.Equal(t, models.TransactionStatusPending, store.transaction("ord_active").Status)
	assert.NotEmpty(t, store.transaction("ord_active").RawPayload, "audit snapshot should still refresh")
	_, exists := store.investment(1, models.MetalTypeGold)
	assert.False(t, exists, "pending order must not create a ledger entry")
}

func TestReconcileSuccessCreditsLedger(t *testing.T) {
	store := newMemStore(pendingTxn("ord_1", 42, 5000, models.MetalTypeGold))
	gateway := &stubGateway{
		orderStatus: "PAID",
		payments: []cashfree.Payment{
			{CFPaymentID: "98761234", PaymentStatus: "SUCCESS"},
		},
	}
	svc := newTestReconciler(store, gateway)

	result, err := svc.Reconcile(context.Background(), "ord_1")
	require.NoError(t, err)
	assert.False(t, result.WasNoOp)
	assert.Equal(t, models.TransactionStatusSuccess, result.AppliedStatus)
	assert.InDelta(t, 5000.0/5500.0, result.WeightCredited, 1e-9)

	txn := store.transaction("ord_1")
	assert.Equal(t, models.TransactionStatusSuccess, txn.Status)
	assert.Equal(t, "98761234", txn.CFPaymentID)

	inv, exists := store.investment(42, models.MetalTypeGold)
	require.True(t, exists)
	assert.InDelta(t, 5000.0, inv.TotalAmount, 1e-9)
	assert.InDelta(t, 5000.0/5500.0, inv.WeightInGrams, 1e-9)
}

func TestReconcileFailureDoesNotCredit(t *testing.T) {
	store := newMemStore(pendingTxn("ord_fail", 7, 900, models.MetalTypeSilver))
	svc := newTestReconciler(store, &stubGateway{orderStatus: "EXPIRED"})

	result, err := svc.Reconcile(context.Background(), "ord_fail")
	require.NoError(t, err)
	assert.False(t, result.WasNoOp)
	assert.Equal(t, models.TransactionStatusFailed, result.AppliedStatus)
	assert.Equal(t, 0, store.upsertCalls)
}

func TestReconcileDuplicateWebhookCreditsOnce(t *testing.T) {
	store := newMemStore(pendingTxn("ord_2", 9, 2000, models.MetalTypeSilver))
	svc := newTestReconciler(store, &stubGateway{orderStatus: "PAID"})

	first, err := svc.Reconcile(context.Background(), "ord_2")
	require.NoError(t, err)
	assert.False(t, first.WasNoOp)

	second, err := svc.Reconcile(context.Background(), "ord_2")
	require.NoError(t, err)
	assert.True(t, second.WasNoOp)

	inv, exists := store.investment(9, models.MetalTypeSilver)
	require.True(t, exists)
	assert.InDelta(t, 2000.0, inv.TotalAmount, 1e-9, "amount must be credited exactly once")
	assert.Equal(t, 1, store.upsertCalls)
}

func TestReconcileConcurrentCallersCreditOnce(t *testing.T) {
	store := newMemStore(pendingTxn("ord_race", 3, 1100, models.MetalTypeGold))

	// Hold both reconcilers at the provider call until each has passed the
	// initial "not yet terminal" read, then release them into the
	// conditional update together.
	gate := make(chan struct{})
	var arrived sync.WaitGroup
	arrived.Add(2)
	gateway := &stubGateway{orderStatus: "PAID"}
	gateway.onGetOrder = func() {
		arrived.Done()
		<-gate
	}
	svc := newTestReconciler(store, gateway)

	results := make(chan ReconciliationResult, 2)
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			result, err := svc.Reconcile(context.Background(), "ord_race")
			results <- result
			errs <- err
		}()
	}

	arrived.Wait()
	close(gate)

	var applied int
	for i := 0; i < 2; i++ {
		require.NoError(t, <-errs)
		if result := <-results; !result.WasNoOp {
			applied++
		}
	}

	assert.Equal(t, 1, applied, "exactly one caller must apply the transition")
	assert.Equal(t, 1, store.upsertCalls, "ledger must be credited exactly once")
	inv, _ := store.investment(3, models.MetalTypeGold)
	assert.InDelta(t, 1100.0, inv.TotalAmount, 1e-9)
}

func TestReconcileProviderUnavailable(t *testing.T) {
	store := newMemStore(pendingTxn("ord_down", 5, 300, models.MetalTypeGold))
	svc := newTestReconciler(store, &stubGateway{err: cashfree.ErrUnavailable})

	_, err := svc.Reconcile(context.Background(), "ord_down")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, models.TransactionStatusPending, store.transaction("ord_down").Status)
}

func TestReconcilePersistenceErrorSurfaces(t *testing.T) {
	store := newMemStore(pendingTxn("ord_db", 5, 300, models.MetalTypeGold))
	store.failUpdate = fmt.Errorf("%w: connection reset", ErrPersistence)
	svc := newTestReconciler(store, &stubGateway{orderStatus: "PAID"})

	_, err := svc.Reconcile(context.Background(), "ord_db")
	assert.ErrorIs(t, err, ErrPersistence)
}

func TestReconcileUnrecognizedStatusStaysPending(t *testing.T) {
	store := newMemStore(pendingTxn("ord_odd", 5, 300, models.MetalTypeGold))
	svc := newTestReconciler(store, &stubGateway{orderStatus: "SOMETHING_NEW"})

	result, err := svc.Reconcile(context.Background(), "ord_odd")
	require.NoError(t, err)
	assert.True(t, result.WasNoOp)
	assert.Equal(t, models.TransactionStatusPending, store.transaction("ord_odd").Status)
}

func TestAccumulatorWeightComputation(t *testing.T) {
	store := newMemStore()
	accumulator := NewInvestmentAccumulator(StaticPriceFeed{"gold": 5500})

	weight, err := accumulator.Accumulate(context.Background(), store, 1, "gold", 5000)
	require.NoError(t, err)
	assert.InDelta(t, 0.9090909, weight, 1e-6)

	weight, err = accumulator.Accumulate(context.Background(), store, 1, "gold", 5500)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, weight, 1e-9)

	inv, exists := store.investment(1, "gold")
	require.True(t, exists)
	assert.InDelta(t, 10500.0, inv.TotalAmount, 1e-9)
}

func TestAccumulatorUnknownMetal(t *testing.T) {
	store := newMemStore()
	accumulator := NewInvestmentAccumulator(StaticPriceFeed{"gold": 5500})

	_, err := accumulator.Accumulate(context.Background(), store, 1, "platinum", 5000)
	assert.Error(t, err)
	assert.Equal(t, 0, store.upsertCalls)
}

func TestStatusTerminality(t *testing.T) {
	assert.True(t, models.TransactionStatusSuccess.IsTerminal())
	assert.True(t, models.TransactionStatusFailed.IsTerminal())
	assert.False(t, models.TransactionStatusPending.IsTerminal())
}

var errBoom = errors.New("boom")
