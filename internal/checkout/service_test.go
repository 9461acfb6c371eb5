package checkout

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/angelmondragon/gearmart-backend/internal/cart"
	"github.com/angelmondragon/gearmart-backend/internal/events"
	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	"github.com/angelmondragon/gearmart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestExecuteHappyPathTotals(t *testing.T) {
	t.Parallel()

	store := newStubStore(
		lineItem(1, "Mouse Gamer", 25000, 2),
		lineItem(2, "Teclado Mecánico", 45000, 1),
	)
	channel := events.NewChannel(16)
	svc, err := NewService(store, NewSimulatedProcessor(0), channel, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := channel.Subscribe(ctx)

	order, err := svc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, order)

	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(95000)), "subtotal %s", order.Subtotal)
	assert.True(t, order.DiscountAmount.Equal(decimal.NewFromInt(9500)), "discount %s", order.DiscountAmount)
	assert.True(t, order.FinalTotal.Equal(decimal.NewFromInt(85500)), "final %s", order.FinalTotal)
	assert.Len(t, order.Items, 2)
	assert.True(t, strings.HasPrefix(order.TransactionID, "TRX-"))
	assert.Len(t, order.TransactionID, len("TRX-")+8)
	assert.True(t, store.wasCleared())
	assert.Equal(t, StateIdle, svc.State())

	event := waitForEvent(t, sub)
	assert.Equal(t, enums.EventKindCheckoutCompleted, event.Kind)
	assert.Equal(t, order.TransactionID, event.TransactionID)

	last := svc.LastOrder()
	require.NotNil(t, last)
	assert.Equal(t, order.TransactionID, last.TransactionID)
}

func TestExecuteExclusivity(t *testing.T) {
	t.Parallel()

	store := newStubStore(lineItem(1, "Mouse Gamer", 25000, 1))
	channel := events.NewChannel(16)
	processor := newGatedProcessor()
	svc, err := NewService(store, processor, channel, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := channel.Subscribe(ctx)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Execute(context.Background(), validRequest())
		results <- err
	}()

	processor.waitUntilCalled(t)
	_, err = svc.Execute(context.Background(), validRequest())
	results <- err

	close(processor.release)
	wg.Wait()

	var rejections, completions int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			require.ErrorIs(t, err, ErrCheckoutInProgress)
			rejections++
		} else {
			completions++
		}
	}
	assert.Equal(t, 1, completions, "exactly one checkout must complete")
	assert.Equal(t, 1, rejections, "the overlapping call must be rejected")

	event := waitForEvent(t, sub)
	assert.Equal(t, enums.EventKindCheckoutCompleted, event.Kind)
	select {
	case extra := <-sub:
		t.Fatalf("expected exactly one completion event, got extra %+v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestExecuteValidationRejectedBeforeProcessing(t *testing.T) {
	t.Parallel()

	store := newStubStore(lineItem(1, "Mouse Gamer", 25000, 1))
	channel := events.NewChannel(16)
	svc, err := NewService(store, NewSimulatedProcessor(0), channel, nil, nil)
	require.NoError(t, err)

	cases := []struct {
		name string
		req  Request
	}{
		{"blank customer", Request{ShippingAddress: "Calle 1", PaymentMethod: enums.PaymentMethodDebit}},
		{"blank address", Request{CustomerName: "Ana", PaymentMethod: enums.PaymentMethodDebit}},
		{"bad method", Request{CustomerName: "Ana", ShippingAddress: "Calle 1", PaymentMethod: enums.PaymentMethod("cash")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Execute(context.Background(), tc.req)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			assert.Equal(t, StateIdle, svc.State())
			assert.False(t, store.wasCleared())
		})
	}
}

func TestExecuteEmptyCartRejected(t *testing.T) {
	t.Parallel()

	store := newStubStore()
	channel := events.NewChannel(16)
	svc, err := NewService(store, NewSimulatedProcessor(0), channel, nil, nil)
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), validRequest())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Nil(t, svc.LastOrder())
}

func TestExecuteClearFailureLeavesCartAndNoOrder(t *testing.T) {
	t.Parallel()

	store := newStubStore(lineItem(1, "Mouse Gamer", 25000, 1))
	store.clearErr = pkgerrors.Wrap(pkgerrors.CodeDependency, gorm.ErrInvalidTransaction, "clear cart")
	channel := events.NewChannel(16)
	svc, err := NewService(store, NewSimulatedProcessor(0), channel, nil, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := channel.Subscribe(ctx)

	_, err = svc.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.Nil(t, svc.LastOrder())
	assert.Equal(t, StateIdle, svc.State())
	assert.False(t, store.wasCleared())

	select {
	case event := <-sub:
		t.Fatalf("expected no completion event, got %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestExecuteSnapshotFailureReturnsToIdle(t *testing.T) {
	t.Parallel()

	store := newStubStore(lineItem(1, "Mouse Gamer", 25000, 1))
	store.snapshotErr = pkgerrors.Wrap(pkgerrors.CodeDependency, gorm.ErrInvalidDB, "read cart")
	channel := events.NewChannel(16)
	svc, err := NewService(store, NewSimulatedProcessor(0), channel, nil, nil)
	require.NoError(t, err)

	_, err = svc.Execute(context.Background(), validRequest())
	require.Error(t, err)
	assert.Equal(t, StateIdle, svc.State())

	store.snapshotErr = nil
	order, err := svc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.NotNil(t, order)
}

func TestExecuteRunsToCompletionAfterPaymentCommit(t *testing.T) {
	t.Parallel()

	store := newStubStore(lineItem(1, "Mouse Gamer", 25000, 1))
	channel := events.NewChannel(16)

	callerCtx, abandon := context.WithCancel(context.Background())
	defer abandon()
	processor := &abandoningProcessor{abandon: abandon}

	svc, err := NewService(store, processor, channel, nil, nil)
	require.NoError(t, err)

	subCtx, subCancel := context.WithCancel(context.Background())
	defer subCancel()
	sub := channel.Subscribe(subCtx)

	order, err := svc.Execute(callerCtx, validRequest())
	require.NoError(t, err, "transition must run to completion once payment committed")
	require.NotNil(t, order)
	assert.True(t, store.wasCleared(), "cart must be cleared despite caller disconnect")
	require.NotNil(t, svc.LastOrder())
	assert.Equal(t, StateIdle, svc.State())

	event := waitForEvent(t, sub)
	assert.Equal(t, enums.EventKindCheckoutCompleted, event.Kind)
	assert.Equal(t, order.TransactionID, event.TransactionID)
}

func TestLastOrderOverwrittenByNextCheckout(t *testing.T) {
	t.Parallel()

	store := newStubStore(lineItem(1, "Mouse Gamer", 25000, 1))
	channel := events.NewChannel(16)
	svc, err := NewService(store, NewSimulatedProcessor(0), channel, nil, nil)
	require.NoError(t, err)

	first, err := svc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	store.reset(lineItem(2, "Teclado Mecánico", 45000, 1))
	second, err := svc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	last := svc.LastOrder()
	require.NotNil(t, last)
	assert.Equal(t, second.TransactionID, last.TransactionID)
	assert.NotEqual(t, first.TransactionID, last.TransactionID)
}

// Exercises the whole pipeline on a real store: after checkout completes, an
// attached observer sees an empty cart snapshot.
func TestCheckoutEmptiesObservedCart(t *testing.T) {
	t.Parallel()

	conn, err := gorm.Open(sqlite.Open("file:TestCheckoutEmptiesObservedCart?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CartLineItem{}))

	channel := events.NewChannel(16)
	store, err := cart.NewStore(cart.NewRepository(conn), gormTxRunner{db: conn}, channel)
	require.NoError(t, err)

	product := &models.Product{ID: 1, Name: "Mouse Gamer", UnitPrice: decimal.NewFromInt(25000), AvailableStock: 10}
	require.NoError(t, store.AddProduct(context.Background(), product, 2))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub, err := store.Observe(ctx)
	require.NoError(t, err)

	first := waitForCartSnapshot(t, sub)
	require.False(t, first.IsEmpty)

	svc, err := NewService(store, NewSimulatedProcessor(0), channel, nil, nil)
	require.NoError(t, err)

	order, err := svc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	require.Len(t, order.Items, 1)

	deadline := time.After(time.Second)
	for {
		select {
		case snapshot := <-sub:
			if snapshot.IsEmpty {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for empty cart snapshot after checkout")
		}
	}
}

func waitForCartSnapshot(t *testing.T, sub <-chan cart.Cart) cart.Cart {
	t.Helper()
	select {
	case snapshot := <-sub:
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cart snapshot")
		return cart.Cart{}
	}
}

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func validRequest() Request {
	return Request{
		CustomerName:     "Ana García",
		ShippingAddress:  "Calle 10 #20-30, Medellín",
		PaymentMethod:    enums.PaymentMethodCredit,
		DiscountEligible: true,
	}
}

func lineItem(productID int64, name string, price int64, quantity int) models.CartLineItem {
	return models.CartLineItem{
		ID:        productID,
		ProductID: productID,
		Name:      name,
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  quantity,
	}
}

func waitForEvent(t *testing.T, sub <-chan events.Event) events.Event {
	t.Helper()
	select {
	case event := <-sub:
		return event
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

type stubStore struct {
	mu          sync.Mutex
	items       []models.CartLineItem
	snapshotErr error
	clearErr    error
	cleared     bool
}

func newStubStore(items ...models.CartLineItem) *stubStore {
	return &stubStore{items: items}
}

func (s *stubStore) Snapshot(ctx context.Context) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshotErr != nil {
		return cart.Cart{}, s.snapshotErr
	}
	return cart.NewCart(append([]models.CartLineItem(nil), s.items...)), nil
}

func (s *stubStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clearErr != nil {
		return s.clearErr
	}
	s.items = nil
	s.cleared = true
	return nil
}

func (s *stubStore) wasCleared() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

func (s *stubStore) reset(items ...models.CartLineItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.cleared = false
}

// abandoningProcessor approves the charge, then cancels the caller context
// to mimic an HTTP client disconnecting right after the commit.
type abandoningProcessor struct {
	abandon context.CancelFunc
}

func (p *abandoningProcessor) Process(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	p.abandon()
	return PaymentResult{Approved: true, Reference: req.TransactionID}, nil
}

type gatedProcessor struct {
	release  chan struct{}
	called   sync.Once
	calledCh chan struct{}
}

func newGatedProcessor() *gatedProcessor {
	return &gatedProcessor{
		release:  make(chan struct{}),
		calledCh: make(chan struct{}),
	}
}

func (p *gatedProcessor) Process(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	p.called.Do(func() { close(p.calledCh) })
	select {
	case <-ctx.Done():
		return PaymentResult{}, ctx.Err()
	case <-p.release:
	}
	return PaymentResult{Approved: true, Reference: req.TransactionID}, nil
}

func (p *gatedProcessor) waitUntilCalled(t *testing.T) {
	t.Helper()
	select {
	case <-p.calledCh:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for payment call")
	}
}
