package checkout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/gearmart-backend/internal/cart"
	"github.com/angelmondragon/gearmart-backend/internal/events"
	"github.com/angelmondragon/gearmart-backend/internal/pricing"
	"github.com/angelmondragon/gearmart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/gearmart-backend/pkg/errors"
	"github.com/angelmondragon/gearmart-backend/pkg/logger"
	"github.com/angelmondragon/gearmart-backend/pkg/metrics"
)

// State reports where the machine currently sits. There is no Failed state;
// a failed transition returns to Idle.
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
)

const (
	stateIdle int32 = iota
	stateProcessing
)

// ErrCheckoutInProgress is returned when a checkout call arrives while a
// previous one is still processing. It is a defined outcome, not a fault.
var ErrCheckoutInProgress = pkgerrors.New(pkgerrors.CodeStateConflict, "checkout already in progress")

// Request carries the shopper inputs for a checkout attempt.
type Request struct {
	CustomerName     string              `json:"customer_name"`
	ShippingAddress  string              `json:"shipping_address"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	DiscountEligible bool                `json:"discount_eligible"`
}

type cartStore interface {
	Snapshot(ctx context.Context) (cart.Cart, error)
	Clear(ctx context.Context) error
}

// Service drives the one-way Idle to Processing to Idle transition that turns
// the live cart into an immutable Order.
type Service interface {
	Execute(ctx context.Context, req Request) (*Order, error)
	LastOrder() *Order
	State() State
}

type service struct {
	store     cartStore
	processor PaymentProcessor
	channel   *events.Channel
	metrics   *metrics.CheckoutMetrics
	log       *logger.Logger

	state atomic.Int32

	lastMu    sync.RWMutex
	lastOrder *Order

	now func() time.Time
}

// NewService wires the checkout state machine.
func NewService(store cartStore, processor PaymentProcessor, channel *events.Channel, m *metrics.CheckoutMetrics, log *logger.Logger) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if processor == nil {
		return nil, fmt.Errorf("payment processor required")
	}
	if channel == nil {
		return nil, fmt.Errorf("event channel required")
	}
	return &service{
		store:     store,
		processor: processor,
		channel:   channel,
		metrics:   m,
		log:       log,
		now:       time.Now,
	}, nil
}

// Execute runs one checkout attempt. At most one attempt is in flight at a
// time; a second caller gets ErrCheckoutInProgress. Any persistence or payment
// failure aborts the attempt, leaves the cart untouched and returns the
// machine to Idle.
func (s *service) Execute(ctx context.Context, req Request) (*Order, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if !s.state.CompareAndSwap(stateIdle, stateProcessing) {
		s.metrics.IncRejected()
		return nil, ErrCheckoutInProgress
	}
	defer s.state.Store(stateIdle)

	started := s.now()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		s.fail(ctx, started, "snapshot", err)
		return nil, err
	}
	if snapshot.IsEmpty {
		s.fail(ctx, started, "empty_cart", nil)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	subtotal := snapshot.Total
	discount := pricing.Discount(subtotal, req.DiscountEligible)
	finalTotal := pricing.FinalTotal(subtotal, discount)

	transactionID := newTransactionID()
	ctx = s.withTransactionID(ctx, transactionID)

	result, err := s.processor.Process(ctx, PaymentRequest{
		TransactionID: transactionID,
		Amount:        finalTotal,
		Method:        req.PaymentMethod,
	})
	if err != nil {
		s.fail(ctx, started, "payment", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "process payment")
	}
	if !result.Approved {
		s.fail(ctx, started, "payment_declined", nil)
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment declined")
	}

	// The charge is committed. A caller that disconnects now must not be
	// able to abort the remaining steps and strand a paid order.
	ctx = context.WithoutCancel(ctx)

	order := &Order{
		TransactionID:    transactionID,
		Items:            snapshot.Items,
		Subtotal:         subtotal,
		DiscountAmount:   discount,
		FinalTotal:       finalTotal,
		Timestamp:        formatTimestamp(s.now()),
		CustomerName:     req.CustomerName,
		ShippingAddress:  req.ShippingAddress,
		PaymentMethod:    req.PaymentMethod,
		DiscountEligible: req.DiscountEligible,
	}

	// Clear before committing the order: if the store write fails the
	// attempt aborts with the cart intact and no order recorded.
	if err := s.store.Clear(ctx); err != nil {
		s.fail(ctx, started, "clear", err)
		return nil, err
	}

	s.lastMu.Lock()
	s.lastOrder = order
	s.lastMu.Unlock()

	s.metrics.IncSuccess()
	s.metrics.ObserveDuration("success", s.now().Sub(started))
	if s.log != nil {
		s.log.Info(ctx, "checkout completed")
	}

	s.channel.Publish(events.CheckoutCompleted(transactionID))
	return order, nil
}

// LastOrder returns the most recently completed order, or nil if no checkout
// has completed since startup. The next completion overwrites it.
func (s *service) LastOrder() *Order {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	if s.lastOrder == nil {
		return nil
	}
	copied := *s.lastOrder
	return &copied
}

// State reports the current machine state.
func (s *service) State() State {
	if s.state.Load() == stateProcessing {
		return StateProcessing
	}
	return StateIdle
}

func (s *service) fail(ctx context.Context, started time.Time, step string, err error) {
	s.metrics.IncFailure(step)
	s.metrics.ObserveDuration("failure", s.now().Sub(started))
	if s.log != nil && err != nil {
		s.log.Error(ctx, fmt.Sprintf("checkout aborted at %s", step), err)
	}
}

func (s *service) withTransactionID(ctx context.Context, transactionID string) context.Context {
	if s.log == nil {
		return ctx
	}
	return s.log.WithTransactionID(ctx, transactionID)
}

func validateRequest(req Request) error {
	if strings.TrimSpace(req.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(req.ShippingAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	if !req.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unsupported payment method")
	}
	return nil
}
