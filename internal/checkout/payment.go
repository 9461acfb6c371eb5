package checkout

import (
	"context"
	"time"

	"github.com/angelmondragon/gearmart-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// PaymentRequest carries the charge details handed to the processor.
type PaymentRequest struct {
	TransactionID string
	Amount        decimal.Decimal
	Method        enums.PaymentMethod
}

// PaymentResult reports the processor outcome for the charge.
type PaymentResult struct {
	Approved  bool
	Reference string
}

// PaymentProcessor charges the final total for an order. Implementations must
// respect ctx cancellation before the charge is committed.
type PaymentProcessor interface {
	Process(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// SimulatedProcessor approves every charge after a fixed delay. There is no
// decline path; real gateways plug in behind the same interface.
type SimulatedProcessor struct {
	delay time.Duration
}

// NewSimulatedProcessor builds the always-approve processor.
func NewSimulatedProcessor(delay time.Duration) *SimulatedProcessor {
	if delay < 0 {
		delay = 0
	}
	return &SimulatedProcessor{delay: delay}
}

// Process waits out the configured delay and approves the charge.
func (p *SimulatedProcessor) Process(ctx context.Context, req PaymentRequest) (PaymentResult, error) {
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return PaymentResult{}, ctx.Err()
	case <-timer.C:
	}
	return PaymentResult{Approved: true, Reference: req.TransactionID}, nil
}
