package checkout

import (
	"strings"
	"time"

	"github.com/angelmondragon/gearmart-backend/pkg/db/models"
	"github.com/angelmondragon/gearmart-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the immutable receipt produced by a completed checkout. Items is a
// frozen copy of the cart lines at the moment the snapshot was taken; nothing
// mutates an Order after it is built.
type Order struct {
	TransactionID    string                `json:"transaction_id"`
	Items            []models.CartLineItem `json:"items"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	DiscountAmount   decimal.Decimal       `json:"discount_amount"`
	FinalTotal       decimal.Decimal       `json:"final_total"`
	Timestamp        string                `json:"timestamp"`
	CustomerName     string                `json:"customer_name"`
	ShippingAddress  string                `json:"shipping_address"`
	PaymentMethod    enums.PaymentMethod   `json:"payment_method"`
	DiscountEligible bool                  `json:"discount_eligible"`
}

const timestampLayout = "02/01/2006 15:04"

func newTransactionID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRX-" + strings.ToUpper(raw[:8])
}

func formatTimestamp(at time.Time) string {
	return at.Format(timestampLayout)
}
