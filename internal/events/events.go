package events

import (
	"github.com/angelmondragon/gearmart-backend/pkg/enums"
)

// Event is a one-shot notification. Events are transient UI signals, not
// durable state: they are never replayed to a consumer that attaches after
// the event fired.
type Event struct {
	Kind          enums.EventKind `json:"kind"`
	Message       string          `json:"message,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
}

// ShowMessage builds a user-facing message event.
func ShowMessage(text string) Event {
	return Event{Kind: enums.EventKindShowMessage, Message: text}
}

// CheckoutCompleted builds the completion signal carrying the transaction id.
func CheckoutCompleted(transactionID string) Event {
	return Event{Kind: enums.EventKindCheckoutCompleted, TransactionID: transactionID}
}
