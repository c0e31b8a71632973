package domain

import "time"

// Event kinds stored in the events table.
const (
	EventKindUsage   = "usage"
	EventKindPayment = "payment"
)

// Event is one row of a user's append-only usage or payment history.
//
// Usage events record a debit (minutes consumed, and for what). Payment
// events record a credit; their EventID is the external payment id, which is
// what makes replayed payment notifications detectable.
type Event struct {
	EventID   string    `json:"id" dynamodbav:"event_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Kind      string    `json:"kind" dynamodbav:"kind"`
	Minutes   float64   `json:"minutes" dynamodbav:"minutes"`
	Reason    string    `json:"reason,omitempty" dynamodbav:"reason"`
	PaymentID string    `json:"payment_id,omitempty" dynamodbav:"payment_id"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
