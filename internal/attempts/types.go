package attempts

import "time"

// Attempt statuses
const (
	StatusProcessing = "PROCESSING"
	StatusSucceeded  = "SUCCEEDED"
	StatusFailed     = "FAILED"
	StatusFulfilled  = "FULFILLED"
)

// Item is one cart line as recorded with the attempt.
type Item struct {
	LineID    string `dynamodbav:"line_id" json:"line_id"`
	ProductID string `dynamodbav:"product_id" json:"product_id"`
	Quantity  int    `dynamodbav:"quantity" json:"quantity"`
	UnitPrice string `dynamodbav:"unit_price" json:"unit_price"`
}

// Attempt is the item stored in the checkout attempts table. Card data is
// never part of it.
type Attempt struct {
	AttemptID      string    `dynamodbav:"attempt_id"` // PK
	SessionID      string    `dynamodbav:"session_id"`
	UserID         string    `dynamodbav:"user_id,omitempty"`
	IdempotencyKey string    `dynamodbav:"idempotency_key"`
	Status         string    `dynamodbav:"status"` // PROCESSING | SUCCEEDED | FAILED | FULFILLED
	Amount         string    `dynamodbav:"amount"` // decimal string, MDL
	Items          []Item    `dynamodbav:"items,omitempty"`
	CardNetwork    string    `dynamodbav:"card_network,omitempty"`
	DeliveryMethod string    `dynamodbav:"delivery_method"`
	Reference      string    `dynamodbav:"reference,omitempty"`
	FailureReason  string    `dynamodbav:"failure_reason,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	Attempts       int       `dynamodbav:"attempts,omitempty"`
}
