// Package checkout drives the payment form from editing to a completed or
// failed payment.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
)

var (
	ErrSubmissionInFlight  = errors.New("submission already in flight")
	ErrDuplicateSubmission = errors.New("duplicate submission")
	ErrCompleted           = errors.New("checkout already completed")
	ErrInactiveVariant     = errors.New("field belongs to the inactive delivery method")
	ErrUnknownField        = errors.New("unknown field")
	ErrUnknownDelivery     = errors.New("unknown delivery method")
)

type State string

const (
	StateEditing    State = "editing"
	StateValidating State = "validating"
	StateProcessing State = "processing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// ValidationError carries the message key of every invalid field.
type ValidationError struct {
	Fields payment.FieldErrors
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout: %d invalid field(s)", len(e.Fields))
}

type PaymentRequest struct {
	AttemptID      string
	IdempotencyKey string
	SessionID      string
	UserID         string
	Amount         decimal.Decimal
	Items          []cart.LineItem
	Form           payment.PaymentForm
	Network        payment.Network
}

type PaymentResult struct {
	Reference string `json:"reference"`
	Message   string `json:"message,omitempty"`
}

// PaymentProcessor charges the card. Implementations must treat the
// idempotency key as the identity of the charge.
type PaymentProcessor interface {
	Process(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

// Attempt is what gets recorded about a submission. It never holds card data.
type Attempt struct {
	ID             string
	IdempotencyKey string
	SessionID      string
	UserID         string
	Amount         decimal.Decimal
	Items          []cart.LineItem
	Network        payment.Network
	DeliveryMethod payment.DeliveryMethod
	StartedAt      time.Time
}

type Outcome struct {
	Succeeded     bool
	Reference     string
	FailureReason string
}

// Recorder keeps a durable record of submissions. Begin must return an error
// wrapping ErrDuplicateSubmission when the key was already used.
type Recorder interface {
	Begin(ctx context.Context, a Attempt) error
	Complete(ctx context.Context, a Attempt, o Outcome) error
}

// Snapshot is the observable state of the orchestrator.
type Snapshot struct {
	State   State               `json:"state"`
	Form    payment.PaymentForm `json:"form"`
	Errors  payment.FieldErrors `json:"errors,omitempty"`
	Network payment.Network     `json:"network,omitempty"`
	Order   cart.Snapshot       `json:"order"`
	Failure string              `json:"failure,omitempty"`
	Result  *PaymentResult      `json:"result,omitempty"`
}
