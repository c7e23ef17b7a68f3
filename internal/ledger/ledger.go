// Package ledger records checkout attempts durably: the attempt and its
// idempotency key in DynamoDB, a queue event for fulfilment and CloudWatch
// counters.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/imrishuroy/storefront-checkout/internal/attempts"
	"github.com/imrishuroy/storefront-checkout/internal/aws"
	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/logger"
)

const (
	EventCheckoutSucceeded = "checkout.succeeded"

	MetricStarted   = "CheckoutStarted"
	MetricDuplicate = "CheckoutDuplicate"
	MetricSucceeded = "CheckoutSucceeded"
	MetricFailed    = "CheckoutFailed"
)

// CheckoutEvent is the queue message consumed by the fulfilment worker.
type CheckoutEvent struct {
	EventType      string `json:"event_type"`
	AttemptID      string `json:"attempt_id"`
	IdempotencyKey string `json:"idempotency_key"`
	SessionID      string `json:"session_id"`
	Reference      string `json:"reference,omitempty"`
	CorrelationID  string `json:"correlation_id"`
}

// Response is what a completed key replays.
type Response struct {
	AttemptID string `json:"attempt_id"`
	Reference string `json:"reference"`
	Status    string `json:"status"`
}

type EventPublisher interface {
	SendCheckoutEvent(ctx context.Context, event any, attributes map[string]string) error
}

type MetricRecorder interface {
	Count(ctx context.Context, name string, value float64, dimensions map[string]string) error
}

type Recorder struct {
	attempts  *attempts.Store
	idemp     *idempotency.Store
	publisher EventPublisher
	metrics   MetricRecorder
	log       *logger.Logger
}

func NewRecorder(attemptStore *attempts.Store, idempStore *idempotency.Store, publisher EventPublisher, metrics MetricRecorder, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{
		attempts:  attemptStore,
		idemp:     idempStore,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
	}
}

var _ checkout.Recorder = (*Recorder)(nil)

// Begin writes the attempt and claims its idempotency key in one
// transaction. A key that is already claimed yields
// checkout.ErrDuplicateSubmission.
func (r *Recorder) Begin(ctx context.Context, a checkout.Attempt) error {
	key := keyOf(a)
	rec := r.idemp.NewRecord(key, a.ID, a.SessionID)

	err := r.attempts.CreateWithIdempotency(ctx, r.idemp.TableName(), rec, toRecord(a, key), r.idemp.TTL())
	if errors.Is(err, attempts.ErrDuplicateKey) {
		r.count(ctx, MetricDuplicate, a)
		return fmt.Errorf("%w: %w", checkout.ErrDuplicateSubmission, err)
	}
	if err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}
	r.count(ctx, MetricStarted, a)
	return nil
}

// Complete moves the attempt out of PROCESSING. Every step runs even when an
// earlier one fails; the errors are joined.
func (r *Recorder) Complete(ctx context.Context, a checkout.Attempt, o checkout.Outcome) error {
	key := keyOf(a)
	var errs []error

	if !o.Succeeded {
		if err := r.attempts.UpdateStatus(ctx, a.ID, attempts.Transition{
			From:          attempts.StatusProcessing,
			To:            attempts.StatusFailed,
			FailureReason: o.FailureReason,
		}); err != nil {
			errs = append(errs, fmt.Errorf("mark attempt failed: %w", err))
		}
		if err := r.idemp.MarkFailed(ctx, key, o.FailureReason); err != nil {
			errs = append(errs, err)
		}
		r.count(ctx, MetricFailed, a)
		return errors.Join(errs...)
	}

	if err := r.attempts.UpdateStatus(ctx, a.ID, attempts.Transition{
		From:      attempts.StatusProcessing,
		To:        attempts.StatusSucceeded,
		Reference: o.Reference,
	}); err != nil {
		errs = append(errs, fmt.Errorf("mark attempt succeeded: %w", err))
	}

	body, _ := json.Marshal(Response{AttemptID: a.ID, Reference: o.Reference, Status: attempts.StatusSucceeded})
	if err := r.idemp.MarkDone(ctx, key, string(body), http.StatusOK); err != nil {
		errs = append(errs, err)
	}

	correlationID := uuid.NewString()
	event := CheckoutEvent{
		EventType:      EventCheckoutSucceeded,
		AttemptID:      a.ID,
		IdempotencyKey: key,
		SessionID:      a.SessionID,
		Reference:      o.Reference,
		CorrelationID:  correlationID,
	}
	attrs := map[string]string{
		"event_type":           EventCheckoutSucceeded,
		"attempt_id":           a.ID,
		aws.AttrGroupID:        a.SessionID,
		aws.AttrDeduplicateKey: key,
		"correlation_id":       correlationID,
	}
	if err := r.publisher.SendCheckoutEvent(ctx, event, attrs); err != nil {
		errs = append(errs, fmt.Errorf("publish checkout event: %w", err))
	}

	r.count(ctx, MetricSucceeded, a)
	return errors.Join(errs...)
}

// Lookup returns the idempotency record for key, or nil.
func (r *Recorder) Lookup(ctx context.Context, key string) (*idempotency.Record, error) {
	return r.idemp.Get(ctx, key)
}

func (r *Recorder) count(ctx context.Context, metric string, a checkout.Attempt) {
	if r.metrics == nil {
		return
	}
	dims := map[string]string{"delivery_method": string(a.DeliveryMethod)}
	if a.Network != "" {
		dims["card_network"] = string(a.Network)
	}
	if err := r.metrics.Count(ctx, metric, 1, dims); err != nil {
		r.log.Warn(ctx, "metric publish failed", err)
	}
}

func keyOf(a checkout.Attempt) string {
	if a.IdempotencyKey != "" {
		return a.IdempotencyKey
	}
	return a.ID
}

func toRecord(a checkout.Attempt, key string) attempts.Attempt {
	items := make([]attempts.Item, 0, len(a.Items))
	for _, it := range a.Items {
		item := attempts.Item{LineID: it.ID, Quantity: it.Quantity, UnitPrice: it.UnitPrice.String()}
		if it.Product != nil {
			item.ProductID = it.Product.ID
		}
		items = append(items, item)
	}
	return attempts.Attempt{
		AttemptID:      a.ID,
		SessionID:      a.SessionID,
		UserID:         a.UserID,
		IdempotencyKey: key,
		Status:         attempts.StatusProcessing,
		Amount:         a.Amount.StringFixed(2),
		Items:          items,
		CardNetwork:    string(a.Network),
		DeliveryMethod: string(a.DeliveryMethod),
		CreatedAt:      a.StartedAt,
	}
}
