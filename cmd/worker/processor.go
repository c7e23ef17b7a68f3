package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"

	"github.com/imrishuroy/storefront-checkout/internal/attempts"
	"github.com/imrishuroy/storefront-checkout/internal/ledger"
	"github.com/imrishuroy/storefront-checkout/internal/logger"
)

const metricFulfilled = "CheckoutFulfilled"

// errRetry marks messages that should be redelivered.
var errRetry = errors.New("attempt not ready for fulfilment")

// Processor fulfils succeeded checkout attempts announced on the queue.
type Processor struct {
	attempts *attempts.Store
	metrics  ledger.MetricRecorder
	log      *logger.Logger
}

func NewProcessor(store *attempts.Store, metrics ledger.MetricRecorder, log *logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{attempts: store, metrics: metrics, log: log}
}

// Handle processes an SQS batch and reports the messages that failed so only
// those are redelivered.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	var resp events.SQSEventResponse
	for _, rec := range ev.Records {
		if err := p.processMessage(ctx, rec); err != nil {
			p.log.Error(p.log.WithField(ctx, "message_id", rec.MessageId), "worker error", err)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: rec.MessageId})
		}
	}
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg ledger.CheckoutEvent
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	ctx = p.log.WithFields(p.log.WithAttemptID(ctx, msg.AttemptID), map[string]any{
		"idempotency_key": msg.IdempotencyKey,
		"correlation_id":  msg.CorrelationID,
	})

	if msg.EventType != ledger.EventCheckoutSucceeded {
		p.log.Debug(p.log.WithField(ctx, "event_type", msg.EventType), "ignoring event")
		return nil
	}
	p.log.Info(ctx, "received checkout event")

	attempt, err := p.attempts.Get(ctx, msg.AttemptID)
	if err != nil {
		return fmt.Errorf("failed to fetch attempt: %w", err)
	}
	if attempt == nil {
		return fmt.Errorf("attempt not found: %s", msg.AttemptID)
	}
	if err := p.attempts.IncrementAttempts(ctx, msg.AttemptID); err != nil {
		p.log.Warn(ctx, "failed to count delivery", err)
	}

	err = p.attempts.UpdateStatus(ctx, msg.AttemptID, attempts.Transition{
		From: attempts.StatusSucceeded,
		To:   attempts.StatusFulfilled,
	})
	if errors.Is(err, attempts.ErrStatusMismatch) {
		current, getErr := p.attempts.Get(ctx, msg.AttemptID)
		if getErr != nil || current == nil {
			return fmt.Errorf("re-read attempt after status mismatch: %w", errors.Join(err, getErr))
		}
		switch current.Status {
		case attempts.StatusFulfilled:
			p.log.Info(ctx, "attempt already fulfilled")
			return nil
		case attempts.StatusProcessing:
			// The API publishes right after recording success; the row may lag.
			return fmt.Errorf("attempt %s still PROCESSING: %w", msg.AttemptID, errRetry)
		case attempts.StatusFailed:
			return fmt.Errorf("attempt %s is FAILED", msg.AttemptID)
		default:
			return fmt.Errorf("unexpected status for attempt %s: %s", msg.AttemptID, current.Status)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to update status to FULFILLED: %w", err)
	}

	if p.metrics != nil {
		dims := map[string]string{"delivery_method": attempt.DeliveryMethod}
		if err := p.metrics.Count(ctx, metricFulfilled, 1, dims); err != nil {
			p.log.Warn(ctx, "metric publish failed", err)
		}
	}
	p.log.Info(ctx, "attempt fulfilled")
	return nil
}
