package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/logger"
	"github.com/imrishuroy/storefront-checkout/internal/notify"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
)

const (
	DefaultRedirectDelay = 3 * time.Second
	DefaultRedirectPath  = "/"
)

type Options struct {
	Processor PaymentProcessor
	Validator *payment.Validator
	Notifier  notify.Notifier
	Recorder  Recorder
	Logger    *logger.Logger

	// Navigate is called with RedirectPath once RedirectDelay has passed
	// after a successful payment.
	Navigate      func(path string)
	RedirectDelay time.Duration
	RedirectPath  string

	SessionID string
	UserID    string
	Order     cart.Snapshot

	NowFunc   func() time.Time
	AfterFunc func(d time.Duration, f func())
	NewID     func() string
}

// Orchestrator owns one checkout form. All methods are safe for concurrent
// use; subscribers run synchronously after each committed change.
type Orchestrator struct {
	opts Options

	mu      sync.Mutex
	state   State
	form    payment.PaymentForm
	errors  payment.FieldErrors
	failure string
	result  *PaymentResult
	subs    map[int]func(Snapshot)
	nextSub int
}

func New(opts Options) *Orchestrator {
	if opts.Validator == nil {
		opts.Validator = payment.NewValidator(opts.NowFunc)
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.RedirectDelay <= 0 {
		opts.RedirectDelay = DefaultRedirectDelay
	}
	if opts.RedirectPath == "" {
		opts.RedirectPath = DefaultRedirectPath
	}
	if opts.NowFunc == nil {
		opts.NowFunc = time.Now
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Orchestrator{
		opts:  opts,
		state: StateEditing,
		form:  payment.NewForm(),
		subs:  map[int]func(Snapshot){},
	}
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) Subscribe(fn func(Snapshot)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextSub
	o.nextSub++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.subs, id)
	}
}

// SetField updates one form field and clears its error.
func (o *Orchestrator) SetField(name, value string) error {
	field, ok := ParseField(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return o.commit(func() error {
		if err := o.editableLocked(); err != nil {
			return err
		}
		if v := field.variant(); v != "" && v != o.form.Delivery.Method {
			return fmt.Errorf("%w: %s", ErrInactiveVariant, name)
		}
		field.apply(&o.form, value)
		delete(o.errors, string(field))
		return nil
	})
}

// SelectDeliveryMethod switches the delivery variant. Values and errors of
// the deselected variant are discarded.
func (o *Orchestrator) SelectDeliveryMethod(method payment.DeliveryMethod) error {
	if method != payment.DeliveryCourier && method != payment.DeliveryPickup {
		return fmt.Errorf("%w: %s", ErrUnknownDelivery, method)
	}
	return o.commit(func() error {
		if err := o.editableLocked(); err != nil {
			return err
		}
		d := &o.form.Delivery
		if d.Method == method {
			return nil
		}
		previous := d.Method
		d.Method = method
		switch method {
		case payment.DeliveryCourier:
			d.Courier, d.Pickup = payment.NewCourierDetails(), nil
		case payment.DeliveryPickup:
			d.Courier, d.Pickup = nil, payment.NewPickupDetails()
		}
		prefix := string(previous)
		for field := range o.errors {
			if field == prefix || strings.HasPrefix(field, prefix+".") {
				delete(o.errors, field)
			}
		}
		return nil
	})
}

// Submit validates the form and, when valid, runs the payment. A call made
// while another submission is validating or processing returns
// ErrSubmissionInFlight without reaching the processor.
func (o *Orchestrator) Submit(ctx context.Context, idempotencyKey string) (PaymentResult, error) {
	var form payment.PaymentForm
	err := o.commit(func() error {
		switch o.state {
		case StateValidating, StateProcessing:
			return ErrSubmissionInFlight
		case StateSucceeded:
			return ErrCompleted
		}
		o.state = StateValidating
		o.failure = ""
		form = o.form.Clone()
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}

	if fieldErrs := o.opts.Validator.Validate(form); len(fieldErrs) > 0 {
		_ = o.commit(func() error {
			o.state = StateEditing
			o.errors = fieldErrs
			return nil
		})
		return PaymentResult{}, &ValidationError{Fields: fieldErrs}
	}

	attempt := Attempt{
		ID:             o.opts.NewID(),
		IdempotencyKey: idempotencyKey,
		SessionID:      o.opts.SessionID,
		UserID:         o.opts.UserID,
		Amount:         o.opts.Order.Totals.Price,
		Items:          o.opts.Order.Items,
		Network:        form.Network(),
		DeliveryMethod: form.Delivery.Method,
		StartedAt:      o.opts.NowFunc(),
	}
	ctx = o.opts.Logger.WithAttemptID(ctx, attempt.ID)

	_ = o.commit(func() error {
		o.state = StateProcessing
		o.errors = nil
		return nil
	})

	if o.opts.Recorder != nil {
		if err := o.opts.Recorder.Begin(ctx, attempt); err != nil {
			if errors.Is(err, ErrDuplicateSubmission) {
				o.opts.Logger.Warn(ctx, "duplicate checkout submission", err)
				o.backToEditing(ctx, "", notify.Warning("payment.errors.duplicateSubmission"))
				return PaymentResult{}, err
			}
			o.opts.Logger.Error(ctx, "recording checkout attempt failed", err)
			o.fail(ctx, err)
			return PaymentResult{}, fmt.Errorf("record attempt: %w", err)
		}
	}

	result, err := o.opts.Processor.Process(ctx, PaymentRequest{
		AttemptID:      attempt.ID,
		IdempotencyKey: idempotencyKey,
		SessionID:      attempt.SessionID,
		UserID:         attempt.UserID,
		Amount:         attempt.Amount,
		Items:          attempt.Items,
		Form:           form,
		Network:        attempt.Network,
	})

	o.complete(ctx, attempt, result, err)

	if err != nil {
		o.opts.Logger.Error(ctx, "payment failed", err)
		o.fail(ctx, err)
		return PaymentResult{}, err
	}

	_ = o.commit(func() error {
		o.state = StateSucceeded
		o.form = payment.NewForm()
		o.result = &result
		return nil
	})
	o.opts.Logger.Info(ctx, "payment succeeded")
	o.opts.Notifier.Notify(ctx, notify.Success("payment.successMessage"))

	if o.opts.Navigate != nil {
		path := o.opts.RedirectPath
		o.opts.AfterFunc(o.opts.RedirectDelay, func() { o.opts.Navigate(path) })
	}
	return result, nil
}

func (o *Orchestrator) complete(ctx context.Context, a Attempt, result PaymentResult, err error) {
	if o.opts.Recorder == nil {
		return
	}
	outcome := Outcome{Succeeded: err == nil, Reference: result.Reference}
	if err != nil {
		outcome.FailureReason = err.Error()
	}
	if rerr := o.opts.Recorder.Complete(context.WithoutCancel(ctx), a, outcome); rerr != nil {
		o.opts.Logger.Warn(ctx, "recording checkout outcome failed", rerr)
	}
}

// fail passes through Failed so observers see the failure, then returns to
// Editing with the form intact. The recorded failure is a catalog key or the
// backend's own message, never internal error text.
func (o *Orchestrator) fail(ctx context.Context, err error) {
	n := notify.Error("payment.errors.paymentFailed")
	failure := n.Key
	var pm interface{ PublicMessage() string }
	if errors.As(err, &pm) && pm.PublicMessage() != "" {
		n.Message = pm.PublicMessage()
		failure = n.Message
	}
	_ = o.commit(func() error {
		o.state = StateFailed
		o.failure = failure
		return nil
	})
	o.backToEditing(ctx, failure, n)
}

func (o *Orchestrator) backToEditing(ctx context.Context, failure string, n notify.Notification) {
	_ = o.commit(func() error {
		o.state = StateEditing
		o.failure = failure
		return nil
	})
	o.opts.Notifier.Notify(ctx, n)
}

func (o *Orchestrator) editableLocked() error {
	switch o.state {
	case StateValidating, StateProcessing:
		return ErrSubmissionInFlight
	case StateSucceeded:
		return ErrCompleted
	}
	return nil
}

// commit runs fn under the lock and, when it succeeds, publishes the new
// snapshot to subscribers after the lock is released.
func (o *Orchestrator) commit(fn func() error) error {
	o.mu.Lock()
	if err := fn(); err != nil {
		o.mu.Unlock()
		return err
	}
	snap := o.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(o.subs))
	for _, s := range o.subs {
		subs = append(subs, s)
	}
	o.mu.Unlock()

	for _, s := range subs {
		s(snap)
	}
	return nil
}

func (o *Orchestrator) snapshotLocked() Snapshot {
	snap := Snapshot{
		State:   o.state,
		Form:    o.form.Clone(),
		Network: o.form.Network(),
		Order:   o.opts.Order,
		Failure: o.failure,
	}
	if len(o.errors) > 0 {
		snap.Errors = make(payment.FieldErrors, len(o.errors))
		for k, v := range o.errors {
			snap.Errors[k] = v
		}
	}
	if o.result != nil {
		r := *o.result
		snap.Result = &r
	}
	return snap
}
