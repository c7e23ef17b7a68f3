package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/storefront-checkout/internal/attempts"
	"github.com/imrishuroy/storefront-checkout/internal/aws"
	"github.com/imrishuroy/storefront-checkout/internal/aws/awstest"
	"github.com/imrishuroy/storefront-checkout/internal/cart"
	"github.com/imrishuroy/storefront-checkout/internal/checkout"
	"github.com/imrishuroy/storefront-checkout/internal/idempotency"
	"github.com/imrishuroy/storefront-checkout/internal/payment"
)

type fixture struct {
	recorder *Recorder
	dynamo   *awstest.DynamoDB
	sqs      *awstest.SQS
	cw       *awstest.CloudWatch
	attempts *attempts.Store
}

func newFixture() *fixture {
	f := &fixture{dynamo: awstest.NewDynamoDB().WithKey("idempotency", idempotency.KeyAttribute), sqs: &awstest.SQS{}, cw: &awstest.CloudWatch{}}
	f.attempts = attempts.NewStore(f.dynamo, "attempts")
	idemp := idempotency.NewStore(f.dynamo, "idempotency", 48*time.Hour)
	f.recorder = NewRecorder(
		f.attempts,
		idemp,
		aws.NewPublisher(f.sqs, "https://sqs.local/checkout"),
		aws.NewMetrics(f.cw, "Storefront/Checkout"),
		nil,
	)
	return f
}

func sampleAttempt() checkout.Attempt {
	return checkout.Attempt{
		ID:             "attempt-1",
		IdempotencyKey: "key-1",
		SessionID:      "sess-1",
		UserID:         "user-1",
		Amount:         decimal.RequireFromString("25.5"),
		Items: []cart.LineItem{
			{ID: "l1", Product: &cart.ProductRef{ID: "p1"}, Quantity: 2, UnitPrice: decimal.RequireFromString("12.75")},
		},
		Network:        payment.NetworkVisa,
		DeliveryMethod: payment.DeliveryCourier,
		StartedAt:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBeginCreatesAttemptAndClaimsKey(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	require.NoError(t, f.recorder.Begin(ctx, sampleAttempt()))

	got, err := f.attempts.Get(ctx, "attempt-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attempts.StatusProcessing, got.Status)
	assert.Equal(t, "25.50", got.Amount)
	assert.Equal(t, "p1", got.Items[0].ProductID)
	assert.Equal(t, "visa", got.CardNetwork)

	rec, err := f.recorder.Lookup(ctx, "key-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, idempotency.StatusInProgress, rec.Status)
	assert.Equal(t, "attempt-1", rec.AttemptID)

	assert.Equal(t, []string{MetricStarted}, f.cw.MetricNames())
}

func TestBeginDuplicateKey(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	require.NoError(t, f.recorder.Begin(ctx, sampleAttempt()))

	again := sampleAttempt()
	again.ID = "attempt-2"
	err := f.recorder.Begin(ctx, again)
	require.ErrorIs(t, err, checkout.ErrDuplicateSubmission)

	got, _ := f.attempts.Get(ctx, "attempt-2")
	assert.Nil(t, got)
	assert.Contains(t, f.cw.MetricNames(), MetricDuplicate)
}

func TestCompleteSuccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := sampleAttempt()
	require.NoError(t, f.recorder.Begin(ctx, a))

	require.NoError(t, f.recorder.Complete(ctx, a, checkout.Outcome{Succeeded: true, Reference: "PAY-1"}))

	got, _ := f.attempts.Get(ctx, "attempt-1")
	assert.Equal(t, attempts.StatusSucceeded, got.Status)
	assert.Equal(t, "PAY-1", got.Reference)

	rec, _ := f.recorder.Lookup(ctx, "key-1")
	assert.Equal(t, idempotency.StatusDone, rec.Status)
	var replay Response
	require.NoError(t, json.Unmarshal([]byte(rec.ResponseBody), &replay))
	assert.Equal(t, "PAY-1", replay.Reference)

	require.Len(t, f.sqs.Messages, 1)
	var ev CheckoutEvent
	require.NoError(t, json.Unmarshal([]byte(*f.sqs.Messages[0].MessageBody), &ev))
	assert.Equal(t, EventCheckoutSucceeded, ev.EventType)
	assert.Equal(t, "attempt-1", ev.AttemptID)
	assert.NotEmpty(t, ev.CorrelationID)

	assert.Equal(t, []string{MetricStarted, MetricSucceeded}, f.cw.MetricNames())
}

func TestCompleteFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := sampleAttempt()
	require.NoError(t, f.recorder.Begin(ctx, a))

	require.NoError(t, f.recorder.Complete(ctx, a, checkout.Outcome{FailureReason: "card declined"}))

	got, _ := f.attempts.Get(ctx, "attempt-1")
	assert.Equal(t, attempts.StatusFailed, got.Status)
	assert.Equal(t, "card declined", got.FailureReason)

	rec, _ := f.recorder.Lookup(ctx, "key-1")
	assert.Equal(t, idempotency.StatusFailed, rec.Status)
	assert.Empty(t, f.sqs.Messages)
}

func TestCompleteJoinsErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := sampleAttempt()
	require.NoError(t, f.recorder.Begin(ctx, a))

	f.sqs.Err = errors.New("queue unavailable")
	err := f.recorder.Complete(ctx, a, checkout.Outcome{Succeeded: true, Reference: "PAY-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue unavailable")

	got, _ := f.attempts.Get(ctx, "attempt-1")
	assert.Equal(t, attempts.StatusSucceeded, got.Status, "status is updated even when publishing fails")
}

func TestRecorderDrivesOrchestrator(t *testing.T) {
	f := newFixture()
	o := checkout.New(checkout.Options{
		Processor: checkout.SimulatedProcessor{},
		Validator: payment.NewValidator(func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }),
		Recorder:  f.recorder,
		SessionID: "sess-1",
		NewID:     func() string { return "attempt-9" },
		AfterFunc: func(time.Duration, func()) {},
	})
	for name, value := range map[string]string{
		"cardName":             "Ion Popescu",
		"cardNumber":           "5555555555554444",
		"expiryDate":           "08/29",
		"cvv":                  "321",
		"courier.street":       "bd. Dacia 5",
		"courier.city":         "Chișinău",
		"courier.postalCode":   "MD-2038",
		"courier.contactPhone": "079 123 4567",
	} {
		require.NoError(t, o.SetField(name, value))
	}

	_, err := o.Submit(context.Background(), "key-9")
	require.NoError(t, err)

	got, _ := f.attempts.Get(context.Background(), "attempt-9")
	require.NotNil(t, got)
	assert.Equal(t, attempts.StatusSucceeded, got.Status)
	assert.Equal(t, "mastercard", got.CardNetwork)
}
