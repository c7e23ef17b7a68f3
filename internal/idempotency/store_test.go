package idempotency

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/storefront-checkout/internal/aws/awstest"
)

const table = "idempotency-table"

func newTestStore() (*Store, *awstest.DynamoDB, time.Time) {
	mock := awstest.NewDynamoDB().WithKey(table, KeyAttribute)
	s := NewStore(mock, table, 48*time.Hour)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s.nowFunc = func() time.Time { return now }
	return s, mock, now
}

// claim writes an IN_PROGRESS record the way the attempt transaction does.
func claim(t *testing.T, s *Store, mock *awstest.DynamoDB, key, attemptID, sessionID string) {
	t.Helper()
	item, err := attributevalue.MarshalMap(s.NewRecord(key, attemptID, sessionID))
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}
	mock.Seed(table, item)
}

func TestNewRecord_InProgressWithTTL(t *testing.T) {
	s, mock, now := newTestStore()
	claim(t, s, mock, "k1", "attempt-123", "sess-1")

	rec, err := s.Get(context.Background(), "k1")
	if err != nil || rec == nil {
		t.Fatalf("Get: rec=%v err=%v", rec, err)
	}
	if rec.Status != StatusInProgress || rec.AttemptID != "attempt-123" || rec.SessionID != "sess-1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.ExpiresAt != now.Add(48*time.Hour).Unix() {
		t.Fatalf("unexpected expires_at %d", rec.ExpiresAt)
	}
	if _, _, ok := rec.Response(); ok {
		t.Fatalf("IN_PROGRESS record must not be replayable")
	}
}

func TestMarkDone_StoresReplay(t *testing.T) {
	s, mock, _ := newTestStore()
	ctx := context.Background()
	claim(t, s, mock, "k1", "a1", "s1")

	if err := s.MarkDone(ctx, "k1", `{"reference":"PAY-1"}`, http.StatusCreated); err != nil {
		t.Fatalf("MarkDone: %v", err)
	}
	rec, _ := s.Get(ctx, "k1")
	status, body, ok := rec.Response()
	if !ok || status != http.StatusCreated || body != `{"reference":"PAY-1"}` {
		t.Fatalf("unexpected replay status=%d body=%q ok=%v", status, body, ok)
	}

	err := s.MarkFailed(ctx, "k1", "late failure")
	if !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress after DONE, got %v", err)
	}
}

func TestMarkFailed_KeepsKeyClaimed(t *testing.T) {
	s, mock, _ := newTestStore()
	ctx := context.Background()
	claim(t, s, mock, "k1", "a1", "s1")

	if err := s.MarkFailed(ctx, "k1", "declined"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}
	item := mock.Item(table, "k1")
	if st := item["status"].(*types.AttributeValueMemberS).Value; st != StatusFailed {
		t.Fatalf("expected FAILED, got %s", st)
	}
	if note := item["note"].(*types.AttributeValueMemberS).Value; note != "declined" {
		t.Fatalf("expected note, got %s", note)
	}

	if err := s.MarkDone(ctx, "k1", "{}", http.StatusOK); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("failed key must stay failed, got %v", err)
	}
}

func TestFinishUnknownKey(t *testing.T) {
	s, mock, _ := newTestStore()
	err := s.MarkDone(context.Background(), "missing", "{}", http.StatusOK)
	if !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected ErrNotInProgress, got %v", err)
	}
	if mock.Item(table, "missing") != nil {
		t.Fatalf("finishing an unknown key must not create it")
	}
}

func TestGet_NotFound(t *testing.T) {
	s, _, _ := newTestStore()
	rec, err := s.Get(context.Background(), "nope")
	if err != nil || rec != nil {
		t.Fatalf("expected (nil, nil), got (%v, %v)", rec, err)
	}
}

func TestStore_PropagatesOtherErrors(t *testing.T) {
	s, mock, _ := newTestStore()
	mock.Err = errors.New("throughput exceeded")

	if rec, err := s.Get(context.Background(), "k"); err == nil || rec != nil {
		t.Fatalf("expected error from Get, got rec=%v err=%v", rec, err)
	}
	if err := s.MarkFailed(context.Background(), "k", "x"); err == nil || errors.Is(err, ErrNotInProgress) {
		t.Fatalf("expected transport error from MarkFailed, got %v", err)
	}
}
