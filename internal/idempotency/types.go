package idempotency

import (
	"net/http"
	"time"
)

const (
	StatusInProgress = "IN_PROGRESS"
	StatusDone       = "DONE"
	StatusFailed     = "FAILED"
)

// Record is one claimed submission key. Card data never appears here.
type Record struct {
	IdempotencyKey string    `dynamodbav:"idempotency_key"` // PK
	Status         string    `dynamodbav:"status"`
	AttemptID      string    `dynamodbav:"attempt_id,omitempty"`
	SessionID      string    `dynamodbav:"session_id,omitempty"`
	ResponseBody   string    `dynamodbav:"response_body,omitempty"`
	ResponseStatus int       `dynamodbav:"response_status,omitempty"`
	CreatedAt      time.Time `dynamodbav:"created_at"`
	UpdatedAt      time.Time `dynamodbav:"updated_at"`
	ExpiresAt      int64     `dynamodbav:"expires_at"` // TTL, epoch seconds
	Note           string    `dynamodbav:"note,omitempty"`
}

// Response returns what a replay of a DONE key should answer with. ok is
// false for keys that are not DONE.
func (r Record) Response() (status int, body string, ok bool) {
	if r.Status != StatusDone {
		return 0, "", false
	}
	status = r.ResponseStatus
	if status == 0 {
		status = http.StatusOK
	}
	return status, r.ResponseBody, true
}
