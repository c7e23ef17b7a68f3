// Package attempts persists checkout attempts in DynamoDB.
package attempts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/imrishuroy/storefront-checkout/internal/aws"
)

var (
	// ErrStatusMismatch means the conditional status transition failed.
	ErrStatusMismatch = errors.New("status mismatch/conditional failed")
	// ErrDuplicateKey means the idempotency key was already recorded.
	ErrDuplicateKey = errors.New("idempotency key already exists")
	// ErrIllegalTransition is returned before any write for a status change
	// the lifecycle does not allow.
	ErrIllegalTransition = errors.New("illegal status transition")
)

// transitions lists the status changes an attempt may go through.
var transitions = map[string][]string{
	StatusProcessing: {StatusSucceeded, StatusFailed},
	StatusSucceeded:  {StatusFulfilled},
}

// CanTransition reports whether an attempt may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Store encapsulates operations on the attempts table.
type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	nowFunc   func() time.Time
}

func NewStore(client aws.DynamoDBAPI, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		nowFunc:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateWithIdempotency atomically writes the idempotency record into
// idempotencyTable (guarded by attribute_not_exists(idempotency_key)) and
// the attempt into the attempts table. idempotencyItem must marshal with an
// idempotency_key attribute.
func (s *Store) CreateWithIdempotency(ctx context.Context, idempotencyTable string, idempotencyItem any, attempt Attempt, ttlWindow time.Duration) error {
	idempMap, err := attributevalue.MarshalMap(idempotencyItem)
	if err != nil {
		return fmt.Errorf("marshal idempotency item: %w", err)
	}
	now := s.nowFunc()
	if _, ok := idempMap["expires_at"]; !ok && ttlWindow > 0 {
		idempMap["expires_at"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(ttlWindow).Unix())}
	}

	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = now
	}
	attempt.UpdatedAt = now
	if attempt.Status == "" {
		attempt.Status = StatusProcessing
	}

	attemptMap, err := attributevalue.MarshalMap(attempt)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}

	input := &dyn.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           &idempotencyTable,
					Item:                idempMap,
					ConditionExpression: awsString("attribute_not_exists(idempotency_key)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           &s.tableName,
					Item:                attemptMap,
					ConditionExpression: awsString("attribute_not_exists(attempt_id)"),
				},
			},
		},
	}

	if _, err := s.client.TransactWriteItems(ctx, input); err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
		}
		return fmt.Errorf("transact write: %w", err)
	}
	return nil
}

// Get fetches an attempt by attempt_id. Returns (nil, nil) if not found.
func (s *Store) Get(ctx context.Context, attemptID string) (*Attempt, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName: &s.tableName,
		Key:       attemptKey(attemptID),
	})
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var a Attempt
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, fmt.Errorf("unmarshal attempt: %w", err)
	}
	return &a, nil
}

// Transition describes a conditional status change plus the fields that go
// with it.
type Transition struct {
	From          string
	To            string
	Reference     string
	FailureReason string
}

// UpdateStatus moves an attempt from t.From to t.To. It returns
// ErrStatusMismatch when the stored status is not t.From.
func (s *Store) UpdateStatus(ctx context.Context, attemptID string, t Transition) error {
	if !CanTransition(t.From, t.To) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, t.From, t.To)
	}
	now := s.nowFunc()
	updateExpr := "SET #s = :new, updated_at = :ua"
	values := map[string]types.AttributeValue{
		":new":      &types.AttributeValueMemberS{Value: t.To},
		":expected": &types.AttributeValueMemberS{Value: t.From},
		":ua":       &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
	}
	if t.Reference != "" {
		updateExpr += ", reference = :ref"
		values[":ref"] = &types.AttributeValueMemberS{Value: t.Reference}
	}
	if t.FailureReason != "" {
		updateExpr += ", failure_reason = :fr"
		values[":fr"] = &types.AttributeValueMemberS{Value: t.FailureReason}
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       attemptKey(attemptID),
		UpdateExpression:          &updateExpr,
		ConditionExpression:       awsString("#s = :expected"),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if conditionFailed(err) {
			return fmt.Errorf("%w: %s is not %s", ErrStatusMismatch, attemptID, t.From)
		}
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// IncrementAttempts increases the attempts counter by 1 (worker retries).
func (s *Store) IncrementAttempts(ctx context.Context, attemptID string) error {
	now := s.nowFunc()
	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:        &s.tableName,
		Key:              attemptKey(attemptID),
		UpdateExpression: awsString("SET attempts = if_not_exists(attempts, :zero) + :inc, updated_at = :ua"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":inc":  &types.AttributeValueMemberN{Value: "1"},
			":ua":   &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}
	return nil
}

func attemptKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"attempt_id": &types.AttributeValueMemberS{Value: id},
	}
}

func conditionFailed(err error) bool {
	var cc *types.ConditionalCheckFailedException
	return errors.As(err, &cc)
}

func awsString(s string) *string { return &s }
