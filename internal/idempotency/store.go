// Package idempotency records submission keys so a repeated submit is
// recognised instead of charged twice.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	dyn "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"

	"github.com/imrishuroy/storefront-checkout/internal/aws"
)

// ErrNotInProgress is returned when a key is finished twice, or finished
// before it was claimed.
var ErrNotInProgress = errors.New("idempotency key is not in progress")

// KeyAttribute is the table's partition key.
const KeyAttribute = "idempotency_key"

type Store struct {
	client    aws.DynamoDBAPI
	tableName string
	ttlWindow time.Duration
	nowFunc   func() time.Time
}

// NewStore returns a Store over tableName; entries expire after ttlWindow.
func NewStore(client aws.DynamoDBAPI, tableName string, ttlWindow time.Duration) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
		ttlWindow: ttlWindow,
		nowFunc:   time.Now,
	}
}

func (s *Store) TableName() string { return s.tableName }

func (s *Store) TTL() time.Duration { return s.ttlWindow }

// NewRecord builds an IN_PROGRESS record for key. Claiming happens inside
// the caller's transaction, conditioned on the key not existing yet.
func (s *Store) NewRecord(key, attemptID, sessionID string) Record {
	now := s.nowFunc().UTC()
	return Record{
		IdempotencyKey: key,
		Status:         StatusInProgress,
		AttemptID:      attemptID,
		SessionID:      sessionID,
		CreatedAt:      now,
		UpdatedAt:      now,
		ExpiresAt:      now.Add(s.ttlWindow).Unix(),
	}
}

// Get returns the record for key, or nil when the key was never claimed.
func (s *Store) Get(ctx context.Context, key string) (*Record, error) {
	out, err := s.client.GetItem(ctx, &dyn.GetItemInput{
		TableName:      &s.tableName,
		Key:            recordKey(key),
		ConsistentRead: awsBool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var rec Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}

// MarkDone stores the response a replay of key should return.
func (s *Store) MarkDone(ctx context.Context, key, responseBody string, responseStatus int) error {
	return s.finish(ctx, key, StatusDone, map[string]types.AttributeValue{
		"response_body":   &types.AttributeValueMemberS{Value: responseBody},
		"response_status": &types.AttributeValueMemberN{Value: strconv.Itoa(responseStatus)},
	})
}

// MarkFailed closes key with note. The key stays claimed; a retry needs a
// fresh key.
func (s *Store) MarkFailed(ctx context.Context, key, note string) error {
	return s.finish(ctx, key, StatusFailed, map[string]types.AttributeValue{
		"note": &types.AttributeValueMemberS{Value: note},
	})
}

// finish moves key from IN_PROGRESS to status and sets attrs alongside.
func (s *Store) finish(ctx context.Context, key, status string, attrs map[string]types.AttributeValue) error {
	values := map[string]types.AttributeValue{
		":status":   &types.AttributeValueMemberS{Value: status},
		":expected": &types.AttributeValueMemberS{Value: StatusInProgress},
		":ua":       &types.AttributeValueMemberS{Value: s.nowFunc().UTC().Format(time.RFC3339)},
	}
	sets := []string{"#s = :status", "updated_at = :ua"}
	for name, v := range attrs {
		placeholder := ":" + name
		sets = append(sets, name+" = "+placeholder)
		values[placeholder] = v
	}

	_, err := s.client.UpdateItem(ctx, &dyn.UpdateItemInput{
		TableName:                 &s.tableName,
		Key:                       recordKey(key),
		UpdateExpression:          awsString("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       awsString("#s = :expected"),
		ExpressionAttributeNames:  map[string]string{"#s": "status"},
		ExpressionAttributeValues: values,
	})
	if isConditionFailure(err) {
		return fmt.Errorf("mark %s %s: %w", key, status, ErrNotInProgress)
	}
	if err != nil {
		return fmt.Errorf("mark %s %s: %w", key, status, err)
	}
	return nil
}

func isConditionFailure(err error) bool {
	if err == nil {
		return false
	}
	var cc *types.ConditionalCheckFailedException
	if errors.As(err, &cc) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

func recordKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		KeyAttribute: &types.AttributeValueMemberS{Value: key},
	}
}

func awsString(s string) *string { return &s }

func awsBool(b bool) *bool { return &b }
