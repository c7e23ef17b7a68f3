// Package awstest provides in-memory stand-ins for the DynamoDB, SQS and
// CloudWatch clients. They understand only the expressions the stores in
// this module issue.
package awstest

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// KeyAttributes lists the partition key names tried, in order, for tables
// without a key registered through WithKey.
var KeyAttributes = []string{"attempt_id", "idempotency_key"}

type Item = map[string]types.AttributeValue

// DynamoDB stores items per table: table -> pk -> item.
type DynamoDB struct {
	mu     sync.Mutex
	Tables map[string]map[string]Item
	// Keys maps a table to its partition key attribute.
	Keys map[string]string
	// Err, when set, is returned by every call.
	Err error
}

func NewDynamoDB() *DynamoDB {
	return &DynamoDB{Tables: map[string]map[string]Item{}, Keys: map[string]string{}}
}

// WithKey registers attr as the partition key of table. Items in tables
// that carry several key-like attributes need it.
func (d *DynamoDB) WithKey(table, attr string) *DynamoDB {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Keys[table] = attr
	return d
}

// Item returns a copy of the stored item, or nil.
func (d *DynamoDB) Item(table, pk string) Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	it, ok := d.Tables[table][pk]
	if !ok {
		return nil
	}
	return cloneItem(it)
}

// Seed stores item directly.
func (d *DynamoDB) Seed(table string, item Item) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pk, err := d.primaryKey(table, item)
	if err != nil {
		panic(err)
	}
	d.table(table)[pk] = cloneItem(item)
}

func (d *DynamoDB) table(name string) map[string]Item {
	t, ok := d.Tables[name]
	if !ok {
		t = map[string]Item{}
		d.Tables[name] = t
	}
	return t
}

func (d *DynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	pk, err := d.primaryKey(*params.TableName, params.Item)
	if err != nil {
		return nil, err
	}
	tbl := d.table(*params.TableName)
	if !conditionHolds(tbl[pk], params.ConditionExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
	}
	tbl[pk] = cloneItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (d *DynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	pk, err := d.primaryKey(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	it, ok := d.table(*params.TableName)[pk]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: cloneItem(it)}, nil
}

func (d *DynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	pk, err := d.primaryKey(*params.TableName, params.Key)
	if err != nil {
		return nil, err
	}
	tbl := d.table(*params.TableName)
	current, exists := tbl[pk]
	if !conditionHolds(current, params.ConditionExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues) {
		return nil, &types.ConditionalCheckFailedException{Message: strPtr("The conditional request failed")}
	}
	next := Item{}
	if exists {
		next = cloneItem(current)
	} else {
		for k, v := range params.Key {
			next[k] = v
		}
	}
	if params.UpdateExpression != nil {
		if err := applyUpdate(next, *params.UpdateExpression, params.ExpressionAttributeNames, params.ExpressionAttributeValues); err != nil {
			return nil, err
		}
	}
	tbl[pk] = next
	return &dynamodb.UpdateItemOutput{Attributes: cloneItem(next)}, nil
}

func (d *DynamoDB) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	reasons := make([]types.CancellationReason, len(params.TransactItems))
	cancelled := false
	for i, it := range params.TransactItems {
		p := it.Put
		if p == nil {
			return nil, errors.New("awstest: only Put is supported in transactions")
		}
		pk, err := d.primaryKey(*p.TableName, p.Item)
		if err != nil {
			return nil, err
		}
		reasons[i] = types.CancellationReason{Code: strPtr("None")}
		if !conditionHolds(d.table(*p.TableName)[pk], p.ConditionExpression, p.ExpressionAttributeNames, p.ExpressionAttributeValues) {
			reasons[i] = types.CancellationReason{Code: strPtr("ConditionalCheckFailed")}
			cancelled = true
		}
	}
	if cancelled {
		return nil, &types.TransactionCanceledException{
			Message:             strPtr("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}
	for _, it := range params.TransactItems {
		pk, _ := d.primaryKey(*it.Put.TableName, it.Put.Item)
		d.table(*it.Put.TableName)[pk] = cloneItem(it.Put.Item)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func (d *DynamoDB) primaryKey(table string, item Item) (string, error) {
	if attr, ok := d.Keys[table]; ok {
		if v, ok := item[attr].(*types.AttributeValueMemberS); ok {
			return v.Value, nil
		}
		return "", fmt.Errorf("awstest: item has no %s", attr)
	}
	for _, name := range KeyAttributes {
		if v, ok := item[name].(*types.AttributeValueMemberS); ok {
			return v.Value, nil
		}
	}
	return "", errors.New("awstest: no primary key attribute")
}

var (
	notExistsExpr = regexp.MustCompile(`^attribute_not_exists\((\w+)\)$`)
	existsExpr    = regexp.MustCompile(`^attribute_exists\((\w+)\)$`)
	equalsExpr    = regexp.MustCompile(`^(#?\w+) = (:\w+)$`)
	incrementExpr = regexp.MustCompile(`^if_not_exists\((\w+), (:\w+)\) \+ (:\w+)$`)
)

// conditionHolds evaluates a condition made of clauses joined by AND.
func conditionHolds(item Item, expr *string, names map[string]string, values map[string]types.AttributeValue) bool {
	if expr == nil || *expr == "" {
		return true
	}
	for _, clause := range strings.Split(*expr, " AND ") {
		clause = strings.TrimSpace(clause)
		switch {
		case notExistsExpr.MatchString(clause):
			attr := notExistsExpr.FindStringSubmatch(clause)[1]
			if _, ok := item[attr]; ok {
				return false
			}
		case existsExpr.MatchString(clause):
			attr := existsExpr.FindStringSubmatch(clause)[1]
			if _, ok := item[attr]; !ok {
				return false
			}
		case equalsExpr.MatchString(clause):
			m := equalsExpr.FindStringSubmatch(clause)
			got, ok := item[resolve(m[1], names)].(*types.AttributeValueMemberS)
			want, _ := values[m[2]].(*types.AttributeValueMemberS)
			if !ok || want == nil || got.Value != want.Value {
				return false
			}
		default:
			panic(fmt.Sprintf("awstest: unsupported condition %q", clause))
		}
	}
	return true
}

func applyUpdate(item Item, expr string, names map[string]string, values map[string]types.AttributeValue) error {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "SET ") {
		return fmt.Errorf("awstest: unsupported update %q", expr)
	}
	for _, assignment := range splitAssignments(strings.TrimPrefix(expr, "SET ")) {
		lhs, rhs, ok := strings.Cut(assignment, " = ")
		if !ok {
			return fmt.Errorf("awstest: bad assignment %q", assignment)
		}
		attr := resolve(strings.TrimSpace(lhs), names)
		rhs = strings.TrimSpace(rhs)

		if m := incrementExpr.FindStringSubmatch(rhs); m != nil {
			base := numberOf(values[m[2]])
			if cur, ok := item[m[1]]; ok {
				base = numberOf(cur)
			}
			item[attr] = &types.AttributeValueMemberN{Value: strconv.Itoa(base + numberOf(values[m[3]]))}
			continue
		}
		v, ok := values[rhs]
		if !ok {
			return fmt.Errorf("awstest: missing value %s", rhs)
		}
		item[attr] = v
	}
	return nil
}

// splitAssignments splits on commas outside parentheses.
func splitAssignments(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	return append(out, s[start:])
}

func resolve(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		if n, ok := names[name]; ok {
			return n
		}
	}
	return name
}

func numberOf(v types.AttributeValue) int {
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0
	}
	i, _ := strconv.Atoi(n.Value)
	return i
}

func cloneItem(in Item) Item {
	out := make(Item, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func strPtr(s string) *string { return &s }

// SQS records sent messages.
type SQS struct {
	mu       sync.Mutex
	Messages []*sqs.SendMessageInput
	Err      error
}

func (s *SQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	s.Messages = append(s.Messages, params)
	id := fmt.Sprintf("msg-%d", len(s.Messages))
	return &sqs.SendMessageOutput{MessageId: &id}, nil
}

// CloudWatch records metric data.
type CloudWatch struct {
	mu     sync.Mutex
	Inputs []*cloudwatch.PutMetricDataInput
	Err    error
}

func (c *CloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return nil, c.Err
	}
	c.Inputs = append(c.Inputs, params)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// MetricNames lists recorded metric names in order.
func (c *CloudWatch) MetricNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var names []string
	for _, in := range c.Inputs {
		for _, d := range in.MetricData {
			names = append(names, *d.MetricName)
		}
	}
	return names
}
