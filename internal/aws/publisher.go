package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Attribute names the publisher reads to route FIFO messages.
const (
	AttrGroupID        = "session_id"
	AttrDeduplicateKey = "idempotency_key"

	defaultGroupID = "checkout"
)

// Publisher sends checkout events to one SQS queue. For a FIFO queue
// (".fifo" suffix) messages are grouped per session and deduplicated on the
// idempotency key, so a replayed submission is not fulfilled twice.
type Publisher struct {
	client   SQSAPI
	queueURL string
	fifo     bool
}

func NewPublisher(client SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		client:   client,
		queueURL: queueURL,
		fifo:     strings.HasSuffix(queueURL, ".fifo"),
	}
}

// SendCheckoutEvent JSON-encodes event and sends attributes as String
// message attributes.
func (p *Publisher) SendCheckoutEvent(ctx context.Context, event any, attributes map[string]string) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          &p.queueURL,
		MessageBody:       awsString(string(body)),
		MessageAttributes: stringAttributes(attributes),
	}
	if p.fifo {
		group := attributes[AttrGroupID]
		if group == "" {
			group = defaultGroupID
		}
		input.MessageGroupId = &group
		if key := attributes[AttrDeduplicateKey]; key != "" {
			input.MessageDeduplicationId = &key
		}
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

func stringAttributes(attrs map[string]string) map[string]sqstypes.MessageAttributeValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make(map[string]sqstypes.MessageAttributeValue, len(attrs))
	for k, v := range attrs {
		out[k] = sqstypes.MessageAttributeValue{
			DataType:    awsString("String"),
			StringValue: awsString(v),
		}
	}
	return out
}

func awsString(s string) *string { return &s }
