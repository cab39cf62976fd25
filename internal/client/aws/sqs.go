package aws

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SQSAPI is the subset of the SQS client used by SQSPublisher.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends messages to one queue, retrying transient failures.
type SQSPublisher struct {
	api        SQSAPI
	queueURL   string
	maxRetries uint64
	logger     *zap.Logger
}

func NewSQSPublisher(api SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{
		api:        api,
		queueURL:   queueURL,
		maxRetries: 3,
		logger:     logger.Log,
	}
}

// NewSQSPublisherFromConfig builds a publisher from the default AWS
// configuration chain.
func NewSQSPublisherFromConfig(ctx context.Context, queueURL string) (*SQSPublisher, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load AWS SDK config")
	}
	return NewSQSPublisher(sqs.NewFromConfig(cfg), queueURL), nil
}

func (p *SQSPublisher) isFIFO() bool {
	return strings.HasSuffix(p.queueURL, ".fifo")
}

// Publish sends body with string attributes. FIFO queues group by the
// MessageID attribute and deduplicate on MessageID plus Position.
func (p *SQSPublisher) Publish(ctx context.Context, body string, attributes map[string]string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(p.queueURL),
		MessageBody:       aws.String(body),
		MessageAttributes: make(map[string]sqstypes.MessageAttributeValue, len(attributes)),
	}
	for k, v := range attributes {
		input.MessageAttributes[k] = sqstypes.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}
	if p.isFIFO() {
		group := attributes[constants.MessageIDAttribute]
		if group == "" {
			group = "default"
		}
		input.MessageGroupId = aws.String(group)
		input.MessageDeduplicationId = aws.String(group + "-" + attributes["Position"])
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 200 * time.Millisecond
	exp.MaxElapsedTime = 10 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, p.maxRetries), ctx)

	var messageID string
	err := backoff.RetryNotify(func() error {
		out, err := p.api.SendMessage(ctx, input)
		if err != nil {
			return err
		}
		messageID = aws.ToString(out.MessageId)
		return nil
	}, policy, func(err error, wait time.Duration) {
		p.logger.Warn("Retrying SQS send", zap.String("queue", p.queueURL), zap.Duration("wait", wait), zap.Error(err))
	})
	if err != nil {
		return errors.Wrapf(err, "failed to send message to %s", p.queueURL)
	}
	p.logger.Debug("Published message", zap.String("queue", p.queueURL), zap.String("sqs_message_id", messageID))
	return nil
}
