package results

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cyphera/remote-accounts/internal/constants"
)

// Publisher delivers a message body to a queue.
type Publisher interface {
	Publish(ctx context.Context, body string, attributes map[string]string) error
}

// QueueSink publishes one queue message per record.
type QueueSink struct {
	publisher Publisher
}

func NewQueueSink(publisher Publisher) *QueueSink {
	return &QueueSink{publisher: publisher}
}

func (s *QueueSink) Name() string { return "queue" }

func (s *QueueSink) Write(ctx context.Context, records []Record) error {
	for _, r := range records {
		body, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("failed to marshal record %s/%d: %w", r.MessageID, r.Position, err)
		}
		attrs := map[string]string{
			constants.MessageIDAttribute: r.MessageID,
			"Position":                   strconv.Itoa(r.Position),
			"Kind":                       r.Kind.String(),
			"Success":                    strconv.FormatBool(r.Success),
		}
		if err := s.publisher.Publish(ctx, string(body), attrs); err != nil {
			return fmt.Errorf("failed to publish record %s/%d: %w", r.MessageID, r.Position, err)
		}
	}
	return nil
}
