package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cyphera/remote-accounts/internal/bridge"
	"github.com/cyphera/remote-accounts/internal/client/relay"
	"github.com/cyphera/remote-accounts/internal/logger"
	"go.uber.org/zap"
)

// Application forwards queued bridge messages to a router node.
type Application struct {
	relayer relay.Relayer
	logger  *zap.Logger
}

func NewApplication(relayer relay.Relayer, log *zap.Logger) *Application {
	return &Application{relayer: relayer, logger: log}
}

// HandleSQSEvent relays every record and reports the ones that failed so
// SQS retries only those. A message the node already delivered counts as
// processed.
func (app *Application) HandleSQSEvent(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	app.logger.Info("Message processor handling SQS event", zap.Int("record_count", len(event.Records)))

	var resp events.SQSEventResponse
	for _, record := range event.Records {
		if err := app.processRecord(ctx, record); err != nil {
			app.logger.Error("Failed to relay message",
				zap.String("sqs_message_id", record.MessageId),
				zap.Error(err),
			)
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}

	app.logger.Info("Finished SQS batch",
		zap.Int("count", len(event.Records)),
		zap.Int("failed", len(resp.BatchItemFailures)),
	)
	return resp, nil
}

func (app *Application) processRecord(ctx context.Context, record events.SQSMessage) error {
	var msg bridge.Message
	if err := json.Unmarshal([]byte(record.Body), &msg); err != nil {
		return fmt.Errorf("failed to unmarshal bridge message: %w", err)
	}
	if err := msg.Validate(); err != nil {
		return err
	}

	delivery, err := app.relayer.Deliver(ctx, msg)
	switch {
	case errors.Is(err, bridge.ErrAlreadyDelivered):
		app.logger.Info("Message already delivered", logger.MessageID(msg.ID))
		return nil
	case err != nil:
		return fmt.Errorf("failed to relay message %s: %w", msg.ID, err)
	}

	succeeded := 0
	for _, r := range delivery.Results {
		if r.Success {
			succeeded++
		}
	}
	app.logger.Info("Relayed message",
		logger.MessageID(msg.ID),
		logger.SourceChain(msg.SourceChain),
		zap.Uint64("block_number", delivery.BlockNumber),
		zap.Int("instructions", len(delivery.Results)),
		zap.Int("succeeded", succeeded),
	)
	return nil
}
