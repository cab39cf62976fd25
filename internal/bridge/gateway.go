// Package bridge is the destination side of the messaging bridge. It hands
// verified messages to the addressed router exactly once and publishes the
// resulting audit records.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/metrics"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/router"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Delivery describes an executed message.
type Delivery struct {
	MessageID   string           `json:"message_id"`
	Router      common.Address   `json:"router"`
	BlockNumber uint64           `json:"block_number"`
	ExecutedAt  time.Time        `json:"executed_at"`
	Results     []results.Record `json:"results"`
}

type Option func(*Gateway)

// WithSinks adds result sinks. They receive records in registration order.
func WithSinks(sinks ...results.Sink) Option {
	return func(g *Gateway) { g.sinks = append(g.sinks, sinks...) }
}

func WithLogger(log *zap.Logger) Option {
	return func(g *Gateway) { g.logger = log }
}

// Gateway delivers messages from the gateway address.
type Gateway struct {
	ledger  *ledger.Ledger
	address common.Address
	sinks   []results.Sink
	logger  *zap.Logger

	mu        sync.Mutex
	delivered map[string]struct{}
}

func NewGateway(l *ledger.Ledger, address common.Address, opts ...Option) *Gateway {
	g := &Gateway{
		ledger:    l,
		address:   address,
		logger:    logger.Log,
		delivered: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Address() common.Address { return g.address }

// Delivered reports whether a message ID was already executed.
func (g *Gateway) Delivered(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.delivered[id]
	return ok
}

// Deliver executes msg on its destination router. A message that fails at
// the transport level is not marked delivered and can be retried.
func (g *Gateway) Deliver(ctx context.Context, msg Message) (*Delivery, error) {
	if err := msg.Validate(); err != nil {
		metrics.RecordMessage(msg.SourceChain, metrics.OutcomeRejected, 0)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log := g.logger.With(
		logger.MessageID(msg.ID),
		logger.SourceChain(msg.SourceChain),
		logger.SourceAddress(msg.SourceAddress),
		logger.Router(msg.DestinationAddress),
	)
	start := time.Now()

	g.mu.Lock()
	if _, ok := g.delivered[msg.ID]; ok {
		g.mu.Unlock()
		metrics.RecordMessage(msg.SourceChain, metrics.OutcomeDuplicate, 0)
		log.Info("Ignoring duplicate message")
		return nil, fmt.Errorf("%w: %s", ErrAlreadyDelivered, msg.ID)
	}
	receipt := g.ledger.Transact(g.address, func(f *ledger.Frame) error {
		return ledger.Invoke(f, msg.DestinationAddress, func(r *router.Router, callee *ledger.Frame) error {
			_, err := r.Execute(callee, msg.SourceChain, msg.SourceAddress, msg.Payload)
			return err
		})
	})
	if receipt.Err == nil {
		g.delivered[msg.ID] = struct{}{}
	}
	g.mu.Unlock()

	if receipt.Err != nil {
		metrics.RecordMessage(msg.SourceChain, metrics.OutcomeRejected, time.Since(start))
		log.Warn("Message rejected", zap.String("reason", ledger.DescribeRevert(ledger.RevertData(receipt.Err))), zap.Error(receipt.Err))
		return nil, fmt.Errorf("failed to deliver message %s: %w", msg.ID, receipt.Err)
	}

	executedAt := time.Unix(int64(receipt.Time), 0).UTC()
	records := results.NewRecords(msg.ID, msg.DestinationAddress, receipt.Number, executedAt, router.ResultsFromLogs(receipt.Logs))
	for _, r := range records {
		metrics.RecordInstruction(r.Kind.String(), r.Success)
	}
	metrics.RecordMessage(msg.SourceChain, metrics.OutcomeDelivered, time.Since(start))
	log.Info("Message delivered",
		zap.Uint64("block", receipt.Number),
		zap.Int("instructions", len(records)),
	)

	g.publish(ctx, log, records)

	return &Delivery{
		MessageID:   msg.ID,
		Router:      msg.DestinationAddress,
		BlockNumber: receipt.Number,
		ExecutedAt:  executedAt,
		Results:     records,
	}, nil
}

// publish fans records out to every sink. A failing sink does not stop the
// others and never undoes the delivery.
func (g *Gateway) publish(ctx context.Context, log *zap.Logger, records []results.Record) {
	for _, sink := range g.sinks {
		if err := sink.Write(ctx, records); err != nil {
			metrics.RecordSinkError(sink.Name())
			log.Error("Failed to write results", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}
}
