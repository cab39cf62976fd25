// Package results keeps the audit trail of every instruction the router
// processed and forwards it to downstream consumers.
package results

import (
	"context"
	"errors"
	"time"

	"github.com/cyphera/remote-accounts/internal/router"
	"github.com/ethereum/go-ethereum/common"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("operation result not found")

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Record is an OperationResult together with its delivery context.
type Record struct {
	router.OperationResult
	MessageID   string         `json:"message_id"`
	Position    int            `json:"position"`
	Router      common.Address `json:"router"`
	BlockNumber uint64         `json:"block_number"`
	ExecutedAt  time.Time      `json:"executed_at"`
}

// NewRecords annotates the results of one delivered message.
func NewRecords(messageID string, routerAddr common.Address, blockNumber uint64, executedAt time.Time, ops []router.OperationResult) []Record {
	out := make([]Record, len(ops))
	for i, op := range ops {
		out[i] = Record{
			OperationResult: op,
			MessageID:       messageID,
			Position:        i,
			Router:          routerAddr,
			BlockNumber:     blockNumber,
			ExecutedAt:      executedAt,
		}
	}
	return out
}

// Sink receives the records of each delivered message. Writes of the same
// message must be idempotent.
type Sink interface {
	Name() string
	Write(ctx context.Context, records []Record) error
}

// Query filters a listing. An empty source matches every record.
type Query struct {
	SourceChain   string
	SourceAddress string
	Limit         int
	Offset        int
}

// Normalize clamps the paging parameters.
func (q Query) Normalize() Query {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// BySource reports whether the query filters on a source identity.
func (q Query) BySource() bool {
	return q.SourceChain != "" || q.SourceAddress != ""
}

// Store is a queryable Sink.
type Store interface {
	Sink
	// Get returns the most recent record for a transaction identifier.
	Get(ctx context.Context, id common.Hash) (Record, error)
	// List returns records newest first.
	List(ctx context.Context, q Query) ([]Record, error)
	ListByMessage(ctx context.Context, messageID string) ([]Record, error)
}
