package results

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyphera/remote-accounts/internal/codec"
	"github.com/cyphera/remote-accounts/internal/db"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/router"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"
)

// PostgresStore persists records in the operation_results table.
type PostgresStore struct {
	queries db.Querier
	logger  *zap.Logger
}

func NewPostgresStore(queries db.Querier) *PostgresStore {
	return &PostgresStore{
		queries: queries,
		logger:  logger.Log,
	}
}

func (s *PostgresStore) Name() string { return "postgres" }

func (s *PostgresStore) Write(ctx context.Context, records []Record) error {
	for _, r := range records {
		if _, err := s.queries.InsertOperationResult(ctx, toInsertParams(r)); err != nil {
			return fmt.Errorf("failed to insert operation result %s/%d: %w", r.MessageID, r.Position, err)
		}
	}
	s.logger.Debug("Stored operation results", zap.Int("count", len(records)))
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id common.Hash) (Record, error) {
	row, err := s.queries.GetOperationResult(ctx, id.Hex())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("failed to get operation result: %w", err)
	}
	return fromRow(row)
}

func (s *PostgresStore) List(ctx context.Context, q Query) ([]Record, error) {
	q = q.Normalize()
	var (
		rows []db.OperationResult
		err  error
	)
	if q.BySource() {
		rows, err = s.queries.ListOperationResultsBySource(ctx, db.ListOperationResultsBySourceParams{
			SourceChain:   q.SourceChain,
			SourceAddress: q.SourceAddress,
			Limit:         int32(q.Limit),
			Offset:        int32(q.Offset),
		})
	} else {
		rows, err = s.queries.ListOperationResults(ctx, db.ListOperationResultsParams{
			Limit:  int32(q.Limit),
			Offset: int32(q.Offset),
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list operation results: %w", err)
	}
	return fromRows(rows)
}

func (s *PostgresStore) ListByMessage(ctx context.Context, messageID string) ([]Record, error) {
	rows, err := s.queries.ListOperationResultsByMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list operation results for message %s: %w", messageID, err)
	}
	return fromRows(rows)
}

func toInsertParams(r Record) db.InsertOperationResultParams {
	result := []byte(r.Result)
	if result == nil {
		result = []byte{}
	}
	return db.InsertOperationResultParams{
		MessageID:       r.MessageID,
		Position:        int32(r.Position),
		TransactionID:   r.ID.Hex(),
		Kind:            r.Kind.String(),
		RouterAddress:   r.Router.Hex(),
		SourceChain:     r.SourceChain,
		SourceAddress:   r.SourceAddress,
		ExpectedAddress: r.ExpectedAddress.Hex(),
		Success:         r.Success,
		Result:          result,
		Reason:          r.Reason,
		BlockNumber:     int64(r.BlockNumber),
		ExecutedAt:      pgtype.Timestamptz{Time: r.ExecutedAt, Valid: true},
	}
}

func fromRow(row db.OperationResult) (Record, error) {
	kind, err := codec.ParseKind(row.Kind)
	if err != nil {
		return Record{}, fmt.Errorf("operation result %d: %w", row.ID, err)
	}
	return Record{
		OperationResult: router.OperationResult{
			ID:              common.HexToHash(row.TransactionID),
			Kind:            kind,
			SourceChain:     row.SourceChain,
			SourceAddress:   row.SourceAddress,
			ExpectedAddress: common.HexToAddress(row.ExpectedAddress),
			Success:         row.Success,
			Result:          row.Result,
			Reason:          row.Reason,
		},
		MessageID:   row.MessageID,
		Position:    int(row.Position),
		Router:      common.HexToAddress(row.RouterAddress),
		BlockNumber: uint64(row.BlockNumber),
		ExecutedAt:  row.ExecutedAt.Time,
	}, nil
}

func fromRows(rows []db.OperationResult) ([]Record, error) {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		r, err := fromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}
