package results_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/cyphera/remote-accounts/internal/codec"
	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/cyphera/remote-accounts/internal/db"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/mocks"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/router"
	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func init() {
	logger.InitLogger("test")
}

var (
	routerAddr = common.HexToAddress("0x00000000000000000000000000000000000b0001")
	executedAt = time.Unix(1_700_000_000, 0).UTC()
)

func op(n int64, account string, kind codec.Kind, success bool) router.OperationResult {
	res := router.OperationResult{
		ID:              common.BigToHash(big.NewInt(n)),
		Kind:            kind,
		SourceChain:     "chain",
		SourceAddress:   account,
		ExpectedAddress: common.BigToAddress(big.NewInt(n)),
		Success:         success,
		Result:          []byte{0x01},
	}
	if !success {
		res.Reason = "UnauthorizedCaller()"
	}
	return res
}

func TestNewRecords(t *testing.T) {
	ops := []router.OperationResult{
		op(1, "acct1", codec.KindProvideAccount, true),
		op(2, "acct1", codec.KindExecuteOnAccount, false),
	}
	records := results.NewRecords("msg-1", routerAddr, 7, executedAt, ops)

	require.Len(t, records, 2)
	for i, r := range records {
		assert.Equal(t, "msg-1", r.MessageID)
		assert.Equal(t, i, r.Position)
		assert.Equal(t, routerAddr, r.Router)
		assert.Equal(t, uint64(7), r.BlockNumber)
		assert.Equal(t, ops[i], r.OperationResult)
	}
}

func TestQueryNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   results.Query
		want results.Query
	}{
		{name: "defaults", in: results.Query{}, want: results.Query{Limit: results.DefaultLimit}},
		{name: "clamps limit", in: results.Query{Limit: 10_000}, want: results.Query{Limit: results.MaxLimit}},
		{name: "negative offset", in: results.Query{Limit: 5, Offset: -3}, want: results.Query{Limit: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize())
		})
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := results.NewMemoryStore()

	first := results.NewRecords("msg-1", routerAddr, 1, executedAt, []router.OperationResult{
		op(1, "acct1", codec.KindProvideAccount, true),
		op(2, "acct2", codec.KindDeposit, true),
	})
	second := results.NewRecords("msg-2", routerAddr, 2, executedAt, []router.OperationResult{
		op(1, "acct1", codec.KindExecuteOnAccount, false),
	})
	require.NoError(t, store.Write(ctx, first))
	require.NoError(t, store.Write(ctx, second))

	t.Run("writes are idempotent", func(t *testing.T) {
		require.NoError(t, store.Write(ctx, first))
		all, err := store.List(ctx, results.Query{})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("get returns the latest record for an id", func(t *testing.T) {
		r, err := store.Get(ctx, first[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "msg-2", r.MessageID)
		assert.Equal(t, codec.KindExecuteOnAccount, r.Kind)
	})

	t.Run("get unknown id", func(t *testing.T) {
		_, err := store.Get(ctx, common.HexToHash("0xdead"))
		assert.ErrorIs(t, err, results.ErrNotFound)
	})

	t.Run("list newest first with source filter", func(t *testing.T) {
		got, err := store.List(ctx, results.Query{SourceChain: "chain", SourceAddress: "acct1"})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "msg-2", got[0].MessageID)
		assert.Equal(t, "msg-1", got[1].MessageID)
	})

	t.Run("list pages", func(t *testing.T) {
		got, err := store.List(ctx, results.Query{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "acct2", got[0].SourceAddress)
	})

	t.Run("list by message keeps positions", func(t *testing.T) {
		got, err := store.ListByMessage(ctx, "msg-1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].Position)
		assert.Equal(t, 1, got[1].Position)
	})
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	record := results.NewRecords("msg-1", routerAddr, 3, executedAt, []router.OperationResult{
		op(9, "acct1", codec.KindUpdateOwner, false),
	})[0]
	row := db.OperationResult{
		ID:              42,
		MessageID:       "msg-1",
		Position:        0,
		TransactionID:   record.ID.Hex(),
		Kind:            "update_owner",
		RouterAddress:   routerAddr.Hex(),
		SourceChain:     "chain",
		SourceAddress:   "acct1",
		ExpectedAddress: record.ExpectedAddress.Hex(),
		Success:         false,
		Result:          []byte{0x01},
		Reason:          "UnauthorizedCaller()",
		BlockNumber:     3,
	}
	row.ExecutedAt.Time, row.ExecutedAt.Valid = executedAt, true

	t.Run("write inserts every record", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().
			InsertOperationResult(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, arg db.InsertOperationResultParams) (db.OperationResult, error) {
				assert.Equal(t, "msg-1", arg.MessageID)
				assert.Equal(t, record.ID.Hex(), arg.TransactionID)
				assert.Equal(t, "update_owner", arg.Kind)
				assert.Equal(t, routerAddr.Hex(), arg.RouterAddress)
				assert.Equal(t, int64(3), arg.BlockNumber)
				assert.True(t, arg.ExecutedAt.Valid)
				return row, nil
			})
		require.NoError(t, results.NewPostgresStore(q).Write(ctx, []results.Record{record}))
	})

	t.Run("write reports insert failures", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().InsertOperationResult(gomock.Any(), gomock.Any()).Return(db.OperationResult{}, errors.New("connection reset"))
		err := results.NewPostgresStore(q).Write(ctx, []results.Record{record})
		assert.ErrorContains(t, err, "connection reset")
	})

	t.Run("get maps rows back", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().GetOperationResult(gomock.Any(), record.ID.Hex()).Return(row, nil)
		got, err := results.NewPostgresStore(q).Get(ctx, record.ID)
		require.NoError(t, err)
		assert.Equal(t, record.OperationResult, got.OperationResult)
		assert.Equal(t, record.MessageID, got.MessageID)
		assert.Equal(t, record.Router, got.Router)
		assert.True(t, record.ExecutedAt.Equal(got.ExecutedAt))
	})

	t.Run("get maps no rows to not found", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().GetOperationResult(gomock.Any(), gomock.Any()).Return(db.OperationResult{}, pgx.ErrNoRows)
		_, err := results.NewPostgresStore(q).Get(ctx, record.ID)
		assert.ErrorIs(t, err, results.ErrNotFound)
	})

	t.Run("list by source", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().
			ListOperationResultsBySource(gomock.Any(), db.ListOperationResultsBySourceParams{
				SourceChain: "chain", SourceAddress: "acct1", Limit: results.DefaultLimit,
			}).
			Return([]db.OperationResult{row}, nil)
		got, err := results.NewPostgresStore(q).List(ctx, results.Query{SourceChain: "chain", SourceAddress: "acct1"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, codec.KindUpdateOwner, got[0].Kind)
	})

	t.Run("list all", func(t *testing.T) {
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().
			ListOperationResults(gomock.Any(), db.ListOperationResultsParams{Limit: 10, Offset: 20}).
			Return([]db.OperationResult{}, nil)
		got, err := results.NewPostgresStore(q).List(ctx, results.Query{Limit: 10, Offset: 20})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown kind in a row", func(t *testing.T) {
		bad := row
		bad.Kind = "teleport"
		q := mocks.NewMockQuerierForTest(t)
		q.EXPECT().ListOperationResultsByMessage(gomock.Any(), "msg-1").Return([]db.OperationResult{bad}, nil)
		_, err := results.NewPostgresStore(q).ListByMessage(ctx, "msg-1")
		assert.Error(t, err)
	})
}

func TestQueueSink(t *testing.T) {
	ctx := context.Background()
	records := results.NewRecords("msg-1", routerAddr, 1, executedAt, []router.OperationResult{
		op(1, "acct1", codec.KindProvideAccount, true),
		op(2, "acct1", codec.KindDeposit, false),
	})

	t.Run("publishes one message per record", func(t *testing.T) {
		pub := mocks.NewMockPublisherForTest(t)
		for i := range records {
			position := []string{"0", "1"}[i]
			pub.EXPECT().
				Publish(gomock.Any(), gomock.Any(), gomock.Any()).
				DoAndReturn(func(_ context.Context, body string, attrs map[string]string) error {
					assert.Equal(t, "msg-1", attrs[constants.MessageIDAttribute])
					assert.Equal(t, position, attrs["Position"])
					assert.Contains(t, body, `"message_id":"msg-1"`)
					return nil
				})
		}
		require.NoError(t, results.NewQueueSink(pub).Write(ctx, records))
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		pub := mocks.NewMockPublisherForTest(t)
		pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("throttled")).Times(1)
		err := results.NewQueueSink(pub).Write(ctx, records)
		assert.ErrorContains(t, err, "throttled")
	})
}

func TestLogSink(t *testing.T) {
	sink := results.NewLogSink(zap.NewNop())
	assert.Equal(t, "log", sink.Name())
	assert.NoError(t, sink.Write(context.Background(), results.NewRecords("m", routerAddr, 1, executedAt, []router.OperationResult{
		op(1, "acct1", codec.KindProvideAccount, false),
	})))
}
