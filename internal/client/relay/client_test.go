package relay_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyphera/remote-accounts/internal/bridge"
	httpclient "github.com/cyphera/remote-accounts/internal/client/http"
	"github.com/cyphera/remote-accounts/internal/client/relay"
	"github.com/cyphera/remote-accounts/internal/codec"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/router"
	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.InitLogger("test")
}

var _ relay.Relayer = (*relay.Client)(nil)

func TestDeliverStatusMapping(t *testing.T) {
	msg := bridge.Message{
		ID:                 "msg-1",
		SourceChain:        "chain",
		SourceAddress:      "acct1",
		DestinationAddress: common.HexToAddress("0xb1"),
		Payload:            hexutil.Bytes{0xde, 0xad, 0xbe, 0xef},
	}

	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{name: "delivered", status: http.StatusOK},
		{name: "duplicate", status: http.StatusConflict, wantErr: bridge.ErrAlreadyDelivered},
		{name: "rejected", status: http.StatusUnprocessableEntity, wantErr: relay.ErrRejected},
		{name: "invalid", status: http.StatusBadRequest, wantErr: bridge.ErrInvalidMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/v1/messages", r.URL.Path)
				var got bridge.Message
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, msg, got)

				w.WriteHeader(tt.status)
				if tt.status == http.StatusOK {
					_ = json.NewEncoder(w).Encode(bridge.Delivery{MessageID: got.ID, BlockNumber: 9})
				}
			}))
			defer srv.Close()

			delivery, err := relay.New(srv.URL, httpclient.WithRetryConfig(nil)).Deliver(context.Background(), msg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, delivery)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "msg-1", delivery.MessageID)
			assert.EqualValues(t, 9, delivery.BlockNumber)
		})
	}
}

func TestDeliverServerErrorPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := relay.New(srv.URL, httpclient.WithRetryConfig(nil)).Deliver(context.Background(), bridge.Message{ID: "m"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, httpclient.StatusCode(err))
	assert.NotErrorIs(t, err, relay.ErrRejected)
}

func TestResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/results", r.URL.Path)
		assert.Equal(t, "msg-1", r.URL.Query().Get("message"))
		_ = json.NewEncoder(w).Encode(types.ResultListResponse{
			Object: "list",
			Data: []results.Record{
				{MessageID: "msg-1", Position: 0},
				{
					OperationResult: router.OperationResult{Kind: codec.KindDeposit, Success: true},
					MessageID:       "msg-1",
					Position:        1,
				},
			},
		})
	}))
	defer srv.Close()

	records, err := relay.New(srv.URL).Results(context.Background(), "msg-1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, codec.Kind(0), records[0].Kind)
	assert.Equal(t, 1, records[1].Position)
	assert.Equal(t, codec.KindDeposit, records[1].Kind)
	assert.True(t, records[1].Success)
}
