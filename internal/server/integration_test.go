package server_test

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cyphera/remote-accounts/internal/bridge"
	httpclient "github.com/cyphera/remote-accounts/internal/client/http"
	"github.com/cyphera/remote-accounts/internal/client/relay"
	"github.com/cyphera/remote-accounts/internal/codec"
	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/cyphera/remote-accounts/internal/factory"
	"github.com/cyphera/remote-accounts/internal/genesis"
	"github.com/cyphera/remote-accounts/internal/handlers"
	"github.com/cyphera/remote-accounts/internal/helpers"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/server"
	"github.com/cyphera/remote-accounts/internal/services"
	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/suite"
)

const adminKey = "rak_integration"

// NodeIntegrationTestSuite drives a complete node over HTTP.
type NodeIntegrationTestSuite struct {
	suite.Suite
	ctx        context.Context
	deployment *genesis.Deployment
	store      *results.MemoryStore
	httpServer *httptest.Server
	relay      *relay.Client
	api        *httpclient.HTTPClient
	user       principal.Identity
}

func (s *NodeIntegrationTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.user = principal.New("chain", "acct1")

	g := genesis.Local()
	g.Time = 1_700_000_000
	l := ledger.New(ledger.WithLogger(logger.Log))
	d, err := genesis.Deploy(l, g)
	s.Require().NoError(err)
	s.deployment = d

	hash, err := helpers.HashAPIKey(adminKey)
	s.Require().NoError(err)

	s.store = results.NewMemoryStore()
	gw := bridge.NewGateway(l, d.Gateway, bridge.WithSinks(s.store, results.NewLogSink(logger.Log)))
	svc := services.NewRouterService(l, d, gw)
	engine := server.NewRouter(server.Services{
		Messages: svc,
		Accounts: svc,
		Routers:  svc,
		Results:  services.NewResultService(s.store),
		Health:   handlers.NewHealthHandler(d.ChainID.Uint64(), d.SourceChain, l.Time),
	}, server.Options{AdminAPIKeyHash: hash})

	s.httpServer = httptest.NewServer(engine)
	s.relay = relay.New(s.httpServer.URL, httpclient.WithRetryConfig(nil))
	s.api = httpclient.NewHTTPClient(httpclient.WithBaseURL(s.httpServer.URL), httpclient.WithRetryConfig(nil))
}

func (s *NodeIntegrationTestSuite) TearDownTest() {
	s.httpServer.Close()
}

func (s *NodeIntegrationTestSuite) message(id string, ins ...codec.Instruction) bridge.Message {
	payload, err := codec.EncodeBatch(ins...)
	s.Require().NoError(err)
	return bridge.Message{
		ID:                 id,
		SourceChain:        s.user.ChainRef,
		SourceAddress:      s.user.Account,
		DestinationAddress: s.deployment.Router(),
		Payload:            payload,
	}
}

func (s *NodeIntegrationTestSuite) TestProvideAccountEndToEnd() {
	expected := factory.AddressFor(s.deployment.Factory, s.user)
	txID := common.BigToHash(big.NewInt(1))

	delivery, err := s.relay.Deliver(s.ctx, s.message("msg-1", codec.ProvideAccount(txID, expected), codec.ProvideAccount(common.BigToHash(big.NewInt(2)), expected)))
	s.Require().NoError(err)
	s.Require().Len(delivery.Results, 2)
	for _, r := range delivery.Results {
		s.True(r.Success, r.Reason)
		s.Equal(expected, r.ExpectedAddress)
	}

	// Redelivery is refused without re-execution.
	_, err = s.relay.Deliver(s.ctx, s.message("msg-1", codec.ProvideAccount(txID, expected)))
	s.ErrorIs(err, bridge.ErrAlreadyDelivered)

	records, err := s.relay.Results(s.ctx, "msg-1")
	s.Require().NoError(err)
	s.Len(records, 2)

	var addr types.AddressResponse
	s.Require().NoError(s.api.DoJSON(s.ctx, http.MethodGet, "/api/v1/accounts/address", nil, &addr,
		httpclient.WithQueryParam("principal", s.user.String())))
	s.Equal(expected, addr.Address)
	s.True(addr.Deployed)

	var account types.AccountResponse
	s.Require().NoError(s.api.DoJSON(s.ctx, http.MethodGet, "/api/v1/accounts/"+expected.Hex(), nil, &account))
	s.True(account.Genuine)
	s.Equal(s.deployment.Router(), account.Owner)

	var result results.Record
	s.Require().NoError(s.api.DoJSON(s.ctx, http.MethodGet, "/api/v1/results/"+txID.Hex(), nil, &result))
	s.Equal(codec.KindProvideAccount, result.Kind)
}

func (s *NodeIntegrationTestSuite) TestWrongAddressFailsOnlyThatInstruction() {
	expected := factory.AddressFor(s.deployment.Factory, s.user)
	wrong := factory.AddressFor(s.deployment.Factory, principal.New("chain", "someone-else"))

	delivery, err := s.relay.Deliver(s.ctx, s.message("msg-2",
		codec.ProvideAccount(common.BigToHash(big.NewInt(1)), wrong),
		codec.ProvideAccount(common.BigToHash(big.NewInt(2)), expected),
	))
	s.Require().NoError(err)
	s.Require().Len(delivery.Results, 2)
	s.False(delivery.Results[0].Success)
	s.NotEmpty(delivery.Results[0].Reason)
	s.True(delivery.Results[1].Success)
}

func (s *NodeIntegrationTestSuite) TestRejectedMessages() {
	expected := factory.AddressFor(s.deployment.Factory, s.user)

	foreign := s.message("msg-3", codec.ProvideAccount(common.BigToHash(big.NewInt(1)), expected))
	foreign.SourceChain = "other-chain"
	_, err := s.relay.Deliver(s.ctx, foreign)
	s.ErrorIs(err, relay.ErrRejected)

	notRouter := s.message("msg-4", codec.ProvideAccount(common.BigToHash(big.NewInt(1)), expected))
	notRouter.DestinationAddress = s.deployment.Factory
	_, err = s.relay.Deliver(s.ctx, notRouter)
	s.ErrorIs(err, relay.ErrRejected)

	// A rejected message can be retried once fixed.
	foreign.SourceChain = s.user.ChainRef
	_, err = s.relay.Deliver(s.ctx, foreign)
	s.NoError(err)
}

func (s *NodeIntegrationTestSuite) TestSuccessorAdministration() {
	req := types.SetSuccessorRequest{Router: s.deployment.Router(), Successor: s.deployment.Routers[1]}

	err := s.api.DoJSON(s.ctx, http.MethodPut, "/api/v1/admin/successor", req, nil)
	s.Equal(http.StatusUnauthorized, httpclient.StatusCode(err))

	var updated types.RouterResponse
	s.Require().NoError(s.api.DoJSON(s.ctx, http.MethodPut, "/api/v1/admin/successor", req, &updated,
		httpclient.WithHeader(constants.APIKeyHeader, adminKey)))
	s.True(updated.HasSuccessor)

	var got types.RouterResponse
	s.Require().NoError(s.api.DoJSON(s.ctx, http.MethodGet, "/api/v1/routers/"+s.deployment.Router().Hex()+"/successor", nil, &got))
	s.Equal(s.deployment.Routers[1], got.Successor)
}

func TestNodeIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(NodeIntegrationTestSuite))
}
