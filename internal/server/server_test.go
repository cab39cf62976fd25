package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/cyphera/remote-accounts/internal/handlers"
	"github.com/cyphera/remote-accounts/internal/helpers"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/mocks"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/server"
	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	logger.InitLogger("test")
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	engine  *gin.Engine
	routers *mocks.MockRouterAdminService
	results *mocks.MockResultService
}

func newFixture(t *testing.T, adminHash string) fixture {
	ctrl := gomock.NewController(t)
	f := fixture{
		routers: mocks.NewMockRouterAdminService(ctrl),
		results: mocks.NewMockResultService(ctrl),
	}
	f.engine = server.NewRouter(server.Services{
		Messages: mocks.NewMockMessageService(ctrl),
		Accounts: mocks.NewMockAccountService(ctrl),
		Routers:  f.routers,
		Results:  f.results,
		Health:   handlers.NewHealthHandler(31337, "chain", nil),
	}, server.Options{AdminAPIKeyHash: adminHash})
	return f
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPublicRoutes(t *testing.T) {
	f := newFixture(t, "")

	w := do(f.engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(constants.CorrelationIDHeader))

	f.results.EXPECT().ListResults(gomock.Any(), results.Query{Limit: results.DefaultLimit}).Return(nil, nil)
	assert.Equal(t, http.StatusOK, do(f.engine, http.MethodGet, "/api/v1/results", "", nil).Code)

	// Served after the request above so the HTTP counters exist.
	w = do(f.engine, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "remote_accounts_http_requests_total")
}

func TestAdminRoutesRequireKey(t *testing.T) {
	hash, err := helpers.HashAPIKey("rak_admin")
	require.NoError(t, err)
	f := newFixture(t, hash)

	routerAddr := common.HexToAddress("0x00000000000000000000000000000000000b0001")
	successor := common.HexToAddress("0x00000000000000000000000000000000000b0002")
	body := `{"router":"` + routerAddr.Hex() + `","successor":"` + successor.Hex() + `"}`

	w := do(f.engine, http.MethodPut, "/api/v1/admin/successor", body, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(f.engine, http.MethodPut, "/api/v1/admin/successor", body, map[string]string{constants.APIKeyHeader: "rak_other"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.routers.EXPECT().SetSuccessor(gomock.Any(), routerAddr, successor).
		Return(&types.RouterResponse{Address: routerAddr, Successor: successor, HasSuccessor: true}, nil)
	w = do(f.engine, http.MethodPut, "/api/v1/admin/successor", body, map[string]string{constants.APIKeyHeader: "rak_admin"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestAdminRoutesDisabledWithoutHash(t *testing.T) {
	f := newFixture(t, "")
	w := do(f.engine, http.MethodPut, "/api/v1/admin/successor", `{}`, map[string]string{constants.APIKeyHeader: "rak_admin"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServerRunStopsOnCancel(t *testing.T) {
	srv := server.New("127.0.0.1:0", http.NotFoundHandler(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
