package helpers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStages(t *testing.T) {
	tests := []struct {
		stage  string
		valid  bool
		policy StagePolicy
	}{
		{stage: StageProd, valid: true, policy: StagePolicy{DatabaseFromRDS: true, ReleaseMode: true}},
		{stage: StageDev, valid: true, policy: StagePolicy{DatabaseFromRDS: true}},
		{stage: StageLocal, valid: true, policy: StagePolicy{BuiltinGenesis: true, MemoryResults: true}},
		{stage: "staging", policy: StagePolicy{DatabaseFromRDS: true, ReleaseMode: true}},
		{stage: "", policy: StagePolicy{DatabaseFromRDS: true, ReleaseMode: true}},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsValidStage(tt.stage))
			assert.Equal(t, tt.policy, PolicyFor(tt.stage))
		})
	}
}

func TestAPIKeys(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, APIKeyPrefix+"_"))

	other, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)

	hash, err := HashAPIKey(key)
	require.NoError(t, err)
	assert.NotEqual(t, key, hash)
	assert.NoError(t, CompareAPIKeyHash(key, hash))
	assert.Error(t, CompareAPIKeyHash(other, hash))
}

func TestParsePaginationParams(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		query   string
		want    PaginationParams
		wantErr bool
	}{
		{name: "defaults", query: "", want: PaginationParams{Limit: 50}},
		{name: "limit and offset", query: "?limit=10&offset=20", want: PaginationParams{Limit: 10, Offset: 20}},
		{name: "limit is clamped", query: "?limit=1000", want: PaginationParams{Limit: 500}},
		{name: "zero limit keeps default", query: "?limit=0", want: PaginationParams{Limit: 50}},
		{name: "page", query: "?limit=10&page=3", want: PaginationParams{Limit: 10, Offset: 20}},
		{name: "page wins over offset", query: "?page=2&offset=7", want: PaginationParams{Limit: 50, Offset: 50}},
		{name: "negative limit", query: "?limit=-1", wantErr: true},
		{name: "bad offset", query: "?offset=x", wantErr: true},
		{name: "page zero", query: "?page=0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/results"+tt.query, nil)

			got, err := ParsePaginationParams(c, 50, 500)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
