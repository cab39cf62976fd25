package metrics_test

import (
	"testing"
	"time"

	"github.com/cyphera/remote-accounts/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordersRegisterOnce(t *testing.T) {
	metrics.RecordInstruction("deposit", true)
	metrics.RecordInstruction("deposit", false)
	metrics.RecordMessage("chain", metrics.OutcomeDelivered, time.Millisecond)
	metrics.RecordSinkError("queue")
	metrics.RecordHTTPRequest("GET", "/health", 200, time.Millisecond)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["remote_accounts_router_instructions_total"])
	assert.True(t, names["remote_accounts_bridge_messages_total"])
	assert.True(t, names["remote_accounts_results_sink_errors_total"])
	assert.True(t, names["remote_accounts_http_requests_total"])
}
