package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserversAreNoOpsBeforeInit(t *testing.T) {
	// Must not panic when Init has not run (library consumers may skip it).
	ObserveFetch(http.MethodGet, "ok")
	ObserveRobotsDenied("example.com")
	ObserveRateLimitDelay(time.Millisecond)
	ObserveRecord("csv")
	ObserveCareersLookup("link")
}

func TestMetricsEndpoint(t *testing.T) {
	Init()
	ObserveFetch(http.MethodGet, "ok")
	ObserveRecord("csv")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "harvester_fetch_requests_total"))
}
