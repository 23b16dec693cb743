package server

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/queueautomator/internal/config"
	"github.com/ib-77/queueautomator/internal/monitoring"
	"github.com/ib-77/queueautomator/internal/workers"
	"github.com/ib-77/queueautomator/pkg/qa/automator"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newPipeline(t *testing.T) *automator.Automator {
	t.Helper()

	qa := automator.New("server-test")
	qa.MustRegister(automator.Input, automator.Output, 2, workers.New(0, nil).Process())
	return qa
}

func do(h http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func collect(t *testing.T, h http.Handler, want int) []any {
	t.Helper()

	var got []any
	require.Eventually(t, func() bool {
		w := do(h, http.MethodGet, "/output")
		if w.Code != http.StatusOK {
			return false
		}
		var resp outputResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			return false
		}
		got = append(got, resp.Items...)
		return len(got) >= want
	}, 5*time.Second, 10*time.Millisecond)
	return got
}

func TestProcess(t *testing.T) {
	t.Parallel()

	pipeline := newPipeline(t)
	srv := NewServer(config.Default(), pipeline, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, pipeline.RunForever(ctx))

	for _, data := range []string{"a", "b", "c"} {
		w := do(srv.Handler(), http.MethodPost, "/process/"+data)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"processing `+data+`"}`, w.Body.String())
	}

	got := collect(t, srv.Handler(), 3)
	assert.ElementsMatch(t, []any{"processed a", "processed b", "processed c"}, got)
}

func TestNotRunning(t *testing.T) {
	t.Parallel()

	pipeline := newPipeline(t)
	srv := NewServer(config.Default(), pipeline, nil, nil)

	w := do(srv.Handler(), http.MethodPost, "/process/a")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, 0, pipeline.Stages()[0].Pending)

	w = do(srv.Handler(), http.MethodGet, "/output")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(srv.Handler(), http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var health healthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, healthResponse{Status: "degraded", Automator: "server-test"}, health)
}

func TestStages(t *testing.T) {
	t.Parallel()

	srv := NewServer(config.Default(), newPipeline(t), nil, nil)

	w := do(srv.Handler(), http.MethodGet, "/stages")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Automator string            `json:"automator"`
		Stages    []automator.Stage `json:"stages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "server-test", resp.Automator)
	assert.Equal(t, []automator.Stage{{Name: automator.Input, Successor: automator.Output, Workers: 2}}, resp.Stages)
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.RateLimit.RequestsPerSecond = 0.001
	cfg.RateLimit.Burst = 1

	pipeline := newPipeline(t)
	srv := NewServer(cfg, pipeline, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, pipeline.RunForever(ctx))

	assert.Equal(t, http.StatusOK, do(srv.Handler(), http.MethodPost, "/process/a").Code)
	assert.Equal(t, http.StatusTooManyRequests, do(srv.Handler(), http.MethodPost, "/process/b").Code)
	// reads are not limited
	assert.Equal(t, http.StatusOK, do(srv.Handler(), http.MethodGet, "/output").Code)
}

func TestMetricsRoute(t *testing.T) {
	t.Parallel()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	pipeline := automator.New("server-test", automator.WithObserver(metrics))
	pipeline.MustRegister(automator.Input, automator.Output, 1, workers.New(0, nil).Process())

	srv := NewServer(config.Default(), pipeline, metrics, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, pipeline.RunForever(ctx))

	require.Equal(t, http.StatusOK, do(srv.Handler(), http.MethodPost, "/process/x").Code)
	collect(t, srv.Handler(), 1)

	// the counter is bumped right after the result is handed over
	assert.Eventually(t, func() bool {
		w := do(srv.Handler(), http.MethodGet, "/metrics")
		return w.Code == http.StatusOK &&
			strings.Contains(w.Body.String(), `queueautomator_items_processed_total{stage="input"} 1`) &&
			strings.Contains(w.Body.String(), `queueautomator_runs_active 1`)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestMetricsRoute_Disabled(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Metrics.Enabled = false

	srv := NewServer(cfg, newPipeline(t), monitoring.NewMetrics(prometheus.NewRegistry()), nil)
	assert.Equal(t, http.StatusNotFound, do(srv.Handler(), http.MethodGet, "/metrics").Code)
}

func TestServeAndShutdown(t *testing.T) {
	t.Parallel()

	pipeline := newPipeline(t)
	srv := NewServer(config.Default(), pipeline, nil, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() {
		served <- srv.Serve(context.Background(), ln)
	}()

	url := "http://" + ln.Addr().String()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()

		var health healthResponse
		return json.NewDecoder(resp.Body).Decode(&health) == nil && health.Running
	}, 5*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after Shutdown")
	}
	assert.False(t, pipeline.Running())
}

func TestServe_PipelineAlreadyRunning(t *testing.T) {
	t.Parallel()

	pipeline := newPipeline(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, pipeline.RunForever(ctx))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(config.Default(), pipeline, nil, nil)
	assert.Error(t, srv.Serve(ctx, ln))
}
