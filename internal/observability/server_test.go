// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func get(t *testing.T, h http.Handler, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Code, rec.Body.String()
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := NewServer("127.0.0.1:0", nil)
	srv.Metrics().BuildInfo.WithLabelValues("v1.2.3").Set(1)

	code, body := get(t, srv.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "# TYPE")
	assert.Contains(t, body, "go_goroutines")
	assert.Contains(t, body, `abduction_build_info{version="v1.2.3"} 1`)
}

func TestServer_Liveness(t *testing.T) {
	srv := NewServer("127.0.0.1:0", func() error { return errors.New("ignored") })

	code, body := get(t, srv.Handler(), "/healthz/liveness")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)
}

func TestServer_Readiness(t *testing.T) {
	tests := []struct {
		name   string
		check  ReadinessCheck
		code   int
		body   string
		result string
	}{
		{"nil check", nil, http.StatusOK, "ok\n", "ready"},
		{"ready", func() error { return nil }, http.StatusOK, "ok\n", "ready"},
		{
			"not ready",
			func() error { return errors.New("tick 7 failed to flush") },
			http.StatusServiceUnavailable,
			"not ready: tick 7 failed to flush\n",
			"not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer("127.0.0.1:0", tt.check)

			code, body := get(t, srv.Handler(), "/healthz/readiness")
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.body, body)
			assert.InDelta(t, 1, testutil.ToFloat64(srv.Metrics().ReadinessChecks.WithLabelValues(tt.result)), 0)
		})
	}
}

func TestServer_RejectsOtherMethods(t *testing.T) {
	srv := NewServer("127.0.0.1:0", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz/readiness", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_RegistersExtraCollectors(t *testing.T) {
	ticks := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_ticks_total", Help: "ticks"})
	srv := NewServer("127.0.0.1:0", nil, func(reg prometheus.Registerer) {
		reg.MustRegister(ticks)
	})
	ticks.Add(3)

	_, body := get(t, srv.Handler(), "/metrics")
	assert.Contains(t, body, "test_ticks_total 3")
	assert.Equal(t, 1, testutil.CollectAndCount(ticks))
	assert.NotNil(t, srv.Registry())
}

func TestServer_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := NewServer("127.0.0.1:0", nil)
	assert.Empty(t, srv.Addr())

	errCh, err := srv.Start()
	require.NoError(t, err)
	require.NotEmpty(t, srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/healthz/liveness")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, "ok\n", string(body))
	http.DefaultClient.CloseIdleConnections()

	_, err = srv.Start()
	assert.Error(t, err, "second start fails while running")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, srv.Stop(ctx), "stop is idempotent")

	select {
	case err, ok := <-errCh:
		assert.False(t, ok, "channel closes without error, got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("error channel not closed after stop")
	}
}

func TestServer_StartFailsOnBusyAddress(t *testing.T) {
	first := NewServer("127.0.0.1:0", nil)
	_, err := first.Start()
	require.NoError(t, err)
	t.Cleanup(func() { _ = first.Stop(context.Background()) })

	second := NewServer(first.Addr(), nil)
	_, err = second.Start()
	require.Error(t, err)
	assert.Empty(t, second.Addr())

	// Stopping a server that never started is a no-op.
	assert.NoError(t, second.Stop(context.Background()))
}
