package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"

	"github.com/hireloop/portal-api/internal/platform/config"
)

type flakyPinger struct {
	down atomic.Bool
}

func (p *flakyPinger) Ping(context.Context) error {
	if p.down.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func newTestServer(t *testing.T) (*Server, healthpb.HealthClient, string, context.CancelFunc, <-chan error) {
	t.Helper()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := New(config.ServerConfig{
		ListenAddr:      "127.0.0.1:0",
		ShutdownTimeout: time.Second,
	}, handler, slog.New(slog.NewTextHandler(io.Discard, nil)))

	httpLis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	grpcLis := bufconn.Listen(1 << 20)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.serve(ctx, httpLis, grpcLis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return grpcLis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	return srv, healthpb.NewHealthClient(conn), "http://" + httpLis.Addr().String(), cancel, done
}

func TestServer_ServesHTTPAndHealth(t *testing.T) {
	t.Parallel()

	_, client, baseURL, cancel, done := newTestServer(t)

	resp, err := http.Get(baseURL + "/anything")
	if err != nil {
		t.Fatalf("http get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	got, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	if got.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("expected SERVING, got %v", got.GetStatus())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_MonitorHealthReflectsPinger(t *testing.T) {
	t.Parallel()

	srv, client, _, cancel, _ := newTestServer(t)
	defer cancel()

	p := &flakyPinger{}
	p.down.Store(true)

	monitorCtx, stopMonitor := context.WithCancel(context.Background())
	defer stopMonitor()
	go srv.MonitorHealth(monitorCtx, p, 20*time.Millisecond)

	waitFor := func(want healthpb.HealthCheckResponse_ServingStatus) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			ctx, stop := context.WithTimeout(context.Background(), time.Second)
			got, err := client.Check(ctx, &healthpb.HealthCheckRequest{})
			stop()
			if err == nil && got.GetStatus() == want {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatalf("health never became %v", want)
	}

	waitFor(healthpb.HealthCheckResponse_NOT_SERVING)
	p.down.Store(false)
	waitFor(healthpb.HealthCheckResponse_SERVING)
}
