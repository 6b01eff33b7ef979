package console

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/warden/pkg/log"
)

func TestServer_StartServesMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "warden_test_total",
		Help: "Test counter.",
	})
	registry.MustRegister(counter)
	counter.Inc()

	s := New("localhost:0", log.NewNoopLogger(), WithGatherer(registry))
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", s.Addr()))
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}
	if want := "warden_test_total 1"; !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q:\n%s", want, body)
	}
}

func TestServer_StartTwice(t *testing.T) {
	s := New("localhost:0", nil)
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	if err := s.Start(); err == nil {
		t.Fatal("second Start() succeeded")
	}
}

func TestServer_CloseWithoutStart(t *testing.T) {
	s := New("", nil)
	if err := s.Close(); err != nil {
		t.Errorf("Close() on never-started server error = %v", err)
	}
}
