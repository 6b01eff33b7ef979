package execservice

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bft-labs/warden/pkg/worker"
)

// recordingObserver is a Sensor that also observes process events.
type recordingObserver struct {
	mu     sync.Mutex
	starts []string
	exits  []string
}

func (r *recordingObserver) MaybeStart(ctx context.Context) error { return nil }
func (r *recordingObserver) Stop(ctx context.Context) error       { return nil }

func (r *recordingObserver) OnProcessStart(service string, pid int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts = append(r.starts, service)
}

func (r *recordingObserver) OnProcessExit(service string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exits = append(r.exits, service)
}

func (r *recordingObserver) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.starts), len(r.exits)
}

func TestService_StartStop(t *testing.T) {
	s := New("sleeper", "sleep", []string{"60"}, WithGracePeriod(2*time.Second))

	if err := s.MaybeStart(context.Background()); err != nil {
		t.Fatalf("MaybeStart() error = %v", err)
	}
	if exited, _ := s.Exited(); exited {
		t.Fatal("process exited immediately")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if exited, _ := s.Exited(); !exited {
		t.Fatal("process still running after Stop()")
	}
}

func TestService_MaybeStartIdempotent(t *testing.T) {
	obs := &recordingObserver{}
	s := New("sleeper", "sleep", []string{"60"}, WithGracePeriod(2*time.Second))
	s.AddSensor(obs)
	s.AddSensor(obs) // repeat attachment is a no-op

	if err := s.MaybeStart(context.Background()); err != nil {
		t.Fatalf("MaybeStart() error = %v", err)
	}
	if err := s.MaybeStart(context.Background()); err != nil {
		t.Fatalf("second MaybeStart() error = %v", err)
	}

	starts, _ := obs.counts()
	if starts != 1 {
		t.Errorf("observer saw %d starts, want 1", starts)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, exits := obs.counts(); exits == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	_, exits := obs.counts()
	t.Errorf("observer saw %d exits, want 1", exits)
}

func TestService_StopWithoutStart(t *testing.T) {
	s := New("never", "sleep", []string{"60"})
	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() on never-started service error = %v", err)
	}
}

func TestService_StartMissingBinary(t *testing.T) {
	s := New("ghost", "/nonexistent/definitely-not-a-binary", nil)
	if err := s.MaybeStart(context.Background()); err == nil {
		t.Fatal("MaybeStart() accepted a missing binary")
	}
}

func TestService_StopAfterNaturalExit(t *testing.T) {
	s := New("oneshot", "true", nil)
	if err := s.MaybeStart(context.Background()); err != nil {
		t.Fatalf("MaybeStart() error = %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if exited, _ := s.Exited(); exited {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop() after natural exit error = %v", err)
	}
}

func TestService_ImplementsWorkerCapabilities(t *testing.T) {
	var svc interface{} = New("x", "true", nil)

	if _, ok := svc.(worker.Service); !ok {
		t.Error("Service does not implement worker.Service")
	}
	if _, ok := svc.(worker.SensorHost); !ok {
		t.Error("Service does not implement worker.SensorHost")
	}
}
