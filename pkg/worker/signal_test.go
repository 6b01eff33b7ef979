package worker

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"
)

// blockingService holds its Stop until released, so tests can deliver a
// second signal while a shutdown is in flight.
type blockingService struct {
	mockService
	stopEntered chan struct{}
	release     chan struct{}
	once        sync.Once
}

func newBlockingService(rec *callRecorder, name string) *blockingService {
	return &blockingService{
		mockService: mockService{rec: rec, name: name},
		stopEntered: make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (b *blockingService) Stop(ctx context.Context) error {
	b.once.Do(func() { close(b.stopEntered) })
	<-b.release
	return b.mockService.Stop(ctx)
}

// blockingStartService holds its MaybeStart until released, so tests can
// deliver a signal while the start pass is in flight.
type blockingStartService struct {
	mockService
	startEntered chan struct{}
	release      chan struct{}
	once         sync.Once
}

func newBlockingStartService(rec *callRecorder, name string) *blockingStartService {
	return &blockingStartService{
		mockService:  mockService{rec: rec, name: name},
		startEntered: make(chan struct{}),
		release:      make(chan struct{}),
	}
}

func (b *blockingStartService) MaybeStart(ctx context.Context) error {
	b.once.Do(func() { close(b.startEntered) })
	<-b.release
	return b.mockService.MaybeStart(ctx)
}

func TestSignalBridge_TriggersOrderedShutdown(t *testing.T) {
	rec := &callRecorder{}
	a := &mockService{rec: rec, name: "A"}
	b := &mockService{rec: rec, name: "B"}
	notify := make(chan os.Signal, 2)
	exits := make(chan int, 2)

	w := New([]Service{a, b},
		WithNotifyChannel(notify),
		WithExitFunc(func(code int) { exits <- code }),
		WithStatsInterval(time.Hour),
	)

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(context.Background()) }()

	waitForState(t, w, StateRunning)
	notify <- syscall.SIGINT

	if err := <-runErr; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"A.start", "B.start", "B.stop", "A.stop"}
	if got := rec.Calls(); !equalCalls(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if code := <-exits; code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestSignalBridge_WaitsForInFlightStart(t *testing.T) {
	rec := &callRecorder{}
	a := newBlockingStartService(rec, "A")
	b := &mockService{rec: rec, name: "B"}
	notify := make(chan os.Signal, 1)
	exits := make(chan int, 1)

	w := New([]Service{a, b},
		WithNotifyChannel(notify),
		WithExitFunc(func(code int) { exits <- code }),
		WithStatsInterval(time.Hour),
	)

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(context.Background()) }()

	select {
	case <-a.startEntered:
	case <-time.After(2 * time.Second):
		t.Fatal("startup never began")
	}
	notify <- syscall.SIGINT

	// Teardown must wait for the start pass; nothing stops while A's
	// start is still in flight.
	time.Sleep(50 * time.Millisecond)
	if got := rec.Calls(); len(got) != 0 {
		t.Fatalf("teardown ran during startup: %v", got)
	}
	close(a.release)

	if err := <-runErr; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"A.start", "B.start", "B.stop", "A.stop"}
	if got := rec.Calls(); !equalCalls(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if code := <-exits; code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
}

func TestSignalBridge_RepeatSignalSwallowed(t *testing.T) {
	rec := &callRecorder{}
	svc := newBlockingService(rec, "A")
	notify := make(chan os.Signal, 2)
	exits := make(chan int, 2)

	w := New([]Service{svc},
		WithNotifyChannel(notify),
		WithExitFunc(func(code int) { exits <- code }),
		WithStatsInterval(time.Hour),
	)

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(context.Background()) }()

	waitForState(t, w, StateRunning)
	notify <- syscall.SIGINT

	// Wait until teardown is in flight, then deliver a second signal.
	select {
	case <-svc.stopEntered:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown never began")
	}
	notify <- syscall.SIGINT
	close(svc.release)

	if err := <-runErr; err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Exactly one completed shutdown sequence.
	want := []string{"A.start", "A.stop"}
	if got := rec.Calls(); !equalCalls(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if code := <-exits; code != 0 {
		t.Errorf("exit code = %d, want 0", code)
	}
	select {
	case code := <-exits:
		t.Errorf("exit called twice, second code = %d", code)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSignalBridge_StopFailureExitsNonZero(t *testing.T) {
	rec := &callRecorder{}
	a := &mockService{rec: rec, name: "A", stopErr: os.ErrClosed}
	notify := make(chan os.Signal, 1)
	exits := make(chan int, 1)

	w := New([]Service{a},
		WithNotifyChannel(notify),
		WithExitFunc(func(code int) { exits <- code }),
		WithStatsInterval(time.Hour),
	)

	runErr := make(chan error, 1)
	go func() { runErr <- w.Run(context.Background()) }()

	waitForState(t, w, StateRunning)
	notify <- syscall.SIGTERM

	if err := <-runErr; err == nil {
		t.Fatal("Run() returned nil after failed teardown")
	}
	if code := <-exits; code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
}
