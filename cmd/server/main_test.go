package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/rs/zerolog"
)

type fakeServer struct {
	addr string

	listenErr   error
	shutdownErr error
	closeErr    error

	listenCalled   bool
	shutdownCalled bool
	closeCalled    bool
}

func (f *fakeServer) ListenAndServe() error {
	f.listenCalled = true
	return f.listenErr
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.shutdownCalled = true
	return f.shutdownErr
}

func (f *fakeServer) Close() error {
	f.closeCalled = true
	return f.closeErr
}

func (f *fakeServer) Addr() string { return f.addr }

func TestRun_BootstrapFail_Returns1(t *testing.T) {
	sigCh := make(chan os.Signal, 1)

	build := func() (httpServer, func(), error) {
		return nil, nil, errors.New("missing required env var: JWT_SECRET")
	}

	if got := Run(build, sigCh, zerolog.Nop()); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
}

func TestRun_OnSignal_ShutdownAndReturn0(t *testing.T) {
	// a pending signal makes Run take the signal path
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := &fakeServer{addr: ":0", listenErr: http.ErrServerClosed}

	cleanupCalled := false
	build := func() (httpServer, func(), error) {
		return fs, func() { cleanupCalled = true }, nil
	}

	if got := Run(build, sigCh, zerolog.Nop()); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if !fs.listenCalled || !fs.shutdownCalled {
		t.Fatalf("expected ListenAndServe and Shutdown, got %+v", fs)
	}
	if fs.closeCalled {
		t.Fatalf("did not expect Close on graceful shutdown")
	}
	if !cleanupCalled {
		t.Fatalf("expected cleanup called")
	}
}

func TestRun_OnServerCrash_Return1(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	fs := &fakeServer{addr: ":0", listenErr: errors.New("listen tcp :8080: bind: address already in use")}

	cleanupCalled := false
	build := func() (httpServer, func(), error) {
		return fs, func() { cleanupCalled = true }, nil
	}

	if got := Run(build, sigCh, zerolog.Nop()); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if fs.shutdownCalled {
		t.Fatalf("did not expect Shutdown on crash path")
	}
	if !cleanupCalled {
		t.Fatalf("expected cleanup called")
	}
}

func TestRun_ShutdownFail_ForcesClose(t *testing.T) {
	sigCh := make(chan os.Signal, 1)
	sigCh <- os.Interrupt

	fs := &fakeServer{
		addr:        ":0",
		listenErr:   http.ErrServerClosed,
		shutdownErr: errors.New("context deadline exceeded"),
	}
	build := func() (httpServer, func(), error) {
		return fs, func() {}, nil
	}

	_ = Run(build, sigCh, zerolog.Nop())

	if !fs.shutdownCalled || !fs.closeCalled {
		t.Fatalf("expected Shutdown then Close, got %+v", fs)
	}
}
