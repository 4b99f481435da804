package dataservice

import (
	"context"
	"errors"
	"testing"
)

func TestConnectRetriesUntilSuccess(t *testing.T) {
	if testing.Short() {
		t.Skip("retry interval makes this test slow")
	}

	attempts := 0
	adapter := &stubAdapter{
		connectFn: func(context.Context) error {
			attempts++
			if attempts < 3 {
				return errors.New("backend not ready")
			}
			return nil
		},
	}
	svc := newTestService(t, adapter)

	if err := svc.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("connect attempted %d times, want 3", attempts)
	}
}

func TestConnectRunsAfterConnectHook(t *testing.T) {
	hookRan := false
	settings := DefaultSettings("posts")
	settings.AfterConnect = func(context.Context) error {
		hookRan = true
		return nil
	}
	svc, err := New(settings, &stubAdapter{})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	if err := svc.Connect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hookRan {
		t.Error("after-connect hook never ran")
	}
}

func TestAfterConnectFailureDoesNotFailConnect(t *testing.T) {
	settings := DefaultSettings("posts")
	settings.AfterConnect = func(context.Context) error {
		return errors.New("seed failed")
	}
	svc, err := New(settings, &stubAdapter{})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	if err := svc.Connect(context.Background()); err != nil {
		t.Errorf("hook failure surfaced from Connect: %v", err)
	}
}

func TestDisconnectDelegatesToAdapter(t *testing.T) {
	disconnected := false
	adapter := &stubAdapter{
		disconnectFn: func(context.Context) error {
			disconnected = true
			return nil
		},
	}
	svc := newTestService(t, adapter)

	if err := svc.Disconnect(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !disconnected {
		t.Error("adapter disconnect never ran")
	}
}
