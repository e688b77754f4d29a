package manager

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"authd/internal/store/memstore"
)

const testTarget = "memory://test"

// newTestManager builds a manager over an in-memory dialer and a fake clock.
// The manager is closed when the test ends.
func newTestManager(t *testing.T, mutate ...func(*Config)) (*Manager, *memstore.Dialer, *clockwork.FakeClock) {
	t.Helper()
	d := memstore.NewDialer(nil)
	clk := clockwork.NewFakeClock()
	cfg := Config{
		Target:       testTarget,
		Dialer:       d,
		Clock:        clk,
		RetryBackoff: 2 * time.Second,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	m := NewWithConfig(cfg)
	t.Cleanup(func() { _ = m.Close(testCtx(t)) })
	return m, d, clk
}

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func phaseIs(m *Manager, p Phase) func() bool {
	return func() bool { return m.Snapshot().Phase == p }
}
