package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/crypto/bcrypt"

	"authd/internal/auth"
	"authd/internal/httpapi"
	"authd/internal/manager"
	"authd/internal/store"
	"authd/internal/store/memstore"
	"authd/pkg/types"
)

const (
	devEmail    = "devuser@jlabs.test"
	devPassword = "TestPass123!"
)

type testServer struct {
	srv    *httptest.Server
	mgr    *manager.Manager
	dialer *memstore.Dialer
	clock  *clockwork.FakeClock
}

// newServer wires the full stack over an in-memory store seeded with the
// development user. The manager is not started; the gate connects lazily.
func newServer(t *testing.T, mutate ...func(*manager.Config)) *testServer {
	t.Helper()
	st := memstore.New()
	hash, err := auth.HashPassword(devPassword, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := st.Put(&store.User{Email: devEmail, Password: hash}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	d := memstore.NewDialer(st)
	clk := clockwork.NewFakeClock()
	cfg := manager.Config{
		Target:       "memory://e2e",
		Dialer:       d,
		Clock:        clk,
		RetryBackoff: 3 * time.Second,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}
	mgr := manager.NewWithConfig(cfg)
	srv := httptest.NewServer(httpapi.NewMux(auth.New(mgr, auth.Config{})))
	t.Cleanup(func() {
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mgr.Close(ctx)
	})
	return &testServer{srv: srv, mgr: mgr, dialer: d, clock: clk}
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func login(t *testing.T, base, email, password string) (*http.Response, []byte) {
	t.Helper()
	b, _ := json.Marshal(types.LoginRequest{Email: email, Password: password})
	return httpPostJSON(t, base+"/login", b)
}

func rootStatus(t *testing.T, base string) types.RootResponse {
	t.Helper()
	resp, body := httpGet(t, base+"/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET / status=%d body=%s", resp.StatusCode, body)
	}
	var rr types.RootResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		t.Fatalf("json: %v body=%s", err, body)
	}
	return rr
}

// waitFor polls cond until it holds or two seconds pass.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
