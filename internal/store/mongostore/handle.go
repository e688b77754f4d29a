package mongostore

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/event"
	"go.mongodb.org/mongo-driver/mongo"

	"authd/internal/store"
)

// Handle wraps a connected client. Health is fed by the driver's heartbeat
// monitor, so Healthy never touches the network.
type Handle struct {
	client *mongo.Client
	db     *mongo.Database

	healthy atomic.Bool
	closed  atomic.Bool

	mu      sync.Mutex
	servers map[string]bool
}

func (h *Handle) monitor() *event.ServerMonitor {
	return &event.ServerMonitor{
		ServerHeartbeatSucceeded: func(e *event.ServerHeartbeatSucceededEvent) {
			h.observe(serverAddr(e.ConnectionID), true)
		},
		ServerHeartbeatFailed: func(e *event.ServerHeartbeatFailedEvent) {
			h.observe(serverAddr(e.ConnectionID), false)
		},
	}
}

// serverAddr strips the driver's per-connection suffix ("host:port[-N]") so
// results from successive monitor connections land on one entry.
func serverAddr(connID string) string {
	addr, _, _ := strings.Cut(connID, "[")
	return addr
}

// observe records a heartbeat result. The handle stays healthy while any
// server is reachable.
func (h *Handle) observe(server string, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.servers[server] = ok
	reachable := false
	for _, up := range h.servers {
		if up {
			reachable = true
			break
		}
	}
	h.healthy.Store(reachable)
}

func (h *Handle) Healthy() bool { return h.healthy.Load() && !h.closed.Load() }

func (h *Handle) Users() store.UserStore {
	return &userStore{coll: h.db.Collection(UsersCollection)}
}

// Database exposes the underlying database for callers that need more than users.
func (h *Handle) Database() *mongo.Database { return h.db }

func (h *Handle) Close(ctx context.Context) error {
	if h.closed.Swap(true) {
		return nil
	}
	return h.client.Disconnect(ctx)
}
