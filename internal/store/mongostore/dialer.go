// Package mongostore implements the store contracts on top of the official
// MongoDB Go driver.
package mongostore

import (
	"context"
	"net"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"authd/internal/store"
)

// UsersCollection is the collection holding user documents.
const UsersCollection = "users"

// Dialer connects to MongoDB. The zero value is ready to use.
type Dialer struct{}

// NewDialer returns a MongoDB dialer.
func NewDialer() *Dialer { return &Dialer{} }

// Dial connects and pings the primary so a returned handle is known to be
// reachable. The driver connects lazily, so the ping is what actually bounds
// the attempt by ConnectTimeout.
func (d *Dialer) Dial(ctx context.Context, target string, opts store.Options) (store.Handle, error) {
	h := &Handle{servers: make(map[string]bool)}
	copts := clientOptions(target, opts).SetServerMonitor(h.monitor())

	client, err := mongo.Connect(ctx, copts)
	if err != nil {
		return nil, &store.Error{Msg: "invalid connection target", Code: store.CodeBadTarget, Reason: err.Error(), Err: err}
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, classify(err)
	}
	h.client = client
	h.db = client.Database(opts.Database)
	h.healthy.Store(true)
	return h, nil
}

func clientOptions(target string, opts store.Options) *options.ClientOptions {
	co := options.Client().ApplyURI(target)
	if opts.ConnectTimeout > 0 {
		co.SetConnectTimeout(opts.ConnectTimeout)
	}
	if opts.SocketTimeout > 0 {
		co.SetSocketTimeout(opts.SocketTimeout)
	}
	if opts.ServerSelectionTimeout > 0 {
		co.SetServerSelectionTimeout(opts.ServerSelectionTimeout)
	}
	if opts.MaxPoolSize > 0 {
		co.SetMaxPoolSize(opts.MaxPoolSize)
	}
	co.SetMinPoolSize(opts.MinPoolSize)
	if nw := familyNetwork(opts.AddressFamily); nw != "" {
		co.SetDialer(&familyDialer{network: nw, d: &net.Dialer{Timeout: opts.ConnectTimeout}})
	}
	return co
}

func familyNetwork(family int) string {
	switch family {
	case 4:
		return "tcp4"
	case 6:
		return "tcp6"
	}
	return ""
}

// familyDialer pins TCP dials to one address family.
type familyDialer struct {
	network string
	d       *net.Dialer
}

func (f *familyDialer) DialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if network == "tcp" {
		network = f.network
	}
	return f.d.DialContext(ctx, network, address)
}
