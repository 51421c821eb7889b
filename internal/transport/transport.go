// Package transport defines the interface for parley's network listeners.
//
// Each transport (HTTP/WebSocket, gRPC health) owns one listening socket.
// The daemon starts every enabled transport, waits for a shutdown signal
// and then closes them; it doesn't care what a transport serves.
package transport

import "context"

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting connections. It blocks until the context is
	// cancelled or the listener fails.
	Listen(ctx context.Context) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
