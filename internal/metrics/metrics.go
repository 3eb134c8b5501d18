// Package metrics provides interfaces and implementations for collecting
// IMAP client metrics. This package defines the Collector interface for
// recording metrics and the Server interface for exposing them.
package metrics

import "context"

// Collector defines the interface for recording IMAP client metrics.
type Collector interface {
	// Connection metrics
	ConnectionOpened()
	ConnectionClosed()
	TLSConnectionEstablished()

	// Authentication metrics, labelled by SASL mechanism or "LOGIN".
	AuthAttempt(mechanism string, success bool)

	// Command metrics
	CommandSent(command string)
	ResponseError(kind string)
	BytesRead(n int)
}

// Server defines the interface for a metrics HTTP server.
type Server interface {
	// Start begins serving metrics. It blocks until the context is canceled
	// or an error occurs.
	Start(ctx context.Context) error

	// Shutdown gracefully stops the metrics server.
	Shutdown(ctx context.Context) error
}
