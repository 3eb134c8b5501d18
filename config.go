package imap

import (
	"io"
	"time"

	"github.com/BrianLeishman/imapsock/internal/metrics"
)

// Config holds the connection and credential settings of a client.
type Config struct {
	Host string
	// Port defaults to DefaultPort, or DefaultTLSPort when SSL is set.
	Port int
	// SSL dials with implicit TLS.
	SSL bool
	// TLSSkipVerify disables certificate verification. Use with caution;
	// skipping verification exposes the connection to man-in-the-middle
	// attacks.
	TLSSkipVerify bool

	// OAuth selects AUTHENTICATE XOAUTH2 with AccessToken instead of LOGIN
	// with Password.
	OAuth       bool
	Username    string
	Password    string
	AccessToken string

	// DialTimeout defines how long to wait when establishing a new
	// connection. Zero falls back to DefaultDialTimeout.
	DialTimeout time.Duration
	// CommandTimeout bounds every single read and write. Zero means no
	// timeout.
	CommandTimeout time.Duration

	// Debug records every byte written and every payload or error read in
	// a Transcript.
	Debug bool
	// DebugOutput receives the transcript when a read fails in debug mode.
	// Nil means os.Stderr.
	DebugOutput io.Writer
}

func (c Config) port() int {
	if c.Port != 0 {
		return c.Port
	}
	if c.SSL {
		return DefaultTLSPort
	}
	return DefaultPort
}

// Option customizes a Client.
type Option func(*Client)

// WithDialer replaces the function used to open the transport.
func WithDialer(dial DialFunc) Option {
	return func(c *Client) {
		c.dial = dial
	}
}

// WithLogger sets the logger for a single client.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// WithMetrics sets the collector that records client activity.
func WithMetrics(collector metrics.Collector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDebugSink replaces the debug sink. It overrides Config.Debug.
func WithDebugSink(sink DebugSink) Option {
	return func(c *Client) {
		c.sink = sink
	}
}
