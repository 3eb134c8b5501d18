package imap

import (
	"io"
	"os"

	"github.com/rs/xid"

	"github.com/BrianLeishman/imapsock/internal/metrics"
)

// Client is a single IMAP session over one transport.
//
// A Client is strictly request/response: every command's response is read
// completely before the next command is written. It is not safe for
// concurrent use.
type Client struct {
	cfg     Config
	id      string
	dial    DialFunc
	log     Logger
	metrics metrics.Collector
	sink    DebugSink

	session session
	state   State
	mailbox string
}

// New returns a disconnected client for cfg.
func New(cfg Config, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		id:      xid.New().String(),
		dial:    dialHost,
		metrics: &metrics.NoopCollector{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sink == nil {
		if cfg.Debug {
			out := cfg.DebugOutput
			if out == nil {
				out = os.Stderr
			}
			c.sink = NewTranscript(out)
		} else {
			c.sink = noopSink{}
		}
	}
	return c
}

// ID returns the identifier attached to this client's log entries.
func (c *Client) ID() string { return c.id }

// State returns the current lifecycle state.
func (c *Client) State() State { return c.state }

// Tag returns the tag of the most recently sent command.
func (c *Client) Tag() string { return c.session.tag() }

// LastError returns the detail of the last error response or read failure,
// or "" if none was seen.
func (c *Client) LastError() string { return c.session.lastErr }

// Mailbox returns the currently selected mailbox, if any.
func (c *Client) Mailbox() string { return c.mailbox }

// Connected reports whether the client holds a live transport.
func (c *Client) Connected() bool { return c.session.connected() }

// Connect opens the transport and reads the server greeting.
func (c *Client) Connect() error {
	if c.session.connected() {
		return newError("connect", ErrInvalidState, "already connected", nil)
	}

	c.debugLog("establishing connection", "host", c.cfg.Host, "port", c.cfg.port(), "ssl", c.cfg.SSL)
	conn, err := c.dial(c.cfg)
	if err != nil {
		c.warnLog("failed to connect", "host", c.cfg.Host, "error", err)
		return newError("connect", ErrConnection, "unable to create the socket connection", err)
	}

	c.session = session{conn: conn}
	c.state = StateConnected
	c.metrics.ConnectionOpened()
	if c.cfg.SSL {
		c.metrics.TLSConnectionEstablished()
	}

	greeting, err := c.read()
	if err != nil {
		_ = conn.Close()
		c.session.reset()
		c.state = StateDisconnected
		c.metrics.ConnectionClosed()
		return newError("connect", ErrConnection, "unable to read the server greeting", err)
	}
	c.debugLog("connected", "greeting", string(dropNl([]byte(greeting))))
	return nil
}

// Disconnect closes the transport without sending LOGOUT.
func (c *Client) Disconnect() error {
	if !c.session.connected() {
		return newError("disconnect", ErrConnection, "no live connection", nil)
	}
	return c.closeTransport("disconnect")
}

func (c *Client) closeTransport(op string) error {
	c.debugLog("closing connection")
	err := c.session.conn.Close()
	c.session.reset()
	c.state = StateDisconnected
	c.mailbox = ""
	c.metrics.ConnectionClosed()
	if err != nil {
		return newError(op, ErrConnection, "unable to close the connection", err)
	}
	return nil
}

// Debug returns the in-memory transcript, or nil when the client does not
// record one.
func (c *Client) Debug() *Transcript {
	t, _ := c.sink.(*Transcript)
	return t
}

// PrintDebug writes the debug transcript to w.
func (c *Client) PrintDebug(w io.Writer) error {
	if !c.sink.Enabled() {
		return newError("debug", ErrDebugDisabled, "", nil)
	}
	if p, ok := c.sink.(interface{ Print(io.Writer) error }); ok {
		return p.Print(w)
	}
	return c.sink.Flush()
}
