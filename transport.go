package imap

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"os"
	"strconv"
	"time"
)

// Transport is the duplex byte stream a session runs over. A net.Conn or
// *tls.Conn satisfies it.
type Transport interface {
	io.ReadWriteCloser
}

// deadliner is implemented by transports that support I/O deadlines.
type deadliner interface {
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// DialFunc opens a transport for the given configuration.
type DialFunc func(cfg Config) (Transport, error)

// dialHost establishes a plain or TLS connection to the IMAP server
func dialHost(cfg Config) (Transport, error) {
	timeout := cfg.DialTimeout
	if timeout == 0 {
		timeout = DefaultDialTimeout
	}
	dialer := &net.Dialer{Timeout: timeout}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.port()))
	if !cfg.SSL {
		return dialer.Dial("tcp", addr)
	}
	tlsCfg := &tls.Config{ServerName: cfg.Host}
	if cfg.TLSSkipVerify {
		tlsCfg.InsecureSkipVerify = true
	}
	return tls.DialWithDialer(dialer, "tcp", addr, tlsCfg)
}

// isTimeout reports whether err is a deadline expiry.
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// setReadDeadline arms the command timeout for the next read, if the
// transport supports deadlines.
func (c *Client) setReadDeadline() {
	d, ok := c.session.conn.(deadliner)
	if !ok {
		return
	}
	if c.cfg.CommandTimeout == 0 {
		_ = d.SetReadDeadline(time.Time{})
		return
	}
	_ = d.SetReadDeadline(time.Now().Add(c.cfg.CommandTimeout))
}

func (c *Client) setWriteDeadline() {
	d, ok := c.session.conn.(deadliner)
	if !ok {
		return
	}
	if c.cfg.CommandTimeout == 0 {
		_ = d.SetWriteDeadline(time.Time{})
		return
	}
	_ = d.SetWriteDeadline(time.Now().Add(c.cfg.CommandTimeout))
}
