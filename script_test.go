package imap

import (
	"errors"
	"io"
	"strings"
	"testing"
)

// scriptedRead is one result handed out by scriptConn.Read.
type scriptedRead struct {
	data string
	err  error
}

// scriptConn is an in-memory Transport that replays canned server chunks
// and records every line the client writes.
type scriptConn struct {
	reads     []scriptedRead
	readCalls int

	writes     []string
	writeErr   error
	shortWrite bool

	closed   bool
	closeErr error
}

func (s *scriptConn) Read(p []byte) (int, error) {
	s.readCalls++
	if len(s.reads) == 0 {
		return 0, io.EOF
	}
	r := s.reads[0]
	n := copy(p, r.data)
	if n < len(r.data) {
		s.reads[0].data = r.data[n:]
		return n, nil
	}
	s.reads = s.reads[1:]
	return n, r.err
}

func (s *scriptConn) Write(p []byte) (int, error) {
	if s.writeErr != nil {
		return 0, s.writeErr
	}
	s.writes = append(s.writes, string(p))
	if s.shortWrite {
		return len(p) - 1, nil
	}
	return len(p), nil
}

func (s *scriptConn) Close() error {
	s.closed = true
	return s.closeErr
}

// script queues server chunks, in order.
func (s *scriptConn) script(chunks ...string) {
	for _, c := range chunks {
		s.reads = append(s.reads, scriptedRead{data: c})
	}
}

const greeting = "* OK IMAP4rev1 Service Ready\r\n"

// newScriptedClient returns a client whose dialer hands out conn. The
// greeting is queued but not read; call Connect or Login.
func newScriptedClient(t *testing.T, cfg Config, opts ...Option) (*Client, *scriptConn) {
	t.Helper()
	conn := &scriptConn{}
	conn.script(greeting)
	if cfg.Host == "" {
		cfg.Host = "imap.example.com"
	}
	opts = append([]Option{WithDialer(func(Config) (Transport, error) { return conn, nil })}, opts...)
	return New(cfg, opts...), conn
}

// connectedClient is newScriptedClient followed by a successful Connect.
func connectedClient(t *testing.T, cfg Config, opts ...Option) (*Client, *scriptConn) {
	t.Helper()
	c, conn := newScriptedClient(t, cfg, opts...)
	if err := c.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return c, conn
}

// authenticatedClient logs in with LOGIN and leaves the tag counter at 1.
func authenticatedClient(t *testing.T) (*Client, *scriptConn) {
	t.Helper()
	c, conn := newScriptedClient(t, Config{Username: "alice", Password: "secret"})
	conn.script("AMWIJG1 OK LOGIN completed\r\n")
	if err := c.Login(); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	return c, conn
}

func assertKind(t *testing.T, err, kind error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v error, got %v", kind, err)
	}
}

func lastWrite(t *testing.T, conn *scriptConn) string {
	t.Helper()
	if len(conn.writes) == 0 {
		t.Fatal("nothing was written")
	}
	return conn.writes[len(conn.writes)-1]
}

func joinWrites(conn *scriptConn) string {
	return strings.Join(conn.writes, "")
}
