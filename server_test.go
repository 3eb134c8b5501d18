package imap

import (
	"bufio"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// mockIMAPServer is a small IMAP server on a loopback socket for testing
type mockIMAPServer struct {
	listener     net.Listener
	address      string
	authAttempts int32
	validUser    string
	validPass    string
	silent       atomic.Bool
}

func newMockIMAPServer(t *testing.T, useTLS bool, validUser, validPass string) *mockIMAPServer {
	t.Helper()

	var (
		listener net.Listener
		err      error
	)
	if useTLS {
		cert, certErr := generateSelfSignedCertificate()
		if certErr != nil {
			t.Fatalf("failed to generate certificate: %v", certErr)
		}
		listener, err = tls.Listen("tcp", "127.0.0.1:0", &tls.Config{Certificates: []tls.Certificate{cert}})
	} else {
		listener, err = net.Listen("tcp", "127.0.0.1:0")
	}
	if err != nil {
		t.Fatalf("failed to create listener: %v", err)
	}

	server := &mockIMAPServer{
		listener:  listener,
		address:   listener.Addr().String(),
		validUser: validUser,
		validPass: validPass,
	}
	t.Cleanup(server.Close)

	go server.serve()
	return server
}

func (s *mockIMAPServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConnection(conn)
	}
}

func (s *mockIMAPServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	writer.WriteString("* OK IMAP4rev1 Mock Server Ready\r\n")
	writer.Flush()

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		if s.silent.Load() {
			continue
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) < 2 {
			continue
		}

		tag := parts[0]
		command := strings.ToUpper(parts[1])

		switch command {
		case "LOGIN":
			atomic.AddInt32(&s.authAttempts, 1)
			if len(parts) < 4 {
				fmt.Fprintf(writer, "%s BAD Invalid LOGIN command\r\n", tag)
				break
			}
			username := strings.Trim(parts[2], `"`)
			password := strings.Trim(parts[3], `"`)
			if username == s.validUser && password == s.validPass {
				fmt.Fprintf(writer, "%s OK LOGIN completed\r\n", tag)
			} else {
				fmt.Fprintf(writer, "%s NO [AUTHENTICATIONFAILED] Authentication failed\r\n", tag)
			}

		case "CAPABILITY":
			fmt.Fprintf(writer, "* CAPABILITY IMAP4rev1 AUTH=PLAIN\r\n%s OK CAPABILITY completed\r\n", tag)

		case "SELECT":
			writer.WriteString("* FLAGS (\\Answered \\Flagged \\Deleted \\Seen \\Draft)\r\n")
			writer.WriteString("* 2 EXISTS\r\n")
			writer.WriteString("* 0 RECENT\r\n")
			fmt.Fprintf(writer, "%s OK [READ-WRITE] SELECT completed\r\n", tag)

		case "UID":
			writer.WriteString("* 1 FETCH (UID 11 FLAGS (\\Seen))\r\n")
			writer.WriteString("* 2 FETCH (UID 12 FLAGS ())\r\n")
			fmt.Fprintf(writer, "%s OK UID FETCH completed\r\n", tag)

		case "LOGOUT":
			writer.WriteString("* BYE IMAP4rev1 Server logging out\r\n")
			fmt.Fprintf(writer, "%s OK LOGOUT completed\r\n", tag)
			writer.Flush()
			return

		default:
			fmt.Fprintf(writer, "%s OK %s completed\r\n", tag, command)
		}

		writer.Flush()
	}
}

func (s *mockIMAPServer) GetAuthAttempts() int {
	return int(atomic.LoadInt32(&s.authAttempts))
}

func (s *mockIMAPServer) Close() {
	s.listener.Close()
}

func (s *mockIMAPServer) config(user, pass string) Config {
	host, portStr, _ := net.SplitHostPort(s.address)
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return Config{
		Host:           host,
		Port:           port,
		Username:       user,
		Password:       pass,
		DialTimeout:    2 * time.Second,
		CommandTimeout: 2 * time.Second,
	}
}

// generateSelfSignedCertificate generates a self-signed certificate for testing
func generateSelfSignedCertificate() (tls.Certificate, error) {
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return tls.Certificate{}, err
	}

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization: []string{"Test Co"},
		},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1)},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return tls.Certificate{}, err
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(priv)})

	return tls.X509KeyPair(certPEM, keyPEM)
}

// TestSessionOverTLS runs a full session against a loopback TLS server
func TestSessionOverTLS(t *testing.T) {
	server := newMockIMAPServer(t, true, "testuser", "testpass")

	cfg := server.config("testuser", "testpass")
	cfg.SSL = true
	cfg.TLSSkipVerify = true
	c := New(cfg)

	if err := c.Login(); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if attempts := server.GetAuthAttempts(); attempts != 1 {
		t.Errorf("Expected 1 auth attempt, got %d", attempts)
	}

	resp, err := c.Select("INBOX")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if !strings.Contains(resp, "* 2 EXISTS\r\n") || strings.Contains(resp, "AMWIJG2") {
		t.Errorf("Select() = %q", resp)
	}

	resp, err = c.UIDFetch("1:*", "(FLAGS)")
	if err != nil {
		t.Fatalf("UIDFetch() error = %v", err)
	}
	if strings.Count(resp, "FETCH") != 2 {
		t.Errorf("UIDFetch() = %q", resp)
	}

	if err := c.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if c.Connected() {
		t.Error("still connected after Logout")
	}
}

func TestTLSVerificationFailure(t *testing.T) {
	server := newMockIMAPServer(t, true, "testuser", "testpass")

	cfg := server.config("testuser", "testpass")
	cfg.SSL = true
	c := New(cfg)

	err := c.Connect()
	assertKind(t, err, ErrConnection)
	if server.GetAuthAttempts() != 0 {
		t.Error("credentials sent over an unverified connection")
	}
}

// TestFailedAuthNoRetry verifies that authentication failures are surfaced
// immediately
func TestFailedAuthNoRetry(t *testing.T) {
	server := newMockIMAPServer(t, false, "testuser", "testpass")
	c := New(server.config("testuser", "wrongpass"))

	done := make(chan error, 1)
	go func() { done <- c.Login() }()

	select {
	case err := <-done:
		assertKind(t, err, ErrProtocol)
	case <-time.After(5 * time.Second):
		t.Fatal("Login appears to be stuck")
	}

	if attempts := server.GetAuthAttempts(); attempts != 1 {
		t.Errorf("Expected 1 auth attempt (no retry), got %d", attempts)
	}
	_ = c.Disconnect()
}

func TestCommandTimeout(t *testing.T) {
	server := newMockIMAPServer(t, false, "testuser", "testpass")
	server.silent.Store(true)

	cfg := server.config("testuser", "testpass")
	cfg.CommandTimeout = 100 * time.Millisecond
	c := New(cfg)

	start := time.Now()
	err := c.Login()
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Login() error = %v, want a timeout", err)
	}
	if elapsed := time.Since(start); elapsed > 3*time.Second {
		t.Errorf("timeout took %v", elapsed)
	}
	_ = c.Disconnect()
}

func TestConnectRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().(*net.TCPAddr)
	l.Close()

	c := New(Config{Host: "127.0.0.1", Port: addr.Port, DialTimeout: time.Second})
	start := time.Now()
	assertKind(t, c.Connect(), ErrConnection)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("connect took %v; dial failures must not be retried", elapsed)
	}
}
