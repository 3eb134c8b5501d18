package imap

import (
	"errors"
	"strings"

	"github.com/sqs/go-xoauth2"
)

// Login authenticates the session, connecting first when the client is
// disconnected.
//
// With Config.OAuth set it asks for the server capabilities and performs
// AUTHENTICATE XOAUTH2, failing with ErrUnsupportedAuthMethod when the
// server does not advertise it. Otherwise it sends LOGIN with the
// configured password.
func (c *Client) Login() error {
	if c.state == StateDisconnected {
		if err := c.Connect(); err != nil {
			return err
		}
	}
	if c.state == StateAuthenticated {
		return newError("login", ErrInvalidState, "already authenticated", nil)
	}

	if c.cfg.OAuth {
		return c.loginXOAuth2()
	}
	return c.loginPlain()
}

func (c *Client) loginXOAuth2() error {
	caps, err := c.capability()
	if err != nil {
		return requireAnswer("login", err)
	}
	if !strings.Contains(caps, "AUTH=XOAUTH2") {
		c.metrics.AuthAttempt("XOAUTH2", false)
		return newError("login", ErrUnsupportedAuthMethod, "server does not advertise AUTH=XOAUTH2", nil)
	}

	b64 := xoauth2.XOAuth2String(c.cfg.Username, c.cfg.AccessToken)
	if err := c.send("AUTHENTICATE XOAUTH2 "+b64, false); err != nil {
		return withOp("login", err)
	}
	resp, err := c.read()
	// On failure XOAUTH2 servers send a "+" challenge carrying the error
	// details and only answer NO after an empty continuation line.
	if err == nil && strings.HasPrefix(resp, "+") {
		if err = c.send("", true); err != nil {
			return withOp("login", err)
		}
		_, err = c.read()
	}
	c.metrics.AuthAttempt("XOAUTH2", err == nil)
	if err != nil {
		return requireAnswer("login", err)
	}

	c.state = StateAuthenticated
	c.debugLog("authenticated", "mechanism", "XOAUTH2", "user", c.cfg.Username)
	return nil
}

func (c *Client) loginPlain() error {
	if err := c.send("LOGIN "+astring(c.cfg.Username)+" "+astring(c.cfg.Password), false); err != nil {
		return withOp("login", err)
	}
	_, err := c.read()
	c.metrics.AuthAttempt("LOGIN", err == nil)
	if err != nil {
		return requireAnswer("login", err)
	}

	c.state = StateAuthenticated
	c.debugLog("authenticated", "mechanism", "LOGIN", "user", c.cfg.Username)
	return nil
}

// Logout sends LOGOUT and closes the transport. A failed LOGOUT leaves the
// transport open; a failed close is reported as ErrConnection.
func (c *Client) Logout() error {
	if !c.session.connected() {
		return newError("logout", ErrConnection, "no live connection", nil)
	}
	if err := c.send("LOGOUT", false); err != nil {
		return withOp("logout", err)
	}
	if _, err := c.read(); err != nil {
		return requireAnswer("logout", err)
	}
	return c.closeTransport("logout")
}

// Capabilities returns the capability atoms the server advertises.
func (c *Client) Capabilities() ([]string, error) {
	resp, err := c.capability()
	if err != nil {
		return nil, requireAnswer("capability", err)
	}
	return parseCapabilities(resp), nil
}

func (c *Client) capability() (string, error) {
	if err := c.send("CAPABILITY", false); err != nil {
		return "", err
	}
	return c.read()
}

// parseCapabilities extracts the atoms of the untagged CAPABILITY line.
func parseCapabilities(resp string) []string {
	for _, line := range strings.Split(resp, nl) {
		if rest, ok := strings.CutPrefix(line, "* CAPABILITY "); ok {
			return strings.Fields(rest)
		}
	}
	return nil
}

// requireAnswer turns a failed read into ErrProtocol for operations that
// need a definite answer from the server, keeping the original failure in
// the chain.
func requireAnswer(op string, err error) error {
	if errors.Is(err, ErrProtocol) {
		return withOp(op, err)
	}
	var e *Error
	if errors.As(err, &e) && e.Kind == ErrConnection {
		return withOp(op, err)
	}
	return newError(op, ErrProtocol, "no answer from the server", err)
}
