package imap

import (
	"encoding/base64"
	"strings"

	"github.com/emersion/go-sasl"
)

// Authenticate runs a SASL exchange with any go-sasl client mechanism,
// connecting first when the client is disconnected.
//
// The initial response, if the mechanism has one, is sent with the
// AUTHENTICATE command (SASL-IR). Every "+" continuation is decoded,
// answered by the mechanism and sent back as an untagged base64 line. The
// first response that is not a continuation decides the outcome.
func (c *Client) Authenticate(mech sasl.Client) error {
	if c.state == StateDisconnected {
		if err := c.Connect(); err != nil {
			return err
		}
	}
	if c.state == StateAuthenticated {
		return newError("authenticate", ErrInvalidState, "already authenticated", nil)
	}

	name, ir, err := mech.Start()
	if err != nil {
		return newError("authenticate", ErrArgument, "unable to start the SASL exchange", err)
	}

	cmd := "AUTHENTICATE " + name
	if ir != nil {
		cmd += " " + encodeSASL(ir)
	}
	if err := c.send(cmd, false); err != nil {
		return withOp("authenticate", err)
	}

	resp, err := c.read()
	for err == nil && strings.HasPrefix(resp, "+") {
		var challenge, out []byte
		challenge, err = decodeChallenge(resp)
		if err == nil {
			out, err = mech.Next(challenge)
		}
		if err != nil {
			c.cancelSASL()
			c.metrics.AuthAttempt(name, false)
			return newError("authenticate", ErrProtocol, "SASL exchange failed", err)
		}
		if err = c.send(base64.StdEncoding.EncodeToString(out), true); err != nil {
			return withOp("authenticate", err)
		}
		resp, err = c.read()
	}
	c.metrics.AuthAttempt(name, err == nil)
	if err != nil {
		return requireAnswer("authenticate", err)
	}

	c.state = StateAuthenticated
	c.debugLog("authenticated", "mechanism", name, "user", c.cfg.Username)
	return nil
}

// cancelSASL aborts a running exchange with "*" and consumes the server's
// BAD completion.
func (c *Client) cancelSASL() {
	if err := c.send("*", true); err != nil {
		return
	}
	_, _ = c.read()
}

// encodeSASL encodes an initial response; an empty one is sent as "=".
func encodeSASL(ir []byte) string {
	if len(ir) == 0 {
		return "="
	}
	return base64.StdEncoding.EncodeToString(ir)
}

// decodeChallenge decodes the base64 text of a "+" continuation line.
func decodeChallenge(resp string) ([]byte, error) {
	line, _, _ := strings.Cut(resp, nl)
	text := strings.TrimSpace(strings.TrimPrefix(line, "+"))
	if text == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(text)
}
