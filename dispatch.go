package imap

import (
	"strings"
)

// send writes one command line to the transport. Tagged commands advance
// the session counter and get "<tag> " prepended; untagged lines (SASL
// continuation data, empty continuation lines) are written as-is. Both are
// terminated with CRLF.
func (c *Client) send(text string, untagged bool) error {
	if !c.session.connected() {
		return newError("write", ErrConnection, "no live connection", nil)
	}

	var line string
	if untagged {
		line = text + nl
	} else {
		line = c.session.nextTag() + " " + text + nl
		c.metrics.CommandSent(commandName(text))
	}

	if Verbose {
		c.debugLog("sending command", "command", c.sanitize(line, untagged))
	}

	c.setWriteDeadline()
	n, err := c.session.conn.Write([]byte(line))
	c.sink.Record(EntrySent, c.sanitize(line, untagged)+nl)
	if err != nil {
		if isTimeout(err) {
			return newError("write", ErrTimeout, "", err)
		}
		return newError("write", ErrWrite, "unable to write to the socket connection", err)
	}
	if n != len(line) {
		return newError("write", ErrWrite, "short write to the socket connection", nil)
	}
	return nil
}

// sanitize hides credentials from verbose logging and the debug transcript.
// Only the LOGIN password and SASL payloads are masked.
func (c *Client) sanitize(line string, untagged bool) string {
	s := strings.TrimSpace(line)
	if untagged {
		if s == "" {
			return s
		}
		return "****"
	}
	if i := strings.Index(s, " AUTHENTICATE "); i != -1 {
		fields := strings.Fields(s[i+1:])
		if len(fields) > 2 {
			return s[:i] + " " + fields[0] + " " + fields[1] + " ****"
		}
	}
	if i := strings.IndexByte(s, ' '); i != -1 && strings.HasPrefix(s[i:], " LOGIN ") {
		args := s[i+len(" LOGIN "):]
		n := astringLen(args)
		if n >= len(args) {
			return s
		}
		masked := "****"
		if strings.HasPrefix(args[n+1:], `"`) {
			masked = `"****"`
		}
		return s[:i] + " LOGIN " + args[:n] + " " + masked
	}
	return s
}

// astringLen returns the length of the atom or quoted string at the start
// of s.
func astringLen(s string) int {
	if !strings.HasPrefix(s, `"`) {
		if i := strings.IndexByte(s, ' '); i != -1 {
			return i
		}
		return len(s)
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}
	return len(s)
}

// commandName returns the command keyword of text, e.g. "SELECT" or
// "UID FETCH", for metrics labels.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	name := strings.ToUpper(fields[0])
	if name == "UID" && len(fields) > 1 {
		name += " " + strings.ToUpper(fields[1])
	}
	return name
}
