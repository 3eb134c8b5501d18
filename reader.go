package imap

import (
	"strings"
)

const readFailureDetail = "unable to read from the socket connection"

// read reads one complete response unit for the most recently sent tag.
//
// The first chunk decides the shape of the response:
//   - "* OK ..." is a one-chunk success (the greeting case);
//   - "<tag> NO", "<tag> BAD", "* NO" or "* BAD" anywhere in it is an error;
//   - no data at all is a read failure;
//   - anything else starts a payload that is accumulated until the tagged
//     completion line arrives.
//
// A response that starts with "+" or whose last line is a bare "+" is a
// continuation request and is returned without reading further; the caller
// must send a continuation line and read again.
//
// Completion is detected by substring search for the tag, not by parsing
// lines, so payload text that happens to contain "\r\n<tag>" ends the read
// early.
func (c *Client) read() (string, error) {
	if !c.session.connected() {
		return "", newError("read", ErrConnection, "no live connection", nil)
	}
	tag := c.session.tag()

	chunk, err := c.readChunk()
	if err != nil {
		return "", c.failRead(err, "")
	}

	if strings.HasPrefix(chunk, "* OK") {
		c.received(chunk)
		return chunk, nil
	}

	if isErrorResponse(chunk, tag) {
		return "", c.failResponse(chunk, "")
	}

	response := chunk
	if !strings.HasPrefix(response, tag) && !strings.HasPrefix(response, "+") && !endsWithContinuation(response) {
		for !isComplete(response, tag) && !endsWithContinuation(response) {
			chunk, err = c.readChunk()
			if err != nil {
				return "", c.failRead(err, response)
			}
			response += chunk
		}
		if isTaggedError(response, tag) {
			return "", c.failResponse(response, stripTag(response, tag))
		}
	}

	c.received(response)
	return response, nil
}

// readChunk performs a single bounded read from the transport.
func (c *Client) readChunk() (string, error) {
	c.setReadDeadline()
	buf := make([]byte, ReadChunkSize)
	n, err := c.session.conn.Read(buf)
	if n > 0 {
		c.metrics.BytesRead(n)
		return string(buf[:n]), nil
	}
	if err != nil && isTimeout(err) {
		return "", newError("read", ErrTimeout, "timed out waiting for the server", err)
	}
	return "", newError("read", ErrReadFailure, readFailureDetail, err)
}

func (c *Client) received(response string) {
	c.sink.Record(EntryReceived, response)
	if Verbose && !SkipResponses {
		c.debugLog("server response", "response", string(dropNl([]byte(response))))
	}
}

// failResponse records a NO/BAD response as the session's last error.
// partial is the untagged payload that preceded the status line; as in
// failRead, the transcript is only flushed when there is none.
func (c *Client) failResponse(response, partial string) error {
	detail := strings.TrimSpace(response)
	c.session.lastErr = detail
	c.metrics.ResponseError("protocol")
	c.sink.Record(EntryError, detail)
	if partial == "" {
		c.flushDebug()
	}
	return newError("read", ErrProtocol, detail, nil)
}

// failRead records a transport failure. partial is whatever payload was
// accumulated before the failure; the transcript is only flushed when there
// is none.
func (c *Client) failRead(err error, partial string) error {
	kind := "read"
	if e, ok := err.(*Error); ok {
		c.session.lastErr = e.Detail
		if e.Kind == ErrTimeout {
			kind = "timeout"
		}
	}
	c.metrics.ResponseError(kind)
	c.sink.Record(EntryError, c.session.lastErr)
	if partial == "" {
		c.flushDebug()
	}
	return err
}

func (c *Client) flushDebug() {
	if !c.sink.Enabled() {
		return
	}
	if err := c.sink.Flush(); err != nil {
		c.warnLog("failed to flush debug transcript", "error", err)
	}
}

// isErrorResponse reports whether the first chunk of a response signals a
// NO or BAD status, tagged or untagged.
func isErrorResponse(chunk, tag string) bool {
	return strings.Contains(chunk, tag+" NO") ||
		strings.Contains(chunk, tag+" BAD") ||
		strings.Contains(chunk, "* BAD") ||
		strings.Contains(chunk, "* NO")
}

// isTaggedError reports whether the tagged completion line of an
// accumulated response is NO or BAD.
func isTaggedError(response, tag string) bool {
	return strings.Contains(response, tag+" NO") || strings.Contains(response, tag+" BAD")
}

// isComplete reports whether response holds the tagged completion line.
func isComplete(response, tag string) bool {
	return strings.HasPrefix(response, tag) || strings.Contains(response, nl+tag)
}

// endsWithContinuation reports whether the last line of s is a bare "+"
// continuation request.
func endsWithContinuation(s string) bool {
	s = strings.TrimRight(s, " \r\n")
	if i := strings.LastIndex(s, nl); i != -1 {
		s = s[i+len(nl):]
	}
	return s == "+"
}
