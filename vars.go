package imap

import (
	"strings"
	"time"
)

// TagPrefix is prepended to the session counter to build command tags.
const TagPrefix = "AMWIJG"

// ReadChunkSize is the size of a single read from the transport.
const ReadChunkSize = 2048

// Default ports for the two transport flavours.
const (
	DefaultPort    = 143
	DefaultTLSPort = 993
)

// String replacers for escaping/unescaping quotes
var (
	AddSlashes    = strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	RemoveSlashes = strings.NewReplacer(`\\`, `\`, `\"`, `"`)
)

// Verbose outputs every command and its response with the IMAP server
var Verbose = false

// SkipResponses skips printing server responses in verbose mode
var SkipResponses = false

// DefaultDialTimeout is used when Config.DialTimeout is zero.
// Zero means no timeout.
var DefaultDialTimeout time.Duration
