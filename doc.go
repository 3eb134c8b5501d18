// Package imap provides a small IMAP4rev1 client that speaks the protocol
// directly over a plain or TLS socket.
//
// It covers the command/response core most tools need:
//
//   - Tagged command dispatch with a per-session counter (AMWIJG1, AMWIJG2, ...)
//   - Response reading that accumulates multi-line replies until the tagged
//     completion line and classifies NO/BAD and "+" continuation requests
//   - Authenticating with LOGIN, XOAUTH2 (OAuth 2.0) or any go-sasl mechanism
//   - LIST, LSUB, SELECT and UID FETCH helpers that return the untagged data
//   - An optional debug transcript of everything sent and received
//
// A Client is strictly request/response and must not be shared between
// goroutines. Response payloads are returned as raw protocol text; only the
// response boundaries and the success or failure of each command are
// interpreted.
package imap
