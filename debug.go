package imap

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
)

// EntryKind says what a transcript entry recorded.
type EntryKind uint8

const (
	EntrySent EntryKind = iota
	EntryReceived
	EntryError
)

func (k EntryKind) String() string {
	switch k {
	case EntrySent:
		return ">>"
	case EntryReceived:
		return "<<"
	case EntryError:
		return "!!"
	}
	return "??"
}

// Entry is one record of a debug transcript.
type Entry struct {
	Time time.Time
	Kind EntryKind
	Data string
}

// DebugSink receives the wire transcript of a session.
type DebugSink interface {
	// Enabled reports whether the sink records anything.
	Enabled() bool
	// Record appends one entry.
	Record(kind EntryKind, data string)
	// Flush writes the transcript to the sink's output.
	Flush() error
}

type noopSink struct{}

func (noopSink) Enabled() bool { return false }

func (noopSink) Record(EntryKind, string) {}

func (noopSink) Flush() error { return nil }

// Transcript is an append-only DebugSink kept in memory.
type Transcript struct {
	mu      sync.Mutex
	out     io.Writer
	entries []Entry
}

// NewTranscript returns a transcript that flushes to out.
func NewTranscript(out io.Writer) *Transcript {
	return &Transcript{out: out}
}

// Enabled always reports true.
func (t *Transcript) Enabled() bool { return true }

// Record appends a timestamped entry.
func (t *Transcript) Record(kind EntryKind, data string) {
	t.mu.Lock()
	t.entries = append(t.entries, Entry{Time: time.Now(), Kind: kind, Data: data})
	t.mu.Unlock()
}

// Entries returns a copy of the recorded entries.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Print writes the transcript to w, one entry per block.
func (t *Transcript) Print(w io.Writer) error {
	for _, e := range t.Entries() {
		_, err := fmt.Fprintf(w, "%s %s %s (%s)\n",
			e.Time.Format("2006-01-02 15:04:05.000000"),
			e.Kind,
			strings.TrimRight(e.Data, "\r\n"),
			humanize.Bytes(uint64(len(e.Data))),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Flush prints the transcript to the writer given to NewTranscript, if any.
func (t *Transcript) Flush() error {
	if t.out == nil {
		return nil
	}
	return t.Print(t.out)
}

// String returns the transcript as Print would write it.
func (t *Transcript) String() string {
	var b strings.Builder
	_ = t.Print(&b)
	return b.String()
}
