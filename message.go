package imap

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	humanize "github.com/dustin/go-humanize"
	"github.com/jhillyerd/enmime/v2"
)

var literalRE = regexp.MustCompile(`\{(\d+)\}\r\n`)

// EmailAddresses represents a map of email addresses to display names
type EmailAddresses map[string]string

// Email represents a message decoded from a UID FETCH BODY.PEEK[] response
type Email struct {
	UID         int
	Size        uint64
	Sent        time.Time
	Subject     string
	MessageID   string
	From        EmailAddresses
	To          EmailAddresses
	ReplyTo     EmailAddresses
	CC          EmailAddresses
	BCC         EmailAddresses
	Text        string
	HTML        string
	Attachments []Attachment
}

// Attachment represents an email attachment
type Attachment struct {
	Name     string
	MimeType string
	Content  []byte
}

// String returns a formatted string representation of EmailAddresses
func (e EmailAddresses) String() string {
	emails := strings.Builder{}
	i := 0
	for e, n := range e {
		if i != 0 {
			emails.WriteString(", ")
		}
		if len(n) != 0 {
			if strings.ContainsRune(n, ',') {
				emails.WriteString(fmt.Sprintf(`"%s" <%s>`, AddSlashes.Replace(n), e))
			} else {
				emails.WriteString(fmt.Sprintf(`%s <%s>`, n, e))
			}
		} else {
			emails.WriteString(e)
		}
		i++
	}
	return emails.String()
}

// String returns a short human readable summary of the message
func (e Email) String() string {
	email := strings.Builder{}

	email.WriteString(fmt.Sprintf("Subject: %s\n", e.Subject))

	for _, h := range []struct {
		name  string
		value EmailAddresses
	}{
		{"To", e.To},
		{"From", e.From},
		{"CC", e.CC},
		{"BCC", e.BCC},
		{"ReplyTo", e.ReplyTo},
	} {
		if len(h.value) != 0 {
			email.WriteString(fmt.Sprintf("%s: %s\n", h.name, h.value))
		}
	}
	if len(e.Text) != 0 {
		email.WriteString(fmt.Sprintf("Text: %s (%s)\n", preview(e.Text), humanize.Bytes(uint64(len(e.Text)))))
	}
	if len(e.HTML) != 0 {
		email.WriteString(fmt.Sprintf("HTML: %s (%s)\n", preview(e.HTML), humanize.Bytes(uint64(len(e.HTML)))))
	}
	if len(e.Attachments) != 0 {
		email.WriteString(fmt.Sprintf("%d Attachment(s): %s\n", len(e.Attachments), e.Attachments))
	}

	return email.String()
}

func preview(s string) string {
	if len(s) > 20 {
		return s[:20] + "..."
	}
	return s
}

// String returns the attachment name, type and size
func (a Attachment) String() string {
	return fmt.Sprintf("%s (%s %s)", a.Name, a.MimeType, humanize.Bytes(uint64(len(a.Content))))
}

// FetchMessage fetches the full body of one message without setting \Seen
// and decodes it. It returns nil, nil when no message has that UID.
func (c *Client) FetchMessage(uid int) (*Email, error) {
	if uid <= 0 {
		return nil, newError("fetch message", ErrArgument, "UID must be positive", nil)
	}
	resp, err := c.UIDFetch(strconv.Itoa(uid), "BODY.PEEK[]")
	if err != nil {
		return nil, withOp("fetch message", err)
	}
	if resp == "" {
		return nil, nil
	}

	body, err := extractLiteral(resp)
	if err != nil {
		return nil, newError("fetch message", ErrProtocol, err.Error(), nil)
	}

	env, err := enmime.ReadEnvelope(strings.NewReader(body))
	if err != nil {
		if Verbose {
			c.debugLog("email body could not be parsed", "uid", uid, "error", err, "body", spew.Sdump(body))
		}
		return nil, newError("fetch message", ErrProtocol, "unable to decode message body", err)
	}

	e := &Email{
		UID:       uid,
		Size:      uint64(len(body)),
		Subject:   env.GetHeader("Subject"),
		MessageID: env.GetHeader("Message-Id"),
		Text:      env.Text,
		HTML:      env.HTML,
	}
	if sent, err := env.Date(); err == nil {
		e.Sent = sent
	}

	for _, parts := range [][]*enmime.Part{env.Attachments, env.Inlines} {
		for _, a := range parts {
			e.Attachments = append(e.Attachments, Attachment{
				Name:     a.FileName,
				MimeType: a.ContentType,
				Content:  a.Content,
			})
		}
	}

	for _, a := range []struct {
		dest   *EmailAddresses
		header string
	}{
		{&e.From, "From"},
		{&e.ReplyTo, "Reply-To"},
		{&e.To, "To"},
		{&e.CC, "cc"},
		{&e.BCC, "bcc"},
	} {
		alist, _ := env.AddressList(a.header)
		(*a.dest) = make(map[string]string, len(alist))
		for _, addr := range alist {
			(*a.dest)[strings.ToLower(addr.Address)] = addr.Name
		}
	}

	return e, nil
}

// extractLiteral returns the bytes of the first {n} literal in resp.
func extractLiteral(resp string) (string, error) {
	m := literalRE.FindStringSubmatchIndex(resp)
	if m == nil {
		return "", fmt.Errorf("no literal in FETCH response")
	}
	n, err := strconv.Atoi(resp[m[2]:m[3]])
	if err != nil {
		return "", fmt.Errorf("invalid literal size: %w", err)
	}
	start := m[1]
	if start+n > len(resp) {
		return "", fmt.Errorf("literal size %d exceeds the %d bytes received", n, len(resp)-start)
	}
	return resp[start : start+n], nil
}
