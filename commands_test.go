package imap

import (
	"testing"
)

func TestListCommands(t *testing.T) {
	tests := []struct {
		name      string
		run       func(c *Client) (string, error)
		response  string
		wantWrite string
		want      string
	}{
		{
			name:      "list nothing matched",
			run:       func(c *Client) (string, error) { return c.List("", "*") },
			response:  "AMWIJG2 OK LIST completed\r\n",
			wantWrite: "AMWIJG2 LIST \"\" \"*\"\r\n",
			want:      "",
		},
		{
			name: "list folders",
			run:  func(c *Client) (string, error) { return c.List("", "*") },
			response: "* LIST (\\HasNoChildren) \"/\" \"INBOX\"\r\n" +
				"* LIST (\\HasNoChildren \\Sent) \"/\" \"Sent Items\"\r\n" +
				"AMWIJG2 OK LIST completed\r\n",
			wantWrite: "AMWIJG2 LIST \"\" \"*\"\r\n",
			want: "* LIST (\\HasNoChildren) \"/\" \"INBOX\"\r\n" +
				"* LIST (\\HasNoChildren \\Sent) \"/\" \"Sent Items\"\r\n",
		},
		{
			name:      "list with reference",
			run:       func(c *Client) (string, error) { return c.List("Archive/", "20%") },
			response:  "* LIST () \"/\" \"Archive/2024\"\r\nAMWIJG2 OK LIST completed\r\n",
			wantWrite: "AMWIJG2 LIST \"Archive/\" \"20%\"\r\n",
			want:      "* LIST () \"/\" \"Archive/2024\"\r\n",
		},
		{
			name:      "lsub",
			run:       func(c *Client) (string, error) { return c.Lsub("", "*") },
			response:  "* LSUB () \".\" \"INBOX\"\r\nAMWIJG2 OK LSUB completed\r\n",
			wantWrite: "AMWIJG2 LSUB \"\" \"*\"\r\n",
			want:      "* LSUB () \".\" \"INBOX\"\r\n",
		},
		{
			name:      "select escapes quotes",
			run:       func(c *Client) (string, error) { return c.Select(`My "Stuff"`) },
			response:  "* 0 EXISTS\r\nAMWIJG2 OK [READ-WRITE] SELECT completed\r\n",
			wantWrite: "AMWIJG2 SELECT \"My \\\"Stuff\\\"\"\r\n",
			want:      "* 0 EXISTS\r\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, conn := authenticatedClient(t)
			conn.script(tt.response)

			got, err := tt.run(c)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if got != tt.want {
				t.Errorf("payload = %q, want %q", got, tt.want)
			}
			if w := lastWrite(t, conn); w != tt.wantWrite {
				t.Errorf("wrote %q, want %q", w, tt.wantWrite)
			}
		})
	}
}

func TestCommandArgumentValidation(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *Client) (string, error)
	}{
		{"list without pattern", func(c *Client) (string, error) { return c.List("INBOX", "") }},
		{"lsub without pattern", func(c *Client) (string, error) { return c.Lsub("", "") }},
		{"select without mailbox", func(c *Client) (string, error) { return c.Select("") }},
		{"fetch without uids", func(c *Client) (string, error) { return c.UIDFetch("", "FLAGS") }},
		{"fetch without items", func(c *Client) (string, error) { return c.UIDFetch("1:*", "") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, conn := authenticatedClient(t)
			writes := len(conn.writes)

			_, err := tt.run(c)
			assertKind(t, err, ErrArgument)
			if len(conn.writes) != writes {
				t.Errorf("wrote %q for an invalid argument", conn.writes[writes:])
			}
		})
	}
}

func TestSelectFailureKeepsMailbox(t *testing.T) {
	c, conn := authenticatedClient(t)
	conn.script(
		"* 3 EXISTS\r\nAMWIJG2 OK SELECT completed\r\n",
		"AMWIJG3 NO [NONEXISTENT] Unknown Mailbox: Nope\r\n",
	)

	if _, err := c.Select("INBOX"); err != nil {
		t.Fatal(err)
	}
	_, err := c.Select("Nope")
	assertKind(t, err, ErrProtocol)
	if c.Mailbox() != "INBOX" {
		t.Errorf("Mailbox() = %q after a failed SELECT", c.Mailbox())
	}
	if c.LastError() != "AMWIJG3 NO [NONEXISTENT] Unknown Mailbox: Nope" {
		t.Errorf("LastError() = %q", c.LastError())
	}
}

func TestUIDFetch(t *testing.T) {
	t.Run("no match", func(t *testing.T) {
		c, conn := authenticatedClient(t)
		conn.script("AMWIJG2 OK UID FETCH completed\r\n")

		got, err := c.UIDFetch("999", "(FLAGS)")
		if err != nil {
			t.Fatalf("UIDFetch() error = %v", err)
		}
		if got != "" {
			t.Errorf("UIDFetch() = %q, want empty", got)
		}
		if w := lastWrite(t, conn); w != "AMWIJG2 UID FETCH 999 (FLAGS)\r\n" {
			t.Errorf("wrote %q", w)
		}
	})

	t.Run("messages", func(t *testing.T) {
		c, conn := authenticatedClient(t)
		conn.script(
			"* 1 FETCH (UID 4 FLAGS (\\Seen))\r\n",
			"* 2 FETCH (UID 9 FLAGS ())\r\nAMWIJG2 OK UID FETCH completed\r\n",
		)

		got, err := c.UIDFetch("1:*", "(UID FLAGS)")
		if err != nil {
			t.Fatalf("UIDFetch() error = %v", err)
		}
		want := "* 1 FETCH (UID 4 FLAGS (\\Seen))\r\n* 2 FETCH (UID 9 FLAGS ())\r\n"
		if got != want {
			t.Errorf("UIDFetch() = %q, want %q", got, want)
		}
	})

	t.Run("continuation mid fetch", func(t *testing.T) {
		c, conn := authenticatedClient(t)
		conn.script(
			"* 1 FETCH (UID 4 FLAGS (\\Seen))\r\n+\r\n",
			"* 2 FETCH (UID 9 FLAGS ())\r\nAMWIJG2 OK UID FETCH completed\r\n",
		)

		got, err := c.UIDFetch("4,9", "(FLAGS)")
		if err != nil {
			t.Fatalf("UIDFetch() error = %v", err)
		}
		want := "* 1 FETCH (UID 4 FLAGS (\\Seen))\r\n+\r\n* 2 FETCH (UID 9 FLAGS ())\r\n"
		if got != want {
			t.Errorf("UIDFetch() = %q, want %q", got, want)
		}
		if w := lastWrite(t, conn); w != "\r\n" {
			t.Errorf("last write = %q, want an empty continuation line", w)
		}
		if c.Tag() != "AMWIJG2" {
			t.Errorf("Tag() = %q", c.Tag())
		}
	})

	t.Run("server error", func(t *testing.T) {
		c, conn := authenticatedClient(t)
		conn.script("AMWIJG2 BAD Invalid UID set\r\n")

		_, err := c.UIDFetch("x", "(FLAGS)")
		assertKind(t, err, ErrProtocol)
	})
}

func TestStripTag(t *testing.T) {
	tag := "AMWIJG7"
	tests := []struct {
		name string
		in   string
		want string
		// the payload itself contains "\r\n<tag>", so a second pass cuts again
		tagInPayload bool
	}{
		{"payload and tag", "* 1 EXISTS\r\nAMWIJG7 OK done\r\n", "* 1 EXISTS\r\n", false},
		{"tag only", "AMWIJG7 OK done\r\n", "", false},
		{"no tag", "* 1 EXISTS\r\n", "* 1 EXISTS\r\n", false},
		{"last occurrence", "* A\r\nAMWIJG7 x\r\n* B\r\nAMWIJG7 OK done\r\n", "* A\r\nAMWIJG7 x\r\n* B\r\n", true},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripTag(tt.in, tag)
			if got != tt.want {
				t.Errorf("stripTag(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if tt.tagInPayload {
				return
			}
			if again := stripTag(got, tag); again != got {
				t.Errorf("stripTag is not idempotent: %q -> %q", got, again)
			}
		})
	}
}
