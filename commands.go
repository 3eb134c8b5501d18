package imap

// List returns the untagged LIST lines for the reference and mailbox
// pattern, without the tagged completion line. The reference may be empty.
func (c *Client) List(reference, pattern string) (string, error) {
	if pattern == "" {
		return "", newError("list", ErrArgument, "mailbox pattern is required", nil)
	}
	return c.exec("list", `LIST `+quote(reference)+` `+quote(pattern))
}

// Lsub returns the untagged LSUB lines for the reference and mailbox
// pattern, without the tagged completion line. The reference may be empty.
func (c *Client) Lsub(reference, pattern string) (string, error) {
	if pattern == "" {
		return "", newError("lsub", ErrArgument, "mailbox pattern is required", nil)
	}
	return c.exec("lsub", `LSUB `+quote(reference)+` `+quote(pattern))
}

// Select selects a mailbox in read-write mode and returns the untagged
// SELECT data.
func (c *Client) Select(mailbox string) (string, error) {
	if mailbox == "" {
		return "", newError("select", ErrArgument, "mailbox is required", nil)
	}
	resp, err := c.exec("select", `SELECT `+quote(mailbox))
	if err != nil {
		return "", err
	}
	c.mailbox = mailbox
	return resp, nil
}

// UIDFetch fetches items for the messages in the UID set and returns the
// untagged FETCH data. An empty result means no message matched and is not
// an error.
//
// Some servers end a multi-message fetch with a bare "+" continuation
// request; in that case one empty continuation line is sent and the rest of
// the response is read before the tag line is stripped.
func (c *Client) UIDFetch(uids, items string) (string, error) {
	if uids == "" {
		return "", newError("uid fetch", ErrArgument, "UID set is required", nil)
	}
	if items == "" {
		return "", newError("uid fetch", ErrArgument, "fetch items are required", nil)
	}

	if err := c.send("UID FETCH "+uids+" "+items, false); err != nil {
		return "", withOp("uid fetch", err)
	}
	resp, err := c.read()
	if err != nil {
		return "", withOp("uid fetch", err)
	}
	if endsWithContinuation(resp) {
		if err := c.send("", true); err != nil {
			return "", withOp("uid fetch", err)
		}
		more, err := c.read()
		if err != nil {
			return "", withOp("uid fetch", err)
		}
		resp += more
	}
	return stripTag(resp, c.session.tag()), nil
}

// exec sends a tagged command, reads its response and strips the tagged
// completion line.
func (c *Client) exec(op, command string) (string, error) {
	if err := c.send(command, false); err != nil {
		return "", withOp(op, err)
	}
	resp, err := c.read()
	if err != nil {
		return "", requireAnswer(op, err)
	}
	return stripTag(resp, c.session.tag()), nil
}
