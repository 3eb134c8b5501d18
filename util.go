package imap

import "strings"

const nl = "\r\n"

// dropNl removes trailing newline characters from a byte slice
func dropNl(b []byte) []byte {
	if len(b) >= 1 && b[len(b)-1] == '\n' {
		if len(b) >= 2 && b[len(b)-2] == '\r' {
			return b[:len(b)-2]
		} else {
			return b[:len(b)-1]
		}
	}
	return b
}

// quote returns s as an IMAP quoted string.
func quote(s string) string {
	return `"` + AddSlashes.Replace(s) + `"`
}

// astring returns s bare when it is a valid IMAP atom and quoted otherwise.
func astring(s string) string {
	if s == "" || strings.ContainsFunc(s, isAtomSpecial) {
		return quote(s)
	}
	return s
}

// isAtomSpecial reports whether r may not appear in an IMAP atom.
func isAtomSpecial(r rune) bool {
	if r <= 0x1f || r >= 0x7f {
		return true
	}
	switch r {
	case '(', ')', '{', ' ', '%', '*', '"', '\\', ']':
		return true
	}
	return false
}

// stripTag cuts the tagged completion line off response. It keeps
// everything up to and including the CRLF before the last "\r\n<tag>"; a
// response that starts with the tag yields "". A response without the tag
// is returned unchanged.
func stripTag(response, tag string) string {
	if i := strings.LastIndex(response, nl+tag); i != -1 {
		return response[:i+len(nl)]
	}
	if strings.HasPrefix(response, tag) {
		return ""
	}
	return response
}
