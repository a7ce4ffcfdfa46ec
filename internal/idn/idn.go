// Package idn converts the domain token of a hosts line into its
// ASCII-compatible (IDNA) form while leaving the rest of the line intact.
package idn

import (
	"strings"

	"golang.org/x/net/idna"
)

// Hosts lists in the wild contain underscores and other bytes that the
// strict lookup profile rejects, so STD3 rules are off.
var profile = idna.New(idna.MapForLookup(), idna.StrictDomainName(false))

// DetermineSeparator returns the whitespace separator used between the IP
// and hostname tokens of line. If both a tab and a space occur, whichever
// occurs first wins. Returns "" when the line has no separator.
func DetermineSeparator(line string) string {
	tabPos := strings.Index(line, "\t")
	spacePos := strings.Index(line, " ")

	switch {
	case tabPos > -1 && spacePos > -1:
		if spacePos < tabPos {
			return " "
		}
		return "\t"
	case tabPos != -1:
		return "\t"
	case spacePos != -1:
		return " "
	}
	return ""
}

// EncodeLine encodes the domain token of a hosts line into IDNA form.
//
// Comment lines are returned unchanged. When the line has a separator, the
// tokens are walked from index 1 and the first non-empty one is taken as
// the domain; an inline comment inside that token is split off and
// reattached without being encoded. When the walk finds no domain token the
// line is returned unmodified. Without a separator the whole line is
// treated as a single domain token.
func EncodeLine(line string) string {
	if strings.HasPrefix(line, "#") {
		return line
	}

	separator := DetermineSeparator(line)
	if separator == "" {
		return encodeToken(line)
	}

	tokens := strings.Split(line, separator)

	// Skip empty tokens produced by consecutive separators.
	index := 1
	for index < len(tokens) && tokens[index] == "" {
		index++
	}
	if index >= len(tokens) {
		return line
	}

	token := tokens[index]
	if commentPos := strings.Index(token, "#"); commentPos > -1 {
		tokens[index] = encodeToken(token[:commentPos]) + token[commentPos:]
	} else {
		tokens[index] = encodeToken(token)
	}

	return strings.Join(tokens, separator)
}

// encodeToken converts a single domain token to its ASCII form. Tokens that
// cannot be encoded are returned unchanged.
func encodeToken(token string) string {
	if token == "" {
		return token
	}
	if ascii, err := profile.ToASCII(token); err == nil {
		return ascii
	}
	return token
}
