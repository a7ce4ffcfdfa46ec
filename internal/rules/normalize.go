// Package rules classifies raw hosts-list lines and rewrites them into the
// canonical "<ip> <hostname>" form, and decides which rules are excluded.
package rules

import (
	"regexp"
	"strings"
)

// The three rule shapes are tried in strict order; first match wins. The
// anchors are deliberate: a 3-octet address ("0.0.0") and an over-long
// address with a trailing token ("0.1.2.3.4 foo/bar") must fail all three.
var (
	// IP followed by a domain name.
	ipHostRegexp = regexp.MustCompile(`^\s*(\d{1,3}\.){3}\d{1,3}\s+([\w.-]+[a-zA-Z])(.*)`)

	// IP followed by a second host IP.
	ipIPRegexp = regexp.MustCompile(`^\s*(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\s+(\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3})\s*(.*)`)

	// Bare domain name.
	bareHostRegexp = regexp.MustCompile(`^\s*([\w.-]+[a-zA-Z])(.*)`)
)

// matcher extracts the canonical hostname key and the rule suffix from a
// rule, reporting whether the rule has this shape.
type matcher func(rule string) (key, suffix string, ok bool)

var matchers = []matcher{matchIPHost, matchIPIP, matchBareHost}

// Normalize standardizes a rule into its canonical output line.
//
// It returns the canonical hostname key (lower-cased domain, or the second
// IP of an IP-to-IP rule) and the output text, which always ends in exactly
// one newline. When targetIP is empty the output is the bare hostname. When
// keepSuffix is set and the rule carries a non-empty suffix, the suffix is
// re-attached as a "#" comment; a "#" the suffix already starts with is
// stripped first so it is never doubled.
//
// ok is false when the rule matches none of the three shapes; the caller is
// expected to report the rule as unparseable.
func Normalize(rule, targetIP string, keepSuffix bool) (hostname, output string, ok bool) {
	for _, match := range matchers {
		if key, suffix, matched := match(rule); matched {
			return key, buildOutput(key, suffix, targetIP, keepSuffix), true
		}
	}
	return "", "", false
}

func matchIPHost(rule string) (string, string, bool) {
	m := ipHostRegexp.FindStringSubmatch(rule)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(m[2])), m[3], true
}

func matchIPIP(rule string) (string, string, bool) {
	m := ipIPRegexp.FindStringSubmatch(rule)
	if m == nil {
		return "", "", false
	}
	// IPs have no case, trim only.
	return strings.TrimSpace(m[2]), m[3], true
}

func matchBareHost(rule string) (string, string, bool) {
	m := bareHostRegexp.FindStringSubmatch(rule)
	if m == nil {
		return "", "", false
	}
	return strings.ToLower(strings.TrimSpace(m[1])), m[2], true
}

func buildOutput(key, suffix, targetIP string, keepSuffix bool) string {
	if targetIP == "" {
		return key + "\n"
	}

	output := targetIP + " " + key

	if keepSuffix {
		comment := strings.TrimSpace(suffix)
		comment = strings.TrimSpace(strings.TrimPrefix(comment, "#"))
		if comment != "" {
			output += " # " + comment
		}
	}

	return output + "\n"
}

// StripRule sanitizes a rule before classification: the inline comment is
// cut off when removeComments is set, and surrounding whitespace is trimmed.
func StripRule(line string, removeComments bool) string {
	if removeComments {
		if commentPos := strings.Index(line, "#"); commentPos > -1 {
			line = line[:commentPos]
		}
	}
	return strings.TrimSpace(line)
}
