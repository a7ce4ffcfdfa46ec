// Package merge drives the line normalization pipeline over the staging
// stream and writes the deduplicated body of the final hosts file.
package merge

import (
	"bufio"
	"io"
	"regexp"
	"strings"

	"github.com/hrshadhin/hosts/internal/errors"
	"github.com/hrshadhin/hosts/internal/log"
	"github.com/hrshadhin/hosts/internal/rules"
)

// Options configures one merge run. The option set is immutable during the
// run; all mutable run state lives inside Merge so that several runs can
// execute in the same process.
type Options struct {
	// TargetIP is substituted as the address of every kept rule. Empty
	// means hostname-only output.
	TargetIP string
	// Minimise drops blank lines and comments and strips inline comments
	// from kept rules.
	Minimise bool
	// ExclusionRegexes is the compiled exclusion regex set (see
	// rules.NewExclusionRegexes), applied to the stripped rule.
	ExclusionRegexes []*regexp.Regexp
	// ExclusionWords is the compiled whole-word exclusion set (see
	// rules.CompileExclusionWords), applied to the original line.
	ExclusionWords []*regexp.Regexp
}

// Stats reports the observable outcome of a merge run.
type Stats struct {
	// NumberOfRules is the number of unique rules written to the body.
	NumberOfRules int
}

// reservedHostnames seed the seen set, so rules for them are never emitted
// even when a source defines them.
var reservedHostnames = []string{
	"localhost",
	"localhost.localdomain",
	"local",
	"broadcasthost",
}

var tabRunRegexp = regexp.MustCompile(`\t+`)

// Merge consumes the staging stream line by line and writes canonical,
// deduplicated rules to out. First occurrence of a hostname wins. Rules
// that match no known shape are logged framed as ==>rule<== and skipped;
// per-line failures never abort the pass.
func Merge(staging io.Reader, out io.Writer, opts Options) (*Stats, error) {
	stats := &Stats{}

	seen := make(map[string]struct{}, 1024)
	for _, name := range reservedHostnames {
		seen[name] = struct{}{}
	}

	writer := bufio.NewWriter(out)
	scanner := bufio.NewScanner(staging)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		// Collapse tab runs into a single space; trim trailing spaces
		// and periods (not leading).
		line = tabRunRegexp.ReplaceAllString(line, " ")
		line = strings.TrimRight(line, " .")

		// Keep source attribution comments and spacing when not minimising.
		if !opts.Minimise && (strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#")) {
			if _, err := writer.WriteString(line + "\n"); err != nil {
				return nil, errors.NewMergeError("failed to write output line", err)
			}
			continue
		}

		// IPv6 loopback entries are never emitted.
		if strings.Contains(line, "::1") {
			continue
		}

		strippedRule := rules.StripRule(line, opts.Minimise)
		if strippedRule == "" || rules.MatchesExclusions(strippedRule, opts.ExclusionRegexes) {
			continue
		}

		// Guards against malformed entries containing user-info tokens.
		if strings.Contains(strippedRule, "@") {
			continue
		}

		hostname, normalizedRule, ok := rules.Normalize(strippedRule, opts.TargetIP, opts.Minimise)
		if !ok {
			log.Warnf("==>%s<==", strippedRule)
			continue
		}

		if rules.MatchesExclusionWords(line, opts.ExclusionWords) {
			continue
		}

		if _, duplicate := seen[hostname]; duplicate {
			continue
		}

		if _, err := writer.WriteString(normalizedRule); err != nil {
			return nil, errors.NewMergeError("failed to write output line", err)
		}
		seen[hostname] = struct{}{}
		stats.NumberOfRules++
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewMergeError("failed to read staging stream", err)
	}
	if err := writer.Flush(); err != nil {
		return nil, errors.NewMergeError("failed to flush output", err)
	}

	return stats, nil
}
