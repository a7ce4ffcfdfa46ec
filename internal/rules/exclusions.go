package rules

import (
	"fmt"
	"regexp"
	"strings"
)

// exclusionPattern is prepended to every excluded domain so that any
// subdomain of it matches as well.
const exclusionPattern = `([a-zA-Z0-9-]+\.){0,}`

// NewExclusionRegexes compiles one exclusion regex per excluded domain.
// The domain is concatenated as-is, so a dot in it keeps its regex meaning.
func NewExclusionRegexes(domains []string) ([]*regexp.Regexp, error) {
	regexes := make([]*regexp.Regexp, 0, len(domains))
	for _, domain := range domains {
		re, err := regexp.Compile(exclusionPattern + domain)
		if err != nil {
			return nil, fmt.Errorf("invalid exclusion domain %q: %v", domain, err)
		}
		regexes = append(regexes, re)
	}
	return regexes, nil
}

// CompileExclusionWords compiles one whole-word regex per exclusion word.
// A word matches when it appears at line start or right after whitespace or
// a dot, and is followed by whitespace or the end of the line.
func CompileExclusionWords(words []string) []*regexp.Regexp {
	regexes := make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		regexes = append(regexes, regexp.MustCompile(`(^|[\s.])`+regexp.QuoteMeta(word)+`(\s|$)`))
	}
	return regexes
}

// MatchesExclusions reports whether a stripped rule hits any exclusion
// regex. The match target is the second whitespace-delimited token of the
// rule, or the whole rule when there is no second token (bare hostname).
func MatchesExclusions(strippedRule string, exclusionRegexes []*regexp.Regexp) bool {
	target := strippedRule
	if fields := strings.Fields(strippedRule); len(fields) > 1 {
		target = fields[1]
	}

	for _, re := range exclusionRegexes {
		if re.MatchString(target) {
			return true
		}
	}
	return false
}

// MatchesExclusionWords reports whether the original, unstripped line
// contains any exclusion word as a whole token.
func MatchesExclusionWords(line string, wordRegexes []*regexp.Regexp) bool {
	for _, re := range wordRegexes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// ShouldExclude reports whether a rule is suppressed by either exclusion
// mechanism. The two checks are independent; either one vetoes the rule.
func ShouldExclude(strippedRule, originalLine string, exclusionRegexes, wordRegexes []*regexp.Regexp) bool {
	return MatchesExclusions(strippedRule, exclusionRegexes) ||
		MatchesExclusionWords(originalLine, wordRegexes)
}
