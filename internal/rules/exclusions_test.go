package rules

import "testing"

func TestMatchesExclusions(t *testing.T) {
	regexes, err := NewExclusionRegexes([]string{"hulu.com"})
	if err != nil {
		t.Fatalf("NewExclusionRegexes() failed: %v", err)
	}

	tests := []struct {
		name     string
		rule     string
		expected bool
	}{
		{"Exact domain", "0.0.0.0 hulu.com", true},
		{"Subdomain", "0.0.0.0 www.hulu.com", true},
		{"Deep subdomain", "0.0.0.0 a.b.hulu.com", true},
		{"Bare hostname rule", "hulu.com", true},
		{"Unrelated domain", "0.0.0.0 example.com", false},
		{"Domain outside second token", "0.0.0.0 example.com hulu.com", false},
		{"Bare unrelated hostname", "example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesExclusions(tt.rule, regexes); got != tt.expected {
				t.Errorf("MatchesExclusions(%q) = %v, expected %v", tt.rule, got, tt.expected)
			}
		})
	}
}

func TestNewExclusionRegexesRejectsBadPattern(t *testing.T) {
	if _, err := NewExclusionRegexes([]string{"foo[.com"}); err == nil {
		t.Error("expected an error for an unbalanced pattern")
	}
}

func TestMatchesExclusionWords(t *testing.T) {
	regexes := CompileExclusionWords([]string{"example.org"})

	tests := []struct {
		name     string
		line     string
		expected bool
	}{
		{"Word mid-line", "0.0.0.0 example.org tracker", true},
		{"Word at line end", "0.0.0.0 example.org", true},
		{"Word at line start", "example.org is blocked", true},
		{"Word after dot", "0.0.0.0 ads.example.org", true},
		{"Prefix of longer token", "0.0.0.0 example.organic", false},
		{"Suffix of longer token", "0.0.0.0 myexample.org", false},
		{"Dot not treated as wildcard", "0.0.0.0 exampleXorg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesExclusionWords(tt.line, regexes); got != tt.expected {
				t.Errorf("MatchesExclusionWords(%q) = %v, expected %v", tt.line, got, tt.expected)
			}
		})
	}
}

func TestShouldExclude(t *testing.T) {
	domainRegexes, err := NewExclusionRegexes([]string{"hulu.com"})
	if err != nil {
		t.Fatalf("NewExclusionRegexes() failed: %v", err)
	}
	wordRegexes := CompileExclusionWords([]string{"example.org"})

	tests := []struct {
		name     string
		stripped string
		original string
		expected bool
	}{
		{"Domain veto", "0.0.0.0 hulu.com", "0.0.0.0 hulu.com # streaming", true},
		{"Word veto via original line", "0.0.0.0 foo.net", "0.0.0.0 foo.net example.org", true},
		{"No veto", "0.0.0.0 foo.net", "0.0.0.0 foo.net", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldExclude(tt.stripped, tt.original, domainRegexes, wordRegexes); got != tt.expected {
				t.Errorf("ShouldExclude(%q, %q) = %v, expected %v", tt.stripped, tt.original, got, tt.expected)
			}
		})
	}
}
