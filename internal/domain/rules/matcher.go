// Package rules holds the ordered rule tables that drive request classification.
//
// Every rule wraps a Matcher, a small tagged variant evaluated by a single Match
// dispatch. Tables are built once and are read-only afterwards, so a RuleSet can be
// shared between goroutines without locking.
package rules

import (
	"regexp"
	"strings"
)

// MatcherKind tags the matching strategy of a Matcher.
type MatcherKind int

// Matcher kinds.
const (
	// MatchSubstring matches if the original-case text contains any term.
	MatchSubstring MatcherKind = iota
	// MatchLowerSubstring matches if the lowercased, trimmed text contains any term.
	MatchLowerSubstring
	// MatchRegex matches if the pattern is found anywhere in the original text.
	MatchRegex
	// MatchLowerPrefix matches if the lowercased, trimmed text starts with any term.
	MatchLowerPrefix
	// MatchMaxTokens matches short texts unless they equal one of the exceptions.
	MatchMaxTokens
	// MatchKeywordPair matches if the lowercased text contains a term from both sets.
	MatchKeywordPair
)

var matcherKindNames = map[MatcherKind]string{
	MatchSubstring:      "substring",
	MatchLowerSubstring: "lower_substring",
	MatchRegex:          "regex",
	MatchLowerPrefix:    "lower_prefix",
	MatchMaxTokens:      "max_tokens",
	MatchKeywordPair:    "keyword_pair",
}

// String returns the name of the matcher kind.
func (k MatcherKind) String() string {
	if name, ok := matcherKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Matcher is a predicate over message text.
type Matcher struct {
	Kind       MatcherKind
	Terms      []string
	Pattern    *regexp.Regexp
	MaxTokens  int
	Exceptions []string
	Second     []string
}

// Substring returns a case-sensitive substring matcher.
func Substring(terms ...string) Matcher {
	return Matcher{Kind: MatchSubstring, Terms: terms}
}

// LowerSubstring returns a matcher over the lowercased, trimmed text.
func LowerSubstring(terms ...string) Matcher {
	return Matcher{Kind: MatchLowerSubstring, Terms: lowerAll(terms)}
}

// Regex returns a matcher for a compiled pattern.
func Regex(pattern *regexp.Regexp) Matcher {
	return Matcher{Kind: MatchRegex, Pattern: pattern}
}

// LowerPrefix returns a prefix matcher over the lowercased, trimmed text.
func LowerPrefix(terms ...string) Matcher {
	return Matcher{Kind: MatchLowerPrefix, Terms: lowerAll(terms)}
}

// MaxTokens matches texts with at most limit whitespace-separated tokens,
// except texts whose lowercased, trimmed form equals one of exceptions.
func MaxTokens(limit int, exceptions ...string) Matcher {
	return Matcher{Kind: MatchMaxTokens, MaxTokens: limit, Exceptions: lowerAll(exceptions)}
}

// KeywordPair matches when the lowercased text contains a term of first AND a term of second.
func KeywordPair(first, second []string) Matcher {
	return Matcher{Kind: MatchKeywordPair, Terms: lowerAll(first), Second: lowerAll(second)}
}

// Match evaluates the matcher against text.
func (m Matcher) Match(text string) bool {
	switch m.Kind {
	case MatchSubstring:
		return ContainsAny(text, m.Terms)
	case MatchLowerSubstring:
		return ContainsAny(normalizedLower(text), m.Terms)
	case MatchRegex:
		return m.Pattern != nil && m.Pattern.MatchString(text)
	case MatchLowerPrefix:
		return hasAnyPrefix(normalizedLower(text), m.Terms)
	case MatchMaxTokens:
		if m.MaxTokens <= 0 {
			return false
		}
		lowered := normalizedLower(text)
		if containsExact(lowered, m.Exceptions) {
			return false
		}
		return len(strings.Fields(lowered)) <= m.MaxTokens
	case MatchKeywordPair:
		lowered := strings.ToLower(text)
		return ContainsAny(lowered, m.Terms) && ContainsAny(lowered, m.Second)
	default:
		return false
	}
}

// ContainsAny reports whether text contains at least one of terms.
func ContainsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(text string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(text, prefix) {
			return true
		}
	}
	return false
}

func containsExact(text string, values []string) bool {
	for _, v := range values {
		if text == v {
			return true
		}
	}
	return false
}

func normalizedLower(text string) string {
	return strings.TrimSpace(strings.ToLower(text))
}

func lowerAll(terms []string) []string {
	out := make([]string, len(terms))
	for i, term := range terms {
		out[i] = strings.ToLower(term)
	}
	return out
}
