package rules

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"chatledger/internal/domain/errors/domain"
	"chatledger/internal/domain/valueobject"
)

// PatternRule maps a text predicate to a request classification.
type PatternRule struct {
	Name          string
	Matcher       Matcher
	RequestType   string
	Category      string
	DefaultEffort valueobject.Effort
	Keywords      []string
}

// ExclusionRule identifies conversational text that is never a request.
type ExclusionRule struct {
	Name    string
	Matcher Matcher
}

// KeywordSets are the coarse signal vocabularies, all lowercase.
type KeywordSets struct {
	UrgencyHigh []string
	UrgencyLow  []string
	Action      []string
	Work        []string
}

// RuleSet is the complete, ordered rule configuration of the classifier.
type RuleSet struct {
	Exclusions []ExclusionRule
	Patterns   []PatternRule
	Fallback   PatternRule
	Keywords   KeywordSets
}

var (
	defaultRuleSet     *RuleSet  //nolint:gochecknoglobals // built-in tables are immutable
	defaultRuleSetOnce sync.Once //nolint:gochecknoglobals // guards defaultRuleSet
)

// Default returns the built-in rule set. The returned value is shared and must not be modified.
func Default() *RuleSet {
	defaultRuleSetOnce.Do(func() {
		rs, err := Build(DefaultDocument())
		if err != nil {
			panic("built-in rule tables are invalid: " + err.Error())
		}
		defaultRuleSet = rs
	})
	return defaultRuleSet
}

// Build compiles a Document into a RuleSet, preserving the order of every table.
func Build(doc Document) (*RuleSet, error) {
	if err := doc.validate(); err != nil {
		return nil, err
	}

	patterns, err := buildPatterns(doc.Patterns)
	if err != nil {
		return nil, err
	}

	exclusions, err := buildExclusions(doc)
	if err != nil {
		return nil, err
	}

	fallbackEffort, err := valueobject.NewEffort(doc.Fallback.DefaultEffort)
	if err != nil {
		return nil, configError("fallback: %v", err)
	}

	keywords := KeywordSets{
		UrgencyHigh: lowerAll(doc.Urgency.High),
		UrgencyLow:  lowerAll(doc.Urgency.Low),
		Action:      lowerAll(doc.ActionKeywords),
		Work:        lowerAll(doc.WorkKeywords),
	}

	return &RuleSet{
		Exclusions: exclusions,
		Patterns:   patterns,
		Fallback: PatternRule{
			Name:          "work-and-action-keywords",
			Matcher:       KeywordPair(keywords.Work, keywords.Action),
			RequestType:   doc.Fallback.Type,
			Category:      doc.Fallback.Category,
			DefaultEffort: fallbackEffort,
		},
		Keywords: keywords,
	}, nil
}

func buildPatterns(docs []PatternDocument) ([]PatternRule, error) {
	patterns := make([]PatternRule, 0, len(docs))
	for i, p := range docs {
		re, err := compileInsensitive(p.Pattern)
		if err != nil {
			return nil, configError("pattern %d (%s): %v", i+1, p.Pattern, err)
		}
		effort, err := valueobject.NewEffort(p.DefaultEffort)
		if err != nil {
			return nil, configError("pattern %d (%s): %v", i+1, p.Pattern, err)
		}
		if strings.TrimSpace(p.Type) == "" || strings.TrimSpace(p.Category) == "" {
			return nil, configError("pattern %d (%s): type and category are required", i+1, p.Pattern)
		}
		patterns = append(patterns, PatternRule{
			Name:          p.Pattern,
			Matcher:       Regex(re),
			RequestType:   p.Type,
			Category:      p.Category,
			DefaultEffort: effort,
			Keywords:      append([]string(nil), p.Keywords...),
		})
	}
	return patterns, nil
}

// buildExclusions lays out the exclusion table in evaluation order. The regex list and the
// phrase list overlap, and both are kept: they are maintained separately and have drifted.
func buildExclusions(doc Document) ([]ExclusionRule, error) {
	exclusions := make([]ExclusionRule, 0, len(doc.ExclusionPatterns)+4)

	if len(doc.ReactionPhrases) > 0 {
		exclusions = append(exclusions, ExclusionRule{
			Name:    "reaction-phrase",
			Matcher: Substring(doc.ReactionPhrases...),
		})
	}
	if len(doc.ReactionKeywords) > 0 {
		exclusions = append(exclusions, ExclusionRule{
			Name:    "reaction-keyword",
			Matcher: LowerSubstring(doc.ReactionKeywords...),
		})
	}

	for i, expr := range doc.ExclusionPatterns {
		re, err := compileInsensitive(expr)
		if err != nil {
			return nil, configError("exclusion pattern %d (%s): %v", i+1, expr, err)
		}
		exclusions = append(exclusions, ExclusionRule{
			Name:    "conversational:" + expr,
			Matcher: Regex(re),
		})
	}

	if len(doc.NonRequestPhrases) > 0 {
		exclusions = append(exclusions, ExclusionRule{
			Name:    "conversational-phrase",
			Matcher: LowerPrefix(doc.NonRequestPhrases...),
		})
	}

	if doc.ShortMessage.MaxTokens > 0 {
		exclusions = append(exclusions, ExclusionRule{
			Name:    "short-message",
			Matcher: MaxTokens(doc.ShortMessage.MaxTokens, doc.ShortMessage.Exceptions...),
		})
	}

	return exclusions, nil
}

func (d Document) validate() error {
	if len(d.Patterns) == 0 {
		return fmt.Errorf("%w: %w: no request patterns", domain.ErrConfiguration, domain.ErrEmptyRuleSet)
	}
	if len(d.ActionKeywords) == 0 || len(d.WorkKeywords) == 0 {
		return fmt.Errorf("%w: %w: action and work keywords are required", domain.ErrConfiguration, domain.ErrEmptyRuleSet)
	}
	if strings.TrimSpace(d.Fallback.Type) == "" || strings.TrimSpace(d.Fallback.Category) == "" {
		return configError("fallback: type and category are required")
	}
	if d.ShortMessage.MaxTokens < 0 {
		return configError("short_message.max_tokens cannot be negative")
	}
	return nil
}

func compileInsensitive(expr string) (*regexp.Regexp, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("empty pattern")
	}
	return regexp.Compile("(?i)" + expr)
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", domain.ErrConfiguration, fmt.Sprintf(format, args...))
}
