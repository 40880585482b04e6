// Package classification decides whether a cleaned chat message is a work request and,
// when it is, assigns its type, category, urgency and effort.
package classification

import (
	"fmt"
	"strings"
	"time"

	"chatledger/internal/domain/entity"
	"chatledger/internal/domain/errors/domain"
	"chatledger/internal/domain/rules"
	"chatledger/internal/domain/valueobject"
)

// Decision reports how the classifier resolved one message.
type Decision struct {
	Outcome  valueobject.MessageOutcome
	RuleName string
	Request  *entity.Request
}

// Classifier applies an immutable rule set to cleaned messages. It is safe for concurrent use.
type Classifier struct {
	rules          *rules.RuleSet
	trackedSenders map[string]struct{}
}

// NewClassifier creates a classifier for messages sent by any of trackedSenders.
func NewClassifier(ruleSet *rules.RuleSet, trackedSenders []string) (*Classifier, error) {
	if ruleSet == nil || len(ruleSet.Patterns) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfiguration, domain.ErrEmptyRuleSet)
	}

	senders := make(map[string]struct{}, len(trackedSenders))
	for _, sender := range trackedSenders {
		if sender = strings.TrimSpace(sender); sender != "" {
			senders[sender] = struct{}{}
		}
	}
	if len(senders) == 0 {
		return nil, fmt.Errorf("%w: at least one tracked sender is required", domain.ErrConfiguration)
	}

	return &Classifier{rules: ruleSet, trackedSenders: senders}, nil
}

// Classify returns the request carried by a cleaned message, or nil when the message is
// not a request. It only errors for a missing sender or timestamp.
func (c *Classifier) Classify(cleanedText, sender string, timestamp time.Time) (*entity.Request, error) {
	decision, err := c.Evaluate(cleanedText, sender, timestamp)
	if err != nil {
		return nil, err
	}
	return decision.Request, nil
}

// Evaluate runs the classification algorithm and reports the terminal outcome of the message.
func (c *Classifier) Evaluate(cleanedText, sender string, timestamp time.Time) (Decision, error) {
	if strings.TrimSpace(sender) == "" {
		return Decision{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, domain.ErrMissingSender)
	}
	if timestamp.IsZero() {
		return Decision{}, fmt.Errorf("%w: %w", domain.ErrMalformedInput, domain.ErrMissingTimestamp)
	}

	if cleanedText == "" {
		return Decision{Outcome: valueobject.OutcomeDiscarded}, nil
	}
	if !c.IsTracked(sender) {
		return Decision{Outcome: valueobject.OutcomeSkippedSender}, nil
	}

	if rule, excluded := c.matchExclusion(cleanedText); excluded {
		return Decision{Outcome: valueobject.OutcomeExcluded, RuleName: rule.Name}, nil
	}

	outcome := valueobject.OutcomeMatchedPattern
	rule, matched := c.matchPattern(cleanedText)
	if !matched {
		if !c.rules.Fallback.Matcher.Match(cleanedText) {
			return Decision{Outcome: valueobject.OutcomeUnclassified}, nil
		}
		rule = c.rules.Fallback
		outcome = valueobject.OutcomeMatchedFallback
	}

	request, err := entity.NewRequest(entity.RequestSpec{
		Timestamp:   timestamp,
		RequestType: rule.RequestType,
		Category:    rule.Category,
		Urgency:     c.DetermineUrgency(cleanedText),
		Effort:      rule.DefaultEffort,
		Text:        cleanedText,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("failed to build request: %w", err)
	}

	return Decision{Outcome: outcome, RuleName: rule.Name, Request: request}, nil
}

// IsTracked reports whether messages from sender are classified.
func (c *Classifier) IsTracked(sender string) bool {
	_, ok := c.trackedSenders[strings.TrimSpace(sender)]
	return ok
}

// IsExcluded reports whether text is conversational and never a request.
func (c *Classifier) IsExcluded(text string) bool {
	_, excluded := c.matchExclusion(text)
	return excluded
}

// DetermineUrgency resolves the urgency of text. High indicators win over low ones.
func (c *Classifier) DetermineUrgency(text string) valueobject.Urgency {
	lowered := strings.ToLower(text)
	switch {
	case rules.ContainsAny(lowered, c.rules.Keywords.UrgencyHigh):
		return valueobject.UrgencyHigh
	case rules.ContainsAny(lowered, c.rules.Keywords.UrgencyLow):
		return valueobject.UrgencyLow
	default:
		return valueobject.UrgencyMedium
	}
}

// TrackedSenders returns the tracked sender names in no particular order.
func (c *Classifier) TrackedSenders() []string {
	senders := make([]string, 0, len(c.trackedSenders))
	for sender := range c.trackedSenders {
		senders = append(senders, sender)
	}
	return senders
}

func (c *Classifier) matchExclusion(text string) (rules.ExclusionRule, bool) {
	for _, rule := range c.rules.Exclusions {
		if rule.Matcher.Match(text) {
			return rule, true
		}
	}
	return rules.ExclusionRule{}, false
}

// matchPattern returns the first pattern rule matching text.
func (c *Classifier) matchPattern(text string) (rules.PatternRule, bool) {
	for _, rule := range c.rules.Patterns {
		if rule.Matcher.Match(text) {
			return rule, true
		}
	}
	return rules.PatternRule{}, false
}
