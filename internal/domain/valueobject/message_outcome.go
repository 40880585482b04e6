package valueobject

import "fmt"

// MessageOutcome is the terminal state a message reaches in the classifier.
//
// Every message starts as received and moves exactly once to one of the
// terminal outcomes below. Only the two matched outcomes produce a request.
type MessageOutcome string

// Message outcome constants.
const (
	OutcomeReceived        MessageOutcome = "received"
	OutcomeDiscarded       MessageOutcome = "discarded"
	OutcomeSkippedSender   MessageOutcome = "skipped_sender"
	OutcomeExcluded        MessageOutcome = "excluded"
	OutcomeMatchedPattern  MessageOutcome = "matched_pattern"
	OutcomeMatchedFallback MessageOutcome = "matched_fallback"
	OutcomeUnclassified    MessageOutcome = "unclassified"
)

var validMessageOutcomes = map[MessageOutcome]bool{
	OutcomeReceived:        true,
	OutcomeDiscarded:       true,
	OutcomeSkippedSender:   true,
	OutcomeExcluded:        true,
	OutcomeMatchedPattern:  true,
	OutcomeMatchedFallback: true,
	OutcomeUnclassified:    true,
}

// NewMessageOutcome creates a new MessageOutcome with validation.
func NewMessageOutcome(outcome string) (MessageOutcome, error) {
	o := MessageOutcome(outcome)
	if !validMessageOutcomes[o] {
		return "", fmt.Errorf("invalid message outcome: %s", outcome)
	}
	return o, nil
}

// String returns the string representation of the outcome.
func (o MessageOutcome) String() string {
	return string(o)
}

// IsTerminal returns true for every outcome except received.
func (o MessageOutcome) IsTerminal() bool {
	return validMessageOutcomes[o] && o != OutcomeReceived
}

// ProducesRequest returns true if the outcome yields a request record.
func (o MessageOutcome) ProducesRequest() bool {
	return o == OutcomeMatchedPattern || o == OutcomeMatchedFallback
}

// CanTransitionTo returns true if the outcome can move to target.
// Only received can transition; terminal outcomes never move again.
func (o MessageOutcome) CanTransitionTo(target MessageOutcome) bool {
	return o == OutcomeReceived && target.IsTerminal()
}

// TerminalOutcomes returns all terminal outcomes in evaluation order.
func TerminalOutcomes() []MessageOutcome {
	return []MessageOutcome{
		OutcomeDiscarded,
		OutcomeSkippedSender,
		OutcomeExcluded,
		OutcomeMatchedPattern,
		OutcomeMatchedFallback,
		OutcomeUnclassified,
	}
}
