package entity

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"chatledger/internal/domain/valueobject"

	"github.com/google/uuid"
)

// Layouts used for the derived date columns of the ledger.
const (
	DateLayout  = "2006-01-02"
	TimeLayout  = "15:04:05"
	MonthLayout = "2006-01"
)

// requestNamespace scopes the name-based request IDs.
var requestNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("urn:chatledger:request"))

// whitespaceRun also covers vertical tab and Unicode space separators.
var whitespaceRun = regexp.MustCompile(`[\s\v\p{Z}\x{85}]+`)

// RequestSpec carries the classification fields a Request is built from.
type RequestSpec struct {
	Timestamp   time.Time
	RequestType string
	Category    string
	Urgency     valueobject.Urgency
	Effort      valueobject.Effort
	Text        string
}

// Request is a message judged to ask the tracked correspondent for work.
// A Request is immutable once built; consumers may aggregate but never modify it.
type Request struct {
	id            uuid.UUID
	timestamp     time.Time
	requestType   string
	category      string
	description   string
	urgency       valueobject.Urgency
	effort        valueobject.Effort
	fullText      string
	messageLength int
}

// NewRequest builds a Request. Type, category, urgency and effort must all be set.
func NewRequest(spec RequestSpec) (*Request, error) {
	if err := spec.validate(); err != nil {
		return nil, err
	}

	return &Request{
		id:            RequestID(spec.Timestamp, spec.Text),
		timestamp:     spec.Timestamp,
		requestType:   spec.RequestType,
		category:      spec.Category,
		description:   CollapseWhitespace(spec.Text),
		urgency:       spec.Urgency,
		effort:        spec.Effort,
		fullText:      spec.Text,
		messageLength: utf8.RuneCountInString(spec.Text),
	}, nil
}

// RestoreRequest creates a Request entity from stored data.
func RestoreRequest(
	id uuid.UUID,
	timestamp time.Time,
	requestType string,
	category string,
	description string,
	urgency valueobject.Urgency,
	effort valueobject.Effort,
	fullText string,
	messageLength int,
) *Request {
	return &Request{
		id:            id,
		timestamp:     timestamp,
		requestType:   requestType,
		category:      category,
		description:   description,
		urgency:       urgency,
		effort:        effort,
		fullText:      fullText,
		messageLength: messageLength,
	}
}

// RequestID derives the ID of the request sent at timestamp with the given full text.
// The same message always maps to the same ID, matching the (sent_at, full_text) key of
// the requests table and the JetStream duplicate window.
func RequestID(timestamp time.Time, fullText string) uuid.UUID {
	key := timestamp.UTC().Format(time.RFC3339Nano) + "\x00" + fullText
	return uuid.NewSHA1(requestNamespace, []byte(key))
}

func (s RequestSpec) validate() error {
	var missing []string
	if s.RequestType == "" {
		missing = append(missing, "request type")
	}
	if s.Category == "" {
		missing = append(missing, "category")
	}
	if !s.Urgency.IsValid() {
		missing = append(missing, "urgency")
	}
	if !s.Effort.IsValid() {
		missing = append(missing, "effort")
	}
	if len(missing) > 0 {
		return fmt.Errorf("incomplete request: missing %s", strings.Join(missing, ", "))
	}
	if s.Timestamp.IsZero() {
		return errors.New("incomplete request: missing timestamp")
	}
	if strings.TrimSpace(s.Text) == "" {
		return errors.New("incomplete request: empty text")
	}
	return nil
}

// CollapseWhitespace replaces every whitespace run with one space and trims the ends.
// The result is never truncated.
func CollapseWhitespace(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// ID returns the request ID
func (r *Request) ID() uuid.UUID {
	return r.id
}

// Timestamp returns when the underlying message was sent
func (r *Request) Timestamp() time.Time {
	return r.timestamp
}

// RequestType returns the request type, e.g. "DNS Cutover"
func (r *Request) RequestType() string {
	return r.requestType
}

// Category returns the request category
func (r *Request) Category() string {
	return r.category
}

// Description returns the whitespace-collapsed message text
func (r *Request) Description() string {
	return r.description
}

// Urgency returns the urgency level
func (r *Request) Urgency() valueobject.Urgency {
	return r.urgency
}

// Effort returns the expected effort
func (r *Request) Effort() valueobject.Effort {
	return r.effort
}

// FullText returns the cleaned message text exactly as classified
func (r *Request) FullText() string {
	return r.fullText
}

// MessageLength returns the character count of the full text
func (r *Request) MessageLength() int {
	return r.messageLength
}

// Date returns the message date formatted as YYYY-MM-DD
func (r *Request) Date() string {
	return r.timestamp.Format(DateLayout)
}

// Time returns the message time of day formatted as HH:MM:SS
func (r *Request) Time() string {
	return r.timestamp.Format(TimeLayout)
}

// Month returns the message month formatted as YYYY-MM
func (r *Request) Month() string {
	return r.timestamp.Format(MonthLayout)
}

// IsHighUrgency returns true if the request is marked High
func (r *Request) IsHighUrgency() bool {
	return r.urgency == valueobject.UrgencyHigh
}
