package valueobject

import "fmt"

// Urgency represents how soon a request needs attention.
type Urgency string

// Urgency constants.
const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

// validUrgencies contains all valid urgency levels.
var validUrgencies = map[Urgency]bool{
	UrgencyHigh:   true,
	UrgencyMedium: true,
	UrgencyLow:    true,
}

// NewUrgency creates a new Urgency with validation.
func NewUrgency(level string) (Urgency, error) {
	u := Urgency(level)
	if !validUrgencies[u] {
		return "", fmt.Errorf("invalid urgency: %s", level)
	}
	return u, nil
}

// String returns the string representation of the urgency.
func (u Urgency) String() string {
	return string(u)
}

// IsValid reports whether u is one of the known urgency levels.
func (u Urgency) IsValid() bool {
	return validUrgencies[u]
}

// AllUrgencies returns every urgency level in reporting order.
func AllUrgencies() []Urgency {
	return []Urgency{UrgencyHigh, UrgencyMedium, UrgencyLow}
}
