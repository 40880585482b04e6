package valueobject

import "fmt"

// Effort is the expected size of the work behind a request.
type Effort string

// Effort constants.
const (
	EffortSmall  Effort = "Small"
	EffortMedium Effort = "Medium"
	EffortLarge  Effort = "Large"
)

var validEfforts = map[Effort]bool{
	EffortSmall:  true,
	EffortMedium: true,
	EffortLarge:  true,
}

// NewEffort creates a new Effort with validation.
func NewEffort(size string) (Effort, error) {
	e := Effort(size)
	if !validEfforts[e] {
		return "", fmt.Errorf("invalid effort: %s", size)
	}
	return e, nil
}

// String returns the string representation of the effort.
func (e Effort) String() string {
	return string(e)
}

// IsValid reports whether e is one of the known effort sizes.
func (e Effort) IsValid() bool {
	return validEfforts[e]
}

// AllEfforts returns every effort size from smallest to largest.
func AllEfforts() []Effort {
	return []Effort{EffortSmall, EffortMedium, EffortLarge}
}
