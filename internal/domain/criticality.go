package domain

import "strings"

// Criticality is the priority class of a product.
type Criticality string

const (
	CriticalityHigh   Criticality = "high"
	CriticalityMedium Criticality = "medium"
	CriticalityLow    Criticality = "low"
)

var criticalityLabels = map[Criticality]string{
	CriticalityHigh:   "High Criticality",
	CriticalityMedium: "Medium Criticality",
	CriticalityLow:    "Low Criticality",
}

var criticalityRanks = map[Criticality]int{
	CriticalityHigh:   0,
	CriticalityMedium: 1,
	CriticalityLow:    2,
}

// Criticalities lists the known classes from most to least critical.
func Criticalities() []Criticality {
	return []Criticality{CriticalityHigh, CriticalityMedium, CriticalityLow}
}

// Label returns a human-readable label for a criticality.
func (c Criticality) Label() string {
	if label, ok := criticalityLabels[c]; ok {
		return label
	}

	return strings.ToUpper(string(c))
}

// Rank orders criticalities for sorting; unknown values sort last.
func (c Criticality) Rank() int {
	if rank, ok := criticalityRanks[c]; ok {
		return rank
	}

	return len(criticalityRanks)
}

// ParseCriticality returns the criticality for a given value (case-insensitive).
func ParseCriticality(value string) (Criticality, bool) {
	c := Criticality(strings.ToLower(strings.TrimSpace(value)))
	_, ok := criticalityLabels[c]

	return c, ok
}
