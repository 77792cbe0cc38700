package domain

import "strings"

// Tab is one of the dashboard views.
type Tab string

const (
	TabOverview        Tab = "overview"
	TabRecommendations Tab = "recommendations"
	TabAnalytics       Tab = "analytics"
)

var tabLabels = map[Tab]string{
	TabOverview:        "Inventory Overview",
	TabRecommendations: "Reorder Recommendations",
	TabAnalytics:       "Analytics",
}

// Tabs returns the tabs in display order.
func Tabs() []Tab {
	return []Tab{TabOverview, TabRecommendations, TabAnalytics}
}

func (t Tab) Label() string {
	if label, ok := tabLabels[t]; ok {
		return label
	}

	return string(t)
}

// ParseTab returns the tab for a given id (case-insensitive).
func ParseTab(value string) (Tab, bool) {
	t := Tab(strings.ToLower(strings.TrimSpace(value)))
	_, ok := tabLabels[t]

	return t, ok
}
