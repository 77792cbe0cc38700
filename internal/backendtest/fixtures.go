package backendtest

import (
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

func floatPtr(v float64) *float64 { return &v }
func boolPtr(v bool) *bool        { return &v }

// FixtureProducts returns the seed inventory.
func FixtureProducts() []domain.Product {
	return []domain.Product{
		{
			ProductID:          "WIDGET_001",
			CurrentStock:       50,
			AverageDailySales:  decimal.RequireFromString("10.0"),
			LeadTimeDays:       7,
			MinReorderQuantity: 100,
			CostPerUnit:        decimal.RequireFromString("25.50"),
			Criticality:        domain.CriticalityHigh,
			DaysRemaining:      floatPtr(5.0),
			NeedsReorder:       boolPtr(true),
		},
		{
			ProductID:          "GADGET_002",
			CurrentStock:       20,
			IncomingStock:      800,
			AverageDailySales:  decimal.RequireFromString("12.0"),
			LeadTimeDays:       10,
			MinReorderQuantity: 150,
			CostPerUnit:        decimal.RequireFromString("15.75"),
			Criticality:        domain.CriticalityMedium,
			DaysRemaining:      floatPtr(68.3),
			NeedsReorder:       boolPtr(false),
		},
		{
			ProductID:          "BOLT_003",
			CurrentStock:       5,
			AverageDailySales:  decimal.RequireFromString("2.5"),
			LeadTimeDays:       3,
			MinReorderQuantity: 500,
			CostPerUnit:        decimal.RequireFromString("0.10"),
			Criticality:        domain.CriticalityLow,
			DaysRemaining:      floatPtr(2.0),
			NeedsReorder:       boolPtr(true),
		},
	}
}

// FixtureRecommendations returns the seed recommendations.
func FixtureRecommendations() []domain.Recommendation {
	return []domain.Recommendation{
		{
			ProductID:                "WIDGET_001",
			CurrentStock:             50,
			DaysRemaining:            5.0,
			SuggestedReorderQuantity: 100,
			EstimatedCost:            decimal.RequireFromString("2550.00"),
			Criticality:              domain.CriticalityHigh,
			LeadTimeDays:             7,
		},
		{
			ProductID:                "BOLT_003",
			CurrentStock:             5,
			DaysRemaining:            2.0,
			SuggestedReorderQuantity: 500,
			EstimatedCost:            decimal.RequireFromString("50.00"),
			Criticality:              domain.CriticalityLow,
			LeadTimeDays:             3,
		},
	}
}

// FixtureSimulatedRecommendations is what a spike simulation returns.
func FixtureSimulatedRecommendations() []domain.Recommendation {
	recs := FixtureRecommendations()
	recs = append(recs, domain.Recommendation{
		ProductID:                "GADGET_002",
		CurrentStock:             20,
		IncomingStock:            800,
		DaysRemaining:            1.7,
		SuggestedReorderQuantity: 300,
		EstimatedCost:            decimal.RequireFromString("4725.00"),
		Criticality:              domain.CriticalityMedium,
		LeadTimeDays:             10,
	})
	return recs
}

// FixtureAnalytics returns the seed analytics.
func FixtureAnalytics() domain.Analytics {
	return domain.Analytics{
		CriticalityBreakdown: map[string]int{"high": 1, "medium": 1, "low": 1},
		UrgencyLevels:        map[string]int{"critical": 1, "urgent": 1, "moderate": 0},
		TotalInventoryValue:  decimal.RequireFromString("1590.50"),
		StockLevels: []domain.StockLevel{
			{ProductID: "WIDGET_001", CurrentStock: 50, DaysRemaining: 5.0, Criticality: domain.CriticalityHigh},
			{ProductID: "GADGET_002", CurrentStock: 20, DaysRemaining: 68.3, Criticality: domain.CriticalityMedium},
			{ProductID: "BOLT_003", CurrentStock: 5, DaysRemaining: 2.0, Criticality: domain.CriticalityLow},
		},
	}
}
