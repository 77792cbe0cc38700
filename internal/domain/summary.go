package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// Summary holds the headline numbers shown above the inventory.
type Summary struct {
	TotalProducts      int             `json:"total_products" yaml:"total_products"`
	NeedReorder        int             `json:"need_reorder" yaml:"need_reorder"`
	StockHealthPercent int             `json:"stock_health_percent" yaml:"stock_health_percent"`
	ReorderCost        decimal.Decimal `json:"reorder_cost" yaml:"reorder_cost"`
}

// Summarize derives the headline numbers from whatever recommendations are on
// display, so an active simulation is reflected too.
func Summarize(products []Product, recommendations []Recommendation) Summary {
	s := Summary{
		TotalProducts:      len(products),
		NeedReorder:        len(recommendations),
		StockHealthPercent: 100,
		ReorderCost:        decimal.Zero,
	}
	if len(products) > 0 {
		healthy := float64(len(products)-len(recommendations)) / float64(len(products)) * 100
		s.StockHealthPercent = int(math.Floor(healthy + 0.5))
	}
	for _, rec := range recommendations {
		s.ReorderCost = s.ReorderCost.Add(rec.EstimatedCost)
	}
	return s
}

// StockStatus buckets days of remaining stock for display.
type StockStatus string

const (
	StockCritical StockStatus = "critical"
	StockWarning  StockStatus = "warning"
	StockHealthy  StockStatus = "healthy"
)

func StockStatusFor(daysRemaining float64) StockStatus {
	switch {
	case daysRemaining <= 3:
		return StockCritical
	case daysRemaining <= 7:
		return StockWarning
	default:
		return StockHealthy
	}
}
