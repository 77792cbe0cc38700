package domain

import "github.com/shopspring/decimal"

// Analytics is the backend's aggregate view over all products.
type Analytics struct {
	CriticalityBreakdown map[string]int  `json:"criticality_breakdown" yaml:"criticality_breakdown"`
	UrgencyLevels        map[string]int  `json:"urgency_levels" yaml:"urgency_levels"`
	TotalInventoryValue  decimal.Decimal `json:"total_inventory_value" yaml:"total_inventory_value"`
	StockLevels          []StockLevel    `json:"stock_levels" yaml:"stock_levels"`
}

// StockLevel is one row of the stock levels overview.
type StockLevel struct {
	ProductID     string      `json:"product_id" yaml:"product_id"`
	CurrentStock  int         `json:"current_stock" yaml:"current_stock"`
	DaysRemaining float64     `json:"days_remaining" yaml:"days_remaining"`
	Criticality   Criticality `json:"criticality,omitempty" yaml:"criticality,omitempty"`
}

// Clone returns a deep copy so callers cannot reach the controller's maps.
func (a *Analytics) Clone() *Analytics {
	if a == nil {
		return nil
	}
	out := &Analytics{
		TotalInventoryValue: a.TotalInventoryValue,
		StockLevels:         append([]StockLevel(nil), a.StockLevels...),
	}
	if a.CriticalityBreakdown != nil {
		out.CriticalityBreakdown = make(map[string]int, len(a.CriticalityBreakdown))
		for k, v := range a.CriticalityBreakdown {
			out.CriticalityBreakdown[k] = v
		}
	}
	if a.UrgencyLevels != nil {
		out.UrgencyLevels = make(map[string]int, len(a.UrgencyLevels))
		for k, v := range a.UrgencyLevels {
			out.UrgencyLevels[k] = v
		}
	}
	return out
}
