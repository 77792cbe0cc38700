package domain

import "github.com/shopspring/decimal"

// Recommendation is the backend's reorder advice for one under-stocked product.
type Recommendation struct {
	ProductID                string          `json:"product_id" yaml:"product_id"`
	CurrentStock             int             `json:"current_stock" yaml:"current_stock"`
	IncomingStock            int             `json:"incoming_stock" yaml:"incoming_stock"`
	DaysRemaining            float64         `json:"days_remaining" yaml:"days_remaining"`
	SuggestedReorderQuantity int             `json:"suggested_reorder_quantity" yaml:"suggested_reorder_quantity"`
	EstimatedCost            decimal.Decimal `json:"estimated_cost" yaml:"estimated_cost"`
	Criticality              Criticality     `json:"criticality" yaml:"criticality"`
	LeadTimeDays             int             `json:"lead_time_days" yaml:"lead_time_days"`
}

// OrderRequest is the body of a create-order call.
type OrderRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (r OrderRequest) Validate() error {
	if r.ProductID == "" {
		return emptyFieldError("product_id")
	}
	if r.Quantity <= 0 {
		return invalidFieldError("quantity", "Quantity must be a positive number.")
	}
	return nil
}
