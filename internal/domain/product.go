package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Money fields render as JSON numbers, the same shape the backend sends.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is an inventory record as returned by the backend. The trailing
// pointer fields are computed server-side and may be absent.
type Product struct {
	ProductID          string          `json:"product_id" yaml:"product_id"`
	CurrentStock       int             `json:"current_stock" yaml:"current_stock"`
	IncomingStock      int             `json:"incoming_stock" yaml:"incoming_stock"`
	AverageDailySales  decimal.Decimal `json:"average_daily_sales" yaml:"average_daily_sales"`
	LeadTimeDays       int             `json:"lead_time_days" yaml:"lead_time_days"`
	MinReorderQuantity int             `json:"min_reorder_quantity" yaml:"min_reorder_quantity"`
	CostPerUnit        decimal.Decimal `json:"cost_per_unit" yaml:"cost_per_unit"`
	Criticality        Criticality     `json:"criticality" yaml:"criticality"`

	DaysRemaining   *float64 `json:"days_remaining,omitempty" yaml:"days_remaining,omitempty"`
	NeedsReorder    *bool    `json:"needs_reorder,omitempty" yaml:"needs_reorder,omitempty"`
	SafetyThreshold *float64 `json:"safety_threshold,omitempty" yaml:"safety_threshold,omitempty"`
}

// ProductForm carries the add-product fields exactly as the user typed them.
type ProductForm struct {
	ProductID          string `json:"product_id"`
	CurrentStock       string `json:"current_stock"`
	IncomingStock      string `json:"incoming_stock"`
	AverageDailySales  string `json:"average_daily_sales"`
	LeadTimeDays       string `json:"lead_time_days"`
	MinReorderQuantity string `json:"min_reorder_quantity"`
	CostPerUnit        string `json:"cost_per_unit"`
	Criticality        string `json:"criticality"`
}

// NewProductForm returns a blank form with the dashboard defaults filled in.
func NewProductForm() ProductForm {
	return ProductForm{
		IncomingStock: "0",
		Criticality:   string(CriticalityMedium),
	}
}

// Fields returns the form's key/value pairs in display order.
func (f ProductForm) Fields() [][2]string {
	return [][2]string{
		{"product_id", f.ProductID},
		{"current_stock", f.CurrentStock},
		{"incoming_stock", f.IncomingStock},
		{"average_daily_sales", f.AverageDailySales},
		{"lead_time_days", f.LeadTimeDays},
		{"min_reorder_quantity", f.MinReorderQuantity},
		{"cost_per_unit", f.CostPerUnit},
		{"criticality", f.Criticality},
	}
}

// Set assigns a field by its wire name. It reports false for unknown keys.
func (f *ProductForm) Set(field, value string) bool {
	switch field {
	case "product_id":
		f.ProductID = value
	case "current_stock":
		f.CurrentStock = value
	case "incoming_stock":
		f.IncomingStock = value
	case "average_daily_sales":
		f.AverageDailySales = value
	case "lead_time_days":
		f.LeadTimeDays = value
	case "min_reorder_quantity":
		f.MinReorderQuantity = value
	case "cost_per_unit":
		f.CostPerUnit = value
	case "criticality":
		f.Criticality = value
	default:
		return false
	}
	return true
}

// Validate rejects the first empty field. Type checks are left to the backend.
func (f ProductForm) Validate() error {
	for _, kv := range f.Fields() {
		if strings.TrimSpace(kv[1]) == "" {
			return emptyFieldError(kv[0])
		}
	}
	return nil
}

func humanizeField(field string) string {
	return strings.ReplaceAll(field, "_", " ")
}

// Ack is the acknowledgement body of a mutating call.
type Ack struct {
	Message          string `json:"message"`
	ProductID        string `json:"product_id,omitempty"`
	NewIncomingStock *int   `json:"new_incoming_stock,omitempty"`
}
