package client

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/shopspring/decimal"
)

// Operation names used in errors, logs and metrics.
const (
	OpListProducts        = "list products"
	OpListRecommendations = "list recommendations"
	OpGetAnalytics        = "get analytics"
	OpAddProduct          = "add product"
	OpDeleteProduct       = "delete product"
	OpCreateOrder         = "create order"
	OpSimulateSpike       = "run simulation"
	OpExport              = "export"
	OpHealth              = "health"
)

type productsEnvelope struct {
	Products *[]domain.Product `json:"products"`
}

type recommendationsEnvelope struct {
	Recommendations *[]domain.Recommendation `json:"recommendations"`
}

type analyticsEnvelope struct {
	CriticalityBreakdown *map[string]int      `json:"criticality_breakdown"`
	UrgencyLevels        *map[string]int      `json:"urgency_levels"`
	TotalInventoryValue  *decimal.Decimal     `json:"total_inventory_value"`
	StockLevels          *[]domain.StockLevel `json:"stock_levels"`
}

type simulationEnvelope struct {
	Simulation      *domain.SimulationRequest `json:"simulation"`
	Recommendations *[]domain.Recommendation  `json:"recommendations"`
}

type exportEnvelope struct {
	Format   string          `json:"format"`
	Filename *string         `json:"filename"`
	Data     json.RawMessage `json:"data"`
}

type exportRequest struct {
	Format domain.ExportFormat `json:"format"`
}

// HealthStatus is the backend liveness payload.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ListProducts returns every product with its server-computed fields.
func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var env productsEnvelope
	if err := c.get(ctx, OpListProducts, "/products", &env); err != nil {
		return nil, err
	}
	if env.Products == nil {
		return nil, missingField(OpListProducts, "products")
	}
	return *env.Products, nil
}

// ListRecommendations returns the backend's current reorder advice.
func (c *Client) ListRecommendations(ctx context.Context) ([]domain.Recommendation, error) {
	var env recommendationsEnvelope
	if err := c.get(ctx, OpListRecommendations, "/recommendations", &env); err != nil {
		return nil, err
	}
	if env.Recommendations == nil {
		return nil, missingField(OpListRecommendations, "recommendations")
	}
	return *env.Recommendations, nil
}

// GetAnalytics returns the aggregate dashboard numbers.
func (c *Client) GetAnalytics(ctx context.Context) (*domain.Analytics, error) {
	var env analyticsEnvelope
	if err := c.get(ctx, OpGetAnalytics, "/analytics", &env); err != nil {
		return nil, err
	}

	switch {
	case env.CriticalityBreakdown == nil:
		return nil, missingField(OpGetAnalytics, "criticality_breakdown")
	case env.UrgencyLevels == nil:
		return nil, missingField(OpGetAnalytics, "urgency_levels")
	case env.TotalInventoryValue == nil:
		return nil, missingField(OpGetAnalytics, "total_inventory_value")
	case env.StockLevels == nil:
		return nil, missingField(OpGetAnalytics, "stock_levels")
	}

	return &domain.Analytics{
		CriticalityBreakdown: *env.CriticalityBreakdown,
		UrgencyLevels:        *env.UrgencyLevels,
		TotalInventoryValue:  *env.TotalInventoryValue,
		StockLevels:          *env.StockLevels,
	}, nil
}

// AddProduct submits the form fields as strings, unchanged.
func (c *Client) AddProduct(ctx context.Context, form domain.ProductForm) (*domain.Ack, error) {
	var ack domain.Ack
	if err := c.post(ctx, OpAddProduct, "/products/add", form, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// DeleteProduct removes a product by id.
func (c *Client) DeleteProduct(ctx context.Context, productID string) (*domain.Ack, error) {
	var ack domain.Ack
	if err := c.del(ctx, OpDeleteProduct, "/products/delete/"+url.PathEscape(productID), &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// CreateOrder places a reorder for quantity units of a product.
func (c *Client) CreateOrder(ctx context.Context, productID string, quantity int) (*domain.Ack, error) {
	body := domain.OrderRequest{ProductID: productID, Quantity: quantity}

	var ack domain.Ack
	if err := c.post(ctx, OpCreateOrder, "/create-order", body, &ack); err != nil {
		return nil, err
	}
	return &ack, nil
}

// SimulateSpike asks for recommendations under a hypothetical demand spike.
func (c *Client) SimulateSpike(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResult, error) {
	var env simulationEnvelope
	if err := c.post(ctx, OpSimulateSpike, "/simulate-spike", req, &env); err != nil {
		return nil, err
	}
	if env.Simulation == nil {
		return nil, missingField(OpSimulateSpike, "simulation")
	}
	if env.Recommendations == nil {
		return nil, missingField(OpSimulateSpike, "recommendations")
	}
	return &domain.SimulationResult{
		Simulation:      *env.Simulation,
		Recommendations: *env.Recommendations,
	}, nil
}

// Export requests a report in the given format.
func (c *Client) Export(ctx context.Context, format domain.ExportFormat) (*domain.ExportResult, error) {
	var env exportEnvelope
	if err := c.post(ctx, OpExport, "/export", exportRequest{Format: format}, &env); err != nil {
		return nil, err
	}
	if env.Filename == nil || *env.Filename == "" {
		return nil, missingField(OpExport, "filename")
	}
	if len(env.Data) == 0 {
		return nil, missingField(OpExport, "data")
	}
	return &domain.ExportResult{
		Format:   env.Format,
		Filename: *env.Filename,
		Data:     env.Data,
	}, nil
}

// Health checks that the backend is up.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var status HealthStatus
	if err := c.get(ctx, OpHealth, "/health", &status); err != nil {
		return nil, err
	}
	return &status, nil
}
