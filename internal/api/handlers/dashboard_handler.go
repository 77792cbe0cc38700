package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/reorder-dashboard/internal/client"
	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ExportLocationHeader carries where the sink stored an export.
const ExportLocationHeader = "X-Export-Location"

type DashboardHandler struct {
	dashboard *dashboard.Controller
}

func NewDashboardHandler(d *dashboard.Controller) *DashboardHandler {
	return &DashboardHandler{dashboard: d}
}

type orderRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type exportRequest struct {
	Format string `json:"format"`
}

type tabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

// GetState returns everything the dashboard displays
func (h *DashboardHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.State())
}

// GetSummary returns the headline numbers for the current view
func (h *DashboardHandler) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.State().Summary())
}

func (h *DashboardHandler) Reload(c *gin.Context) {
	if err := h.dashboard.Reload(c.Request.Context()); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, h.dashboard.State())
}

// AddProduct accepts the add-product form. Omitted fields take the form
// defaults; every value is forwarded as text.
func (h *DashboardHandler) AddProduct(c *gin.Context) {
	form, err := bindProductForm(c)
	if err != nil {
		errorResponse(c, err)
		return
	}

	ack, err := h.dashboard.AddProduct(c.Request.Context(), form)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": ack.Message, "state": h.dashboard.State()})
}

// DeleteProduct needs ?confirm=true
func (h *DashboardHandler) DeleteProduct(c *gin.Context) {
	var confirm dashboard.Confirmer
	if c.Query("confirm") == "true" {
		confirm = dashboard.Confirmed
	}

	ack, err := h.dashboard.DeleteProduct(c.Request.Context(), c.Param("id"), confirm)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ack.Message, "state": h.dashboard.State()})
}

func (h *DashboardHandler) CreateOrder(c *gin.Context) {
	var req orderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and quantity are required"})
		return
	}

	ack, err := h.dashboard.CreateOrder(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": ack.Message, "state": h.dashboard.State()})
}

// RunSimulation defaults to a 3x spike over 7 days
func (h *DashboardHandler) RunSimulation(c *gin.Context) {
	req := domain.SimulationRequest{
		Multiplier: domain.DefaultSpikeMultiplier,
		Days:       domain.DefaultSpikeDays,
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.dashboard.RunSimulation(c.Request.Context(), req)
	if err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DashboardHandler) ClearSimulation(c *gin.Context) {
	if err := h.dashboard.ClearSimulation(c.Request.Context()); err != nil {
		errorResponse(c, err)
		return
	}
	c.JSON(http.StatusOK, h.dashboard.State())
}

// Export responds with the report as a download
func (h *DashboardHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	format, err := domain.ParseExportFormat(req.Format)
	if err != nil {
		errorResponse(c, err)
		return
	}

	artifact, err := h.dashboard.Export(c.Request.Context(), format)
	if err != nil {
		errorResponse(c, err)
		return
	}

	if last := h.dashboard.State().LastExport; last != nil && last.Location != "" {
		c.Header(ExportLocationHeader, last.Location)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, artifact.MIMEType, artifact.Content)
}

func (h *DashboardHandler) SetTab(c *gin.Context) {
	var req tabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tab is required"})
		return
	}
	tab, ok := domain.ParseTab(req.Tab)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown tab %q", req.Tab)})
		return
	}

	h.dashboard.SetTab(tab)
	c.JSON(http.StatusOK, h.dashboard.State())
}

func (h *DashboardHandler) DismissError(c *gin.Context) {
	h.dashboard.DismissError()
	c.Status(http.StatusNoContent)
}

// bindProductForm reads the form fields from a JSON object. Browsers send
// numeric inputs as numbers, so numbers are kept as their literal text.
// Unknown keys are ignored.
func bindProductForm(c *gin.Context) (domain.ProductForm, error) {
	form := domain.NewProductForm()

	var body map[string]json.RawMessage
	if err := c.ShouldBindJSON(&body); err != nil {
		return form, &domain.ValidationError{Message: "invalid request body"}
	}

	for _, kv := range form.Fields() {
		field := kv[0]
		raw, ok := body[field]
		if !ok {
			continue
		}
		value, ok := formValue(raw)
		if !ok {
			return form, &domain.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("Field '%s' must be text or a number.", strings.ReplaceAll(field, "_", " ")),
			}
		}
		form.Set(field, value)
	}
	return form, nil
}

func formValue(raw json.RawMessage) (string, bool) {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text, true
	}
	var number json.Number
	if err := json.Unmarshal(raw, &number); err == nil {
		return number.String(), true
	}
	return "", false
}

func errorResponse(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("dashboard request failed")
	}
	c.JSON(status, gin.H{"error": dashboard.ErrorMessage(err)})
}

func statusFor(err error) int {
	var (
		validation *domain.ValidationError
		apiErr     *client.APIError
		decodeErr  *client.DecodeError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrDeleteDeclined),
		errors.Is(err, dashboard.ErrSimulationInProgress),
		errors.Is(err, dashboard.ErrExportInProgress):
		return http.StatusConflict
	case errors.As(err, &apiErr):
		return apiErr.StatusCode
	case client.IsNetworkError(err), errors.As(err, &decodeErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
