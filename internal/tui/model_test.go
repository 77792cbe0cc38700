package tui

import (
	"context"
	"testing"

	"github.com/andresuchdata/reorder-dashboard/internal/backendtest"
	"github.com/andresuchdata/reorder-dashboard/internal/client"
	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newModel(t *testing.T) (Model, *dashboard.Controller, *backendtest.Server) {
	t.Helper()
	srv := backendtest.New()
	t.Cleanup(srv.Close)

	ctrl := dashboard.New(client.New(srv.APIURL()))
	require.NoError(t, ctrl.Reload(context.Background()))
	return New(context.Background(), ctrl, nil), ctrl, srv
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

// finish runs cmd synchronously and feeds its result back into the model.
func finish(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestViewShowsProducts(t *testing.T) {
	m, _, _ := newModel(t)

	view := m.View()
	assert.Contains(t, view, "Inventory Overview")
	assert.Contains(t, view, "WIDGET_001")
	assert.Contains(t, view, "Total Products")
}

func TestTabKeysSwitchTabs(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m, _ = press(t, m, "2")
	assert.Equal(t, domain.TabRecommendations, ctrl.State().Tab)
	assert.Contains(t, m.View(), "$2550.00")

	m, _ = press(t, m, "3")
	assert.Equal(t, domain.TabAnalytics, ctrl.State().Tab)
	assert.Contains(t, m.View(), "Total inventory value: $1590.50")

	_, _ = press(t, m, "tab")
	assert.Equal(t, domain.TabOverview, ctrl.State().Tab)
}

func TestStateMsgRefreshesTables(t *testing.T) {
	m, _, _ := newModel(t)

	s := m.state
	s.Products = s.Products[:1]
	next, cmd := m.Update(stateMsg(s))
	m = next.(Model)

	assert.Nil(t, cmd)
	assert.Len(t, m.products.Rows(), 1)
}

func TestDeleteAsksForConfirmation(t *testing.T) {
	m, ctrl, srv := newModel(t)

	m, _ = press(t, m, "d")
	assert.Equal(t, modeConfirmDelete, m.mode)
	assert.Contains(t, m.View(), "Are you sure you want to delete product: WIDGET_001?")

	m, cmd := press(t, m, "n")
	assert.Nil(t, cmd)
	assert.Equal(t, modeBrowse, m.mode)
	assert.Zero(t, srv.Calls(backendtest.RouteDelete))

	m, _ = press(t, m, "d")
	m, cmd = press(t, m, "y")
	m = finish(t, m, cmd)

	assert.Equal(t, "Product 'WIDGET_001' deleted successfully.", m.status)
	assert.Len(t, ctrl.State().Products, 2)
	assert.Len(t, m.products.Rows(), 2)
}

func TestAddProductForm(t *testing.T) {
	m, ctrl, srv := newModel(t)

	m, _ = press(t, m, "a")
	require.Equal(t, modeForm, m.mode)

	values := map[string]string{
		"product_id":           "NUT_004",
		"current_stock":        "12",
		"average_daily_sales":  "1.5",
		"lead_time_days":       "4",
		"min_reorder_quantity": "50",
		"cost_per_unit":        "0.25",
	}

	var cmd tea.Cmd
	for _, field := range domain.NewProductForm().Fields() {
		if v, ok := values[field[0]]; ok {
			m = typeText(t, m, v)
		}
		m, cmd = press(t, m, "enter")
	}
	assert.Equal(t, modeBrowse, m.mode)

	m = finish(t, m, cmd)
	assert.Equal(t, "Product 'NUT_004' added successfully.", m.status)
	assert.Len(t, ctrl.State().Products, 4)
	assert.Equal(t, 1, srv.Calls(backendtest.RouteAdd))
}

func TestAddProductFormValidationError(t *testing.T) {
	m, ctrl, srv := newModel(t)

	m, _ = press(t, m, "a")
	var cmd tea.Cmd
	for range domain.NewProductForm().Fields() {
		m, cmd = press(t, m, "enter")
	}
	m = finish(t, m, cmd)

	assert.Empty(t, m.status)
	assert.Equal(t, "Field 'product id' cannot be empty.", ctrl.State().Error)
	assert.Contains(t, m.View(), "Field 'product id' cannot be empty.")
	assert.Zero(t, srv.Calls(backendtest.RouteAdd))
}

func TestOrderFromRecommendations(t *testing.T) {
	m, ctrl, srv := newModel(t)

	m, _ = press(t, m, "2", "o")
	require.Equal(t, modeOrder, m.mode)
	assert.Equal(t, "100", m.input.Value())

	m, cmd := press(t, m, "enter")
	m = finish(t, m, cmd)

	assert.Equal(t, 1, srv.Calls(backendtest.RouteOrder))
	assert.Equal(t, domain.TabOverview, ctrl.State().Tab)
	assert.Contains(t, m.status, "Order for 100 units of WIDGET_001")
}

func TestSimulateAndClear(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m, _ = press(t, m, "s")
	require.Equal(t, modeSimulate, m.mode)
	assert.Equal(t, "3 7", m.input.Value())

	m, cmd := press(t, m, "enter")
	m = finish(t, m, cmd)
	require.NotNil(t, ctrl.State().Simulation)
	assert.Contains(t, m.View(), "Simulation: 3x demand on WIDGET_001 for 7 days")

	m, cmd = press(t, m, "c")
	m = finish(t, m, cmd)
	assert.Nil(t, ctrl.State().Simulation)
	assert.NotContains(t, m.View(), "Simulation:")
}

func TestEscCancelsInput(t *testing.T) {
	m, _, srv := newModel(t)

	m, _ = press(t, m, "s", "esc")
	assert.Equal(t, modeBrowse, m.mode)
	assert.Zero(t, srv.Calls(backendtest.RouteSimulate))
}

func TestExportKey(t *testing.T) {
	m, ctrl, _ := newModel(t)

	m, cmd := press(t, m, "e")
	m = finish(t, m, cmd)

	assert.Equal(t, "Exported reorder_report_20240101_120000.csv.", m.status)
	require.NotNil(t, ctrl.State().LastExport)
}

func TestParseSimulation(t *testing.T) {
	req, err := parseSimulation("A", "2.5 10")
	require.NoError(t, err)
	assert.Equal(t, domain.SimulationRequest{ProductID: "A", Multiplier: 2.5, Days: 10}, req)

	req, err = parseSimulation("A", "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSpikeMultiplier, req.Multiplier)
	assert.Equal(t, domain.DefaultSpikeDays, req.Days)

	_, err = parseSimulation("A", "lots 3")
	assert.Error(t, err)
}
