// Package tui is the terminal dashboard. It renders dashboard.State and
// forwards key presses to the controller.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type mode int

const (
	modeBrowse mode = iota
	modeForm
	modeOrder
	modeSimulate
	modeConfirmDelete
)

// stateMsg carries a controller transition.
type stateMsg dashboard.State

// resultMsg reports a finished action.
type resultMsg struct {
	message string
	err     error
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	ctx     context.Context
	ctrl    *dashboard.Controller
	updates <-chan dashboard.State

	state   dashboard.State
	mode    mode
	status  string
	spinner spinner.Model
	input   textinput.Model

	products        table.Model
	recommendations table.Model
	stockLevels     table.Model

	form      domain.ProductForm
	formIndex int
	target    string
}

// New builds a model over ctrl. updates delivers controller transitions;
// it may be nil when the caller feeds stateMsg values itself.
func New(ctx context.Context, ctrl *dashboard.Controller, updates <-chan dashboard.State) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.CharLimit = 64
	ti.Width = 30

	m := Model{
		ctx:     ctx,
		ctrl:    ctrl,
		updates: updates,
		state:   ctrl.State(),
		spinner: s,
		input:   ti,
		products: table.New(
			table.WithColumns(productColumns),
			table.WithFocused(true),
			table.WithHeight(10),
		),
		recommendations: table.New(
			table.WithColumns(recommendationColumns),
			table.WithFocused(true),
			table.WithHeight(10),
		),
		stockLevels: table.New(
			table.WithColumns(stockLevelColumns),
			table.WithHeight(8),
		),
	}
	m.refreshTables()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.reload(), waitForState(m.updates))
}

func waitForState(updates <-chan dashboard.State) tea.Cmd {
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.state = dashboard.State(msg)
		m.refreshTables()
		return m, waitForState(m.updates)
	case resultMsg:
		if msg.err != nil {
			m.status = ""
		} else {
			m.status = msg.message
		}
		m.state = m.ctrl.State()
		m.refreshTables()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		return m.switchTab(domain.TabOverview)
	case "2":
		return m.switchTab(domain.TabRecommendations)
	case "3":
		return m.switchTab(domain.TabAnalytics)
	case "tab":
		return m.switchTab(nextTab(m.state.Tab))
	case "r":
		m.status = ""
		return m, m.reload()
	case "x":
		m.ctrl.DismissError()
		m.state = m.ctrl.State()
		return m, nil
	case "a":
		m.form = domain.NewProductForm()
		m.formIndex = 0
		m.mode = modeForm
		cmd := m.promptField()
		return m, cmd
	case "d":
		if id := m.selectedProduct(); id != "" {
			m.target = id
			m.mode = modeConfirmDelete
		}
		return m, nil
	case "s":
		if id := m.selectedProduct(); id != "" {
			m.target = id
			m.mode = modeSimulate
			cmd := m.prompt(fmt.Sprintf("%g %d", domain.DefaultSpikeMultiplier, domain.DefaultSpikeDays))
			return m, cmd
		}
		return m, nil
	case "o":
		if row := m.recommendations.SelectedRow(); m.state.Tab == domain.TabRecommendations && len(row) > 3 {
			m.target = row[0]
			m.mode = modeOrder
			cmd := m.prompt(row[3])
			return m, cmd
		}
		return m, nil
	case "c":
		if m.state.Simulation != nil {
			return m, m.clearSimulation()
		}
		return m, nil
	case "e":
		return m, m.export(domain.ExportCSV)
	case "E":
		return m, m.export(domain.ExportJSON)
	}

	var cmd tea.Cmd
	switch m.state.Tab {
	case domain.TabOverview:
		m.products, cmd = m.products.Update(msg)
	case domain.TabRecommendations:
		m.recommendations, cmd = m.recommendations.Update(msg)
	}
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == modeConfirmDelete {
		m.mode = modeBrowse
		if msg.String() == "y" || msg.String() == "Y" {
			return m, m.deleteProduct(m.target)
		}
		m.status = "Delete cancelled."
		return m, nil
	}

	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		return m.submitInput()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	value := strings.TrimSpace(m.input.Value())

	switch m.mode {
	case modeForm:
		fields := m.form.Fields()
		m.form.Set(fields[m.formIndex][0], value)
		m.formIndex++
		if m.formIndex < len(fields) {
			cmd := m.promptField()
			return m, cmd
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m, m.addProduct(m.form)
	case modeOrder:
		m.mode = modeBrowse
		m.input.Blur()
		quantity, err := strconv.Atoi(value)
		if err != nil {
			quantity = 0
		}
		return m, m.createOrder(m.target, quantity)
	case modeSimulate:
		m.mode = modeBrowse
		m.input.Blur()
		req, err := parseSimulation(m.target, value)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		return m, m.runSimulation(req)
	}
	return m, nil
}

func parseSimulation(productID, value string) (domain.SimulationRequest, error) {
	req := domain.SimulationRequest{
		ProductID:  productID,
		Multiplier: domain.DefaultSpikeMultiplier,
		Days:       domain.DefaultSpikeDays,
	}
	parts := strings.Fields(value)
	if len(parts) > 0 {
		multiplier, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return req, fmt.Errorf("invalid multiplier %q", parts[0])
		}
		req.Multiplier = multiplier
	}
	if len(parts) > 1 {
		days, err := strconv.Atoi(parts[1])
		if err != nil {
			return req, fmt.Errorf("invalid days %q", parts[1])
		}
		req.Days = days
	}
	return req, nil
}

func (m Model) switchTab(tab domain.Tab) (tea.Model, tea.Cmd) {
	m.ctrl.SetTab(tab)
	m.state = m.ctrl.State()
	return m, nil
}

func nextTab(current domain.Tab) domain.Tab {
	tabs := domain.Tabs()
	for i, t := range tabs {
		if t == current {
			return tabs[(i+1)%len(tabs)]
		}
	}
	return domain.TabOverview
}

func (m *Model) prompt(value string) tea.Cmd {
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) promptField() tea.Cmd {
	field := m.form.Fields()[m.formIndex]
	m.input.Placeholder = strings.ReplaceAll(field[0], "_", " ")
	return m.prompt(field[1])
}

func (m Model) selectedProduct() string {
	var row table.Row
	switch m.state.Tab {
	case domain.TabOverview:
		row = m.products.SelectedRow()
	case domain.TabRecommendations:
		row = m.recommendations.SelectedRow()
	}
	if len(row) == 0 {
		return ""
	}
	return row[0]
}

func (m Model) reload() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return resultMsg{err: ctrl.Reload(ctx)}
	}
}

func (m Model) addProduct(form domain.ProductForm) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ack, err := ctrl.AddProduct(ctx, form)
		return ackResult(ack, err)
	}
}

func (m Model) deleteProduct(id string) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ack, err := ctrl.DeleteProduct(ctx, id, dashboard.Confirmed)
		return ackResult(ack, err)
	}
}

func (m Model) createOrder(id string, quantity int) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		ack, err := ctrl.CreateOrder(ctx, id, quantity)
		return ackResult(ack, err)
	}
}

func (m Model) runSimulation(req domain.SimulationRequest) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		if _, err := ctrl.RunSimulation(ctx, req); err != nil {
			return resultMsg{err: err}
		}
		return resultMsg{message: fmt.Sprintf("Simulating %gx demand on %s for %d days.", req.Multiplier, req.ProductID, req.Days)}
	}
}

func (m Model) clearSimulation() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return resultMsg{err: ctrl.ClearSimulation(ctx)}
	}
}

func (m Model) export(format domain.ExportFormat) tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		artifact, err := ctrl.Export(ctx, format)
		if err != nil {
			return resultMsg{err: err}
		}
		msg := fmt.Sprintf("Exported %s.", artifact.Filename)
		if last := ctrl.State().LastExport; last != nil && last.Location != "" {
			msg = fmt.Sprintf("Exported %s to %s.", artifact.Filename, last.Location)
		}
		return resultMsg{message: msg}
	}
}

func ackResult(ack *domain.Ack, err error) tea.Msg {
	if err != nil {
		return resultMsg{err: err}
	}
	return resultMsg{message: ack.Message}
}
