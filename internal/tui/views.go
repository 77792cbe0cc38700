package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

var (
	productColumns = []table.Column{
		{Title: "Product", Width: 14},
		{Title: "Stock", Width: 7},
		{Title: "Incoming", Width: 9},
		{Title: "Days Left", Width: 10},
		{Title: "Status", Width: 9},
		{Title: "Criticality", Width: 12},
		{Title: "Daily Sales", Width: 12},
		{Title: "Lead Time", Width: 10},
	}
	recommendationColumns = []table.Column{
		{Title: "Product", Width: 14},
		{Title: "Stock", Width: 7},
		{Title: "Days Left", Width: 10},
		{Title: "Suggested", Width: 10},
		{Title: "Est. Cost", Width: 12},
		{Title: "Criticality", Width: 12},
		{Title: "Lead Time", Width: 10},
	}
	stockLevelColumns = []table.Column{
		{Title: "Product", Width: 14},
		{Title: "Stock", Width: 7},
		{Title: "Days Left", Width: 10},
		{Title: "Status", Width: 9},
	}
)

func (m *Model) refreshTables() {
	m.products.SetRows(productRows(m.state.Products))
	m.recommendations.SetRows(recommendationRows(m.state.Recommendations))
	var levels []domain.StockLevel
	if m.state.Analytics != nil {
		levels = m.state.Analytics.StockLevels
	}
	m.stockLevels.SetRows(stockLevelRows(levels))
}

func productRows(products []domain.Product) []table.Row {
	rows := make([]table.Row, 0, len(products))
	for _, p := range products {
		days, status := "-", "-"
		if p.DaysRemaining != nil {
			days = formatDays(*p.DaysRemaining)
			status = string(domain.StockStatusFor(*p.DaysRemaining))
		}
		rows = append(rows, table.Row{
			p.ProductID,
			strconv.Itoa(p.CurrentStock),
			strconv.Itoa(p.IncomingStock),
			days,
			status,
			string(p.Criticality),
			p.AverageDailySales.String(),
			fmt.Sprintf("%d days", p.LeadTimeDays),
		})
	}
	return rows
}

func recommendationRows(recs []domain.Recommendation) []table.Row {
	rows := make([]table.Row, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, table.Row{
			r.ProductID,
			strconv.Itoa(r.CurrentStock),
			formatDays(r.DaysRemaining),
			strconv.Itoa(r.SuggestedReorderQuantity),
			"$" + r.EstimatedCost.StringFixed(2),
			string(r.Criticality),
			fmt.Sprintf("%d days", r.LeadTimeDays),
		})
	}
	return rows
}

func stockLevelRows(levels []domain.StockLevel) []table.Row {
	rows := make([]table.Row, 0, len(levels))
	for _, l := range levels {
		rows = append(rows, table.Row{
			l.ProductID,
			strconv.Itoa(l.CurrentStock),
			formatDays(l.DaysRemaining),
			string(domain.StockStatusFor(l.DaysRemaining)),
		})
	}
	return rows
}

func formatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', 1, 64)
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Warehouse Reorder Dashboard"))
	b.WriteString("\n\n")

	if !m.state.Loaded && m.state.Busy() {
		b.WriteString(m.spinner.View() + " Loading inventory...\n")
		return docStyle.Render(b.String())
	}

	b.WriteString(renderTabs(m.state.Tab))
	b.WriteString("\n\n")
	b.WriteString(renderSummary(m.state.Summary()))
	b.WriteString("\n")

	if m.state.Error != "" {
		b.WriteString(errorStyle.Render(m.state.Error) + helpStyle.Render("  (x to dismiss)") + "\n")
	}
	if m.status != "" {
		b.WriteString(successStyle.Render(m.status) + "\n")
	}
	if sim := m.state.Simulation; sim != nil {
		b.WriteString(simulationStyle.Render(fmt.Sprintf(
			"Simulation: %gx demand on %s for %d days (c to clear)",
			sim.Simulation.Multiplier, sim.Simulation.ProductID, sim.Simulation.Days)) + "\n")
	}
	if m.state.Busy() || m.state.Simulating || m.state.Exporting {
		b.WriteString(m.spinner.View() + " " + busyLabel(m.state) + "\n")
	}
	b.WriteString("\n")

	switch m.state.Tab {
	case domain.TabRecommendations:
		b.WriteString(m.recommendations.View())
	case domain.TabAnalytics:
		b.WriteString(renderAnalytics(m.state.Analytics))
		b.WriteString("\n")
		b.WriteString(m.stockLevels.View())
	default:
		b.WriteString(m.products.View())
	}
	b.WriteString("\n\n")
	b.WriteString(m.footer())

	return docStyle.Render(b.String())
}

func (m Model) footer() string {
	switch m.mode {
	case modeForm:
		field := m.form.Fields()[m.formIndex][0]
		return fmt.Sprintf("Add product (%d/%d) %s\n%s\n%s",
			m.formIndex+1, len(m.form.Fields()), strings.ReplaceAll(field, "_", " "),
			m.input.View(), helpStyle.Render("enter: next  esc: cancel"))
	case modeOrder:
		return fmt.Sprintf("Order quantity for %s\n%s\n%s", m.target, m.input.View(),
			helpStyle.Render("enter: place order  esc: cancel"))
	case modeSimulate:
		return fmt.Sprintf("Spike for %s as \"<multiplier> <days>\"\n%s\n%s", m.target, m.input.View(),
			helpStyle.Render("enter: run  esc: cancel"))
	case modeConfirmDelete:
		return dashboard.DeletePrompt(m.target) + " (y/n)"
	}
	return helpStyle.Render("1-3/tab: switch  r: reload  a: add  d: delete  s: simulate  o: order  e/E: export csv/json  q: quit")
}

func busyLabel(s dashboard.State) string {
	switch {
	case s.Phase == dashboard.PhaseMutating:
		return "Saving..."
	case s.Phase == dashboard.PhaseLoading:
		return "Refreshing..."
	case s.Simulating:
		return "Simulating..."
	default:
		return "Exporting..."
	}
}

func renderTabs(active domain.Tab) string {
	tabs := make([]string, 0, len(domain.Tabs()))
	for i, t := range domain.Tabs() {
		label := fmt.Sprintf("%d %s", i+1, t.Label())
		if t == active {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func renderSummary(s domain.Summary) string {
	cards := []string{
		cardStyle.Render(fmt.Sprintf("Total Products\n%d", s.TotalProducts)),
		cardStyle.Render(fmt.Sprintf("Need Reorder\n%d", s.NeedReorder)),
		cardStyle.Render(fmt.Sprintf("Stock Health\n%d%%", s.StockHealthPercent)),
		cardStyle.Render(fmt.Sprintf("Reorder Cost\n$%s", s.ReorderCost.StringFixed(2))),
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func renderAnalytics(a *domain.Analytics) string {
	if a == nil {
		return "No analytics loaded.\n"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Total inventory value: $%s\n\n", a.TotalInventoryValue.StringFixed(2)))

	b.WriteString("Criticality\n")
	for _, c := range domain.Criticalities() {
		b.WriteString(fmt.Sprintf("  %-8s %d\n", c.Label(), a.CriticalityBreakdown[string(c)]))
	}

	b.WriteString("\nUrgency\n")
	for _, label := range sortedKeys(a.UrgencyLevels) {
		b.WriteString(fmt.Sprintf("  %-8s %d\n", label, a.UrgencyLevels[label]))
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
