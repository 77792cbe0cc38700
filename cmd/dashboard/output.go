package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// table is a header plus rows of already formatted cells.
type table struct {
	header []string
	rows   [][]string
}

// render writes v in the format picked by --output. Tables use t.
func render(c *cli.Context, v any, t table) error {
	return write(c.App.Writer, c.String("output"), v, t)
}

func write(w io.Writer, format string, v any, t table) error {
	switch strings.ToLower(format) {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case outputTable, "":
		return writeTable(w, t)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeTable(w io.Writer, t table) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(t.header) > 0 {
		fmt.Fprintln(tw, strings.Join(t.header, "\t"))
	}
	for _, row := range t.rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func productTable(products []domain.Product) table {
	t := table{header: []string{"PRODUCT", "STOCK", "INCOMING", "DAYS LEFT", "STATUS", "CRITICALITY", "DAILY SALES", "LEAD TIME", "COST"}}
	for _, p := range products {
		days, status := "-", "-"
		if p.DaysRemaining != nil {
			days = formatDays(*p.DaysRemaining)
			status = string(domain.StockStatusFor(*p.DaysRemaining))
		}
		t.rows = append(t.rows, []string{
			p.ProductID,
			strconv.Itoa(p.CurrentStock),
			strconv.Itoa(p.IncomingStock),
			days,
			status,
			string(p.Criticality),
			p.AverageDailySales.String(),
			fmt.Sprintf("%d days", p.LeadTimeDays),
			"$" + p.CostPerUnit.StringFixed(2),
		})
	}
	return t
}

func recommendationTable(recs []domain.Recommendation) table {
	t := table{header: []string{"PRODUCT", "STOCK", "DAYS LEFT", "SUGGESTED", "EST. COST", "CRITICALITY", "LEAD TIME"}}
	for _, r := range recs {
		t.rows = append(t.rows, []string{
			r.ProductID,
			strconv.Itoa(r.CurrentStock),
			formatDays(r.DaysRemaining),
			strconv.Itoa(r.SuggestedReorderQuantity),
			"$" + r.EstimatedCost.StringFixed(2),
			string(r.Criticality),
			fmt.Sprintf("%d days", r.LeadTimeDays),
		})
	}
	return t
}

func analyticsTable(a *domain.Analytics) table {
	t := table{header: []string{"METRIC", "VALUE"}}
	if a == nil {
		return t
	}
	t.rows = append(t.rows, []string{"Total inventory value", "$" + a.TotalInventoryValue.StringFixed(2)})
	for _, c := range domain.Criticalities() {
		t.rows = append(t.rows, []string{c.Label() + " criticality", strconv.Itoa(a.CriticalityBreakdown[string(c)])})
	}
	for _, label := range sortedKeys(a.UrgencyLevels) {
		t.rows = append(t.rows, []string{"Urgency " + label, strconv.Itoa(a.UrgencyLevels[label])})
	}
	return t
}

func summaryTable(s domain.Summary) table {
	return table{
		header: []string{"METRIC", "VALUE"},
		rows: [][]string{
			{"Total products", strconv.Itoa(s.TotalProducts)},
			{"Need reorder", strconv.Itoa(s.NeedReorder)},
			{"Stock health", fmt.Sprintf("%d%%", s.StockHealthPercent)},
			{"Reorder cost", "$" + s.ReorderCost.StringFixed(2)},
		},
	}
}

func formatDays(days float64) string {
	return strconv.FormatFloat(days, 'f', 1, 64)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
