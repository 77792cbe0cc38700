package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/andresuchdata/reorder-dashboard/internal/tui"
	"github.com/andresuchdata/reorder-dashboard/pkg/logger"
	"github.com/urfave/cli/v2"
)

func newOutputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output format (table, json, yaml)",
		Value:   outputTable,
	}
}

func commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "serve",
			Usage: "Serve the dashboard over HTTP and websocket",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "port",
					Usage:   "Port to listen on",
					EnvVars: []string{"SERVER_PORT"},
				},
			},
			Before: initEnvWithSink,
			After:  closeEnv,
			Action: runServe,
		},
		{
			Name:   "tui",
			Usage:  "Open the terminal dashboard",
			Before: initEnvWithSink,
			After:  closeEnv,
			Action: runTUI,
		},
		{
			Name:   "products",
			Usage:  "List products",
			Flags:  []cli.Flag{newOutputFlag()},
			Before: initEnv,
			After:  closeEnv,
			Action: listProducts,
		},
		{
			Name:   "recommendations",
			Usage:  "List reorder recommendations",
			Flags:  []cli.Flag{newOutputFlag()},
			Before: initEnv,
			After:  closeEnv,
			Action: listRecommendations,
		},
		{
			Name:   "analytics",
			Usage:  "Show inventory analytics",
			Flags:  []cli.Flag{newOutputFlag()},
			Before: initEnv,
			After:  closeEnv,
			Action: showAnalytics,
		},
		{
			Name:   "summary",
			Usage:  "Show the headline inventory numbers",
			Flags:  []cli.Flag{newOutputFlag()},
			Before: initEnv,
			After:  closeEnv,
			Action: showSummary,
		},
		{
			Name:  "add",
			Usage: "Add a product",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "id", Usage: "Product ID"},
				&cli.StringFlag{Name: "current-stock", Usage: "Units on hand"},
				&cli.StringFlag{Name: "incoming-stock", Usage: "Units already ordered", Value: "0"},
				&cli.StringFlag{Name: "daily-sales", Usage: "Average units sold per day"},
				&cli.StringFlag{Name: "lead-time", Usage: "Supplier lead time in days"},
				&cli.StringFlag{Name: "min-reorder", Usage: "Minimum reorder quantity"},
				&cli.StringFlag{Name: "cost", Usage: "Cost per unit"},
				&cli.StringFlag{Name: "criticality", Usage: "high, medium or low", Value: string(domain.CriticalityMedium)},
			},
			Before: initEnv,
			After:  closeEnv,
			Action: addProduct,
		},
		{
			Name:      "delete",
			Usage:     "Delete a product",
			ArgsUsage: "<product-id>",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Skip the confirmation prompt"},
			},
			Before: initEnv,
			After:  closeEnv,
			Action: deleteProduct,
		},
		{
			Name:      "order",
			Usage:     "Create a reorder for a product",
			ArgsUsage: "<product-id>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "quantity", Aliases: []string{"q"}, Usage: "Units to order"},
			},
			Before: initEnv,
			After:  closeEnv,
			Action: createOrder,
		},
		{
			Name:      "simulate",
			Usage:     "Project recommendations under a demand spike",
			ArgsUsage: "<product-id>",
			Flags: []cli.Flag{
				&cli.Float64Flag{Name: "multiplier", Usage: "Demand multiplier (1-10)", Value: domain.DefaultSpikeMultiplier},
				&cli.IntFlag{Name: "days", Usage: "Spike duration in days (1-30)", Value: domain.DefaultSpikeDays},
				newOutputFlag(),
			},
			Before: initEnv,
			After:  closeEnv,
			Action: runSimulation,
		},
		{
			Name:  "export",
			Usage: "Export the reorder report",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "csv or json", Value: string(domain.ExportCSV)},
				&cli.BoolFlag{Name: "stdout", Usage: "Write the report to stdout instead of the export sink"},
			},
			Before: func(c *cli.Context) error {
				if c.Bool("stdout") {
					return initEnv(c)
				}
				return initEnvWithSink(c)
			},
			After:  closeEnv,
			Action: exportReport,
		},
		{
			Name:   "ping",
			Usage:  "Check that the reorder API is reachable",
			Before: initEnv,
			After:  closeEnv,
			Action: ping,
		},
	}
}

func runTUI(c *cli.Context) error {
	e := envOf(c)
	f, err := logger.ToFile(e.cfg.Log.File)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	e.closers = append(e.closers, f)
	return tui.Run(c.Context, e.ctrl)
}

// load reloads the snapshot and fails the command if it could not be fetched.
func load(c *cli.Context) (dashboard.State, error) {
	e := envOf(c)
	if err := e.ctrl.Reload(c.Context); err != nil {
		return dashboard.State{}, err
	}
	return e.ctrl.State(), nil
}

func listProducts(c *cli.Context) error {
	state, err := load(c)
	if err != nil {
		return err
	}
	return render(c, state.Products, productTable(state.Products))
}

func listRecommendations(c *cli.Context) error {
	state, err := load(c)
	if err != nil {
		return err
	}
	return render(c, state.Recommendations, recommendationTable(state.Recommendations))
}

func showAnalytics(c *cli.Context) error {
	state, err := load(c)
	if err != nil {
		return err
	}
	return render(c, state.Analytics, analyticsTable(state.Analytics))
}

func showSummary(c *cli.Context) error {
	state, err := load(c)
	if err != nil {
		return err
	}
	summary := state.Summary()
	return render(c, summary, summaryTable(summary))
}

func addProduct(c *cli.Context) error {
	form := domain.NewProductForm()
	form.ProductID = c.String("id")
	form.CurrentStock = c.String("current-stock")
	form.IncomingStock = c.String("incoming-stock")
	form.AverageDailySales = c.String("daily-sales")
	form.LeadTimeDays = c.String("lead-time")
	form.MinReorderQuantity = c.String("min-reorder")
	form.CostPerUnit = c.String("cost")
	form.Criticality = c.String("criticality")

	ack, err := envOf(c).ctrl.AddProduct(c.Context, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, ack.Message)
	return nil
}

func deleteProduct(c *cli.Context) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}

	var confirm dashboard.Confirmer = dashboard.Confirmed
	if !c.Bool("yes") {
		confirm = promptConfirmer{in: c.App.Reader, out: c.App.Writer}
	}

	ack, err := envOf(c).ctrl.DeleteProduct(c.Context, id, confirm)
	if errors.Is(err, dashboard.ErrDeleteDeclined) {
		fmt.Fprintln(c.App.Writer, "Delete cancelled.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, ack.Message)
	return nil
}

func createOrder(c *cli.Context) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}
	ack, err := envOf(c).ctrl.CreateOrder(c.Context, id, c.Int("quantity"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, ack.Message)
	return nil
}

func runSimulation(c *cli.Context) error {
	id, err := productArg(c)
	if err != nil {
		return err
	}
	result, err := envOf(c).ctrl.RunSimulation(c.Context, domain.SimulationRequest{
		ProductID:  id,
		Multiplier: c.Float64("multiplier"),
		Days:       c.Int("days"),
	})
	if err != nil {
		return err
	}
	return render(c, result, recommendationTable(result.Recommendations))
}

func exportReport(c *cli.Context) error {
	format, err := domain.ParseExportFormat(c.String("format"))
	if err != nil {
		return err
	}

	e := envOf(c)
	artifact, err := e.ctrl.Export(c.Context, format)
	if err != nil {
		return err
	}
	if c.Bool("stdout") {
		_, err := c.App.Writer.Write(artifact.Content)
		return err
	}

	location := artifact.Filename
	if last := e.ctrl.State().LastExport; last != nil && last.Location != "" {
		location = last.Location
	}
	fmt.Fprintf(c.App.Writer, "Exported %s to %s\n", artifact.Filename, location)
	return nil
}

func ping(c *cli.Context) error {
	status, err := envOf(c).client.Health(c.Context)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s (%s)\n", status.Status, status.Timestamp)
	return nil
}

func productArg(c *cli.Context) (string, error) {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return "", fmt.Errorf("%s: product ID argument is required", c.Command.Name)
	}
	return id, nil
}

// promptConfirmer asks on the terminal and accepts y or yes.
type promptConfirmer struct {
	in  io.Reader
	out io.Writer
}

func (p promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)

	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
