// Package dashboard owns the reorder dashboard's state. Views read copies
// of it and call the handlers here; every successful mutation is followed
// by a full reload from the backend.
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Backend is the subset of the API client the controller drives.
type Backend interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListRecommendations(ctx context.Context) ([]domain.Recommendation, error)
	GetAnalytics(ctx context.Context) (*domain.Analytics, error)
	AddProduct(ctx context.Context, form domain.ProductForm) (*domain.Ack, error)
	DeleteProduct(ctx context.Context, productID string) (*domain.Ack, error)
	CreateOrder(ctx context.Context, productID string, quantity int) (*domain.Ack, error)
	SimulateSpike(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResult, error)
	Export(ctx context.Context, format domain.ExportFormat) (*domain.ExportResult, error)
}

// Sink stores an export artifact and returns where it ended up.
type Sink interface {
	Save(ctx context.Context, artifact *domain.Artifact) (string, error)
}

// Confirmer approves destructive actions.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Confirmed approves every prompt.
var Confirmed Confirmer = ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

type Option func(*Controller)

// WithSink saves every export through s.
func WithSink(s Sink) Option {
	return func(c *Controller) { c.sink = s }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

type reloadCall struct {
	done chan struct{}
	err  error
}

// Controller is safe for concurrent use.
type Controller struct {
	backend Backend
	sink    Sink
	now     func() time.Time

	mu         sync.Mutex
	phase      Phase
	lastReload Phase
	fetching   bool
	mutations  int
	tab        domain.Tab
	snapshot   *Snapshot
	simulation *domain.SimulationResult
	simulating bool
	exporting  bool
	errMsg     string
	lastExport *ExportRecord

	notifyMu    sync.Mutex
	subscribers map[int]func(State)
	nextSubID   int

	reloadMu  sync.Mutex
	reloading bool
	pending   *reloadCall
}

func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:     backend,
		now:         time.Now,
		phase:       PhaseIdle,
		lastReload:  PhaseIdle,
		tab:         domain.TabOverview,
		subscribers: make(map[int]func(State)),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	s := State{
		Phase:      c.phase,
		Tab:        c.tab,
		Simulating: c.simulating,
		Exporting:  c.exporting,
		Error:      c.errMsg,
		Simulation: c.simulation.Clone(),
	}
	if c.lastExport != nil {
		rec := *c.lastExport
		s.LastExport = &rec
	}
	if snap := c.snapshot.clone(); snap != nil {
		s.Loaded = true
		s.Products = snap.Products
		s.Recommendations = snap.Recommendations
		s.Analytics = snap.Analytics
		s.LoadedAt = snap.LoadedAt
	}
	if s.Simulation != nil {
		s.Recommendations = append([]domain.Recommendation(nil), s.Simulation.Recommendations...)
	}
	return s
}

// Subscribe registers fn to receive a State copy after every transition.
// fn runs on the goroutine that caused the transition and must not block.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.notifyMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	c.notifyMu.Unlock()

	return func() {
		c.notifyMu.Lock()
		delete(c.subscribers, id)
		c.notifyMu.Unlock()
	}
}

// Watch is Subscribe with an initial call carrying the current state. The
// initial call is ordered before every transition fn later receives.
func (c *Controller) Watch(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	s := c.stateLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()

	id := c.nextSubID
	c.nextSubID++
	c.subscribers[id] = fn
	fn(s)
	c.notifyMu.Unlock()

	return func() {
		c.notifyMu.Lock()
		delete(c.subscribers, id)
		c.notifyMu.Unlock()
	}
}

// update applies fn under the state lock and notifies subscribers in
// transition order.
func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	s := c.stateLocked()
	c.notifyMu.Lock()
	c.mu.Unlock()

	for _, sub := range c.subscribers {
		sub(s)
	}
	c.notifyMu.Unlock()
}

// Reload fetches products, recommendations and analytics and replaces the
// snapshot only if all three succeed. Reloads never overlap: requests made
// while one is running share a single follow-up fetch. ctx only bounds how
// long the caller waits.
func (c *Controller) Reload(ctx context.Context) error {
	call := c.scheduleReload()
	select {
	case <-call.done:
		return call.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) scheduleReload() *reloadCall {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	if c.pending != nil {
		return c.pending
	}
	call := &reloadCall{done: make(chan struct{})}
	if c.reloading {
		c.pending = call
		return call
	}
	c.reloading = true
	go c.runReloads(call)
	return call
}

func (c *Controller) runReloads(call *reloadCall) {
	for call != nil {
		call.err = c.fetch(context.Background())
		close(call.done)

		c.reloadMu.Lock()
		call = c.pending
		c.pending = nil
		if call == nil {
			c.reloading = false
		}
		c.reloadMu.Unlock()
	}
}

func (c *Controller) fetch(ctx context.Context) error {
	c.update(func() {
		c.fetching = true
		c.phase = PhaseLoading
		c.errMsg = ""
	})

	var (
		products        []domain.Product
		recommendations []domain.Recommendation
		analytics       *domain.Analytics
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		products, err = c.backend.ListProducts(gctx)
		return err
	})
	g.Go(func() (err error) {
		recommendations, err = c.backend.ListRecommendations(gctx)
		return err
	})
	g.Go(func() (err error) {
		analytics, err = c.backend.GetAnalytics(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to reload dashboard data")
		c.update(func() {
			c.fetching = false
			c.lastReload = PhaseFailed
			c.phase = c.settledPhaseLocked()
			c.errMsg = reloadMessage(err)
		})
		return fmt.Errorf("reload: %w", err)
	}

	snap := &Snapshot{
		Products:        products,
		Recommendations: recommendations,
		Analytics:       analytics,
		LoadedAt:        c.now(),
	}
	c.update(func() {
		c.snapshot = snap
		c.simulation = nil
		c.fetching = false
		c.lastReload = PhaseReady
		c.phase = c.settledPhaseLocked()
	})
	log.Debug().
		Int("products", len(products)).
		Int("recommendations", len(recommendations)).
		Msg("dashboard data reloaded")
	return nil
}

// settledPhaseLocked is the phase once nothing started by the caller is
// left: Loading while a fetch runs, Mutating while another mutation is in
// flight, otherwise the outcome of the last finished reload.
func (c *Controller) settledPhaseLocked() Phase {
	switch {
	case c.fetching:
		return PhaseLoading
	case c.mutations > 0:
		return PhaseMutating
	default:
		return c.lastReload
	}
}

// mutate runs call in the Mutating phase. On success it reloads; on failure
// the phase settles from the reload and mutation bookkeeping and the error
// is shown. A failed reload after a successful call is reported through
// State, not returned.
func (c *Controller) mutate(ctx context.Context, name string, call func(ctx context.Context) (*domain.Ack, error)) (*domain.Ack, error) {
	c.update(func() {
		c.mutations++
		c.phase = PhaseMutating
		c.errMsg = ""
	})

	ack, err := call(ctx)
	if err != nil {
		log.Warn().Err(err).Str("action", name).Msg("dashboard mutation failed")
		c.update(func() {
			c.mutations--
			c.phase = c.settledPhaseLocked()
			c.errMsg = ErrorMessage(err)
		})
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	log.Info().Str("action", name).Str("message", ack.Message).Msg("dashboard mutation succeeded")
	// The follow-up reload is scheduled right after this transition.
	c.update(func() {
		c.mutations--
		c.phase = PhaseLoading
	})
	if err := c.Reload(ctx); err != nil {
		log.Warn().Err(err).Str("action", name).Msg("reload after mutation failed")
	}
	return ack, nil
}

func (c *Controller) rejectInvalid(err error) error {
	c.update(func() { c.errMsg = ErrorMessage(err) })
	return err
}

// AddProduct validates form locally and submits it unchanged.
func (c *Controller) AddProduct(ctx context.Context, form domain.ProductForm) (*domain.Ack, error) {
	if err := form.Validate(); err != nil {
		return nil, c.rejectInvalid(err)
	}
	return c.mutate(ctx, "add product", func(ctx context.Context) (*domain.Ack, error) {
		return c.backend.AddProduct(ctx, form)
	})
}

// DeleteProduct removes productID once confirm approves. A nil confirm
// declines.
func (c *Controller) DeleteProduct(ctx context.Context, productID string, confirm Confirmer) (*domain.Ack, error) {
	if confirm == nil {
		return nil, ErrDeleteDeclined
	}
	ok, err := confirm.Confirm(ctx, DeletePrompt(productID))
	if err != nil {
		return nil, fmt.Errorf("confirm delete: %w", err)
	}
	if !ok {
		return nil, ErrDeleteDeclined
	}
	return c.mutate(ctx, "delete product", func(ctx context.Context) (*domain.Ack, error) {
		return c.backend.DeleteProduct(ctx, productID)
	})
}

// CreateOrder places a reorder and switches back to the overview tab.
func (c *Controller) CreateOrder(ctx context.Context, productID string, quantity int) (*domain.Ack, error) {
	req := domain.OrderRequest{ProductID: productID, Quantity: quantity}
	if err := req.Validate(); err != nil {
		return nil, c.rejectInvalid(err)
	}
	ack, err := c.mutate(ctx, "create order", func(ctx context.Context) (*domain.Ack, error) {
		return c.backend.CreateOrder(ctx, productID, quantity)
	})
	if err != nil {
		return nil, err
	}
	c.SetTab(domain.TabOverview)
	return ack, nil
}

// RunSimulation swaps the displayed recommendations for hypothetical ones.
// Products, analytics and the snapshot stay as they are.
func (c *Controller) RunSimulation(ctx context.Context, req domain.SimulationRequest) (*domain.SimulationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, c.rejectInvalid(err)
	}

	var busy bool
	c.update(func() {
		if c.simulating {
			busy = true
			return
		}
		c.simulating = true
		c.errMsg = ""
	})
	if busy {
		return nil, ErrSimulationInProgress
	}

	result, err := c.backend.SimulateSpike(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("product_id", req.ProductID).Msg("simulation failed")
		c.update(func() {
			c.simulating = false
			c.errMsg = ErrorMessage(err)
		})
		return nil, fmt.Errorf("run simulation: %w", err)
	}

	c.update(func() {
		c.simulating = false
		c.simulation = result
	})
	log.Info().
		Str("product_id", req.ProductID).
		Float64("multiplier", req.Multiplier).
		Int("days", req.Days).
		Int("recommendations", len(result.Recommendations)).
		Msg("simulation applied")
	return result.Clone(), nil
}

// ClearSimulation drops the hypothetical view and reloads.
func (c *Controller) ClearSimulation(ctx context.Context) error {
	c.update(func() { c.simulation = nil })
	return c.Reload(ctx)
}

// Export fetches a report, builds the file and hands it to the sink.
func (c *Controller) Export(ctx context.Context, format domain.ExportFormat) (*domain.Artifact, error) {
	var busy bool
	c.update(func() {
		if c.exporting {
			busy = true
			return
		}
		c.exporting = true
		c.errMsg = ""
	})
	if busy {
		return nil, ErrExportInProgress
	}

	artifact, record, err := c.export(ctx, format)
	if err != nil {
		log.Warn().Err(err).Str("format", string(format)).Msg("export failed")
		c.update(func() {
			c.exporting = false
			c.errMsg = ErrorMessage(err)
		})
		return nil, err
	}

	c.update(func() {
		c.exporting = false
		c.lastExport = record
	})
	log.Info().Str("filename", record.Filename).Str("location", record.Location).Msg("export saved")
	return artifact, nil
}

func (c *Controller) export(ctx context.Context, format domain.ExportFormat) (*domain.Artifact, *ExportRecord, error) {
	// client errors already name the operation
	result, err := c.backend.Export(ctx, format)
	if err != nil {
		return nil, nil, err
	}
	artifact, err := domain.BuildArtifact(format, result)
	if err != nil {
		return nil, nil, fmt.Errorf("build export: %w", err)
	}

	record := &ExportRecord{
		Filename: artifact.Filename,
		Format:   string(format),
		MIMEType: artifact.MIMEType,
		Size:     len(artifact.Content),
		SavedAt:  c.now(),
	}
	if c.sink != nil {
		location, err := c.sink.Save(ctx, artifact)
		if err != nil {
			return nil, nil, fmt.Errorf("save export: %w", err)
		}
		record.Location = location
	}
	return artifact, record, nil
}

// SetTab switches the active tab.
func (c *Controller) SetTab(tab domain.Tab) {
	c.update(func() { c.tab = tab })
}

// DismissError clears the banner.
func (c *Controller) DismissError() {
	c.update(func() { c.errMsg = "" })
}
