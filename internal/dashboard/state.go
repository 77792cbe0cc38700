package dashboard

import (
	"time"

	"github.com/andresuchdata/reorder-dashboard/internal/domain"
)

// Phase is where the controller is in its load cycle.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseMutating Phase = "mutating"
	PhaseLoading  Phase = "loading"
	PhaseReady    Phase = "ready"
	PhaseFailed   Phase = "failed"
)

// Snapshot is the last complete answer from the backend. It is replaced as
// one value and never patched.
type Snapshot struct {
	Products        []domain.Product
	Recommendations []domain.Recommendation
	Analytics       *domain.Analytics
	LoadedAt        time.Time
}

func (s *Snapshot) clone() *Snapshot {
	if s == nil {
		return nil
	}
	return &Snapshot{
		Products:        append([]domain.Product(nil), s.Products...),
		Recommendations: append([]domain.Recommendation(nil), s.Recommendations...),
		Analytics:       s.Analytics.Clone(),
		LoadedAt:        s.LoadedAt,
	}
}

// ExportRecord describes the most recent saved export.
type ExportRecord struct {
	Filename string    `json:"filename"`
	Format   string    `json:"format"`
	MIMEType string    `json:"mime_type"`
	Size     int       `json:"size"`
	Location string    `json:"location,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// State is a read-only copy of everything a view renders. Recommendations
// holds the simulated list while a simulation is active.
type State struct {
	Phase           Phase                    `json:"phase"`
	Tab             domain.Tab               `json:"tab"`
	Loaded          bool                     `json:"loaded"`
	Products        []domain.Product         `json:"products"`
	Recommendations []domain.Recommendation  `json:"recommendations"`
	Analytics       *domain.Analytics        `json:"analytics"`
	LoadedAt        time.Time                `json:"loaded_at,omitempty"`
	Simulation      *domain.SimulationResult `json:"simulation,omitempty"`
	Simulating      bool                     `json:"simulating"`
	Exporting       bool                     `json:"exporting"`
	Error           string                   `json:"error,omitempty"`
	LastExport      *ExportRecord            `json:"last_export,omitempty"`
}

// Summary derives the headline numbers from what is on display.
func (s State) Summary() domain.Summary {
	return domain.Summarize(s.Products, s.Recommendations)
}

// Busy reports whether a load or mutation is in flight.
func (s State) Busy() bool {
	return s.Phase == PhaseLoading || s.Phase == PhaseMutating
}
