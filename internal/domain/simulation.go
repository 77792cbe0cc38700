package domain

const (
	DefaultSpikeMultiplier = 3.0
	DefaultSpikeDays       = 7

	minSpikeMultiplier = 1.0
	maxSpikeMultiplier = 10.0
	minSpikeDays       = 1
	maxSpikeDays       = 30
)

// SimulationRequest asks the backend to project recommendations under a demand spike.
type SimulationRequest struct {
	ProductID  string  `json:"product_id" yaml:"product_id"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	Days       int     `json:"days" yaml:"days"`
}

func (r SimulationRequest) Validate() error {
	if r.ProductID == "" {
		return emptyFieldError("product_id")
	}
	if r.Multiplier < minSpikeMultiplier || r.Multiplier > maxSpikeMultiplier {
		return invalidFieldError("multiplier", "Demand multiplier must be between %g and %g.", minSpikeMultiplier, maxSpikeMultiplier)
	}
	if r.Days < minSpikeDays || r.Days > maxSpikeDays {
		return invalidFieldError("days", "Duration must be between %d and %d days.", minSpikeDays, maxSpikeDays)
	}
	return nil
}

// SimulationResult holds hypothetical recommendations. Nothing on the backend changes.
type SimulationResult struct {
	Simulation      SimulationRequest `json:"simulation" yaml:"simulation"`
	Recommendations []Recommendation  `json:"recommendations" yaml:"recommendations"`
}

func (r *SimulationResult) Clone() *SimulationResult {
	if r == nil {
		return nil
	}
	return &SimulationResult{
		Simulation:      r.Simulation,
		Recommendations: append([]Recommendation(nil), r.Recommendations...),
	}
}
