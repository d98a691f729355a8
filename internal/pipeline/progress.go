package pipeline

// Stage identifies the unit of work a progress event belongs to.
type Stage string

const (
	StageAnalyzing     Stage = "analyzing"
	StageProcessing    Stage = "processing"
	StageConcatenating Stage = "concatenating"
	StageFinalizing    Stage = "finalizing"
)

// ProcessingProgress is a transient progress event. Within one job the
// Progress values form a non-decreasing sequence on the unified 0-100 scale.
type ProcessingProgress struct {
	Stage       Stage   `json:"stage"`
	Progress    float64 `json:"progress"`
	CurrentStep string  `json:"currentStep"`
}

// progressBand maps an engine invocation's own 0-1 completion fraction onto
// its fixed slice of the overall scale. The slices are uneven because the
// stages have unequal, input-dependent cost while the observer expects one
// continuous bar.
type progressBand struct {
	lo, hi float64
}

var (
	analyzeBand = progressBand{0, 10}
	forwardBand = progressBand{10, 50}
	reverseBand = progressBand{50, 80}
	concatBand  = progressBand{80, 100}
)

// scale converts an engine fraction into the band's overall percentage.
func (b progressBand) scale(fraction float64) float64 {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return b.lo + fraction*(b.hi-b.lo)
}
