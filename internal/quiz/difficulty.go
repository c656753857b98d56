package quiz

import "fmt"

// Default difficulty tuning
const (
	DefaultMinAnswers    = 3
	DefaultHighThreshold = 0.9
	DefaultLowThreshold  = 0.7
	DefaultLowWeight     = 0.5
	DefaultNormalWeight  = 1.0
	DefaultHighWeight    = 2.0
)

// Difficulty converts a word's rolling accuracy for a user into a relative
// sampling weight. Words the user struggles with get picked more often,
// over-practiced ones less often, and nothing is ever excluded.
type Difficulty struct {
	// MinAnswers is the number of answers required before accuracy is trusted
	MinAnswers int
	// HighThreshold is the success rate at or above which a word is deprioritized
	HighThreshold float64
	// LowThreshold is the success rate at or below which a word is prioritized
	LowThreshold float64
	LowWeight    float64
	NormalWeight float64
	HighWeight   float64
}

// DefaultDifficulty returns the standard tuning
func DefaultDifficulty() Difficulty {
	return Difficulty{
		MinAnswers:    DefaultMinAnswers,
		HighThreshold: DefaultHighThreshold,
		LowThreshold:  DefaultLowThreshold,
		LowWeight:     DefaultLowWeight,
		NormalWeight:  DefaultNormalWeight,
		HighWeight:    DefaultHighWeight,
	}
}

// Validate rejects configurations that would misbehave at runtime
func (d Difficulty) Validate() error {
	if d.MinAnswers < 1 {
		return fmt.Errorf("min answers must be at least 1, got %d", d.MinAnswers)
	}
	if d.HighThreshold <= d.LowThreshold {
		return fmt.Errorf("high threshold %.2f must be greater than low threshold %.2f",
			d.HighThreshold, d.LowThreshold)
	}
	if d.LowWeight <= 0 || d.NormalWeight <= 0 || d.HighWeight <= 0 {
		return fmt.Errorf("weights must be positive, got %.2f/%.2f/%.2f",
			d.LowWeight, d.NormalWeight, d.HighWeight)
	}
	return nil
}

// Weight returns the sampling weight for a word answered correct out of total
// times. With fewer than MinAnswers answers there is not enough signal and the
// word stays at normal weight.
func (d Difficulty) Weight(correct, total int) float64 {
	if total < d.MinAnswers {
		return d.NormalWeight
	}

	successRate := float64(correct) / float64(total)
	switch {
	case successRate >= d.HighThreshold:
		return d.LowWeight
	case successRate <= d.LowThreshold:
		return d.HighWeight
	default:
		return d.NormalWeight
	}
}
