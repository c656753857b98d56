package quiz

import "testing"

func TestDifficultyWeightBrackets(t *testing.T) {
	d := DefaultDifficulty()

	tests := []struct {
		name    string
		correct int
		total   int
		want    float64
	}{
		{"no answers yet", 0, 0, 1.0},
		{"below min answers", 0, 2, 1.0},
		{"struggling below min answers", 0, 1, 1.0},
		{"exactly high threshold", 9, 10, 0.5},
		{"above high threshold", 10, 10, 0.5},
		{"exactly low threshold", 7, 10, 2.0},
		{"below low threshold", 2, 10, 2.0},
		{"between thresholds", 8, 10, 1.0},
		{"all wrong at min answers", 0, 3, 2.0},
		{"all right at min answers", 3, 3, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.Weight(tt.correct, tt.total); got != tt.want {
				t.Errorf("Weight(%d, %d) = %v, want %v", tt.correct, tt.total, got, tt.want)
			}
		})
	}
}

// The threshold-th answer is the first one that makes accuracy count
func TestDifficultyWeightActivatesAtMinAnswers(t *testing.T) {
	d := DefaultDifficulty()

	// Two wrong answers give no signal, the third flips to high weight
	if got := d.Weight(0, 2); got != d.NormalWeight {
		t.Errorf("weight before threshold = %v, want %v", got, d.NormalWeight)
	}
	if got := d.Weight(0, 3); got != d.HighWeight {
		t.Errorf("weight at threshold = %v, want %v", got, d.HighWeight)
	}
}

func TestDifficultyValidate(t *testing.T) {
	if err := DefaultDifficulty().Validate(); err != nil {
		t.Fatalf("default tuning should validate: %v", err)
	}

	bad := DefaultDifficulty()
	bad.HighThreshold = 0.5
	bad.LowThreshold = 0.7
	if err := bad.Validate(); err == nil {
		t.Fatal("inverted thresholds should fail validation")
	}

	bad = DefaultDifficulty()
	bad.HighThreshold = bad.LowThreshold
	if err := bad.Validate(); err == nil {
		t.Fatal("equal thresholds should fail validation")
	}

	bad = DefaultDifficulty()
	bad.MinAnswers = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero min answers should fail validation")
	}

	bad = DefaultDifficulty()
	bad.NormalWeight = 0
	if err := bad.Validate(); err == nil {
		t.Fatal("zero weight should fail validation")
	}
}
