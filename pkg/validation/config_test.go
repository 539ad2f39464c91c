package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestConfigValidator_MinInt(t *testing.T) {
	cv := NewConfigValidator("TestConfig")
	cv.MinInt("Layers", 0, 1)

	if !cv.HasErrors() {
		t.Error("Expected error for value below minimum")
	}

	cv2 := NewConfigValidator("TestConfig")
	cv2.MinInt("Layers", 5, 1)

	if cv2.HasErrors() {
		t.Error("Expected no error for value at or above minimum")
	}
}

func TestConfigValidator_Signs(t *testing.T) {
	cv := NewConfigValidator("Sim")
	cv.Positive("Reps", 0).
		NonNegative("Tries", -1).
		NonNegativeFloat("Noise", -0.5)

	if len(cv.Errors()) != 3 {
		t.Errorf("Expected 3 errors, got %d: %v", len(cv.Errors()), cv.Errors())
	}

	ok := NewConfigValidator("Sim")
	ok.Positive("Reps", 1).NonNegative("Tries", 0).NonNegativeFloat("Noise", 0)
	if ok.HasErrors() {
		t.Errorf("Expected no errors, got %v", ok.Errors())
	}
}

func TestConfigValidator_Probabilities(t *testing.T) {
	tests := []struct {
		name    string
		p       float64
		wantErr bool
		loop    bool
	}{
		{"zero", 0, false, false},
		{"one", 1, false, false},
		{"negative", -0.1, true, false},
		{"above one", 1.5, true, false},
		{"loop zero", 0, false, true},
		{"loop just below one", 0.99, false, true},
		{"loop one", 1, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cv := NewConfigValidator("GrowParams")
			if tt.loop {
				cv.LoopProbability("ProbSidePeering", tt.p)
			} else {
				cv.Probability("ProbSelfSidePeering", tt.p)
			}
			if cv.HasErrors() != tt.wantErr {
				t.Errorf("p=%g: error = %v, want %v", tt.p, cv.Errors(), tt.wantErr)
			}
			if tt.wantErr && !strings.HasPrefix(cv.Errors()[0].Error(), "GrowParams.") {
				t.Errorf("error should be prefixed by config name: %v", cv.Errors()[0])
			}
		})
	}
}

func TestConfigValidator_NonEmptyInts(t *testing.T) {
	if !NewConfigValidator("Sim").NonEmptyInts("Victims", nil).HasErrors() {
		t.Error("Expected error for empty slice")
	}
	if !NewConfigValidator("Sim").NonEmptyInts("Victims", []int{3, -1}).HasErrors() {
		t.Error("Expected error for negative element")
	}
	if NewConfigValidator("Sim").NonEmptyInts("Victims", []int{0, 10}).HasErrors() {
		t.Error("Expected no error for valid slice")
	}
}

func TestConfigValidator_Struct(t *testing.T) {
	type params struct {
		Children int     `validate:"gte=1"`
		Sigma    float64 `validate:"gte=0"`
	}

	cv := NewConfigValidator("Sim")
	cv.Struct("Grow", params{Children: 0})
	if !cv.HasErrors() {
		t.Fatal("Expected tag failure to be collected")
	}
	if !strings.Contains(cv.Errors()[0].Error(), "Sim.Grow: Children") {
		t.Errorf("unexpected message: %v", cv.Errors()[0])
	}

	if NewConfigValidator("Sim").Struct("Grow", params{Children: 2, Sigma: 0.3}).HasErrors() {
		t.Error("Expected valid struct to pass")
	}
}

func TestConfigValidator_CustomAndWhen(t *testing.T) {
	sentinel := errors.New("custom failure")
	cv := NewConfigValidator("Sim")
	cv.Custom("Seed", func() error { return sentinel })
	cv.When(false, func(v *ConfigValidator) { v.Positive("Skipped", 0) })
	cv.When(true, func(v *ConfigValidator) { v.Positive("Applied", 0) })

	if len(cv.Errors()) != 2 {
		t.Fatalf("Expected 2 errors, got %d", len(cv.Errors()))
	}
	if !errors.Is(cv.Errors()[0], sentinel) {
		t.Error("Custom error should wrap the returned error")
	}
}

func TestConfigValidator_Validate(t *testing.T) {
	if err := NewConfigValidator("Sim").Validate(); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}

	single := NewConfigValidator("Sim").Positive("Reps", 0)
	if err := single.Validate(); err == nil || !strings.Contains(err.Error(), "Sim.Reps") {
		t.Errorf("unexpected single error: %v", err)
	}

	sentinel := errors.New("second")
	multi := NewConfigValidator("Sim").
		Positive("Reps", 0).
		Custom("Other", func() error { return sentinel })
	err := multi.Validate()
	if err == nil || !strings.Contains(err.Error(), "2 errors") {
		t.Fatalf("unexpected combined error: %v", err)
	}
	if !errors.Is(err, sentinel) {
		t.Error("combined error should wrap every collected error")
	}
}

type selfValidating struct{ err error }

func (s selfValidating) Validate() error { return s.err }

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(nil); err == nil {
		t.Error("Expected error for nil config")
	}
	if err := ValidateConfig(selfValidating{}); err != nil {
		t.Errorf("Expected nil, got %v", err)
	}
}
