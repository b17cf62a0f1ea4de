package settings

import (
	"testing"

	"github.com/rigid2d/engine/physics/perr"
)

func TestNewSettingsDefaults(t *testing.T) {
	s := NewSettings()

	if s.VelocityIterations != 10 {
		t.Errorf("VelocityIterations = %d, want 10", s.VelocityIterations)
	}
	if s.PositionIterations != 10 {
		t.Errorf("PositionIterations = %d, want 10", s.PositionIterations)
	}
	if s.ContinuousMode != CCDAll {
		t.Errorf("ContinuousMode = %v, want CCDAll", s.ContinuousMode)
	}
	if s.StepFrequency <= 0 {
		t.Errorf("StepFrequency = %v, want > 0", s.StepFrequency)
	}
}

func TestSetStepFrequencyRejectsNonPositive(t *testing.T) {
	s := NewSettings()
	err := s.SetStepFrequency(0)
	if err == nil {
		t.Fatal("expected an error for a zero step frequency")
	}
	if !perr.Is(err, perr.KindInvalidArgument) {
		t.Errorf("expected KindInvalidArgument, got %v", err)
	}
	if s.StepFrequency == 0 {
		t.Error("a rejected setter must not mutate the field")
	}
}

func TestSetVelocityIterationsRejectsZero(t *testing.T) {
	s := NewSettings()
	if err := s.SetVelocityIterations(0); err == nil {
		t.Fatal("expected an error for zero velocity iterations")
	}
}

func TestSetBaumgarteRange(t *testing.T) {
	s := NewSettings()
	if err := s.SetBaumgarte(1.5); err == nil {
		t.Fatal("expected an error for a baumgarte factor above 1")
	}
	if err := s.SetBaumgarte(0.5); err != nil {
		t.Fatalf("0.5 should be accepted, got %v", err)
	}
	if s.Baumgarte != 0.5 {
		t.Errorf("Baumgarte = %v, want 0.5", s.Baumgarte)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	s := NewSettings()
	s.SetVelocityIterations(4)
	s.SetPositionIterations(2)

	data, err := s.SaveYAML()
	if err != nil {
		t.Fatalf("SaveYAML: %v", err)
	}

	loaded, err := LoadYAML(data)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	if loaded.VelocityIterations != 4 || loaded.PositionIterations != 2 {
		t.Errorf("round trip = %+v, want VelocityIterations=4 PositionIterations=2", loaded)
	}
}

func TestYAMLLoadFillsOmittedFieldsWithDefaults(t *testing.T) {
	doc := []byte("velocityIterations: 6\n")

	loaded, err := LoadYAML(doc)
	if err != nil {
		t.Fatalf("LoadYAML: %v", err)
	}

	if loaded.VelocityIterations != 6 {
		t.Errorf("VelocityIterations = %d, want 6", loaded.VelocityIterations)
	}
	want := NewSettings().PositionIterations
	if loaded.PositionIterations != want {
		t.Errorf("an omitted field should keep its default: PositionIterations = %d, want %d", loaded.PositionIterations, want)
	}
}
