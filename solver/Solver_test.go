package solver

import "testing"

func TestNewDefaultAdam(t *testing.T) {
	s, err := NewDefaultAdam(1e-2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Solver == nil {
		t.Error("expected a constructed Gorgonia solver")
	}
	if s.Type != Adam {
		t.Errorf("expected solver type %v, got %v", Adam, s.Type)
	}
}

func TestNewVanilla(t *testing.T) {
	s, err := NewVanilla(1e-2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s.Solver == nil {
		t.Error("expected a constructed Gorgonia solver")
	}
	if s.Type != Vanilla {
		t.Errorf("expected solver type %v, got %v", Vanilla, s.Type)
	}
}

func TestConfigRejectsWrongType(t *testing.T) {
	if _, err := newSolver(Adam, VanillaConfig{StepSize: 0.1, Batch: 1}); err == nil {
		t.Error("expected an error creating an Adam solver from a " +
			"vanilla configuration")
	}
}
