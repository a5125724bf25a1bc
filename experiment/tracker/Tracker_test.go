package tracker

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReturnRoundTrip(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.bin")

	r := NewReturn(filename)
	rewards := []float64{9.5, 12.25, 20}
	for i, reward := range rewards {
		r.Track(EpochStats{Epoch: i, AverageReward: reward})
	}
	if err := r.Save(); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadReturns(filename)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != len(rewards) {
		t.Fatalf("expected %d returns, got %d", len(rewards), len(loaded))
	}
	for i := range rewards {
		if loaded[i] != rewards[i] {
			t.Errorf("epoch %d: expected %v, got %v", i, rewards[i],
				loaded[i])
		}
	}
}

func TestLearningCurveSave(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "curve.png")

	l := NewLearningCurve(filename)
	for i, reward := range []float64{9.5, 12.25, 20} {
		l.Track(EpochStats{Epoch: i, AverageReward: reward})
	}
	if err := l.Save(); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(filename)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty plot file")
	}
}
