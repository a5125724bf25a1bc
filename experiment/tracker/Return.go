package tracker

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Return tracks the average reward per episode for each epoch in an
// experiment and saves the sequence to a binary file.
type Return struct {
	averageRewards []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker that saves to
// filename.
func NewReturn(filename string) Tracker {
	return &Return{filename: filename}
}

// Track caches the average reward of one epoch.
func (r *Return) Track(stats EpochStats) {
	r.averageRewards = append(r.averageRewards, stats.AverageReward)
}

// Save saves the data tracked by the Return Tracker to disk.
func (r *Return) Save() error {
	file, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("save: could not create file %v: %w", r.filename,
			err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(r.averageRewards); err != nil {
		return fmt.Errorf("save: could not encode data: %w", err)
	}
	return nil
}

// LoadReturns reads back data saved by a Return Tracker.
func LoadReturns(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadreturns: could not open file %v: %w",
			filename, err)
	}
	defer file.Close()

	var averageRewards []float64
	dec := gob.NewDecoder(file)
	if err := dec.Decode(&averageRewards); err != nil {
		return nil, fmt.Errorf("loadreturns: could not decode data: %w", err)
	}
	return averageRewards, nil
}
