// Package tracker implements trackers which cache per-epoch training
// statistics and save them to disk once an experiment finishes.
package tracker

// EpochStats summarizes one training epoch.
type EpochStats struct {
	Epoch         int
	Steps         int     // steps in the epoch's batch
	Episodes      int     // completed episodes in the batch
	AverageReward float64 // raw reward per completed episode
	Loss          float64
}

// Tracker caches data about an experiment as it runs and saves the
// cached data when the experiment ends.
type Tracker interface {
	Track(EpochStats)
	Save() error
}
