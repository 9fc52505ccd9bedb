package grading

import (
	"time"

	"examgrade/grading/internal/cache"
	"examgrade/grading/internal/models"
)

// ProgressSink receives a full progress snapshot after every stage
// transition and every completed submission group. Delivery is synchronous
// and at-least-once per transition.
type ProgressSink func(models.ProgressSnapshot)

// progressTracker owns the mutable progress state for one batch run. The
// orchestrator drives it from the coordinating goroutine and from workers,
// so every mutation happens under the run's completion lock (see
// orchestrator.go); the tracker itself stays lock-free.
type progressTracker struct {
	snapshot models.ProgressSnapshot
	sinks    []ProgressSink
}

func newProgressTracker(progressID string, totalItems int, sinks ...ProgressSink) *progressTracker {
	active := make([]ProgressSink, 0, len(sinks))
	for _, sink := range sinks {
		if sink != nil {
			active = append(active, sink)
		}
	}
	return &progressTracker{
		snapshot: models.ProgressSnapshot{
			ProgressID: progressID,
			Stage:      models.StageInitializing,
			TotalItems: totalItems,
			StartTime:  time.Now(),
		},
		sinks: active,
	}
}

// setStage moves to a new stage and emits. Percentage never decreases even
// when stages report out of order.
func (pt *progressTracker) setStage(stage, message string, percentage float64) {
	pt.snapshot.Stage = stage
	pt.snapshot.Message = message
	pt.setPercentage(percentage)
	pt.emit()
}

// itemDone records one more completed item and rescales the percentage
// into the processing band.
func (pt *progressTracker) itemDone(completed, total int, message string) {
	pt.snapshot.CurrentItemIndex = completed
	pt.snapshot.Message = message
	if total > 0 {
		pt.setPercentage(processingFloor + (processingCeil-processingFloor)*float64(completed)/float64(total))
	}
	pt.emit()
}

func (pt *progressTracker) addError(message string) {
	pt.snapshot.Errors = append(pt.snapshot.Errors, message)
}

func (pt *progressTracker) addWarning(message string) {
	pt.snapshot.Warnings = append(pt.snapshot.Warnings, message)
}

// setPercentage enforces monotonic progress.
func (pt *progressTracker) setPercentage(percentage float64) {
	if percentage > 100 {
		percentage = 100
	}
	if percentage > pt.snapshot.Percentage {
		pt.snapshot.Percentage = percentage
	}
}

// emit delivers a value copy of the snapshot to every sink, with derived
// timing filled in. Sinks never see the live struct.
func (pt *progressTracker) emit() {
	snap := pt.snapshot
	snap.Errors = append([]string(nil), pt.snapshot.Errors...)
	snap.Warnings = append([]string(nil), pt.snapshot.Warnings...)

	elapsed := time.Since(snap.StartTime).Seconds()
	snap.ElapsedSeconds = elapsed
	if snap.Percentage > 0 && snap.Percentage < 100 {
		snap.RemainingSeconds = elapsed * (100 - snap.Percentage) / snap.Percentage
	}

	for _, sink := range pt.sinks {
		sink(snap)
	}
}

// ProgressRegistry keeps the latest snapshot per batch run so HTTP clients
// can poll long-running batches. Snapshots ride the shared expiring cache
// rather than a second store.
type ProgressRegistry struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewProgressRegistry(c *cache.Cache, ttl time.Duration) *ProgressRegistry {
	return &ProgressRegistry{cache: c, ttl: ttl}
}

// Sink returns a ProgressSink that records snapshots into the registry.
func (r *ProgressRegistry) Sink() ProgressSink {
	return func(snap models.ProgressSnapshot) {
		r.cache.SetTTL(progressKey(snap.ProgressID), snap, r.ttl)
	}
}

// Get returns the latest snapshot for a run, if it is still retained.
func (r *ProgressRegistry) Get(progressID string) (models.ProgressSnapshot, bool) {
	value, ok := r.cache.Get(progressKey(progressID))
	if !ok {
		return models.ProgressSnapshot{}, false
	}
	snap, ok := value.(models.ProgressSnapshot)
	return snap, ok
}

func progressKey(progressID string) string {
	return "progress:" + progressID
}
