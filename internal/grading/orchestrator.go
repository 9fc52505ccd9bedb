package grading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"examgrade/grading/internal/cache"
	"examgrade/grading/internal/config"
	"examgrade/grading/internal/llm"
	"examgrade/grading/internal/models"
	"examgrade/grading/internal/utils"
)

// processing-stage percentage band: guide analysis ends at the floor,
// finalization starts at the ceiling
const (
	guideAnalysisPct = 5.0
	processingFloor  = 5.0
	processingCeil   = 95.0
)

// ErrProviderUnavailable is the batch-fatal error returned before any
// submission is touched when no grading provider is configured.
var ErrProviderUnavailable = errors.New("grading provider is not configured")

// Orchestrator drives the multi-stage grading pipeline over a batch of
// submissions: guide-type analysis, per-group mapping and grading on a
// bounded worker pool, then aggregation. One orchestrator serves many
// batches; per-run state lives on the stack of ProcessBatch.
type Orchestrator struct {
	provider llm.Provider
	memoizer *cache.Memoizer
	registry *ProgressRegistry
	cfg      *config.Config
	logger   *zap.Logger
}

// NewOrchestrator wires the pipeline. registry may be nil when no one
// polls progress over HTTP.
func NewOrchestrator(provider llm.Provider, memoizer *cache.Memoizer, registry *ProgressRegistry, cfg *config.Config, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		provider: provider,
		memoizer: memoizer,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// groupOutcome is one duplicate group's representative result.
type groupOutcome struct {
	processed bool
	result    models.SubmissionResult
}

// ProcessBatch grades every submission against the guide. Per-submission
// failures are recorded and the batch continues; only a missing provider
// fails the whole call. A cancelled ctx ends the run early with partial
// results preserved.
func (o *Orchestrator) ProcessBatch(ctx context.Context, guide models.Guide, submissions []models.Submission, sink ProgressSink) (*models.BatchResult, error) {
	start := time.Now()
	progressID := uuid.New().String()

	sinks := []ProgressSink{sink}
	if o.registry != nil {
		sinks = append(sinks, o.registry.Sink())
	}

	// progressMu serializes tracker access between the coordinating
	// goroutine and pool workers
	var progressMu sync.Mutex
	tracker := newProgressTracker(progressID, len(submissions), sinks...)

	if o.provider == nil {
		progressMu.Lock()
		tracker.setStage(models.StageError, "no grading provider configured", 0)
		progressMu.Unlock()
		return nil, ErrProviderUnavailable
	}

	progressMu.Lock()
	tracker.setStage(models.StageInitializing, "batch accepted", 0)
	progressMu.Unlock()

	o.logger.Info("batch started",
		zap.String("progress_id", progressID),
		zap.String("guide_id", guide.ID),
		zap.Int("submissions", len(submissions)))

	guideContent := utils.NormalizeContent(guide.Content)

	// guide analysis: one memoized call for the whole batch
	guideType := o.analyzeGuide(ctx, guideContent, tracker, &progressMu)

	groups := GroupByContent(submissions)

	progressMu.Lock()
	tracker.setStage(models.StageProcessing, fmt.Sprintf("processing %d unique submissions", len(groups)), guideAnalysisPct)
	progressMu.Unlock()

	outcomes := make([]groupOutcome, len(groups))
	completedGroups := 0

	var eg errgroup.Group
	eg.SetLimit(o.cfg.WorkerPoolSize)

	for i, group := range groups {
		// cooperative cancellation, checked between submissions
		if ctx.Err() != nil {
			break
		}

		i, group := i, group
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			result := o.processRepresentative(ctx, guideContent, guideType, group.Representative)
			if ctx.Err() != nil && result.Status == models.StatusError {
				// cancelled mid-call; don't record a spurious failure
				return nil
			}
			outcomes[i] = groupOutcome{processed: true, result: result}

			progressMu.Lock()
			if result.Status == models.StatusError {
				tracker.addError(fmt.Sprintf("submission %s: %s", result.SubmissionID, result.Error))
			}
			completedGroups++
			tracker.itemDone(completedGroups, len(groups),
				fmt.Sprintf("graded %d of %d unique submissions", completedGroups, len(groups)))
			progressMu.Unlock()
			return nil
		})
	}
	eg.Wait()

	cancelled := ctx.Err() != nil

	// fan results out to duplicate group members, then restore input order
	byID := make(map[string]models.SubmissionResult)
	for i, group := range groups {
		if !outcomes[i].processed {
			continue
		}
		for _, result := range fanOut(group, outcomes[i].result) {
			byID[result.SubmissionID] = result
		}
	}

	results := make([]models.SubmissionResult, 0, len(byID))
	for _, sub := range submissions {
		if result, ok := byID[sub.ID]; ok {
			results = append(results, result)
		}
	}

	progressMu.Lock()
	tracker.setStage(models.StageFinalizing, "aggregating results", processingCeil)
	progressMu.Unlock()

	successful, failed := 0, 0
	scoreSum, scored := 0.0, 0
	for _, result := range results {
		if result.Status == models.StatusSuccess {
			successful++
			if result.Grading != nil {
				scoreSum += result.Grading.Percentage
				scored++
			}
		} else {
			failed++
		}
	}

	batch := &models.BatchResult{
		ProgressID:        progressID,
		GuideType:         guideType,
		TotalSubmissions:  len(submissions),
		SuccessfulCount:   successful,
		FailedCount:       failed,
		Results:           results,
		ProcessingSeconds: time.Since(start).Seconds(),
		Cancelled:         cancelled,
	}
	if scored > 0 {
		batch.AverageScore = scoreSum / float64(scored)
	}

	progressMu.Lock()
	if cancelled {
		tracker.setStage(models.StageCancelled, "batch cancelled, partial results kept", tracker.snapshot.Percentage)
	} else {
		tracker.setStage(models.StageCompleted, "batch completed", 100)
	}
	progressMu.Unlock()

	o.logger.Info("batch finished",
		zap.String("progress_id", progressID),
		zap.Int("successful", successful),
		zap.Int("failed", failed),
		zap.Bool("cancelled", cancelled),
		zap.Float64("seconds", batch.ProcessingSeconds))

	return batch, nil
}

// analyzeGuide runs the memoized guide-type determination. A failure here
// degrades to an unknown guide type with a warning; the batch continues.
func (o *Orchestrator) analyzeGuide(ctx context.Context, guideContent string, tracker *progressTracker, progressMu *sync.Mutex) string {
	progressMu.Lock()
	tracker.setStage(models.StageGuideAnalysis, "determining guide type", 0)
	progressMu.Unlock()

	value, err := o.memoizer.Do(ctx, cache.OpGuideType, []string{guideContent}, func(ctx context.Context) (interface{}, error) {
		return call(ctx, o.retryPolicy(), func(ctx context.Context) (*llm.GuideTypeResult, error) {
			return o.provider.DetermineGuideType(ctx, guideContent)
		})
	})

	guideType := models.GuideTypeUnknown
	if err != nil {
		o.logger.Warn("guide type determination failed", zap.Error(err))
		progressMu.Lock()
		tracker.addWarning(fmt.Sprintf("guide type determination failed: %v", err))
		progressMu.Unlock()
	} else if result, ok := value.(*llm.GuideTypeResult); ok {
		guideType = result.GuideType
	}

	progressMu.Lock()
	tracker.setStage(models.StageGuideAnalysis, "guide type: "+guideType, guideAnalysisPct)
	progressMu.Unlock()

	return guideType
}

// processRepresentative runs mapping then grading for one duplicate
// group's representative, each through its own memoized wrapper.
func (o *Orchestrator) processRepresentative(ctx context.Context, guideContent, guideType string, sub models.Submission) models.SubmissionResult {
	result := models.SubmissionResult{
		SubmissionID: sub.ID,
		Status:       models.StatusSuccess,
	}

	subContent := utils.NormalizeContent(sub.Content)

	mappingValue, err := o.memoizer.Do(ctx, cache.OpMapping, []string{guideContent, subContent}, func(ctx context.Context) (interface{}, error) {
		return call(ctx, o.retryPolicy(), func(ctx context.Context) (*models.MappingResult, error) {
			return o.provider.MapSubmissionToGuide(ctx, guideContent, subContent, guideType)
		})
	})
	if err != nil {
		result.Status = models.StatusError
		result.Error = fmt.Sprintf("mapping failed: %v", err)
		return result
	}
	mapping, ok := mappingValue.(*models.MappingResult)
	if !ok {
		result.Status = models.StatusError
		result.Error = "mapping failed: unexpected cached value type"
		return result
	}
	result.Mapping = mapping

	gradingValue, err := o.memoizer.Do(ctx, cache.OpGrading, []string{guideContent, subContent}, func(ctx context.Context) (interface{}, error) {
		return call(ctx, o.retryPolicy(), func(ctx context.Context) (*models.GradingResult, error) {
			return o.provider.GradeSubmission(ctx, guideContent, subContent, mapping)
		})
	})
	if err != nil {
		result.Status = models.StatusError
		result.Error = fmt.Sprintf("grading failed: %v", err)
		return result
	}
	grading, ok := gradingValue.(*models.GradingResult)
	if !ok {
		result.Status = models.StatusError
		result.Error = "grading failed: unexpected cached value type"
		return result
	}
	result.Grading = grading

	return result
}

func (o *Orchestrator) retryPolicy() retryPolicy {
	return retryPolicy{
		maxRetries: o.cfg.MaxRetries,
		backoff:    o.cfg.RetryBackoff,
		timeout:    o.cfg.CallTimeout,
	}
}
