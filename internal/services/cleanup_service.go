package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/pulsefit/reconciler/internal/models"
)

type orphanScanner interface {
	ListOrphans(ctx context.Context) ([]models.Exercise, error)
}

type exerciseMatcher interface {
	FindMatch(ctx context.Context, selfID int64, name string) (*MatchResult, error)
}

type exerciseMerger interface {
	Merge(ctx context.Context, loserID, winnerID int64) error
}

type CleanupSummary struct {
	Merged       int `json:"merged"`
	Skipped      int `json:"skipped"`
	TotalOrphans int `json:"total_orphans"`
}

// CleanupService drives the orphan dedup pipeline: scan, then match and
// merge in fixed-size batches with a pause between batches so repeated
// library scans do not saturate the query path.
type CleanupService struct {
	exerciseRepo orphanScanner
	matcher      exerciseMatcher
	merger       exerciseMerger
	batchSize    int
	batchDelay   time.Duration
	logger       *slog.Logger
}

func NewCleanupService(
	exerciseRepo orphanScanner,
	matcher exerciseMatcher,
	merger exerciseMerger,
	batchSize int,
	batchDelay time.Duration,
	logger *slog.Logger,
) *CleanupService {
	if batchSize <= 0 {
		batchSize = 5
	}
	return &CleanupService{
		exerciseRepo: exerciseRepo,
		matcher:      matcher,
		merger:       merger,
		batchSize:    batchSize,
		batchDelay:   batchDelay,
		logger:       logger,
	}
}

// Run processes every current orphan once. One orphan's failure never aborts
// the batch or the run; failed items are simply picked up by the next run if
// they are still orphans.
func (s *CleanupService) Run(ctx context.Context) (*CleanupSummary, error) {
	orphans, err := s.exerciseRepo.ListOrphans(ctx)
	if err != nil {
		return nil, err
	}

	summary := &CleanupSummary{TotalOrphans: len(orphans)}

	for start := 0; start < len(orphans); start += s.batchSize {
		end := start + s.batchSize
		if end > len(orphans) {
			end = len(orphans)
		}

		for _, orphan := range orphans[start:end] {
			if s.processOrphan(ctx, orphan) {
				summary.Merged++
			} else {
				summary.Skipped++
			}
		}

		if end < len(orphans) && s.batchDelay > 0 {
			time.Sleep(s.batchDelay)
		}
	}

	return summary, nil
}

func (s *CleanupService) processOrphan(ctx context.Context, orphan models.Exercise) bool {
	result, err := s.matcher.FindMatch(ctx, orphan.ID, orphan.Name)
	if err != nil {
		s.logger.Warn("orphan match failed",
			"exercise_id", orphan.ID,
			"name", orphan.Name,
			"error", err,
		)
		return false
	}
	if result.Outcome != OutcomeMatched {
		return false
	}

	if err := s.merger.Merge(ctx, orphan.ID, result.LibraryID); err != nil {
		s.logger.Warn("orphan merge failed",
			"exercise_id", orphan.ID,
			"target_id", result.LibraryID,
			"error", err,
		)
		return false
	}

	s.logger.Info("orphan merged",
		"exercise_id", orphan.ID,
		"name", orphan.Name,
		"target_id", result.LibraryID,
		"target_name", result.LibraryName,
	)
	return true
}
