package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vitalpath/scoring-service/internal/cache"
	"github.com/vitalpath/scoring-service/internal/config"
	"github.com/vitalpath/scoring-service/internal/events"
	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/psychometrics"
	"github.com/vitalpath/scoring-service/internal/repositories"
)

const analysisCacheTTL = 10 * time.Minute

type psychometricsService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	publisher events.EventPublisher
	cache     cache.CacheService
	policy    config.ScoringPolicy
}

func NewPsychometricsService(
	repo repositories.Repository,
	logger *slog.Logger,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	policy config.ScoringPolicy,
) PsychometricsService {
	return &psychometricsService{
		repo:      repo,
		logger:    logger,
		publisher: publisher,
		cache:     cacheService,
		policy:    policy,
	}
}

// AnalyzeCase computes item difficulty, discrimination, and reliability over
// every finalized attempt of a case. Results are cached; any new finalized
// attempt simply ages out through the TTL.
func (s *psychometricsService) AnalyzeCase(ctx context.Context, caseID string) (*psychometrics.CaseSummary, error) {
	cacheKey := psychometricsCacheKey(caseID)
	if s.cache != nil {
		var cached psychometrics.CaseSummary
		err := s.cache.Get(ctx, cacheKey, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("Analysis cache read failed", "case_id", caseID, "error", err)
		}
	}

	exists, err := s.repo.Case().Exists(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}

	attempts, err := s.repo.Attempt().GetFinalizedByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load finalized attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil, ErrAnalysisNoAttempts
	}

	vectors, err := toAttemptVectors(attempts)
	if err != nil {
		return nil, err
	}

	summary := psychometrics.AnalyzeCase(caseID, vectors, psychometrics.Policy{
		MinAttemptsPerItem:   s.policy.MinAttemptsPerItem,
		MinItemsIntersection: s.policy.MinItemsIntersection,
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, summary, analysisCacheTTL); err != nil {
			s.logger.Warn("Analysis cache write failed", "case_id", caseID, "error", err)
		}
	}

	s.logger.Info("Case analyzed",
		"case_id", caseID,
		"attempts", summary.N,
		"items", len(summary.Items))

	if s.publisher != nil {
		event := events.NewScoringEvent(events.EventCaseAnalyzed, events.CaseAnalyzedEvent{
			CaseID:     caseID,
			Attempts:   summary.N,
			ItemCount:  len(summary.Items),
			AnalyzedAt: summary.GeneratedAt,
		})
		if err := s.publisher.PublishScoringEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event", "event_type", events.EventCaseAnalyzed, "error", err)
		}
	}

	return &summary, nil
}

// toAttemptVectors reduces finalized attempts to dichotomous item scores:
// an item counts 1 only when graded fully correct.
func toAttemptVectors(attempts []*models.Attempt) ([]psychometrics.AttemptVector, error) {
	vectors := make([]psychometrics.AttemptVector, 0, len(attempts))
	for _, attempt := range attempts {
		report, err := attempt.DecodeScoreReport()
		if err != nil {
			return nil, fmt.Errorf("attempt %s: failed to decode score report: %w", attempt.ID, err)
		}
		if report == nil {
			continue
		}

		scores := make(map[string]int, len(report.Items))
		for itemID, detail := range report.Items {
			if detail.Correct {
				scores[itemID] = 1
			} else {
				scores[itemID] = 0
			}
		}
		vectors = append(vectors, psychometrics.AttemptVector{
			AttemptID:  attempt.ID,
			StudentID:  attempt.StudentID,
			ItemScores: scores,
		})
	}
	return vectors, nil
}

func psychometricsCacheKey(caseID string) string {
	return "psychometrics:case:" + caseID
}

func psychometricsCachePattern(caseID string) string {
	return "psychometrics:case:" + caseID + "*"
}
