package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vitalpath/scoring-service/internal/cache"
	"github.com/vitalpath/scoring-service/internal/config"
	"github.com/vitalpath/scoring-service/internal/events"
	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/repositories"
	"github.com/vitalpath/scoring-service/internal/rotation"
	"github.com/vitalpath/scoring-service/internal/scoring"
	"github.com/vitalpath/scoring-service/internal/validator"
)

type rotationService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	cache     cache.CacheService
	policy    config.ScoringPolicy

	// Per-case generate serialization; two concurrent generates for the same
	// case must not race on the history append.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewRotationService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	policy config.ScoringPolicy,
) RotationService {
	return &rotationService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		cache:     cacheService,
		policy:    policy,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *rotationService) Generate(ctx context.Context, req *GenerateActiveSetRequest) (*ActiveSetResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	lock := s.caseLock(req.CaseID)
	lock.Lock()
	defer lock.Unlock()

	exists, err := s.repo.Case().Exists(ctx, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}

	bankIDs, err := s.repo.Item().GetIDsByCase(ctx, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item bank: %w", err)
	}
	if len(bankIDs) == 0 {
		return nil, ErrCaseEmptyBank
	}

	targetSize := req.TargetSize
	if targetSize <= 0 {
		targetSize = s.policy.ItemsPerCase
	}

	seed, err := rotation.NewSeed()
	if err != nil {
		return nil, err
	}

	generation := rotation.Generation(req.CaseID, seed, req.GeneratedBy, bankIDs, targetSize, time.Now().UTC())
	set, err := s.repo.ActiveSet().ReplaceWithHistory(ctx, req.CaseID, generation)
	if err != nil {
		return nil, fmt.Errorf("failed to install active set: %w", err)
	}

	response, err := toActiveSetResponse(set)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Active set generated",
		"case_id", req.CaseID,
		"seed", seed,
		"item_count", len(response.QIDs),
		"generation", response.Generations)

	// A new generation changes which items future attempts see; cached
	// analysis for the case is stale.
	if s.cache != nil {
		if err := s.cache.DeletePattern(ctx, psychometricsCachePattern(req.CaseID)); err != nil {
			s.logger.Warn("Failed to invalidate analysis cache", "case_id", req.CaseID, "error", err)
		}
	}

	s.publishEvent(ctx, events.EventActiveSetGenerated, events.ActiveSetGeneratedEvent{
		CaseID:      req.CaseID,
		Seed:        seed,
		ItemCount:   len(response.QIDs),
		Generation:  response.Generations,
		GeneratedBy: req.GeneratedBy,
		GeneratedAt: generation.GeneratedAt,
	})

	return response, nil
}

func (s *rotationService) Get(ctx context.Context, caseID string) (*ActiveSetResponse, error) {
	set, err := s.getActiveSet(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return toActiveSetResponse(set)
}

func (s *rotationService) History(ctx context.Context, caseID string) ([]models.ActiveSetGeneration, error) {
	set, err := s.getActiveSet(ctx, caseID)
	if err != nil {
		return nil, err
	}

	history, err := set.DecodeHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to decode rotation history: %w", err)
	}
	return history, nil
}

// PresentedItems resolves the full item records an examinee sees, in
// presentation order.
func (s *rotationService) PresentedItems(ctx context.Context, caseID, studentID, sessionID string) ([]*models.BankItem, error) {
	bankIDs, err := s.repo.Item().GetIDsByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item bank: %w", err)
	}
	if len(bankIDs) == 0 {
		return nil, ErrCaseEmptyBank
	}

	var qids []string
	set, err := s.repo.ActiveSet().GetByCase(ctx, caseID)
	switch {
	case err == nil:
		if qids, err = set.DecodeQIDs(); err != nil {
			return nil, fmt.Errorf("failed to decode active set: %w", err)
		}
	case !repositories.IsNotFoundError(err):
		return nil, fmt.Errorf("failed to load active set: %w", err)
	}

	presented := rotation.PresentedItems(qids, bankIDs, s.policy.ItemsPerCase, s.policy.RotationEnabled)
	presented = scoring.ShuffleIfNeeded(presented,
		fmt.Sprintf("%s|%s|%s|items", studentID, sessionID, caseID),
		s.policy.RandomizePerStudentSession)

	records, err := s.repo.Item().GetByIDs(ctx, presented)
	if err != nil {
		return nil, fmt.Errorf("failed to load presented items: %w", err)
	}

	// Restore presentation order; GetByIDs returns storage order.
	byID := make(map[string]*models.BankItem, len(records))
	for _, record := range records {
		byID[record.ID] = record
	}
	ordered := make([]*models.BankItem, 0, len(presented))
	for _, qid := range presented {
		if record, ok := byID[qid]; ok {
			ordered = append(ordered, record)
		}
	}
	return ordered, nil
}

func (s *rotationService) getActiveSet(ctx context.Context, caseID string) (*models.ActiveSet, error) {
	set, err := s.repo.ActiveSet().GetByCase(ctx, caseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrActiveSetNotFound
		}
		return nil, fmt.Errorf("failed to load active set: %w", err)
	}
	return set, nil
}

func (s *rotationService) caseLock(caseID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[caseID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[caseID] = lock
	}
	return lock
}

func (s *rotationService) publishEvent(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.publisher == nil {
		return
	}
	event := events.NewScoringEvent(eventType, payload)
	if err := s.publisher.PublishScoringEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

func toActiveSetResponse(set *models.ActiveSet) (*ActiveSetResponse, error) {
	qids, err := set.DecodeQIDs()
	if err != nil {
		return nil, fmt.Errorf("failed to decode active set: %w", err)
	}
	history, err := set.DecodeHistory()
	if err != nil {
		return nil, fmt.Errorf("failed to decode rotation history: %w", err)
	}

	// Rows written before history logging carry an empty log; they still
	// represent one generation.
	generations := len(history)
	if generations == 0 {
		generations = 1
	}

	return &ActiveSetResponse{
		CaseID:      set.CaseID,
		Seed:        set.Seed,
		QIDs:        qids,
		GeneratedAt: set.GeneratedAt,
		GeneratedBy: set.GeneratedBy,
		Generations: generations,
	}, nil
}
