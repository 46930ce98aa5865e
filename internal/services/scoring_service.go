package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vitalpath/scoring-service/internal/config"
	"github.com/vitalpath/scoring-service/internal/events"
	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/repositories"
	"github.com/vitalpath/scoring-service/internal/rotation"
	"github.com/vitalpath/scoring-service/internal/scoring"
	"github.com/vitalpath/scoring-service/internal/validator"
	"gorm.io/datatypes"
)

type scoringService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	publisher events.EventPublisher
	policy    config.ScoringPolicy
}

func NewScoringService(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	policy config.ScoringPolicy,
) ScoringService {
	return &scoringService{
		repo:      repo,
		logger:    logger,
		validator: v,
		publisher: publisher,
		policy:    policy,
	}
}

// ===== ATTEMPT LIFECYCLE =====

func (s *scoringService) Start(ctx context.Context, req *StartAttemptRequest) (*AttemptResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	exists, err := s.repo.Case().Exists(ctx, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to check case: %w", err)
	}
	if !exists {
		return nil, ErrCaseNotFound
	}

	// Resume instead of duplicating when the same student/session already has
	// an open attempt on this case.
	current, err := s.repo.Attempt().GetActiveAttempt(ctx, req.StudentID, req.CaseID, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check active attempt: %w", err)
	}
	if current != nil {
		s.logger.Info("Resuming existing attempt", "attempt_id", current.ID)
		return toAttemptResponse(current, nil), nil
	}

	now := time.Now().UTC()
	attempt := &models.Attempt{
		ID:        uuid.NewString(),
		CaseID:    req.CaseID,
		StudentID: req.StudentID,
		SessionID: req.SessionID,
		Status:    models.AttemptStatusInProgress,
		StartedAt: now,
	}
	if err := s.repo.Attempt().Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"case_id", attempt.CaseID,
		"student_id", attempt.StudentID)

	s.publish(ctx, events.EventAttemptStarted, events.AttemptStartedEvent{
		AttemptID: attempt.ID,
		CaseID:    attempt.CaseID,
		StudentID: attempt.StudentID,
		StartedAt: attempt.StartedAt,
	})

	return toAttemptResponse(attempt, nil), nil
}

func (s *scoringService) GetByID(ctx context.Context, attemptID string) (*AttemptResponse, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	report, err := attempt.DecodeScoreReport()
	if err != nil {
		return nil, fmt.Errorf("failed to decode score report: %w", err)
	}
	return toAttemptResponse(attempt, report), nil
}

// ===== DOMAIN OPERATIONS =====

func (s *scoringService) GetDomainOptions(ctx context.Context, attemptID string, domain models.Domain) (*DomainOptionsResponse, error) {
	if !validDomain(domain) {
		return nil, ErrUnknownDomain
	}

	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	clinicalCase, err := s.getCase(ctx, attempt.CaseID)
	if err != nil {
		return nil, err
	}

	gold := clinicalCase.GoldFor(domain)
	distractors := scoring.RequiredCount(gold)
	options, effectiveGold := scoring.BuildOptions(
		clinicalCase.ID, domain, gold, 0, distractors)

	// Per-examinee presentation order on top of the stable base order.
	options = scoring.ShuffleIfNeeded(options,
		fmt.Sprintf("%s|%s|%s", attempt.StudentID, attempt.SessionID, domain),
		s.policy.RandomizePerStudentSession)

	return &DomainOptionsResponse{
		CaseID:        clinicalCase.ID,
		Domain:        domain,
		Options:       options,
		RequiredCount: scoring.RequiredCount(effectiveGold),
	}, nil
}

func (s *scoringService) SubmitDomain(ctx context.Context, attemptID string, req *SubmitDomainRequest) (*models.ScoreDetail, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.getActiveAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	clinicalCase, err := s.getCase(ctx, attempt.CaseID)
	if err != nil {
		return nil, err
	}

	answer := models.DomainAnswer{Selected: req.Selected, FreeText: req.FreeText}

	answers, err := attempt.DecodeDomainAnswers()
	if err != nil {
		return nil, fmt.Errorf("failed to decode domain answers: %w", err)
	}
	answers[req.Domain] = answer
	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode domain answers: %w", err)
	}
	attempt.DomainAnswers = datatypes.JSON(encoded)

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to store domain answer: %w", err)
	}

	// Immediate feedback; authoritative grades are recomputed on finalize.
	detail := scoring.ScoreDomain(answer, clinicalCase.GoldFor(req.Domain))

	s.logger.Info("Domain submitted",
		"attempt_id", attempt.ID,
		"domain", req.Domain,
		"points", detail.Points,
		"max", detail.Max,
		"safety_capped", detail.SafetyCapped)

	return &detail, nil
}

// ===== ITEM OPERATIONS =====

func (s *scoringService) SubmitItem(ctx context.Context, attemptID string, req *SubmitItemRequest) (*models.ScoreDetail, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attempt, err := s.getActiveAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}

	presented, err := s.presentedItemIDs(ctx, attempt.CaseID)
	if err != nil {
		return nil, err
	}
	if !containsID(presented, req.ItemID) {
		return nil, ErrItemNotInScope
	}

	record, err := s.repo.Item().GetByID(ctx, req.ItemID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	item, err := scoring.ParseItem(record)
	if err != nil {
		return nil, fmt.Errorf("failed to parse item content: %w", err)
	}

	answers, err := attempt.DecodeItemAnswers()
	if err != nil {
		return nil, fmt.Errorf("failed to decode item answers: %w", err)
	}
	answers[req.ItemID] = req.Answer
	encoded, err := json.Marshal(answers)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item answers: %w", err)
	}
	attempt.ItemAnswers = datatypes.JSON(encoded)

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to store item answer: %w", err)
	}

	detail := scoring.ScoreItem(item, req.Answer, s.policy.PartialCreditEnabled)

	s.logger.Info("Item submitted",
		"attempt_id", attempt.ID,
		"item_id", req.ItemID,
		"item_type", record.Type,
		"points", detail.Points,
		"max", detail.Max)

	return &detail, nil
}

// ===== FINALIZE =====

// Finalize regrades every domain and every presented item from the stored
// answers, freezes the attempt, and persists the score report.
func (s *scoringService) Finalize(ctx context.Context, attemptID string) (*AttemptResponse, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == models.AttemptStatusFinalized {
		return nil, ErrAttemptAlreadyFinalized
	}

	clinicalCase, err := s.getCase(ctx, attempt.CaseID)
	if err != nil {
		return nil, err
	}

	session, err := s.grade(ctx, attempt, clinicalCase)
	if err != nil {
		return nil, err
	}

	report := session.Report()
	encoded, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode score report: %w", err)
	}

	now := time.Now().UTC()
	attempt.Status = models.AttemptStatusFinalized
	attempt.ScoreDetails = datatypes.JSON(encoded)
	attempt.TotalPoints = report.Points
	attempt.MaxPoints = report.Max
	attempt.FinalizedAt = &now

	if err := s.repo.Attempt().Update(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to finalize attempt: %w", err)
	}

	s.logger.Info("Attempt finalized",
		"attempt_id", attempt.ID,
		"case_id", attempt.CaseID,
		"total_points", report.Points,
		"max_points", report.Max)

	s.publish(ctx, events.EventAttemptFinalized, events.AttemptFinalizedEvent{
		AttemptID:   attempt.ID,
		CaseID:      attempt.CaseID,
		StudentID:   attempt.StudentID,
		TotalPoints: report.Points,
		MaxPoints:   report.Max,
		FinalizedAt: now,
	})

	return toAttemptResponse(attempt, &report), nil
}

// grade folds stored answers into a fresh grading session. Every clinical
// domain and every presented item contributes to the max, answered or not.
func (s *scoringService) grade(ctx context.Context, attempt *models.Attempt, clinicalCase *models.ClinicalCase) (scoring.Session, error) {
	session := scoring.NewSession(attempt.ID, attempt.CaseID)

	domainAnswers, err := attempt.DecodeDomainAnswers()
	if err != nil {
		return session, fmt.Errorf("failed to decode domain answers: %w", err)
	}
	for _, domain := range models.AllDomains() {
		detail := scoring.ScoreDomain(domainAnswers[domain], clinicalCase.GoldFor(domain))
		session = session.WithDomain(domain, detail)
	}

	itemAnswers, err := attempt.DecodeItemAnswers()
	if err != nil {
		return session, fmt.Errorf("failed to decode item answers: %w", err)
	}

	presented, err := s.presentedItemIDs(ctx, attempt.CaseID)
	if err != nil {
		return session, err
	}
	if len(presented) == 0 {
		return session, nil
	}

	records, err := s.repo.Item().GetByIDs(ctx, presented)
	if err != nil {
		return session, fmt.Errorf("failed to load presented items: %w", err)
	}
	for _, record := range records {
		item, err := scoring.ParseItem(record)
		if err != nil {
			return session, fmt.Errorf("failed to parse item content: %w", err)
		}
		detail := scoring.ScoreItem(item, itemAnswers[record.ID], s.policy.PartialCreditEnabled)
		session = session.WithItem(record.ID, detail)
	}

	return session, nil
}

// ===== HELPERS =====

func (s *scoringService) getAttempt(ctx context.Context, attemptID string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, attemptID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return attempt, nil
}

func (s *scoringService) getActiveAttempt(ctx context.Context, attemptID string) (*models.Attempt, error) {
	attempt, err := s.getAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != models.AttemptStatusInProgress {
		return nil, ErrAttemptNotActive
	}
	return attempt, nil
}

func (s *scoringService) getCase(ctx context.Context, caseID string) (*models.ClinicalCase, error) {
	clinicalCase, err := s.repo.Case().GetByID(ctx, caseID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to get case: %w", err)
	}
	return clinicalCase, nil
}

// presentedItemIDs resolves the item ids in scope for a case: the active set
// under rotation, the bank's natural order otherwise.
func (s *scoringService) presentedItemIDs(ctx context.Context, caseID string) ([]string, error) {
	bankIDs, err := s.repo.Item().GetIDsByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load item bank: %w", err)
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

	return rotation.PresentedItems(qids, bankIDs, s.policy.ItemsPerCase, s.policy.RotationEnabled), nil
}

func (s *scoringService) publish(ctx context.Context, eventType events.EventType, payload interface{}) {
	if s.publisher == nil {
		return
	}
	event := events.NewScoringEvent(eventType, payload)
	if err := s.publisher.PublishScoringEvent(ctx, event); err != nil {
		// Event delivery is best effort; grading state is already persisted.
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

func validDomain(domain models.Domain) bool {
	for _, d := range models.AllDomains() {
		if d == domain {
			return true
		}
	}
	return false
}

func containsID(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
