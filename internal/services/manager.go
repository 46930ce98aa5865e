package services

import (
	"log/slog"

	"github.com/vitalpath/scoring-service/internal/cache"
	"github.com/vitalpath/scoring-service/internal/config"
	"github.com/vitalpath/scoring-service/internal/events"
	"github.com/vitalpath/scoring-service/internal/repositories"
	"github.com/vitalpath/scoring-service/internal/validator"
)

// ServiceManager bundles the wired service set handed to the HTTP layer
type ServiceManager interface {
	Scoring() ScoringService
	Rotation() RotationService
	Psychometrics() PsychometricsService
	Report() ReportService
}

type serviceManager struct {
	scoring       ScoringService
	rotation      RotationService
	psychometrics PsychometricsService
	report        ReportService
}

func NewServiceManager(
	repo repositories.Repository,
	logger *slog.Logger,
	v *validator.Validator,
	publisher events.EventPublisher,
	cacheService cache.CacheService,
	policy config.ScoringPolicy,
) ServiceManager {
	psychometricsService := NewPsychometricsService(repo, logger, publisher, cacheService, policy)

	return &serviceManager{
		scoring:       NewScoringService(repo, logger, v, publisher, policy),
		rotation:      NewRotationService(repo, logger, v, publisher, cacheService, policy),
		psychometrics: psychometricsService,
		report:        NewReportService(repo, logger, v, psychometricsService),
	}
}

func (m *serviceManager) Scoring() ScoringService             { return m.scoring }
func (m *serviceManager) Rotation() RotationService           { return m.rotation }
func (m *serviceManager) Psychometrics() PsychometricsService { return m.psychometrics }
func (m *serviceManager) Report() ReportService               { return m.report }
