package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/psychometrics"
)

// ===== SERVICE INTERFACES =====

// ScoringService drives the attempt lifecycle: start, per-domain and per-item
// submissions with immediate feedback, and the finalize pass that freezes the
// attempt and persists its score report.
type ScoringService interface {
	Start(ctx context.Context, req *StartAttemptRequest) (*AttemptResponse, error)
	GetByID(ctx context.Context, attemptID string) (*AttemptResponse, error)

	GetDomainOptions(ctx context.Context, attemptID string, domain models.Domain) (*DomainOptionsResponse, error)
	SubmitDomain(ctx context.Context, attemptID string, req *SubmitDomainRequest) (*models.ScoreDetail, error)
	SubmitItem(ctx context.Context, attemptID string, req *SubmitItemRequest) (*models.ScoreDetail, error)

	Finalize(ctx context.Context, attemptID string) (*AttemptResponse, error)
}

// RotationService manages the administrator-curated active item sets and
// resolves which items a given examinee is presented.
type RotationService interface {
	Generate(ctx context.Context, req *GenerateActiveSetRequest) (*ActiveSetResponse, error)
	Get(ctx context.Context, caseID string) (*ActiveSetResponse, error)
	History(ctx context.Context, caseID string) ([]models.ActiveSetGeneration, error)
	PresentedItems(ctx context.Context, caseID, studentID, sessionID string) ([]*models.BankItem, error)
}

// PsychometricsService computes item and case quality statistics over
// finalized attempts.
type PsychometricsService interface {
	AnalyzeCase(ctx context.Context, caseID string) (*psychometrics.CaseSummary, error)
}

// ReportService handles file import/export for the item bank and results
type ReportService interface {
	ImportItemsFromExcel(ctx context.Context, reader io.Reader) (*ImportResult, error)
	ExportCaseAnalysisToExcel(ctx context.Context, caseID string) ([]byte, error)
	ExportAttemptResultsToExcel(ctx context.Context, caseID string) ([]byte, error)
}

// ===== REQUEST / RESPONSE TYPES =====

type StartAttemptRequest struct {
	CaseID    string `json:"case_id" validate:"required"`
	StudentID string `json:"student_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

type SubmitDomainRequest struct {
	Domain   models.Domain `json:"domain" validate:"required,clinical_domain"`
	Selected []string      `json:"selected"`
	FreeText string        `json:"free_text"`
}

type SubmitItemRequest struct {
	ItemID string          `json:"item_id" validate:"required"`
	Answer json.RawMessage `json:"answer"`
}

type AttemptResponse struct {
	ID          string               `json:"id"`
	CaseID      string               `json:"case_id"`
	StudentID   string               `json:"student_id"`
	SessionID   string               `json:"session_id"`
	Status      models.AttemptStatus `json:"status"`
	TotalPoints int                  `json:"total_points"`
	MaxPoints   int                  `json:"max_points"`
	StartedAt   time.Time            `json:"started_at"`
	FinalizedAt *time.Time           `json:"finalized_at,omitempty"`
	Report      *models.ScoreReport  `json:"report,omitempty"`
}

type DomainOptionsResponse struct {
	CaseID        string        `json:"case_id"`
	Domain        models.Domain `json:"domain"`
	Options       []string      `json:"options"`
	RequiredCount int           `json:"required_count"`
}

type GenerateActiveSetRequest struct {
	CaseID      string `json:"case_id" validate:"required"`
	GeneratedBy string `json:"generated_by" validate:"required"`
	TargetSize  int    `json:"target_size" validate:"omitempty,min=1"`
}

type ActiveSetResponse struct {
	CaseID      string    `json:"case_id"`
	Seed        string    `json:"seed"`
	QIDs        []string  `json:"qids"`
	GeneratedAt time.Time `json:"generated_at"`
	GeneratedBy string    `json:"generated_by"`
	Generations int       `json:"generations"` // 1-based count including current
}

type ImportResult struct {
	TotalRows    int      `json:"total_rows"`
	SuccessCount int      `json:"success_count"`
	ErrorCount   int      `json:"error_count"`
	Errors       []string `json:"errors,omitempty"`
}

// ===== RESPONSE MAPPING =====

func toAttemptResponse(attempt *models.Attempt, report *models.ScoreReport) *AttemptResponse {
	return &AttemptResponse{
		ID:          attempt.ID,
		CaseID:      attempt.CaseID,
		StudentID:   attempt.StudentID,
		SessionID:   attempt.SessionID,
		Status:      attempt.Status,
		TotalPoints: attempt.TotalPoints,
		MaxPoints:   attempt.MaxPoints,
		StartedAt:   attempt.StartedAt,
		FinalizedAt: attempt.FinalizedAt,
		Report:      report,
	}
}
