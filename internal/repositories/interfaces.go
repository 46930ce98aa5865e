package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/vitalpath/scoring-service/internal/models"
	"gorm.io/gorm"
)

// Repository aggregates the per-entity repositories and exposes transactional
// execution. Passing fn a transaction-scoped Repository keeps multi-table
// writes atomic without leaking *gorm.DB into services.
type Repository interface {
	Case() CaseRepository
	Item() ItemRepository
	Attempt() AttemptRepository
	ActiveSet() ActiveSetRepository

	WithTransaction(ctx context.Context, fn func(Repository) error) error
}

// CaseRepository interface for clinical case operations
type CaseRepository interface {
	Create(ctx context.Context, clinicalCase *models.ClinicalCase) error
	GetByID(ctx context.Context, id string) (*models.ClinicalCase, error)
	Update(ctx context.Context, clinicalCase *models.ClinicalCase) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, limit, offset int) ([]*models.ClinicalCase, int64, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// ItemRepository interface for bank item operations
type ItemRepository interface {
	Create(ctx context.Context, item *models.BankItem) error
	CreateBatch(ctx context.Context, items []*models.BankItem) error
	GetByID(ctx context.Context, id string) (*models.BankItem, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.BankItem, error)
	Update(ctx context.Context, item *models.BankItem) error
	Delete(ctx context.Context, id string) error

	GetByCase(ctx context.Context, caseID string) ([]*models.BankItem, error)
	GetIDsByCase(ctx context.Context, caseID string) ([]string, error)
	List(ctx context.Context, filters ItemFilters) ([]*models.BankItem, int64, error)
}

// AttemptRepository interface for attempt operations
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.Attempt) error
	GetByID(ctx context.Context, id string) (*models.Attempt, error)
	Update(ctx context.Context, attempt *models.Attempt) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetByStudent(ctx context.Context, studentID string, filters AttemptFilters) ([]*models.Attempt, int64, error)
	GetFinalizedByCase(ctx context.Context, caseID string) ([]*models.Attempt, error)

	GetActiveAttempt(ctx context.Context, studentID, caseID, sessionID string) (*models.Attempt, error)
}

// ActiveSetRepository interface for rotation state operations
type ActiveSetRepository interface {
	GetByCase(ctx context.Context, caseID string) (*models.ActiveSet, error)
	// ReplaceWithHistory swaps in a new generation and appends it to the
	// history column in a single transaction, so the log holds every
	// generation with the current one last.
	ReplaceWithHistory(ctx context.Context, caseID string, generation models.ActiveSetGeneration) (*models.ActiveSet, error)
}

// ===== SHARED FILTER STRUCTS =====

type ItemFilters struct {
	CaseID     *string            `json:"case_id"`
	Type       *models.ItemType   `json:"type"`
	ClientNeed *models.ClientNeed `json:"client_need"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
	SortBy     string             `json:"sort_by"` // "created_at", "id"
	SortOrder  string             `json:"sort_order"`
}

type AttemptFilters struct {
	Status    models.AttemptStatus `json:"status"`
	CaseID    *string              `json:"case_id"`
	StudentID *string              `json:"student_id"`
	SessionID *string              `json:"session_id"`
	DateFrom  *time.Time           `json:"date_from"`
	DateTo    *time.Time           `json:"date_to"`
	Limit     int                  `json:"limit"`
	Offset    int                  `json:"offset"`
	SortBy    string               `json:"sort_by"` // "started_at", "finalized_at"
	SortOrder string               `json:"sort_order"`
}

// IsNotFoundError reports whether err is the driver's record-not-found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
