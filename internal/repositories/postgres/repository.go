package postgres

import (
	"context"

	"github.com/vitalpath/scoring-service/internal/repositories"
	"gorm.io/gorm"
)

type postgresRepository struct {
	db        *gorm.DB
	caseRepo  repositories.CaseRepository
	itemRepo  repositories.ItemRepository
	attempt   repositories.AttemptRepository
	activeSet repositories.ActiveSetRepository
}

// NewRepository builds the PostgreSQL-backed repository aggregate
func NewRepository(db *gorm.DB) repositories.Repository {
	return &postgresRepository{
		db:        db,
		caseRepo:  NewCasePostgreSQL(db),
		itemRepo:  NewItemPostgreSQL(db),
		attempt:   NewAttemptPostgreSQL(db),
		activeSet: NewActiveSetPostgreSQL(db),
	}
}

func (r *postgresRepository) Case() repositories.CaseRepository {
	return r.caseRepo
}

func (r *postgresRepository) Item() repositories.ItemRepository {
	return r.itemRepo
}

func (r *postgresRepository) Attempt() repositories.AttemptRepository {
	return r.attempt
}

func (r *postgresRepository) ActiveSet() repositories.ActiveSetRepository {
	return r.activeSet
}

// WithTransaction runs fn against a transaction-scoped repository aggregate
func (r *postgresRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
