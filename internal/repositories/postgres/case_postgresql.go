package postgres

import (
	"context"

	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/repositories"
	"gorm.io/gorm"
)

type CasePostgreSQL struct {
	db *gorm.DB
}

func NewCasePostgreSQL(db *gorm.DB) repositories.CaseRepository {
	return &CasePostgreSQL{db: db}
}

func (c CasePostgreSQL) Create(ctx context.Context, clinicalCase *models.ClinicalCase) error {
	return c.db.WithContext(ctx).Create(clinicalCase).Error
}

func (c CasePostgreSQL) GetByID(ctx context.Context, id string) (*models.ClinicalCase, error) {
	var clinicalCase models.ClinicalCase
	if err := c.db.WithContext(ctx).First(&clinicalCase, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &clinicalCase, nil
}

func (c CasePostgreSQL) Update(ctx context.Context, clinicalCase *models.ClinicalCase) error {
	return c.db.WithContext(ctx).Save(clinicalCase).Error
}

func (c CasePostgreSQL) Delete(ctx context.Context, id string) error {
	return c.db.WithContext(ctx).Delete(&models.ClinicalCase{}, "id = ?", id).Error
}

func (c CasePostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.ClinicalCase, int64, error) {
	var cases []*models.ClinicalCase
	var total int64

	query := c.db.WithContext(ctx).Model(&models.ClinicalCase{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	if err := query.Order("created_at DESC").Find(&cases).Error; err != nil {
		return nil, 0, err
	}

	return cases, total, nil
}

func (c CasePostgreSQL) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := c.db.WithContext(ctx).
		Model(&models.ClinicalCase{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}
