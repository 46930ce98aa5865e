package postgres

import (
	"context"

	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/repositories"
	"gorm.io/gorm"
)

type ItemPostgreSQL struct {
	db *gorm.DB
}

func NewItemPostgreSQL(db *gorm.DB) repositories.ItemRepository {
	return &ItemPostgreSQL{db: db}
}

func (i ItemPostgreSQL) Create(ctx context.Context, item *models.BankItem) error {
	return i.db.WithContext(ctx).Create(item).Error
}

func (i ItemPostgreSQL) CreateBatch(ctx context.Context, items []*models.BankItem) error {
	if len(items) == 0 {
		return nil
	}
	return i.db.WithContext(ctx).CreateInBatches(items, 100).Error
}

func (i ItemPostgreSQL) GetByID(ctx context.Context, id string) (*models.BankItem, error) {
	var item models.BankItem
	if err := i.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}

	return &item, nil
}

func (i ItemPostgreSQL) GetByIDs(ctx context.Context, ids []string) ([]*models.BankItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var items []*models.BankItem
	if err := i.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (i ItemPostgreSQL) Update(ctx context.Context, item *models.BankItem) error {
	return i.db.WithContext(ctx).Save(item).Error
}

func (i ItemPostgreSQL) Delete(ctx context.Context, id string) error {
	return i.db.WithContext(ctx).Delete(&models.BankItem{}, "id = ?", id).Error
}

func (i ItemPostgreSQL) GetByCase(ctx context.Context, caseID string) ([]*models.BankItem, error) {
	var items []*models.BankItem
	if err := i.db.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}

	return items, nil
}

func (i ItemPostgreSQL) GetIDsByCase(ctx context.Context, caseID string) ([]string, error) {
	var ids []string
	if err := i.db.WithContext(ctx).
		Model(&models.BankItem{}).
		Where("case_id = ?", caseID).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}

	return ids, nil
}

func (i ItemPostgreSQL) List(ctx context.Context, filters repositories.ItemFilters) ([]*models.BankItem, int64, error) {
	var items []*models.BankItem
	var total int64

	// apply filter first
	query := i.db.WithContext(ctx).Model(&models.BankItem{})
	query = i.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = i.applyPaginationAndSort(query, filters)

	if err := query.Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (i ItemPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ItemFilters) *gorm.DB {
	if filters.CaseID != nil {
		query = query.Where("case_id = ?", *filters.CaseID)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.ClientNeed != nil {
		query = query.Where("client_need = ?", *filters.ClientNeed)
	}
	return query
}

func (i ItemPostgreSQL) applyPaginationAndSort(query *gorm.DB, filters repositories.ItemFilters) *gorm.DB {
	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	sortOrder := filters.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	query = query.Order(sortBy + " " + sortOrder)

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}
	return query
}
