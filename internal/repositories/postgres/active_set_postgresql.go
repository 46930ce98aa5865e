package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/repositories"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActiveSetPostgreSQL struct {
	db *gorm.DB
}

func NewActiveSetPostgreSQL(db *gorm.DB) repositories.ActiveSetRepository {
	return &ActiveSetPostgreSQL{db: db}
}

func (r ActiveSetPostgreSQL) GetByCase(ctx context.Context, caseID string) (*models.ActiveSet, error) {
	var set models.ActiveSet
	if err := r.db.WithContext(ctx).First(&set, "case_id = ?", caseID).Error; err != nil {
		return nil, err
	}

	return &set, nil
}

// ReplaceWithHistory installs a new generation for the case and records it in
// the history log, so after N generates the log holds all N generations with
// the current one last. The row is locked for the duration of the swap so two
// concurrent generates cannot both append over the same log.
func (r ActiveSetPostgreSQL) ReplaceWithHistory(ctx context.Context, caseID string, generation models.ActiveSetGeneration) (*models.ActiveSet, error) {
	qids, err := json.Marshal(generation.QIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode item ids: %w", err)
	}

	var result *models.ActiveSet
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.ActiveSet
		err := tx.Clauses(forUpdate()).First(&current, "case_id = ?", caseID).Error

		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			historyJSON, err := json.Marshal([]models.ActiveSetGeneration{generation})
			if err != nil {
				return fmt.Errorf("failed to encode rotation history: %w", err)
			}
			set := models.ActiveSet{
				CaseID:      caseID,
				Seed:        generation.Seed,
				GeneratedAt: generation.GeneratedAt,
				GeneratedBy: generation.GeneratedBy,
				QIDs:        datatypes.JSON(qids),
				History:     datatypes.JSON(historyJSON),
			}
			if err := tx.Create(&set).Error; err != nil {
				return err
			}
			result = &set
			return nil

		case err != nil:
			return err
		}

		history, err := current.DecodeHistory()
		if err != nil {
			return fmt.Errorf("failed to decode rotation history: %w", err)
		}
		history = append(history, generation)
		historyJSON, err := json.Marshal(history)
		if err != nil {
			return fmt.Errorf("failed to encode rotation history: %w", err)
		}

		current.Seed = generation.Seed
		current.GeneratedAt = generation.GeneratedAt
		current.GeneratedBy = generation.GeneratedBy
		current.QIDs = datatypes.JSON(qids)
		current.History = datatypes.JSON(historyJSON)

		if err := tx.Save(&current).Error; err != nil {
			return err
		}
		result = &current
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
