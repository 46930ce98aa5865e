package services

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vitalpath/scoring-service/internal/events"
	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/validator"
)

func newRotationFixture() (*mockRepository, *events.MockEventPublisher, *MockCacheService, RotationService) {
	repo := newMockRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	cacheService := new(MockCacheService)
	service := NewRotationService(repo, testLogger(), validator.New(), publisher, cacheService, testPolicy())
	return repo, publisher, cacheService, service
}

func activeSetFixture(qids []string, history []models.ActiveSetGeneration) *models.ActiveSet {
	encodedQIDs, _ := json.Marshal(qids)
	set := &models.ActiveSet{
		CaseID:      "case-1",
		Seed:        "aabbccdd00112233",
		QIDs:        datatypes.JSON(encodedQIDs),
		GeneratedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		GeneratedBy: "admin-7",
	}
	if history != nil {
		encodedHistory, _ := json.Marshal(history)
		set.History = datatypes.JSON(encodedHistory)
	}
	return set
}

func TestRotationServiceGenerate(t *testing.T) {
	ctx := context.Background()
	req := &GenerateActiveSetRequest{CaseID: "case-1", GeneratedBy: "admin-7", TargetSize: 2}

	t.Run("InstallsNewGeneration", func(t *testing.T) {
		repo, publisher, cacheService, service := newRotationFixture()
		repo.caseRepo.On("Exists", ctx, "case-1").Return(true, nil)
		repo.itemRepo.On("GetIDsByCase", ctx, "case-1").Return([]string{"q1", "q2", "q3", "q4"}, nil)
		repo.activeSetRepo.On("ReplaceWithHistory", ctx, "case-1", mock.MatchedBy(func(g models.ActiveSetGeneration) bool {
			return len(g.QIDs) == 2 && g.Seed != "" && g.GeneratedBy == "admin-7"
		})).Return(activeSetFixture([]string{"q3", "q1"}, []models.ActiveSetGeneration{
			{QIDs: []string{"q3", "q1"}, Seed: "aabbccdd00112233"},
		}), nil)
		cacheService.On("DeletePattern", ctx, "psychometrics:case:case-1*").Return(nil)

		response, err := service.Generate(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, "case-1", response.CaseID)
		assert.Equal(t, []string{"q3", "q1"}, response.QIDs)
		assert.Equal(t, 1, response.Generations)

		cacheService.AssertExpectations(t)
		repo.activeSetRepo.AssertExpectations(t)

		published := publisher.GetPublishedEvents()
		if assert.Len(t, published, 1) {
			assert.Equal(t, events.EventActiveSetGenerated, published[0].Type)
			payload := published[0].Data.(events.ActiveSetGeneratedEvent)
			assert.Equal(t, "case-1", payload.CaseID)
			assert.Equal(t, 2, payload.ItemCount)
			assert.Equal(t, 1, payload.Generation)
		}
	})

	t.Run("GenerationCountGrowsWithHistory", func(t *testing.T) {
		repo, _, cacheService, service := newRotationFixture()
		history := []models.ActiveSetGeneration{
			{QIDs: []string{"q1", "q2"}, Seed: "1111111111111111"},
			{QIDs: []string{"q2", "q4"}, Seed: "2222222222222222"},
			{QIDs: []string{"q4", "q2"}, Seed: "aabbccdd00112233"},
		}
		repo.caseRepo.On("Exists", ctx, "case-1").Return(true, nil)
		repo.itemRepo.On("GetIDsByCase", ctx, "case-1").Return([]string{"q1", "q2", "q3", "q4"}, nil)
		repo.activeSetRepo.On("ReplaceWithHistory", ctx, "case-1", mock.AnythingOfType("models.ActiveSetGeneration")).
			Return(activeSetFixture([]string{"q4", "q2"}, history), nil)
		cacheService.On("DeletePattern", ctx, mock.AnythingOfType("string")).Return(nil)

		response, err := service.Generate(ctx, req)

		assert.NoError(t, err)
		assert.Equal(t, 3, response.Generations)
	})

	t.Run("EmptyBankRejected", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		repo.caseRepo.On("Exists", ctx, "case-1").Return(true, nil)
		repo.itemRepo.On("GetIDsByCase", ctx, "case-1").Return([]string{}, nil)

		_, err := service.Generate(ctx, req)

		assert.ErrorIs(t, err, ErrCaseEmptyBank)
	})

	t.Run("SmallBankGetsFullShuffle", func(t *testing.T) {
		repo, _, cacheService, service := newRotationFixture()
		repo.caseRepo.On("Exists", ctx, "case-1").Return(true, nil)
		repo.itemRepo.On("GetIDsByCase", ctx, "case-1").Return([]string{"q1", "q2", "q3"}, nil)
		repo.activeSetRepo.On("ReplaceWithHistory", ctx, "case-1", mock.MatchedBy(func(g models.ActiveSetGeneration) bool {
			sorted := append([]string(nil), g.QIDs...)
			sort.Strings(sorted)
			return len(g.QIDs) == 3 && sorted[0] == "q1" && sorted[1] == "q2" && sorted[2] == "q3"
		})).Return(activeSetFixture([]string{"q2", "q3", "q1"}, []models.ActiveSetGeneration{
			{QIDs: []string{"q2", "q3", "q1"}, Seed: "aabbccdd00112233"},
		}), nil)
		cacheService.On("DeletePattern", ctx, mock.AnythingOfType("string")).Return(nil)

		// Target above the bank size installs the whole bank, shuffled.
		response, err := service.Generate(ctx, &GenerateActiveSetRequest{
			CaseID:      "case-1",
			GeneratedBy: "admin-7",
			TargetSize:  5,
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"q2", "q3", "q1"}, response.QIDs)
		repo.activeSetRepo.AssertExpectations(t)
	})

	t.Run("CaseNotFound", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		repo.caseRepo.On("Exists", ctx, "case-1").Return(false, nil)

		_, err := service.Generate(ctx, req)

		assert.ErrorIs(t, err, ErrCaseNotFound)
	})

	t.Run("MissingGeneratedByRejected", func(t *testing.T) {
		_, _, _, service := newRotationFixture()

		_, err := service.Generate(ctx, &GenerateActiveSetRequest{CaseID: "case-1"})

		assert.Error(t, err)
	})
}

func TestRotationServiceGet(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsCurrentSet", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		repo.activeSetRepo.On("GetByCase", ctx, "case-1").
			Return(activeSetFixture([]string{"q3", "q1"}, nil), nil)

		response, err := service.Get(ctx, "case-1")

		assert.NoError(t, err)
		assert.Equal(t, "aabbccdd00112233", response.Seed)
		assert.Equal(t, []string{"q3", "q1"}, response.QIDs)
		assert.Equal(t, "admin-7", response.GeneratedBy)
	})

	t.Run("NotFound", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		repo.activeSetRepo.On("GetByCase", ctx, "case-1").Return(nil, gorm.ErrRecordNotFound)

		_, err := service.Get(ctx, "case-1")

		assert.ErrorIs(t, err, ErrActiveSetNotFound)
	})
}

func TestRotationServiceHistory(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsAllGenerationsCurrentLast", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		current := []string{"q3", "q1"}
		history := []models.ActiveSetGeneration{
			{QIDs: []string{"q1", "q2"}, Seed: "1111111111111111"},
			{QIDs: []string{"q2", "q4"}, Seed: "2222222222222222"},
			{QIDs: current, Seed: "aabbccdd00112233"},
		}
		repo.activeSetRepo.On("GetByCase", ctx, "case-1").
			Return(activeSetFixture(current, history), nil)

		generations, err := service.History(ctx, "case-1")

		assert.NoError(t, err)
		if assert.Len(t, generations, 3) {
			assert.Equal(t, "1111111111111111", generations[0].Seed)
			assert.Equal(t, "2222222222222222", generations[1].Seed)
			assert.Equal(t, "aabbccdd00112233", generations[2].Seed)
			assert.Equal(t, current, generations[2].QIDs)
		}
	})

	t.Run("NoHistoryYet", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		repo.activeSetRepo.On("GetByCase", ctx, "case-1").
			Return(activeSetFixture([]string{"q3", "q1"}, nil), nil)

		generations, err := service.History(ctx, "case-1")

		assert.NoError(t, err)
		assert.Empty(t, generations)
	})
}

func TestRotationServicePresentedItems(t *testing.T) {
	ctx := context.Background()

	t.Run("PreservesPresentationOrder", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		qids := []string{"q3", "q1"}
		repo.itemRepo.On("GetIDsByCase", ctx, "case-1").Return([]string{"q1", "q2", "q3"}, nil)
		repo.activeSetRepo.On("GetByCase", ctx, "case-1").Return(activeSetFixture(qids, nil), nil)
		// Storage order differs from presentation order.
		repo.itemRepo.On("GetByIDs", ctx, qids).Return([]*models.BankItem{
			mcqBankItem("q1"),
			mcqBankItem("q3"),
		}, nil)

		items, err := service.PresentedItems(ctx, "case-1", "student-1", "session-a")

		assert.NoError(t, err)
		if assert.Len(t, items, 2) {
			assert.Equal(t, "q3", items[0].ID)
			assert.Equal(t, "q1", items[1].ID)
		}
	})

	t.Run("NoActiveSetUsesBankOrder", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		repo.itemRepo.On("GetIDsByCase", ctx, "case-1").Return([]string{"q1", "q2", "q3"}, nil)
		repo.activeSetRepo.On("GetByCase", ctx, "case-1").Return(nil, gorm.ErrRecordNotFound)
		repo.itemRepo.On("GetByIDs", ctx, []string{"q1", "q2"}).Return([]*models.BankItem{
			mcqBankItem("q1"),
			mcqBankItem("q2"),
		}, nil)

		items, err := service.PresentedItems(ctx, "case-1", "student-1", "session-a")

		assert.NoError(t, err)
		if assert.Len(t, items, 2) {
			assert.Equal(t, "q1", items[0].ID)
			assert.Equal(t, "q2", items[1].ID)
		}
	})

	t.Run("EmptyBankRejected", func(t *testing.T) {
		repo, _, _, service := newRotationFixture()
		repo.itemRepo.On("GetIDsByCase", ctx, "case-1").Return([]string{}, nil)

		_, err := service.PresentedItems(ctx, "case-1", "student-1", "session-a")

		assert.ErrorIs(t, err, ErrCaseEmptyBank)
	})
}
