package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/vitalpath/scoring-service/internal/models"
	"github.com/vitalpath/scoring-service/internal/repositories"
)

// ===== REPOSITORY MOCKS =====

type mockRepository struct {
	caseRepo      *MockCaseRepository
	itemRepo      *MockItemRepository
	attemptRepo   *MockAttemptRepository
	activeSetRepo *MockActiveSetRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		caseRepo:      new(MockCaseRepository),
		itemRepo:      new(MockItemRepository),
		attemptRepo:   new(MockAttemptRepository),
		activeSetRepo: new(MockActiveSetRepository),
	}
}

func (m *mockRepository) Case() repositories.CaseRepository           { return m.caseRepo }
func (m *mockRepository) Item() repositories.ItemRepository           { return m.itemRepo }
func (m *mockRepository) Attempt() repositories.AttemptRepository     { return m.attemptRepo }
func (m *mockRepository) ActiveSet() repositories.ActiveSetRepository { return m.activeSetRepo }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

type MockCaseRepository struct {
	mock.Mock
}

func (m *MockCaseRepository) Create(ctx context.Context, clinicalCase *models.ClinicalCase) error {
	args := m.Called(ctx, clinicalCase)
	return args.Error(0)
}

func (m *MockCaseRepository) GetByID(ctx context.Context, id string) (*models.ClinicalCase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ClinicalCase), args.Error(1)
}

func (m *MockCaseRepository) Update(ctx context.Context, clinicalCase *models.ClinicalCase) error {
	args := m.Called(ctx, clinicalCase)
	return args.Error(0)
}

func (m *MockCaseRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCaseRepository) List(ctx context.Context, limit, offset int) ([]*models.ClinicalCase, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.ClinicalCase), args.Get(1).(int64), args.Error(2)
}

func (m *MockCaseRepository) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *models.BankItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) CreateBatch(ctx context.Context, items []*models.BankItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockItemRepository) GetByID(ctx context.Context, id string) (*models.BankItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankItem), args.Error(1)
}

func (m *MockItemRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.BankItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankItem), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *models.BankItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepository) GetByCase(ctx context.Context, caseID string) ([]*models.BankItem, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankItem), args.Error(1)
}

func (m *MockItemRepository) GetIDsByCase(ctx context.Context, caseID string) ([]string, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemRepository) List(ctx context.Context, filters repositories.ItemFilters) ([]*models.BankItem, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.BankItem), args.Get(1).(int64), args.Error(2)
}

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id string) (*models.Attempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) Update(ctx context.Context, attempt *models.Attempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAttemptRepository) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetByStudent(ctx context.Context, studentID string, filters repositories.AttemptFilters) ([]*models.Attempt, int64, error) {
	args := m.Called(ctx, studentID, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Attempt), args.Get(1).(int64), args.Error(2)
}

func (m *MockAttemptRepository) GetFinalizedByCase(ctx context.Context, caseID string) ([]*models.Attempt, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Attempt), args.Error(1)
}

func (m *MockAttemptRepository) GetActiveAttempt(ctx context.Context, studentID, caseID, sessionID string) (*models.Attempt, error) {
	args := m.Called(ctx, studentID, caseID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Attempt), args.Error(1)
}

type MockActiveSetRepository struct {
	mock.Mock
}

func (m *MockActiveSetRepository) GetByCase(ctx context.Context, caseID string) (*models.ActiveSet, error) {
	args := m.Called(ctx, caseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveSet), args.Error(1)
}

func (m *MockActiveSetRepository) ReplaceWithHistory(ctx context.Context, caseID string, generation models.ActiveSetGeneration) (*models.ActiveSet, error) {
	args := m.Called(ctx, caseID, generation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ActiveSet), args.Error(1)
}

// ===== CACHE MOCK =====

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) Get(ctx context.Context, key string, dest interface{}) error {
	args := m.Called(ctx, key, dest)
	return args.Error(0)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) DeletePattern(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}
