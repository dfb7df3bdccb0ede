package categoryservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
	"gocatalog/internal/service/categoryservice"
)

// MockCategoryStore é uma implementação mock da interface CategoryStore
type MockCategoryStore struct {
	mock.Mock
}

func (m *MockCategoryStore) FindCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoryStore) SaveCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	args := m.Called(ctx, category)
	return args.Get(0).(domain.Category), args.Error(1)
}

func (m *MockCategoryStore) FindSubcategoriesByNames(ctx context.Context, categoryID string, names []string) ([]domain.Subcategory, error) {
	args := m.Called(ctx, categoryID, names)
	return args.Get(0).([]domain.Subcategory), args.Error(1)
}

func (m *MockCategoryStore) SaveSubcategory(ctx context.Context, sub domain.Subcategory) (domain.Subcategory, error) {
	args := m.Called(ctx, sub)
	return args.Get(0).(domain.Subcategory), args.Error(1)
}

func (m *MockCategoryStore) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryStore) GetAllSubcategories(ctx context.Context) ([]domain.Subcategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Subcategory), args.Error(1)
}

// TestResolveOrCreateCategory_Existing testa que uma categoria existente é
// devolvida inalterada (o slug da requisição NÃO substitui o slug salvo).
func TestResolveOrCreateCategory_Existing(t *testing.T) {
	mockRepo := new(MockCategoryStore)
	mockLogger := logger.NewLogger("debug")

	registry := categoryservice.NewRegistry(mockRepo, mockLogger)

	existing := domain.Category{
		ID:   uuid.New().String(),
		Name: "Shoes",
		Slug: "shoes",
	}

	mockRepo.On("FindCategoryByName", mock.AnythingOfType("context.backgroundCtx"), "Shoes").
		Return(existing, nil)

	category, created, err := registry.ResolveOrCreateCategory(context.Background(), "Shoes", "sapatos-novos")

	assert.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, category.ID)
	assert.Equal(t, "shoes", category.Slug) // slug existente vence
	mockRepo.AssertExpectations(t)
}

// TestResolveOrCreateCategory_New testa a construção de uma categoria nova,
// sem persistência imediata (a transação de ingestão é quem grava).
func TestResolveOrCreateCategory_New(t *testing.T) {
	mockRepo := new(MockCategoryStore)
	mockLogger := logger.NewLogger("debug")

	registry := categoryservice.NewRegistry(mockRepo, mockLogger)

	mockRepo.On("FindCategoryByName", mock.AnythingOfType("context.backgroundCtx"), "Hats").
		Return(domain.Category{}, apperror.NewNotFoundError("Categoria 'Hats' não encontrada."))

	category, created, err := registry.ResolveOrCreateCategory(context.Background(), "Hats", "hats")

	assert.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, category.ID)
	assert.Equal(t, "Hats", category.Name)
	assert.Equal(t, "hats", category.Slug)
	// Nenhuma chamada a SaveCategory deve ter acontecido.
	mockRepo.AssertNotCalled(t, "SaveCategory", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestResolveOrCreateCategory_EmptyName testa a validação do nome obrigatório.
func TestResolveOrCreateCategory_EmptyName(t *testing.T) {
	mockRepo := new(MockCategoryStore)
	mockLogger := logger.NewLogger("debug")

	registry := categoryservice.NewRegistry(mockRepo, mockLogger)

	_, _, err := registry.ResolveOrCreateCategory(context.Background(), "   ", "x")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindCategoryByName", mock.Anything, mock.Anything)
}

// TestResolveOrCreateSubcategories_NewCategory testa que para uma categoria
// nova TODAS as subcategorias pedidas são construídas, já vinculadas a ela.
func TestResolveOrCreateSubcategories_NewCategory(t *testing.T) {
	mockRepo := new(MockCategoryStore)
	mockLogger := logger.NewLogger("debug")

	registry := categoryservice.NewRegistry(mockRepo, mockLogger)

	category := domain.Category{ID: uuid.New().String(), Name: "Hats", Slug: "hats"}
	inputs := []domain.SubcategoryInput{
		{Name: "Caps", Slug: "caps"},
		{Name: "Beanies", Slug: "beanies"},
	}

	subs, err := registry.ResolveOrCreateSubcategories(context.Background(), category, true, inputs)

	assert.NoError(t, err)
	assert.Len(t, subs, 2)
	for i, sub := range subs {
		assert.NotEmpty(t, sub.ID)
		assert.Equal(t, category.ID, sub.CategoryID)
		assert.Equal(t, inputs[i].Name, sub.Name)
	}
	mockRepo.AssertNotCalled(t, "FindSubcategoriesByNames", mock.Anything, mock.Anything, mock.Anything)
}

// TestResolveOrCreateSubcategories_ExistingCategory_DropsUnmatched testa que,
// para categoria existente, nomes sem correspondência são descartados em silêncio.
func TestResolveOrCreateSubcategories_ExistingCategory_DropsUnmatched(t *testing.T) {
	mockRepo := new(MockCategoryStore)
	mockLogger := logger.NewLogger("debug")

	registry := categoryservice.NewRegistry(mockRepo, mockLogger)

	category := domain.Category{ID: uuid.New().String(), Name: "Shoes", Slug: "shoes"}
	matched := []domain.Subcategory{
		{ID: uuid.New().String(), CategoryID: category.ID, Name: "Sneakers", Slug: "sneakers"},
	}

	mockRepo.On("FindSubcategoriesByNames", mock.AnythingOfType("context.backgroundCtx"), category.ID, []string{"Sneakers", "Sandals"}).
		Return(matched, nil)

	subs, err := registry.ResolveOrCreateSubcategories(context.Background(), category, false, []domain.SubcategoryInput{
		{Name: "Sneakers", Slug: "sneakers"},
		{Name: "Sandals", Slug: "sandals"}, // não existe no registro: descartada
	})

	assert.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Equal(t, "Sneakers", subs[0].Name)
	mockRepo.AssertExpectations(t)
}

// TestCreateCategory_PersistsWhenNew testa a criação administrativa direta.
func TestCreateCategory_PersistsWhenNew(t *testing.T) {
	mockRepo := new(MockCategoryStore)
	mockLogger := logger.NewLogger("debug")

	registry := categoryservice.NewRegistry(mockRepo, mockLogger)

	mockRepo.On("FindCategoryByName", mock.AnythingOfType("context.backgroundCtx"), "Bags").
		Return(domain.Category{}, apperror.NewNotFoundError("Categoria 'Bags' não encontrada."))
	mockRepo.On("SaveCategory", mock.AnythingOfType("context.backgroundCtx"), mock.AnythingOfType("domain.Category")).
		Return(domain.Category{ID: uuid.New().String(), Name: "Bags", Slug: "bags"}, nil)

	category, err := registry.CreateCategory(context.Background(), "Bags", "bags")

	assert.NoError(t, err)
	assert.Equal(t, "Bags", category.Name)
	mockRepo.AssertExpectations(t)
}
