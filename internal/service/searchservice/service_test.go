package searchservice_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
	"gocatalog/internal/service/searchservice"
)

// MockSearchRepository é uma implementação mock da interface SearchRepository
type MockSearchRepository struct {
	mock.Mock
}

func (m *MockSearchRepository) FindProductIDsByVariantFilters(ctx context.Context, f domain.VariantFilter) ([]string, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSearchRepository) FindProductsByFilters(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockSearchRepository) DistinctColors(ctx context.Context, categoryID string) ([]string, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSearchRepository) DistinctSizes(ctx context.Context, categoryID string) ([]string, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSearchRepository) DistinctBrands(ctx context.Context, categoryID string) ([]string, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSearchRepository) DistinctDetails(ctx context.Context, categoryID string) ([]domain.DetailPair, error) {
	args := m.Called(ctx, categoryID)
	return args.Get(0).([]domain.DetailPair), args.Error(1)
}

// MockCategoryLister é uma implementação mock da interface CategoryLister
type MockCategoryLister struct {
	mock.Mock
}

func (m *MockCategoryLister) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Category), args.Error(1)
}

func (m *MockCategoryLister) GetAllSubcategories(ctx context.Context) ([]domain.Subcategory, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Subcategory), args.Error(1)
}

func newService(repo *MockSearchRepository, lister *MockCategoryLister) *searchservice.Service {
	return searchservice.NewService(repo, lister, logger.NewLogger("debug"))
}

// stubFacets registra expectativas de facetas para o escopo de categoria dado.
func stubFacets(repo *MockSearchRepository, lister *MockCategoryLister, categoryID string) {
	lister.On("GetAllCategories", mock.Anything).
		Return([]domain.Category{{ID: "cat-1", Name: "Shoes"}}, nil)
	lister.On("GetAllSubcategories", mock.Anything).
		Return([]domain.Subcategory{{ID: "sub-1", CategoryID: "cat-1", Name: "Boots"}}, nil)
	repo.On("DistinctColors", mock.Anything, categoryID).Return([]string{"Brown"}, nil)
	repo.On("DistinctSizes", mock.Anything, categoryID).Return([]string{"42"}, nil)
	repo.On("DistinctBrands", mock.Anything, categoryID).Return([]string{"Acme"}, nil)
	repo.On("DistinctDetails", mock.Anything, categoryID).
		Return([]domain.DetailPair{{Name: "Material", Value: "Leather"}}, nil)
}

func productWithPrices(name string, discount int, prices ...int) domain.Product {
	sizes := make([]domain.Size, 0, len(prices))
	for i, price := range prices {
		sizes = append(sizes, domain.Size{
			ID:    uuid.New().String(),
			Size:  fmt.Sprintf("%d", 40+i),
			Price: price,
		})
	}
	return domain.Product{
		ID:   uuid.New().String(),
		Name: name,
		Variants: []domain.Variant{
			{ID: uuid.New().String(), Discount: discount, Sizes: sizes},
		},
	}
}

// TestSearch_TwoStages testa o fluxo completo: os candidatos do estágio de
// variantes alimentam o estágio de produtos, e a faixa de preço efetivo é
// calculada com o desconto-divisor.
func TestSearch_TwoStages(t *testing.T) {
	mockRepo := new(MockSearchRepository)
	mockLister := new(MockCategoryLister)
	svc := newService(mockRepo, mockLister)

	productA := productWithPrices("Boot A", 10, 1000, 2000)
	productB := productWithPrices("Boot B", 0, 500)
	candidates := []string{productA.ID, productB.ID}

	mockRepo.On("FindProductIDsByVariantFilters", mock.Anything, mock.AnythingOfType("domain.VariantFilter")).
		Return(candidates, nil)

	var capturedFilter domain.ProductFilter
	mockRepo.On("FindProductsByFilters", mock.Anything, mock.AnythingOfType("domain.ProductFilter")).
		Run(func(args mock.Arguments) {
			capturedFilter = args.Get(1).(domain.ProductFilter)
		}).
		Return([]domain.Product{productA, productB}, nil)

	stubFacets(mockRepo, mockLister, "cat-1")

	result, err := svc.Search(context.Background(), domain.SearchParams{
		Search:   "Boot",
		Category: "cat-1",
		Page:     1,
		PageSize: 10,
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, result.TotalCount)
	assert.Len(t, result.Items, 2)

	// Os candidatos do primeiro estágio restringem o segundo.
	assert.Equal(t, candidates, capturedFilter.CandidateIDs)
	assert.Equal(t, "cat-1", capturedFilter.CategoryID)

	// Faixa de preço efetivo: 1000-1000/10=900, 2000-2000/10=1800.
	assert.Equal(t, domain.PriceRange{Min: 900, Max: 1800}, result.Items[0].PriceRange)
	// Sem desconto: preço de lista puro.
	assert.Equal(t, domain.PriceRange{Min: 500, Max: 500}, result.Items[1].PriceRange)

	// Facetas presentes.
	assert.Equal(t, []string{"Brown"}, result.Colors)
	assert.Equal(t, []string{"Acme"}, result.Brands)
	assert.Len(t, result.Categories, 1)

	mockRepo.AssertExpectations(t)
	mockLister.AssertExpectations(t)
}

// TestSearch_NoCandidates testa o curto-circuito quando o estágio de
// variantes elimina tudo: resultado vazio, sem segundo estágio nem facetas.
func TestSearch_NoCandidates(t *testing.T) {
	mockRepo := new(MockSearchRepository)
	mockLister := new(MockCategoryLister)
	svc := newService(mockRepo, mockLister)

	mockRepo.On("FindProductIDsByVariantFilters", mock.Anything, mock.AnythingOfType("domain.VariantFilter")).
		Return([]string{}, nil)

	result, err := svc.Search(context.Background(), domain.SearchParams{Page: 1, PageSize: 10})

	assert.NoError(t, err)
	assert.Equal(t, 0, result.TotalCount)
	assert.Empty(t, result.Items)
	assert.NotNil(t, result.Items)
	assert.NotNil(t, result.Colors)

	mockRepo.AssertNotCalled(t, "FindProductsByFilters", mock.Anything, mock.Anything)
	mockLister.AssertNotCalled(t, "GetAllCategories", mock.Anything)
}

// TestSearch_PaginationWindow testa o recorte da página em memória e a
// invariância do TotalCount em relação à página pedida.
func TestSearch_PaginationWindow(t *testing.T) {
	mockRepo := new(MockSearchRepository)
	mockLister := new(MockCategoryLister)
	svc := newService(mockRepo, mockLister)

	filtered := make([]domain.Product, 0, 25)
	candidates := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		p := productWithPrices(fmt.Sprintf("Product %02d", i), 0, 100)
		filtered = append(filtered, p)
		candidates = append(candidates, p.ID)
	}

	mockRepo.On("FindProductIDsByVariantFilters", mock.Anything, mock.AnythingOfType("domain.VariantFilter")).
		Return(candidates, nil)
	mockRepo.On("FindProductsByFilters", mock.Anything, mock.AnythingOfType("domain.ProductFilter")).
		Return(filtered, nil)
	stubFacets(mockRepo, mockLister, "")

	// Página 3 de tamanho 10: itens 20..24.
	result, err := svc.Search(context.Background(), domain.SearchParams{Page: 3, PageSize: 10})
	assert.NoError(t, err)
	assert.Equal(t, 25, result.TotalCount)
	assert.Len(t, result.Items, 5)
	assert.Equal(t, "Product 20", result.Items[0].Name)

	// Página além do fim: itens vazios, total inalterado.
	result, err = svc.Search(context.Background(), domain.SearchParams{Page: 10, PageSize: 10})
	assert.NoError(t, err)
	assert.Equal(t, 25, result.TotalCount)
	assert.Empty(t, result.Items)
}

// TestSearch_PageDefaults testa a normalização de página e tamanho de página.
func TestSearch_PageDefaults(t *testing.T) {
	mockRepo := new(MockSearchRepository)
	mockLister := new(MockCategoryLister)
	svc := newService(mockRepo, mockLister)

	filtered := make([]domain.Product, 0, 150)
	candidates := make([]string, 0, 150)
	for i := 0; i < 150; i++ {
		p := productWithPrices(fmt.Sprintf("Product %03d", i), 0, 100)
		filtered = append(filtered, p)
		candidates = append(candidates, p.ID)
	}

	mockRepo.On("FindProductIDsByVariantFilters", mock.Anything, mock.AnythingOfType("domain.VariantFilter")).
		Return(candidates, nil)
	mockRepo.On("FindProductsByFilters", mock.Anything, mock.AnythingOfType("domain.ProductFilter")).
		Return(filtered, nil)
	stubFacets(mockRepo, mockLister, "")

	// Página 0 vira 1; PageSize 0 vira o padrão 10.
	result, err := svc.Search(context.Background(), domain.SearchParams{Page: 0, PageSize: 0})
	assert.NoError(t, err)
	assert.Len(t, result.Items, 10)
	assert.Equal(t, "Product 000", result.Items[0].Name)

	// PageSize acima do teto é limitado a 100.
	result, err = svc.Search(context.Background(), domain.SearchParams{Page: 1, PageSize: 500})
	assert.NoError(t, err)
	assert.Len(t, result.Items, 100)
	assert.Equal(t, 150, result.TotalCount)
}

// TestSearch_InvalidPriceRange testa a validação da faixa de preço.
func TestSearch_InvalidPriceRange(t *testing.T) {
	mockRepo := new(MockSearchRepository)
	mockLister := new(MockCategoryLister)
	svc := newService(mockRepo, mockLister)

	low := 500
	high := 100

	_, err := svc.Search(context.Background(), domain.SearchParams{LowPrice: &low, HighPrice: &high})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	negative := -1
	_, err = svc.Search(context.Background(), domain.SearchParams{LowPrice: &negative})
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockRepo.AssertNotCalled(t, "FindProductIDsByVariantFilters", mock.Anything, mock.Anything)
}

// TestSearch_FacetsScopedToCategoryOnly testa que as facetas dependem apenas
// do escopo de categoria: os demais filtros não entram nas agregações.
func TestSearch_FacetsScopedToCategoryOnly(t *testing.T) {
	mockRepo := new(MockSearchRepository)
	mockLister := new(MockCategoryLister)
	svc := newService(mockRepo, mockLister)

	product := productWithPrices("Boot", 0, 100)

	mockRepo.On("FindProductIDsByVariantFilters", mock.Anything, mock.AnythingOfType("domain.VariantFilter")).
		Return([]string{product.ID}, nil)
	mockRepo.On("FindProductsByFilters", mock.Anything, mock.AnythingOfType("domain.ProductFilter")).
		Return([]domain.Product{product}, nil)

	// As agregações devem receber SOMENTE o ID da categoria, mesmo com
	// filtros de marca, cor e preço ativos.
	stubFacets(mockRepo, mockLister, "cat-9")

	low := 50
	_, err := svc.Search(context.Background(), domain.SearchParams{
		Category: "cat-9",
		Brand:    "Acme",
		Colors:   []string{"Brown"},
		LowPrice: &low,
	})

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}
