package catalogservice_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
	"gocatalog/internal/service/catalogservice"
)

// MockCatalogRepository é uma implementação mock da interface CatalogRepository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) FindProductByID(ctx context.Context, id string) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) FindProductsBySlug(ctx context.Context, slug string) ([]domain.Product, error) {
	args := m.Called(ctx, slug)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) FindProductsByName(ctx context.Context, name string) ([]domain.Product, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalogRepository) SaveIngestion(ctx context.Context, ing domain.Ingestion) (domain.Variant, error) {
	args := m.Called(ctx, ing)
	return args.Get(0).(domain.Variant), args.Error(1)
}

// MockCategoryRegistry é uma implementação mock da interface CategoryRegistry
type MockCategoryRegistry struct {
	mock.Mock
}

func (m *MockCategoryRegistry) ResolveOrCreateCategory(ctx context.Context, name, slug string) (domain.Category, bool, error) {
	args := m.Called(ctx, name, slug)
	return args.Get(0).(domain.Category), args.Bool(1), args.Error(2)
}

func (m *MockCategoryRegistry) ResolveOrCreateSubcategories(ctx context.Context, category domain.Category, categoryIsNew bool, inputs []domain.SubcategoryInput) ([]domain.Subcategory, error) {
	args := m.Called(ctx, category, categoryIsNew, inputs)
	return args.Get(0).([]domain.Subcategory), args.Error(1)
}

func newService(repo *MockCatalogRepository, registry *MockCategoryRegistry) *catalogservice.Service {
	return catalogservice.NewService(repo, registry, logger.NewLogger("debug"))
}

func validRequest() domain.IngestionRequest {
	return domain.IngestionRequest{
		Name:        "Leather Boots",
		Description: "Handmade leather boots",
		Brand:       "Acme",
		Slug:        "leather-boots",
		ShippingFee: "500",
		Category:    domain.CategoryInput{Name: "Shoes", Slug: "shoes"},
		Subcategories: []domain.SubcategoryInput{
			{Name: "Boots", Slug: "boots"},
		},
		SKU: domain.SKUInput{
			Code:     "BOOT-BRN-01",
			Discount: "10",
			Color:    domain.ColorInput{Color: "Brown", Image: "brown.jpg"},
			Images:   []string{"boot1.jpg", "boot2.jpg"},
			Sizes: []domain.SizeInput{
				{Size: "42", Quantity: 5, Price: 19900},
				{Size: "43", Quantity: 3, Price: 19900},
			},
			Details: []domain.DetailInput{
				{Name: "Material", Value: "Leather"},
			},
			Questions: []domain.QAInput{
				{Question: "Is it waterproof?", Answer: "Yes"},
			},
		},
	}
}

// TestIngest_NewProduct testa o fluxo de criação de produto: a unidade de
// ingestão montada deve carregar o produto novo, a variante com cor própria,
// os back-references dos tamanhos e a flag de substituição de Details.
func TestIngest_NewProduct(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	req := validRequest()
	category := domain.Category{ID: uuid.New().String(), Name: "Shoes", Slug: "shoes"}
	subcategories := []domain.Subcategory{
		{ID: uuid.New().String(), CategoryID: category.ID, Name: "Boots", Slug: "boots"},
	}

	mockRegistry.On("ResolveOrCreateCategory", mock.Anything, "Shoes", "shoes").
		Return(category, false, nil)
	mockRegistry.On("ResolveOrCreateSubcategories", mock.Anything, category, false, req.Subcategories).
		Return(subcategories, nil)

	var captured domain.Ingestion
	mockRepo.On("SaveIngestion", mock.Anything, mock.AnythingOfType("domain.Ingestion")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.Ingestion)
		}).
		Return(domain.Variant{ID: "v-1"}, nil)

	variant, err := svc.Ingest(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, "v-1", variant.ID)

	// Unidade de ingestão
	assert.True(t, captured.NewProduct)
	assert.False(t, captured.NewCategory)
	assert.Equal(t, category.ID, captured.Product.Category.ID)
	assert.Equal(t, subcategories, captured.Subcategories)
	assert.Equal(t, 500, captured.Product.Shipping)
	assert.NotEmpty(t, captured.Product.ID)

	// Variante construída
	assert.Equal(t, captured.Product.ID, captured.Variant.ProductID)
	assert.Equal(t, "BOOT-BRN-01", captured.Variant.SKU)
	assert.Equal(t, 10, captured.Variant.Discount)
	assert.NotEmpty(t, captured.Variant.Color.ID)
	assert.Len(t, captured.Variant.Sizes, 2)
	for _, size := range captured.Variant.Sizes {
		assert.Equal(t, captured.Variant.ID, size.VariantID)
	}

	// Details substituem a lista do produto
	assert.True(t, captured.ReplaceDetails)
	assert.Len(t, captured.Details, 1)
	assert.Equal(t, captured.Product.ID, captured.Details[0].ProductID)
	assert.Len(t, captured.Questions, 1)

	mockRepo.AssertExpectations(t)
	mockRegistry.AssertExpectations(t)
}

// TestIngest_AttachVariant testa a anexação de variante a um produto
// existente via Parent: o registro de categorias não deve ser consultado.
func TestIngest_AttachVariant(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	parentID := uuid.New().String()
	parent := domain.Product{
		ID:       parentID,
		Name:     "Leather Boots",
		Category: domain.Category{ID: uuid.New().String(), Name: "Shoes"},
	}

	req := validRequest()
	req.Parent = parentID
	req.SKU.Code = "BOOT-BLK-01"
	req.SKU.Details = nil // sem Details: a lista existente do produto fica intocada

	mockRepo.On("FindProductByID", mock.Anything, parentID).
		Return(parent, nil)

	var captured domain.Ingestion
	mockRepo.On("SaveIngestion", mock.Anything, mock.AnythingOfType("domain.Ingestion")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.Ingestion)
		}).
		Return(domain.Variant{ID: "v-2"}, nil)

	variant, err := svc.Ingest(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, "v-2", variant.ID)
	assert.False(t, captured.NewProduct)
	assert.Equal(t, parentID, captured.Variant.ProductID)
	assert.False(t, captured.ReplaceDetails)

	mockRegistry.AssertNotCalled(t, "ResolveOrCreateCategory", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

// TestIngest_AttachVariant_ParentNotFound testa a anexação contra um pai inexistente.
func TestIngest_AttachVariant_ParentNotFound(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	parentID := uuid.New().String()
	req := validRequest()
	req.Parent = parentID

	mockRepo.On("FindProductByID", mock.Anything, parentID).
		Return(domain.Product{}, apperror.NewNotFoundError("Produto não encontrado."))

	_, err := svc.Ingest(context.Background(), req)

	assert.Error(t, err)
	assert.IsType(t, &apperror.NotFoundError{}, err)
	mockRepo.AssertNotCalled(t, "SaveIngestion", mock.Anything, mock.Anything)
}

// TestIngest_InvalidDiscount testa a validação do campo de desconto.
func TestIngest_InvalidDiscount(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	category := domain.Category{ID: uuid.New().String(), Name: "Shoes", Slug: "shoes"}
	mockRegistry.On("ResolveOrCreateCategory", mock.Anything, "Shoes", "shoes").
		Return(category, false, nil)
	mockRegistry.On("ResolveOrCreateSubcategories", mock.Anything, category, false, mock.Anything).
		Return([]domain.Subcategory{}, nil)

	req := validRequest()
	req.SKU.Discount = "abc"

	_, err := svc.Ingest(context.Background(), req)
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	req.SKU.Discount = "100" // divisor-desconto válido vai até 99
	_, err = svc.Ingest(context.Background(), req)
	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)

	mockRepo.AssertNotCalled(t, "SaveIngestion", mock.Anything, mock.Anything)
}

// TestIngest_BlankOptionalFieldsDefaultToZero testa que strings vazias nos
// campos numéricos opcionais viram zero, sem erro.
func TestIngest_BlankOptionalFieldsDefaultToZero(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	category := domain.Category{ID: uuid.New().String(), Name: "Shoes", Slug: "shoes"}
	mockRegistry.On("ResolveOrCreateCategory", mock.Anything, "Shoes", "shoes").
		Return(category, true, nil)
	mockRegistry.On("ResolveOrCreateSubcategories", mock.Anything, category, true, mock.Anything).
		Return([]domain.Subcategory{}, nil)

	req := validRequest()
	req.ShippingFee = ""
	req.SKU.Discount = ""

	var captured domain.Ingestion
	mockRepo.On("SaveIngestion", mock.Anything, mock.AnythingOfType("domain.Ingestion")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(domain.Ingestion)
		}).
		Return(domain.Variant{ID: "v-3"}, nil)

	_, err := svc.Ingest(context.Background(), req)

	assert.NoError(t, err)
	assert.Equal(t, 0, captured.Product.Shipping)
	assert.Equal(t, 0, captured.Variant.Discount)
	assert.True(t, captured.NewCategory)
	mockRepo.AssertExpectations(t)
}

// TestGetProductByID_InvalidUUID testa a validação de formato do ID.
func TestGetProductByID_InvalidUUID(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	_, err := svc.GetProductByID(context.Background(), "not-a-uuid")

	assert.Error(t, err)
	assert.IsType(t, &apperror.ValidationError{}, err)
	mockRepo.AssertNotCalled(t, "FindProductByID", mock.Anything, mock.Anything)
}

// TestLoadProducts_SkipsMissing testa que IDs inexistentes são omitidos do lote.
func TestLoadProducts_SkipsMissing(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	idA := uuid.New().String()
	idB := uuid.New().String()

	mockRepo.On("FindProductByID", mock.Anything, idA).
		Return(domain.Product{ID: idA, Name: "A"}, nil)
	mockRepo.On("FindProductByID", mock.Anything, idB).
		Return(domain.Product{}, apperror.NewNotFoundError("Produto não encontrado."))

	products, err := svc.LoadProducts(context.Background(), []string{idA, idB})

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, idA, products[0].ID)
	mockRepo.AssertExpectations(t)
}

// TestGetCartProductInfo testa a projeção de carrinho com o desconto-divisor
// aplicado ao preço de lista do tamanho escolhido.
// TestLoadCatalog_SequentialUnits testa a carga em lote: cada requisição do
// lote vira a sua própria unidade de ingestão, processada em sequência.
func TestLoadCatalog_SequentialUnits(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	category := domain.Category{ID: uuid.New().String(), Name: "Shoes", Slug: "shoes"}
	mockRegistry.On("ResolveOrCreateCategory", mock.Anything, "Shoes", "shoes").
		Return(category, false, nil)
	mockRegistry.On("ResolveOrCreateSubcategories", mock.Anything, category, false, mock.Anything).
		Return([]domain.Subcategory{}, nil)

	mockRepo.On("SaveIngestion", mock.Anything, mock.AnythingOfType("domain.Ingestion")).
		Return(domain.Variant{ID: "v-1", SKU: "BOOT-BRN-01"}, nil).Once()
	mockRepo.On("SaveIngestion", mock.Anything, mock.AnythingOfType("domain.Ingestion")).
		Return(domain.Variant{ID: "v-2", SKU: "BOOT-BLK-01"}, nil).Once()

	second := validRequest()
	second.Name = "Leather Boots Black"
	second.SKU.Code = "BOOT-BLK-01"

	variants, err := svc.LoadCatalog(context.Background(), []domain.IngestionRequest{validRequest(), second})

	assert.NoError(t, err)
	assert.Len(t, variants, 2)
	assert.Equal(t, "v-1", variants[0].ID)
	assert.Equal(t, "v-2", variants[1].ID)
	mockRepo.AssertNumberOfCalls(t, "SaveIngestion", 2)
}

// TestLoadCatalog_StopsOnFailure: uma falha interrompe a carga, mas as
// unidades já confirmadas antes dela permanecem — o resultado parcial volta
// junto com o erro, e as requisições seguintes não são tentadas.
func TestLoadCatalog_StopsOnFailure(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	category := domain.Category{ID: uuid.New().String(), Name: "Shoes", Slug: "shoes"}
	mockRegistry.On("ResolveOrCreateCategory", mock.Anything, "Shoes", "shoes").
		Return(category, false, nil)
	mockRegistry.On("ResolveOrCreateSubcategories", mock.Anything, category, false, mock.Anything).
		Return([]domain.Subcategory{}, nil)

	mockRepo.On("SaveIngestion", mock.Anything, mock.AnythingOfType("domain.Ingestion")).
		Return(domain.Variant{ID: "v-1"}, nil).Once()
	mockRepo.On("SaveIngestion", mock.Anything, mock.AnythingOfType("domain.Ingestion")).
		Return(domain.Variant{}, apperror.NewDBError("conexão perdida", assert.AnError)).Once()

	reqs := []domain.IngestionRequest{validRequest(), validRequest(), validRequest()}
	variants, err := svc.LoadCatalog(context.Background(), reqs)

	assert.Error(t, err)
	assert.Len(t, variants, 1)
	assert.Equal(t, "v-1", variants[0].ID)
	mockRepo.AssertNumberOfCalls(t, "SaveIngestion", 2)
}

// TestLoadCatalog_EmptyBatch rejeita o lote vazio sem tocar no repositório.
func TestLoadCatalog_EmptyBatch(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	_, err := svc.LoadCatalog(context.Background(), nil)

	var validationErr *apperror.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	mockRepo.AssertNotCalled(t, "SaveIngestion", mock.Anything, mock.Anything)
}

func TestGetCartProductInfo(t *testing.T) {
	mockRepo := new(MockCatalogRepository)
	mockRegistry := new(MockCategoryRegistry)
	svc := newService(mockRepo, mockRegistry)

	productID := uuid.New().String()
	product := domain.Product{
		ID:       productID,
		Name:     "Leather Boots",
		Slug:     "leather-boots",
		Brand:    "Acme",
		Shipping: 500,
		Variants: []domain.Variant{
			{
				ID:       "v-1",
				SKU:      "BOOT-BRN-01",
				Discount: 10,
				Images:   []string{"boot1.jpg"},
				Color:    domain.Color{ID: "c-1", Color: "Brown"},
				Sizes: []domain.Size{
					{ID: "s-1", Size: "42", Quantity: 5, Price: 1000},
					{ID: "s-2", Size: "43", Quantity: 3, Price: 2000},
				},
			},
		},
	}

	mockRepo.On("FindProductByID", mock.Anything, productID).
		Return(product, nil)

	info, err := svc.GetCartProductInfo(context.Background(), productID, 0, 1)

	assert.NoError(t, err)
	assert.Equal(t, "43", info.Size)
	assert.Equal(t, 2000, info.PriceBefore)
	assert.Equal(t, 1800, info.Price) // 2000 - 2000/10
	assert.Equal(t, 3, info.Quantity)
	assert.Equal(t, "BOOT-BRN-01", info.SKU)

	// Índices fora do intervalo
	_, err = svc.GetCartProductInfo(context.Background(), productID, 1, 0)
	assert.IsType(t, &apperror.ValidationError{}, err)

	_, err = svc.GetCartProductInfo(context.Background(), productID, 0, 2)
	assert.IsType(t, &apperror.ValidationError{}, err)
}
