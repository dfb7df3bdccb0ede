package searchservice

import (
	"context" // Necessário para o casting e chamadas de infraestrutura
	"math"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
	"gocatalog/internal/pricing"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// SearchRepository define o contrato que o Serviço de Busca espera da camada
// de Persistência: os dois estágios de filtragem e as agregações de facetas.
type SearchRepository interface {
	FindProductIDsByVariantFilters(ctx context.Context, f domain.VariantFilter) ([]string, error)
	FindProductsByFilters(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error)
	DistinctColors(ctx context.Context, categoryID string) ([]string, error)
	DistinctSizes(ctx context.Context, categoryID string) ([]string, error)
	DistinctBrands(ctx context.Context, categoryID string) ([]string, error)
	DistinctDetails(ctx context.Context, categoryID string) ([]domain.DetailPair, error)
}

// CategoryLister fornece as listas completas de categorias e subcategorias
// que acompanham toda resposta de busca (população da UI de filtros).
type CategoryLister interface {
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	GetAllSubcategories(ctx context.Context) ([]domain.Subcategory, error)
}

// Service implementa a busca facetada em dois estágios com paginação em memória.
type Service struct {
	repo   SearchRepository
	lister CategoryLister
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Busca.
func NewService(repo SearchRepository, lister CategoryLister, logger logger.Logger) *Service {
	return &Service{repo: repo, lister: lister, logger: logger}
}

// Search executa a busca em dois estágios:
//
// Estágio 1 (nível de variante): tamanhos, cores e faixa de preço EFETIVO
// reduzem o catálogo a um conjunto de produtos candidatos.
//
// Estágio 2 (nível de produto): texto, categoria, marca, rating mínimo e os
// pares de Details (style/material/gender) filtram os candidatos.
//
// A paginação é feita EM MEMÓRIA sobre o conjunto filtrado completo: o
// TotalCount é o tamanho desse conjunto, o mesmo valor que delimitou a fatia
// da página. As facetas são agregadas apenas sobre o escopo de categoria,
// independentes dos demais filtros ativos.
func (s *Service) Search(ctx domain.Context, params domain.SearchParams) (domain.SearchResult, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	// 1. Normalização da paginação
	page := params.Page
	if page < 1 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	// 2. Validação da faixa de preço
	if params.LowPrice != nil && *params.LowPrice < 0 {
		return domain.SearchResult{}, apperror.NewValidationError("O preço mínimo não pode ser negativo.")
	}
	if params.HighPrice != nil && *params.HighPrice < 0 {
		return domain.SearchResult{}, apperror.NewValidationError("O preço máximo não pode ser negativo.")
	}
	if params.LowPrice != nil && params.HighPrice != nil && *params.LowPrice > *params.HighPrice {
		return domain.SearchResult{}, apperror.NewValidationError("O preço mínimo não pode ser maior que o máximo.")
	}

	// 3. Estágio 1: filtros de variante
	candidateIDs, err := s.repo.FindProductIDsByVariantFilters(ctxGo, domain.VariantFilter{
		LowPrice:  params.LowPrice,
		HighPrice: params.HighPrice,
		Sizes:     params.Sizes,
		Colors:    params.Colors,
	})
	if err != nil {
		s.logger.Error("Falha no estágio de filtro de variantes.", err)
		return domain.SearchResult{}, err
	}

	// Nenhuma variante sobreviveu: resultado vazio imediato, sem facetas.
	if len(candidateIDs) == 0 {
		return emptyResult(), nil
	}

	// 4. Estágio 2: filtros de produto sobre os candidatos
	filtered, err := s.repo.FindProductsByFilters(ctxGo, domain.ProductFilter{
		Search:       params.Search,
		CategoryID:   params.Category,
		Style:        params.Style,
		Brand:        params.Brand,
		Material:     params.Material,
		Gender:       params.Gender,
		RatingMin:    params.Rating,
		CandidateIDs: candidateIDs,
	})
	if err != nil {
		s.logger.Error("Falha no estágio de filtro de produtos.", err)
		return domain.SearchResult{}, err
	}

	// 5. Paginação em memória: o total é o tamanho do conjunto filtrado.
	total := len(filtered)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	items := make([]domain.ProductSummary, 0, end-start)
	for _, product := range filtered[start:end] {
		items = append(items, domain.ProductSummary{
			Product:    product,
			PriceRange: priceRange(product),
		})
	}

	// 6. Facetas sobre o escopo de categoria (independentes dos filtros)
	result := domain.SearchResult{
		Items:      items,
		TotalCount: total,
	}
	if err := s.fillFacets(ctxGo, params.Category, &result); err != nil {
		return domain.SearchResult{}, err
	}
	return result, nil
}

// fillFacets agrega as facetas da resposta. O escopo é a categoria filtrada
// (ou o catálogo inteiro, se nenhuma); os demais filtros não as afetam.
func (s *Service) fillFacets(ctx context.Context, categoryID string, result *domain.SearchResult) error {
	categories, err := s.lister.GetAllCategories(ctx)
	if err != nil {
		return err
	}
	subcategories, err := s.lister.GetAllSubcategories(ctx)
	if err != nil {
		return err
	}
	colors, err := s.repo.DistinctColors(ctx, categoryID)
	if err != nil {
		return err
	}
	sizes, err := s.repo.DistinctSizes(ctx, categoryID)
	if err != nil {
		return err
	}
	brands, err := s.repo.DistinctBrands(ctx, categoryID)
	if err != nil {
		return err
	}
	details, err := s.repo.DistinctDetails(ctx, categoryID)
	if err != nil {
		return err
	}

	result.Categories = categories
	result.Subcategories = subcategories
	result.Colors = colors
	result.Sizes = sizes
	result.Brands = brands
	result.Details = details
	return nil
}

// priceRange calcula a faixa de preços EFETIVOS do produto, varrendo todos os
// tamanhos de todas as variantes com o desconto-divisor de cada variante.
func priceRange(product domain.Product) domain.PriceRange {
	min := math.MaxInt
	max := 0
	found := false

	for _, variant := range product.Variants {
		for _, size := range variant.Sizes {
			price := pricing.EffectivePrice(size.Price, variant.Discount)
			if price < min {
				min = price
			}
			if price > max {
				max = price
			}
			found = true
		}
	}

	if !found {
		return domain.PriceRange{}
	}
	return domain.PriceRange{Min: min, Max: max}
}

// emptyResult é a resposta para buscas sem candidatos: listas vazias (não
// nulas, para o JSON serializar []) e contagem zero.
func emptyResult() domain.SearchResult {
	return domain.SearchResult{
		Items:         []domain.ProductSummary{},
		TotalCount:    0,
		Categories:    []domain.Category{},
		Subcategories: []domain.Subcategory{},
		Colors:        []string{},
		Sizes:         []string{},
		Details:       []domain.DetailPair{},
		Brands:        []string{},
	}
}
