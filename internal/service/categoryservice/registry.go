package categoryservice

import (
	"context" // Necessário para o casting e chamadas de infraestrutura
	"errors"
	"strings"

	"github.com/google/uuid"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors" // Usar o nome renomeado para evitar conflito
	"gocatalog/internal/pkg/logger"
)

// CategoryStore define o contrato que o Registro de Categorias espera da
// camada de Persistência.
type CategoryStore interface {
	FindCategoryByName(ctx context.Context, name string) (domain.Category, error)
	SaveCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	FindSubcategoriesByNames(ctx context.Context, categoryID string, names []string) ([]domain.Subcategory, error)
	SaveSubcategory(ctx context.Context, sub domain.Subcategory) (domain.Subcategory, error)
	GetAllCategories(ctx context.Context) ([]domain.Category, error)
	GetAllSubcategories(ctx context.Context) ([]domain.Subcategory, error)
}

// Registry resolve-ou-cria categorias pelo nome (chave natural) e
// subcategorias pelo par (categoria, nome). Garante que ingestões repetidas
// com os mesmos nomes nunca dupliquem categorias ou subcategorias.
type Registry struct {
	repo   CategoryStore
	logger logger.Logger
}

// NewRegistry cria e retorna uma nova instância do Registro de Categorias.
func NewRegistry(repo CategoryStore, logger logger.Logger) *Registry {
	return &Registry{repo: repo, logger: logger}
}

// ResolveOrCreateCategory busca a categoria pelo nome exato. Se existir,
// devolve-a INALTERADA (o slug da requisição é ignorado no match — o slug
// existente vence, para não mutar uma categoria compartilhada a cada
// ingestão). Se não existir, constrói uma categoria nova; a persistência fica
// a cargo da transação atômica de ingestão, indicada por created = true.
func (r *Registry) ResolveOrCreateCategory(ctx context.Context, name, slug string) (domain.Category, bool, error) {
	if strings.TrimSpace(name) == "" {
		return domain.Category{}, false, apperror.NewValidationError("O nome da categoria é obrigatório.")
	}

	category, err := r.repo.FindCategoryByName(ctx, name)
	if err == nil {
		r.logger.Debug("Categoria existente resolvida pelo nome.", map[string]interface{}{"id": category.ID, "name": category.Name})
		return category, false, nil
	}

	var notFound *apperror.NotFoundError
	if !errors.As(err, &notFound) {
		return domain.Category{}, false, err
	}

	newCategory := domain.Category{
		ID:   uuid.NewString(),
		Name: name,
		Slug: slug,
	}
	r.logger.Info("Categoria nova construída para ingestão.", map[string]interface{}{"id": newCategory.ID, "name": newCategory.Name})
	return newCategory, true, nil
}

// ResolveOrCreateSubcategories resolve as subcategorias da ingestão.
//
// Para uma categoria NOVA, constrói uma subcategoria por nome pedido, cada
// uma pertencendo à categoria. Para uma categoria EXISTENTE, devolve apenas
// as subcategorias cujo par (categoria, nome) já existe no registro — nomes
// sem correspondência são descartados SILENCIOSAMENTE. Isso é uma decisão de
// projeto preservada, não um bug: ingestão contra categoria existente só
// reutiliza subcategorias já conhecidas, nunca cria uma nova por tabela.
func (r *Registry) ResolveOrCreateSubcategories(ctx context.Context, category domain.Category, categoryIsNew bool, inputs []domain.SubcategoryInput) ([]domain.Subcategory, error) {
	if categoryIsNew {
		subcategories := make([]domain.Subcategory, 0, len(inputs))
		for _, in := range inputs {
			subcategories = append(subcategories, domain.Subcategory{
				ID:         uuid.NewString(),
				CategoryID: category.ID,
				Name:       in.Name,
				Slug:       in.Slug,
			})
		}
		return subcategories, nil
	}

	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		names = append(names, in.Name)
	}

	matched, err := r.repo.FindSubcategoriesByNames(ctx, category.ID, names)
	if err != nil {
		return nil, err
	}

	if len(matched) < len(names) {
		r.logger.Warn("Nomes de subcategoria sem correspondência foram descartados.", map[string]interface{}{
			"category":  category.Name,
			"requested": len(names),
			"matched":   len(matched),
		})
	}
	return matched, nil
}

// CreateCategory é a criação administrativa direta (fora do fluxo de
// ingestão): resolve pelo nome e, se ausente, persiste imediatamente.
func (r *Registry) CreateCategory(ctx domain.Context, name, slug string) (domain.Category, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	category, created, err := r.ResolveOrCreateCategory(ctxGo, name, slug)
	if err != nil {
		return domain.Category{}, err
	}
	if !created {
		return category, nil
	}
	return r.repo.SaveCategory(ctxGo, category)
}

// GetAllCategories lista todas as categorias (população da UI de filtros).
func (r *Registry) GetAllCategories(ctx domain.Context) ([]domain.Category, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	categories, err := r.repo.GetAllCategories(ctxGo)
	if err != nil {
		r.logger.Error("Falha ao buscar todas as categorias no repositório.", err)
		return nil, apperror.NewInternalError("Falha interna ao buscar categorias.", err)
	}
	return categories, nil
}

// GetAllSubcategories lista todas as subcategorias (sem escopo).
func (r *Registry) GetAllSubcategories(ctx domain.Context) ([]domain.Subcategory, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	subcategories, err := r.repo.GetAllSubcategories(ctxGo)
	if err != nil {
		r.logger.Error("Falha ao buscar todas as subcategorias no repositório.", err)
		return nil, apperror.NewInternalError("Falha interna ao buscar subcategorias.", err)
	}
	return subcategories, nil
}
