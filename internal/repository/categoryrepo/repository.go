package categoryrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gocatalog/internal/domain"
	"gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
)

// CategoryRepository implementa a persistência de categorias e subcategorias.
// A chave natural das categorias é o NOME (UNIQUE no schema); das
// subcategorias, o par (categoria, nome).
type CategoryRepository struct {
	DB        *sql.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewCategoryRepository cria e retorna uma nova instância do Repositório de Categorias.
func NewCategoryRepository(db *sql.DB, dbTimeout time.Duration, logger logger.Logger) *CategoryRepository {
	return &CategoryRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// FindCategoryByName busca uma categoria pelo nome exato.
func (r *CategoryRepository) FindCategoryByName(ctx context.Context, name string) (domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, slug
        FROM categories
        WHERE name = $1`

	var category domain.Category
	err := r.DB.QueryRowContext(ctxTimeout, query, name).Scan(
		&category.ID, &category.Name, &category.Slug,
	)

	if err == sql.ErrNoRows {
		return domain.Category{}, errors.NewNotFoundError(fmt.Sprintf("Categoria com nome '%s' não encontrada.", name))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar categoria no DB.", err)
		return domain.Category{}, errors.NewDBError("Falha ao buscar categoria", err)
	}

	return category, nil
}

// SaveCategory insere uma nova categoria. O UNIQUE(name) deduplica a corrida
// de criações concorrentes com o mesmo nome: quem perder a corrida reutiliza
// a linha vencedora (ON CONFLICT DO NOTHING + re-SELECT).
func (r *CategoryRepository) SaveCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	insertSQL := `
        INSERT INTO categories (id, name, slug)
        VALUES ($1, $2, $3)
        ON CONFLICT (name) DO NOTHING`

	if _, err := r.DB.ExecContext(ctxTimeout, insertSQL, category.ID, category.Name, category.Slug); err != nil {
		r.logger.Error("Falha ao inserir categoria no DB.", err)
		return domain.Category{}, errors.NewDBError("Falha ao criar categoria", err)
	}

	var saved domain.Category
	err := r.DB.QueryRowContext(ctxTimeout, `SELECT id, name, slug FROM categories WHERE name = $1`, category.Name).Scan(
		&saved.ID, &saved.Name, &saved.Slug,
	)
	if err != nil {
		return domain.Category{}, errors.NewDBError("Falha ao resolver categoria após inserção", err)
	}

	r.logger.Info("Categoria salva com sucesso.", map[string]interface{}{"id": saved.ID, "name": saved.Name})
	return saved, nil
}

// FindSubcategoriesByNames busca as subcategorias da categoria cujo nome está
// no conjunto pedido. Nomes sem correspondência são simplesmente omitidos do
// resultado — a decisão de descartá-los (ou não) é da camada de serviço.
func (r *CategoryRepository) FindSubcategoriesByNames(ctx context.Context, categoryID string, names []string) ([]domain.Subcategory, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, category_id, name, slug
        FROM subcategories
        WHERE category_id = $1 AND name = ANY($2)
        ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query, categoryID, pq.Array(names))
	if err != nil {
		r.logger.Error("Falha ao buscar subcategorias por nome no DB.", err)
		return nil, errors.NewDBError("Falha ao buscar subcategorias", err)
	}
	defer rows.Close()

	var subcategories []domain.Subcategory
	for rows.Next() {
		var s domain.Subcategory
		if err = rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug); err != nil {
			return nil, errors.NewDBError("Falha ao mapear subcategoria", err)
		}
		subcategories = append(subcategories, s)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar subcategorias", err)
	}
	return subcategories, nil
}

// SaveSubcategory insere uma nova subcategoria sob a chave (categoria, nome).
func (r *CategoryRepository) SaveSubcategory(ctx context.Context, sub domain.Subcategory) (domain.Subcategory, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	insertSQL := `
        INSERT INTO subcategories (id, category_id, name, slug)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (category_id, name) DO NOTHING`

	if _, err := r.DB.ExecContext(ctxTimeout, insertSQL, sub.ID, sub.CategoryID, sub.Name, sub.Slug); err != nil {
		r.logger.Error("Falha ao inserir subcategoria no DB.", err)
		return domain.Subcategory{}, errors.NewDBError("Falha ao criar subcategoria", err)
	}

	var saved domain.Subcategory
	err := r.DB.QueryRowContext(ctxTimeout,
		`SELECT id, category_id, name, slug FROM subcategories WHERE category_id = $1 AND name = $2`,
		sub.CategoryID, sub.Name,
	).Scan(&saved.ID, &saved.CategoryID, &saved.Name, &saved.Slug)
	if err != nil {
		return domain.Subcategory{}, errors.NewDBError("Falha ao resolver subcategoria após inserção", err)
	}

	return saved, nil
}

// GetAllCategories lista todas as categorias (listagem para a UI de filtros).
func (r *CategoryRepository) GetAllCategories(ctx context.Context) ([]domain.Category, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, name, slug
        FROM categories
        ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar GetAllCategories query.", err)
		return nil, errors.NewDBError("Falha ao buscar todas as categorias", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err = rows.Scan(&c.ID, &c.Name, &c.Slug); err != nil {
			return nil, errors.NewDBError("Falha ao mapear categoria", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar categorias", err)
	}
	return categories, nil
}

// GetAllSubcategories lista todas as subcategorias (sem escopo de categoria).
func (r *CategoryRepository) GetAllSubcategories(ctx context.Context) ([]domain.Subcategory, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, category_id, name, slug
        FROM subcategories
        ORDER BY name`

	rows, err := r.DB.QueryContext(ctxTimeout, query)
	if err != nil {
		r.logger.Error("Falha ao executar GetAllSubcategories query.", err)
		return nil, errors.NewDBError("Falha ao buscar todas as subcategorias", err)
	}
	defer rows.Close()

	var subcategories []domain.Subcategory
	for rows.Next() {
		var s domain.Subcategory
		if err = rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug); err != nil {
			return nil, errors.NewDBError("Falha ao mapear subcategoria", err)
		}
		subcategories = append(subcategories, s)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar subcategorias", err)
	}
	return subcategories, nil
}
