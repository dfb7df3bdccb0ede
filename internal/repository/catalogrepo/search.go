package catalogrepo

import (
	"context"
	"strings"

	"github.com/lib/pq"

	"gocatalog/internal/domain"
	"gocatalog/internal/errors"
)

// effectivePriceSQL é a expressão SQL do preço efetivo de um tamanho,
// espelhando pricing.EffectivePrice: o desconto é um DIVISOR com divisão
// inteira, não um multiplicador percentual.
const effectivePriceSQL = `(CASE WHEN v.discount > 0 THEN s.price - s.price / v.discount ELSE s.price END)`

// FindProductIDsByVariantFilters é o Estágio 1 da busca: identificadores de
// produto com ao menos UMA variante satisfazendo TODAS as dimensões pedidas
// (preço efetivo dentro da faixa, tamanho no conjunto, cor no conjunto).
// Dentro de cada dimensão a pertinência é OR; entre dimensões é AND.
// Sem restrições, todos os identificadores são candidatos.
func (r *CatalogRepository) FindProductIDsByVariantFilters(ctx context.Context, f domain.VariantFilter) ([]string, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT DISTINCT v.product_id
        FROM variants v
        JOIN sizes s ON s.variant_id = v.id
        JOIN colors c ON c.id = v.color_id
        WHERE ($1::int IS NULL OR ` + effectivePriceSQL + ` >= $1)
          AND ($2::int IS NULL OR ` + effectivePriceSQL + ` <= $2)
          AND ($3::text[] IS NULL OR cardinality($3::text[]) = 0 OR s.size = ANY($3))
          AND ($4::text[] IS NULL OR cardinality($4::text[]) = 0 OR c.color = ANY($4))`

	rows, err := r.DB.QueryContext(ctxTimeout, query,
		f.LowPrice, f.HighPrice, pq.Array(f.Sizes), pq.Array(f.Colors),
	)
	if err != nil {
		return nil, errors.NewDBError("Falha na consulta de filtro por variante", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err = rows.Scan(&id); err != nil {
			return nil, errors.NewDBError("Falha ao mapear identificador de produto", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar identificadores de produto", err)
	}
	return ids, nil
}

// FindProductsByFilters é o Estágio 2 da busca: restringe os candidatos do
// Estágio 1 pelos filtros de nível de produto e devolve o conjunto filtrado
// COMPLETO, hidratado — a paginação em memória é responsabilidade do serviço.
// Os filtros de style/material/gender casam contra os pares nome/valor dos
// detalhes do produto (nome case-insensitive, valor exato).
func (r *CatalogRepository) FindProductsByFilters(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	where := `
        WHERE p.id = ANY($1)
          AND ($2 = '' OR p.name ILIKE '%' || $2 || '%' ESCAPE '\')
          AND ($3 = '' OR p.category_id = $3)
          AND ($4 = '' OR EXISTS (SELECT 1 FROM product_details d WHERE d.product_id = p.id AND lower(d.name) = 'style' AND d.value = $4))
          AND ($5 = '' OR p.brand = $5)
          AND ($6 = '' OR EXISTS (SELECT 1 FROM product_details d WHERE d.product_id = p.id AND lower(d.name) = 'material' AND d.value = $6))
          AND ($7 = '' OR EXISTS (SELECT 1 FROM product_details d WHERE d.product_id = p.id AND lower(d.name) = 'gender' AND d.value = $7))
          AND ($8::float8 <= 0 OR p.rating >= $8)`

	return r.findProducts(ctxTimeout, r.DB, where,
		pq.Array(f.CandidateIDs), escapeLike(f.Search), f.CategoryID,
		f.Style, f.Brand, f.Material, f.Gender, f.RatingMin,
	)
}

// escapeLike neutraliza os curingas do ILIKE no texto de busca do usuário:
// uma busca por "100%" deve casar o literal, não qualquer sufixo.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// DistinctColors agrega a faceta de cores sobre o escopo da categoria
// (categoryID vazio = catálogo inteiro), independente dos filtros ativos.
func (r *CatalogRepository) DistinctColors(ctx context.Context, categoryID string) ([]string, error) {
	query := `
        SELECT DISTINCT c.color
        FROM colors c
        JOIN variants v ON v.color_id = c.id
        JOIN products p ON p.id = v.product_id
        WHERE ($1 = '' OR p.category_id = $1)
        ORDER BY c.color`
	return r.queryStrings(ctx, query, categoryID)
}

// DistinctSizes agrega a faceta de tamanhos sobre o escopo da categoria.
func (r *CatalogRepository) DistinctSizes(ctx context.Context, categoryID string) ([]string, error) {
	query := `
        SELECT DISTINCT s.size
        FROM sizes s
        JOIN variants v ON v.id = s.variant_id
        JOIN products p ON p.id = v.product_id
        WHERE ($1 = '' OR p.category_id = $1)
        ORDER BY s.size`
	return r.queryStrings(ctx, query, categoryID)
}

// DistinctBrands agrega a faceta de marcas sobre o escopo da categoria.
func (r *CatalogRepository) DistinctBrands(ctx context.Context, categoryID string) ([]string, error) {
	query := `
        SELECT DISTINCT p.brand
        FROM products p
        WHERE ($1 = '' OR p.category_id = $1) AND p.brand <> ''
        ORDER BY p.brand`
	return r.queryStrings(ctx, query, categoryID)
}

// DistinctDetails agrega a faceta de pares nome/valor de detalhes sobre o
// escopo da categoria.
func (r *CatalogRepository) DistinctDetails(ctx context.Context, categoryID string) ([]domain.DetailPair, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT DISTINCT d.name, d.value
        FROM product_details d
        JOIN products p ON p.id = d.product_id
        WHERE ($1 = '' OR p.category_id = $1)
        ORDER BY d.name, d.value`

	rows, err := r.DB.QueryContext(ctxTimeout, query, categoryID)
	if err != nil {
		return nil, errors.NewDBError("Falha na agregação de detalhes", err)
	}
	defer rows.Close()

	var pairs []domain.DetailPair
	for rows.Next() {
		var p domain.DetailPair
		if err = rows.Scan(&p.Name, &p.Value); err != nil {
			return nil, errors.NewDBError("Falha ao mapear par de detalhe", err)
		}
		pairs = append(pairs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar pares de detalhe", err)
	}
	return pairs, nil
}

// queryStrings executa uma consulta de coluna única de texto.
func (r *CatalogRepository) queryStrings(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	rows, err := r.DB.QueryContext(ctxTimeout, query, args...)
	if err != nil {
		return nil, errors.NewDBError("Falha na consulta de agregação", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err = rows.Scan(&v); err != nil {
			return nil, errors.NewDBError("Falha ao mapear valor agregado", err)
		}
		values = append(values, v)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar valores agregados", err)
	}
	return values, nil
}
