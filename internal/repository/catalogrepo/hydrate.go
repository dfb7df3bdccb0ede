package catalogrepo

import (
	"context"

	"github.com/lib/pq"

	"gocatalog/internal/domain"
	"gocatalog/internal/errors"
)

// findProducts carrega produtos (linha principal + categoria) pela cláusula
// WHERE dada e hidrata o agregado completo: subcategorias, detalhes, QAs,
// reviews, variantes (com cor) e tamanhos. Cada tabela filha custa uma única
// consulta com = ANY(ids), independentemente do número de produtos.
func (r *CatalogRepository) findProducts(ctx context.Context, q queryer, where string, args ...interface{}) ([]domain.Product, error) {
	query := `
        SELECT p.id, p.name, p.description, p.brand, p.slug, p.refund_policy,
               p.shipping, p.rating, p.num_reviews, p.created_at,
               c.id, c.name, c.slug
        FROM products p
        JOIN categories c ON c.id = p.category_id
        ` + where + `
        ORDER BY p.created_at DESC, p.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDBError("Falha ao buscar produtos no DB", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		err = rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Brand, &p.Slug, &p.RefundPolicy,
			&p.Shipping, &p.Rating, &p.NumReviews, &p.CreatedAt,
			&p.Category.ID, &p.Category.Name, &p.Category.Slug,
		)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear produto", err)
		}
		p.Subcategories = []domain.Subcategory{}
		p.Details = []domain.Detail{}
		p.Questions = []domain.QA{}
		p.Reviews = []domain.Review{}
		p.Variants = []domain.Variant{}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar produtos", err)
	}
	if len(products) == 0 {
		return products, nil
	}

	if err = r.hydrateChildren(ctx, q, products); err != nil {
		return nil, err
	}
	return products, nil
}

// hydrateChildren distribui as linhas filhas pelos produtos carregados.
func (r *CatalogRepository) hydrateChildren(ctx context.Context, q queryer, products []domain.Product) error {
	ids := make([]string, len(products))
	index := make(map[string]*domain.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		index[products[i].ID] = &products[i]
	}

	// Subcategorias (via tabela de vínculo)
	subSQL := `
        SELECT ps.product_id, s.id, s.category_id, s.name, s.slug
        FROM product_subcategories ps
        JOIN subcategories s ON s.id = ps.subcategory_id
        WHERE ps.product_id = ANY($1)
        ORDER BY s.name`
	rows, err := q.QueryContext(ctx, subSQL, pq.Array(ids))
	if err != nil {
		return errors.NewDBError("Falha ao buscar subcategorias do produto", err)
	}
	for rows.Next() {
		var productID string
		var s domain.Subcategory
		if err = rows.Scan(&productID, &s.ID, &s.CategoryID, &s.Name, &s.Slug); err != nil {
			rows.Close()
			return errors.NewDBError("Falha ao mapear subcategoria", err)
		}
		if p, ok := index[productID]; ok {
			p.Subcategories = append(p.Subcategories, s)
		}
	}
	rows.Close()

	// Detalhes
	detailSQL := `
        SELECT id, product_id, name, value
        FROM product_details
        WHERE product_id = ANY($1)
        ORDER BY name, value`
	rows, err = q.QueryContext(ctx, detailSQL, pq.Array(ids))
	if err != nil {
		return errors.NewDBError("Falha ao buscar detalhes do produto", err)
	}
	for rows.Next() {
		var d domain.Detail
		if err = rows.Scan(&d.ID, &d.ProductID, &d.Name, &d.Value); err != nil {
			rows.Close()
			return errors.NewDBError("Falha ao mapear detalhe", err)
		}
		if p, ok := index[d.ProductID]; ok {
			p.Details = append(p.Details, d)
		}
	}
	rows.Close()

	// Perguntas e respostas
	qaSQL := `
        SELECT id, product_id, question, answer
        FROM product_qas
        WHERE product_id = ANY($1)
        ORDER BY seq`
	rows, err = q.QueryContext(ctx, qaSQL, pq.Array(ids))
	if err != nil {
		return errors.NewDBError("Falha ao buscar QAs do produto", err)
	}
	for rows.Next() {
		var qa domain.QA
		if err = rows.Scan(&qa.ID, &qa.ProductID, &qa.Question, &qa.Answer); err != nil {
			rows.Close()
			return errors.NewDBError("Falha ao mapear QA", err)
		}
		if p, ok := index[qa.ProductID]; ok {
			p.Questions = append(p.Questions, qa)
		}
	}
	rows.Close()

	// Reviews
	reviewSQL := `
        SELECT id, product_id, rating, fit, review, images, likes, size,
               style_color, style_image, reviewer_name, reviewer_image, created_at
        FROM reviews
        WHERE product_id = ANY($1)
        ORDER BY created_at DESC`
	rows, err = q.QueryContext(ctx, reviewSQL, pq.Array(ids))
	if err != nil {
		return errors.NewDBError("Falha ao buscar reviews do produto", err)
	}
	for rows.Next() {
		var rv domain.Review
		err = rows.Scan(
			&rv.ID, &rv.ProductID, &rv.Rating, &rv.Fit, &rv.Review,
			pq.Array(&rv.Images), &rv.Likes, &rv.Size,
			&rv.Style.Color, &rv.Style.Image,
			&rv.ReviewedBy.Name, &rv.ReviewedBy.Image, &rv.CreatedAt,
		)
		if err != nil {
			rows.Close()
			return errors.NewDBError("Falha ao mapear review", err)
		}
		if p, ok := index[rv.ProductID]; ok {
			p.Reviews = append(p.Reviews, rv)
		}
	}
	rows.Close()

	// Variantes com a cor própria de cada uma.
	// A ordenação por seq preserva a ordem de anexação (lista append-only),
	// da qual o índice de estilo do carrinho depende.
	variantSQL := `
        SELECT v.id, v.product_id, v.sku, v.discount, v.images, v.sold,
               c.id, c.color, c.color_image
        FROM variants v
        JOIN colors c ON c.id = v.color_id
        WHERE v.product_id = ANY($1)
        ORDER BY v.seq`
	rows, err = q.QueryContext(ctx, variantSQL, pq.Array(ids))
	if err != nil {
		return errors.NewDBError("Falha ao buscar variantes do produto", err)
	}
	variantIndex := make(map[string]int) // variantID -> posição no slice do produto
	for rows.Next() {
		var v domain.Variant
		err = rows.Scan(
			&v.ID, &v.ProductID, &v.SKU, &v.Discount, pq.Array(&v.Images), &v.Sold,
			&v.Color.ID, &v.Color.Color, &v.Color.Image,
		)
		if err != nil {
			rows.Close()
			return errors.NewDBError("Falha ao mapear variante", err)
		}
		v.Sizes = []domain.Size{}
		if p, ok := index[v.ProductID]; ok {
			p.Variants = append(p.Variants, v)
			variantIndex[v.ID] = len(p.Variants) - 1
		}
	}
	rows.Close()

	// Tamanhos de cada variante.
	sizeSQL := `
        SELECT s.id, s.variant_id, s.size, s.quantity, s.price, v.product_id
        FROM sizes s
        JOIN variants v ON v.id = s.variant_id
        WHERE v.product_id = ANY($1)
        ORDER BY s.seq`
	rows, err = q.QueryContext(ctx, sizeSQL, pq.Array(ids))
	if err != nil {
		return errors.NewDBError("Falha ao buscar tamanhos das variantes", err)
	}
	for rows.Next() {
		var s domain.Size
		var productID string
		if err = rows.Scan(&s.ID, &s.VariantID, &s.Size, &s.Quantity, &s.Price, &productID); err != nil {
			rows.Close()
			return errors.NewDBError("Falha ao mapear tamanho", err)
		}
		if p, ok := index[productID]; ok {
			if pos, ok := variantIndex[s.VariantID]; ok {
				p.Variants[pos].Sizes = append(p.Variants[pos].Sizes, s)
			}
		}
	}
	rows.Close()

	return nil
}
