package catalogrepo

import (
	"context" // Usamos o pacote context do Go
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gocatalog/internal/domain"
	"gocatalog/internal/errors"
	"gocatalog/internal/pkg/cache"
	"gocatalog/internal/pkg/logger"
)

// queryer é o subconjunto de database/sql satisfeito tanto por *sql.DB quanto
// por *sql.Tx. As consultas de hidratação rodam sobre ele para poderem ser
// reutilizadas dentro e fora de transações.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// CatalogRepository é o colaborador de armazenamento do catálogo: produtos,
// variantes, cores, tamanhos, detalhes e QAs, mais as consultas de busca.
type CatalogRepository struct {
	DB        *sql.DB
	Cache     cache.Client // Cliente para operações de cache (Redis)
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewCatalogRepository cria e retorna uma nova instância do Repositório.
// Aqui injetamos as dependências de Infraestrutura (DB e Cache).
func NewCatalogRepository(db *sql.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *CatalogRepository {
	return &CatalogRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Define a chave de cache para produtos.
const productCacheKey = "product:%s"

// FindProductByID busca um produto (com todo o agregado: variantes, cores,
// tamanhos, subcategorias, detalhes, QAs e reviews), utilizando a estratégia
// Cache-Aside.
func (r *CatalogRepository) FindProductByID(ctx context.Context, id string) (domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.Product

	// --- 1. Estratégia Cache-Aside (READ) ---
	cachedData, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		// Cache HIT
		if json.Unmarshal([]byte(cachedData), &product) == nil {
			return product, nil
		}
		// Se a desserialização falhar, seguimos para o DB
	} else if err != cache.ErrCacheMiss {
		// Erro real de cache (ex: conexão perdida): logamos e seguimos para o DB
		r.logger.Warn("Falha ao ler produto do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	// --- 2. Busca no Banco de Dados (PostgreSQL) ---
	products, err := r.findProducts(ctxTimeout, r.DB, `WHERE p.id = $1`, id)
	if err != nil {
		return domain.Product{}, err
	}
	if len(products) == 0 {
		return domain.Product{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não existe na base de dados.", id))
	}
	product = products[0]

	// --- 3. Estratégia Cache-Aside (WRITE) ---
	productJSON, marshalErr := json.Marshal(product)
	if marshalErr == nil {
		r.Cache.Set(ctxTimeout, key, productJSON, r.CacheTTL)
	} else {
		r.logger.Warn("Falha ao serializar produto para cache.", map[string]interface{}{"id": id, "error": marshalErr.Error()})
	}

	return product, nil
}

// FindProductsBySlug busca produtos pelo slug.
func (r *CatalogRepository) FindProductsBySlug(ctx context.Context, slug string) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	return r.findProducts(ctxTimeout, r.DB, `WHERE p.slug = $1`, slug)
}

// FindProductsByName busca produtos pelo nome exato.
func (r *CatalogRepository) FindProductsByName(ctx context.Context, name string) ([]domain.Product, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	return r.findProducts(ctxTimeout, r.DB, `WHERE p.name = $1`, name)
}

// SaveIngestion persiste a unidade de ingestão INTEIRA em uma única transação:
// categoria nova (se houver), subcategorias, produto, vínculos, cor, variante,
// tamanhos, substituição de detalhes e QAs. Ou todas as escritas ficam
// visíveis, ou nenhuma — uma falha no meio do caminho nunca deixa uma
// categoria órfã ou um produto pela metade visível para buscas concorrentes.
func (r *CatalogRepository) SaveIngestion(ctx context.Context, ing domain.Ingestion) (domain.Variant, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Variant{}, errors.NewDBError("Falha ao iniciar transação de ingestão", err)
	}
	defer tx.Rollback() // Rollback em caso de erro (no-op após Commit)

	variant := ing.Variant

	// 1. Categoria e subcategorias novas.
	// O UNIQUE(name) em categories deduplica a corrida de ingestões
	// concorrentes com o mesmo nome: ON CONFLICT DO NOTHING + re-SELECT.
	if ing.NewCategory {
		categoryID, err := r.insertCategory(ctxTimeout, tx, ing.Category)
		if err != nil {
			return domain.Variant{}, err
		}
		ing.Product.Category.ID = categoryID

		for i := range ing.Subcategories {
			ing.Subcategories[i].CategoryID = categoryID
			subID, err := r.insertSubcategory(ctxTimeout, tx, ing.Subcategories[i])
			if err != nil {
				return domain.Variant{}, err
			}
			ing.Subcategories[i].ID = subID
		}
		ing.Product.Subcategories = ing.Subcategories
	}

	// 2. Produto novo + vínculos de subcategoria.
	if ing.NewProduct {
		const productSQL = `
            INSERT INTO products (id, name, description, brand, slug, refund_policy, shipping, rating, num_reviews, category_id, created_at)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`

		p := ing.Product
		_, err = tx.ExecContext(ctxTimeout, productSQL,
			p.ID, p.Name, p.Description, p.Brand, p.Slug, p.RefundPolicy,
			p.Shipping, p.Rating, p.NumReviews, p.Category.ID, p.CreatedAt,
		)
		if err != nil {
			return domain.Variant{}, errors.NewDBError("Falha ao inserir produto", err)
		}

		const linkSQL = `INSERT INTO product_subcategories (product_id, subcategory_id) VALUES ($1, $2)`
		for _, sub := range ing.Subcategories {
			if _, err = tx.ExecContext(ctxTimeout, linkSQL, p.ID, sub.ID); err != nil {
				return domain.Variant{}, errors.NewDBError("Falha ao vincular subcategoria ao produto", err)
			}
		}
	}

	// 3. Cor da variante (instância própria, nunca reutilizada entre variantes).
	const colorSQL = `INSERT INTO colors (id, color, color_image) VALUES ($1, $2, $3)`
	if _, err = tx.ExecContext(ctxTimeout, colorSQL, variant.Color.ID, variant.Color.Color, variant.Color.Image); err != nil {
		return domain.Variant{}, errors.NewDBError("Falha ao inserir cor da variante", err)
	}

	// 4. Variante e grade de tamanhos.
	const variantSQL = `
        INSERT INTO variants (id, product_id, sku, discount, images, sold, color_id)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err = tx.ExecContext(ctxTimeout, variantSQL,
		variant.ID, variant.ProductID, variant.SKU, variant.Discount,
		pq.Array(variant.Images), variant.Sold, variant.Color.ID,
	)
	if err != nil {
		return domain.Variant{}, errors.NewDBError("Falha ao inserir variante", err)
	}

	const sizeSQL = `INSERT INTO sizes (id, variant_id, size, quantity, price) VALUES ($1,$2,$3,$4,$5)`
	for _, s := range variant.Sizes {
		if _, err = tx.ExecContext(ctxTimeout, sizeSQL, s.ID, s.VariantID, s.Size, s.Quantity, s.Price); err != nil {
			return domain.Variant{}, errors.NewDBError("Falha ao inserir tamanho da variante", err)
		}
	}

	// 5. Substituição da lista de detalhes do produto (quando solicitada).
	if ing.ReplaceDetails {
		if _, err = tx.ExecContext(ctxTimeout, `DELETE FROM product_details WHERE product_id = $1`, ing.Product.ID); err != nil {
			return domain.Variant{}, errors.NewDBError("Falha ao substituir detalhes do produto", err)
		}
		const detailSQL = `INSERT INTO product_details (id, product_id, name, value) VALUES ($1,$2,$3,$4)`
		for _, d := range ing.Details {
			if _, err = tx.ExecContext(ctxTimeout, detailSQL, d.ID, d.ProductID, d.Name, d.Value); err != nil {
				return domain.Variant{}, errors.NewDBError("Falha ao inserir detalhe do produto", err)
			}
		}
	}

	// 6. QAs anexadas nesta ingestão.
	const qaSQL = `INSERT INTO product_qas (id, product_id, question, answer) VALUES ($1,$2,$3,$4)`
	for _, q := range ing.Questions {
		if _, err = tx.ExecContext(ctxTimeout, qaSQL, q.ID, q.ProductID, q.Question, q.Answer); err != nil {
			return domain.Variant{}, errors.NewDBError("Falha ao inserir pergunta/resposta do produto", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return domain.Variant{}, errors.NewDBError("Falha ao confirmar transação de ingestão", err)
	}

	// Invalidação do cache: uma nova variante anexada muda o agregado cacheado.
	if !ing.NewProduct {
		key := fmt.Sprintf(productCacheKey, ing.Product.ID)
		if cacheErr := r.Cache.Delete(ctx, key); cacheErr != nil {
			r.logger.Warn("Falha ao invalidar produto no cache após ingestão.", map[string]interface{}{"key": key, "error": cacheErr.Error()})
		}
	}

	r.logger.Info("Ingestão persistida com sucesso.", map[string]interface{}{
		"product_id":   ing.Product.ID,
		"variant_id":   variant.ID,
		"new_product":  ing.NewProduct,
		"new_category": ing.NewCategory,
	})
	return variant, nil
}

// insertCategory insere a categoria tratando a corrida de chave natural:
// se outra ingestão inseriu o mesmo nome primeiro, reutilizamos a linha dela.
func (r *CatalogRepository) insertCategory(ctx context.Context, tx queryer, cat domain.Category) (string, error) {
	const insertSQL = `INSERT INTO categories (id, name, slug) VALUES ($1, $2, $3) ON CONFLICT (name) DO NOTHING`

	if _, err := tx.ExecContext(ctx, insertSQL, cat.ID, cat.Name, cat.Slug); err != nil {
		return "", errors.NewDBError("Falha ao inserir categoria", err)
	}

	var id string
	if err := tx.QueryRowContext(ctx, `SELECT id FROM categories WHERE name = $1`, cat.Name).Scan(&id); err != nil {
		return "", errors.NewDBError("Falha ao resolver categoria após inserção", err)
	}
	return id, nil
}

// insertSubcategory segue a mesma estratégia sobre a chave (category_id, name).
func (r *CatalogRepository) insertSubcategory(ctx context.Context, tx queryer, sub domain.Subcategory) (string, error) {
	const insertSQL = `
        INSERT INTO subcategories (id, category_id, name, slug)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (category_id, name) DO NOTHING`

	if _, err := tx.ExecContext(ctx, insertSQL, sub.ID, sub.CategoryID, sub.Name, sub.Slug); err != nil {
		return "", errors.NewDBError("Falha ao inserir subcategoria", err)
	}

	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM subcategories WHERE category_id = $1 AND name = $2`, sub.CategoryID, sub.Name).Scan(&id)
	if err != nil {
		return "", errors.NewDBError("Falha ao resolver subcategoria após inserção", err)
	}
	return id, nil
}
