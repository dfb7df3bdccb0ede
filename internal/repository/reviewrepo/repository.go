package reviewrepo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gocatalog/internal/domain"
	"gocatalog/internal/errors"
	"gocatalog/internal/pkg/cache"
	"gocatalog/internal/pkg/logger"
)

// productCacheKey é a chave cache-aside do agregado completo do produto,
// a mesma populada pelo FindProductByID do catálogo. Uma review nova altera
// rating, num_reviews e a lista de reviews do agregado, então a chave precisa
// ser invalidada aqui também.
const productCacheKey = "product:%s"

// ReviewRepository implementa a persistência de avaliações de produto e a
// manutenção do agregado (rating médio + contagem) na linha do produto.
type ReviewRepository struct {
	DB        *sql.DB
	Cache     cache.Client
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewReviewRepository cria e retorna uma nova instância do Repositório de Reviews.
func NewReviewRepository(db *sql.DB, cacheClient cache.Client, dbTimeout time.Duration, logger logger.Logger) *ReviewRepository {
	return &ReviewRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// SaveReview insere a avaliação e recalcula o agregado de rating do produto
// em UMA transação, com bloqueio de linha (FOR UPDATE) para serializar
// submissões concorrentes sobre o mesmo produto.
func (r *ReviewRepository) SaveReview(ctx context.Context, review domain.Review) (domain.Review, error) {
	r.logger.Debug("Iniciando inserção de review no repositório.", map[string]interface{}{
		"product_id": review.ProductID,
		"rating":     review.Rating,
	})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTx(ctxTimeout, nil)
	if err != nil {
		return domain.Review{}, errors.NewDBError("Falha ao iniciar transação de review", err)
	}
	defer tx.Rollback() // Rollback em caso de erro

	// 1. Bloquear a linha do produto e obter o agregado atual.
	var rating float64
	var numReviews int
	querySelect := `
        SELECT rating, num_reviews
        FROM products
        WHERE id = $1 FOR UPDATE`

	err = tx.QueryRowContext(ctxTimeout, querySelect, review.ProductID).Scan(&rating, &numReviews)
	if err == sql.ErrNoRows {
		return domain.Review{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado para avaliação.", review.ProductID))
	}
	if err != nil {
		return domain.Review{}, errors.NewDBError("Falha ao bloquear produto para avaliação", err)
	}

	// 2. Inserir a avaliação.
	insertSQL := `
        INSERT INTO reviews (id, product_id, rating, fit, review, images, likes, size,
                             style_color, style_image, reviewer_name, reviewer_image, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`

	_, err = tx.ExecContext(ctxTimeout, insertSQL,
		review.ID, review.ProductID, review.Rating, review.Fit, review.Review,
		pq.Array(review.Images), review.Likes, review.Size,
		review.Style.Color, review.Style.Image,
		review.ReviewedBy.Name, review.ReviewedBy.Image, review.CreatedAt,
	)
	if err != nil {
		return domain.Review{}, errors.NewDBError("Falha ao inserir review", err)
	}

	// 3. Recalcular o agregado: média incremental sobre a contagem anterior.
	newRating := (rating*float64(numReviews) + float64(review.Rating)) / float64(numReviews+1)
	updateSQL := `
        UPDATE products
        SET rating = $1, num_reviews = $2
        WHERE id = $3`

	if _, err = tx.ExecContext(ctxTimeout, updateSQL, newRating, numReviews+1, review.ProductID); err != nil {
		return domain.Review{}, errors.NewDBError("Falha ao atualizar agregado de rating do produto", err)
	}

	if err = tx.Commit(); err != nil {
		return domain.Review{}, errors.NewDBError("Falha ao confirmar transação de review", err)
	}

	// 4. Invalidar o cache do agregado do produto (rating/reviews mudaram).
	key := fmt.Sprintf(productCacheKey, review.ProductID)
	if cacheErr := r.Cache.Delete(ctx, key); cacheErr != nil {
		// Falha de cache não desfaz a escrita já confirmada no DB.
		r.logger.Warn("Falha ao invalidar cache do produto após review.", map[string]interface{}{
			"key":   key,
			"error": cacheErr.Error(),
		})
	}

	r.logger.Info("Review persistida e agregado atualizado.", map[string]interface{}{
		"product_id":  review.ProductID,
		"review_id":   review.ID,
		"new_rating":  newRating,
		"num_reviews": numReviews + 1,
	})
	return review, nil
}

// FindReviewsByProduct lista as avaliações de um produto, mais recentes primeiro.
func (r *ReviewRepository) FindReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := `
        SELECT id, product_id, rating, fit, review, images, likes, size,
               style_color, style_image, reviewer_name, reviewer_image, created_at
        FROM reviews
        WHERE product_id = $1
        ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(ctxTimeout, query, productID)
	if err != nil {
		r.logger.Error("Falha ao buscar reviews no DB.", err)
		return nil, errors.NewDBError("Falha ao buscar reviews", err)
	}
	defer rows.Close()

	var reviews []domain.Review
	for rows.Next() {
		var rv domain.Review
		err = rows.Scan(
			&rv.ID, &rv.ProductID, &rv.Rating, &rv.Fit, &rv.Review,
			pq.Array(&rv.Images), &rv.Likes, &rv.Size,
			&rv.Style.Color, &rv.Style.Image,
			&rv.ReviewedBy.Name, &rv.ReviewedBy.Image, &rv.CreatedAt,
		)
		if err != nil {
			return nil, errors.NewDBError("Falha ao mapear review", err)
		}
		reviews = append(reviews, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.NewDBError("Falha ao iterar reviews", err)
	}
	return reviews, nil
}
