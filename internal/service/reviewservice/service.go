package reviewservice

import (
	"context" // Necessário para o casting e chamadas de infraestrutura
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
)

// ReviewRepository define o contrato que este Serviço espera da camada de
// Persistência. SaveReview grava a avaliação e atualiza o agregado de rating
// do produto na MESMA transação.
type ReviewRepository interface {
	SaveReview(ctx context.Context, review domain.Review) (domain.Review, error)
	FindReviewsByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}

// Service implementa a lógica de negócio de avaliações de produto.
type Service struct {
	repo   ReviewRepository
	logger logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Avaliações.
func NewService(repo ReviewRepository, logger logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// AddReview valida e grava uma avaliação nova. O rating agregado do produto
// (média e contagem) é atualizado pela transação do repositório.
func (s *Service) AddReview(ctx domain.Context, req domain.ReviewRequest) (domain.Review, error) {
	// 1. Validação de Regras de Negócio
	if _, err := uuid.Parse(req.ProductID); err != nil {
		return domain.Review{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return domain.Review{}, apperror.NewValidationError("A nota da avaliação deve estar entre 1 e 5.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	// 2. Construção da Avaliação
	review := domain.Review{
		ID:         uuid.New().String(),
		ProductID:  req.ProductID,
		Rating:     req.Rating,
		Fit:        req.Fit,
		Review:     req.Review,
		Images:     req.Images,
		Size:       req.Size,
		Style:      req.Style,
		ReviewedBy: req.ReviewedBy,
		CreatedAt:  time.Now().UTC(),
	}

	// 3. Delegação para a Camada de Persistência
	saved, err := s.repo.SaveReview(ctxGo, review)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Review{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não foi encontrado.", req.ProductID))
		}
		s.logger.Error("Falha ao gravar avaliação.", err)
		return domain.Review{}, err
	}

	s.logger.Info("Avaliação gravada.", map[string]interface{}{
		"review_id":  saved.ID,
		"product_id": saved.ProductID,
		"rating":     saved.Rating,
	})
	return saved, nil
}

// GetProductReviews lista as avaliações de um produto, mais recentes primeiro.
func (s *Service) GetProductReviews(ctx domain.Context, productID string) ([]domain.Review, error) {
	if _, err := uuid.Parse(productID); err != nil {
		return nil, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}
	return s.repo.FindReviewsByProduct(ctxGo, productID)
}
