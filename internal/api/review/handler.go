package review

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
)

// ReviewService define o contrato que o Handler espera da camada de Serviço.
type ReviewService interface {
	AddReview(ctx domain.Context, req domain.ReviewRequest) (domain.Review, error)
	GetProductReviews(ctx domain.Context, productID string) ([]domain.Review, error)
}

// Handler agrupa os métodos de Handler de avaliações.
type Handler struct {
	Service ReviewService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc ReviewService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(successStatus)
		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	errorResponse := map[string]interface{}{
		"code":     status,
		"category": category,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse)
}

// AddReviewHandler lida com a requisição POST /v1/reviews.
// @Summary Adiciona uma avaliação a um produto
// @Description Grava a avaliação e atualiza a média e a contagem de avaliações do produto na mesma transação.
// @Tags reviews
// @Accept json
// @Produce json
// @Param review body domain.ReviewRequest true "Dados da avaliação"
// @Success 201 {object} domain.Review "Avaliação criada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido ou nota fora de 1..5"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /reviews [post]
func (h *Handler) AddReviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req domain.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.AddReview(r.Context(), req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// GetProductReviewsHandler lida com GET /v1/reviews/{productID}.
// @Summary Lista as avaliações de um produto
// @Tags reviews
// @Produce json
// @Param productID path string true "ID do Produto"
// @Success 200 {array} domain.Review "Avaliações, mais recentes primeiro"
// @Failure 400 {object} domain.ErrorResponse "ID inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /reviews/{productID} [get]
func (h *Handler) GetProductReviewsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	productID := strings.TrimPrefix(r.URL.Path, "/v1/reviews/")
	if productID == "" {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("ID do produto é obrigatório."), http.StatusOK)
		return
	}

	reviews, err := h.Service.GetProductReviews(r.Context(), productID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, reviews, nil, http.StatusOK)
}
