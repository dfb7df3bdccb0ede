package search

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
)

// SearchService define o contrato que o Handler espera da camada de Serviço.
type SearchService interface {
	Search(ctx domain.Context, params domain.SearchParams) (domain.SearchResult, error)
}

// Handler agrupa os métodos de Handler da busca de catálogo.
type Handler struct {
	Service SearchService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc SearchService, log logger.Logger) *Handler {
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

// SearchHandler lida com a requisição POST /v1/products/search.
// @Summary Busca facetada de produtos
// @Description Filtra por tamanhos, cores e faixa de preço efetivo no nível de variante, depois por texto, categoria, marca, rating e detalhes no nível de produto. A resposta inclui as facetas do escopo de categoria.
// @Tags search
// @Accept json
// @Produce json
// @Param params body domain.SearchParams true "Filtros e paginação"
// @Success 200 {object} domain.SearchResult "Página de resultados com facetas"
// @Failure 400 {object} domain.ErrorResponse "Parâmetros inválidos"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products/search [post]
func (h *Handler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var params domain.SearchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	result, err := h.Service.Search(r.Context(), params)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	h.handleServiceResponse(w, r, result, nil, http.StatusOK)
}
