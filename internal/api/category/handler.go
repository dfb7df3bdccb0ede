package category

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger"
)

// CategoryService define o contrato que o Handler espera da camada de Serviço.
type CategoryService interface {
	CreateCategory(ctx domain.Context, name, slug string) (domain.Category, error)
	GetAllCategories(ctx domain.Context) ([]domain.Category, error)
	GetAllSubcategories(ctx domain.Context) ([]domain.Subcategory, error)
}

// Handler agrupa todos os métodos de Handler de categorias.
type Handler struct {
	Service CategoryService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CategoryService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas padronizadas ao cliente.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	if err == nil {
		// Sucesso
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

	// TRATAMENTO DE ERROS
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

// CategoriesHandler lida com GET e POST em /v1/categories.
// @Summary Lista ou cria categorias
// @Description GET retorna todas as categorias; POST (admin) cria uma categoria pelo nome, reutilizando a existente se o nome já estiver registrado.
// @Tags categories
// @Accept json
// @Produce json
// @Success 200 {array} domain.Category "Lista de categorias"
// @Success 201 {object} domain.Category "Categoria criada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /categories [get]
func (h *Handler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.getAllCategories(w, r)
	case http.MethodPost:
		h.createCategory(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) getAllCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Service.GetAllCategories(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, categories, nil, http.StatusOK)
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var input domain.CategoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	created, err := h.Service.CreateCategory(r.Context(), input.Name, input.Slug)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, created, nil, http.StatusCreated)
}

// SubcategoriesHandler lida com GET /v1/subcategories.
// @Summary Lista todas as subcategorias
// @Tags categories
// @Produce json
// @Success 200 {array} domain.Subcategory "Lista de subcategorias"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /subcategories [get]
func (h *Handler) SubcategoriesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	subcategories, err := h.Service.GetAllSubcategories(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, subcategories, nil, http.StatusOK)
}
