package catalog

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors"
	"gocatalog/internal/pkg/logger" // Importação correta do nosso pacote Logger
	"gocatalog/internal/pkg/middleware"
)

// CatalogService define o contrato que o Handler espera da camada de Serviço.
// Usamos a assinatura com o tipo abstrato domain.Context para manter a pureza do domínio.
type CatalogService interface {
	Ingest(ctx domain.Context, req domain.IngestionRequest) (domain.Variant, error)
	LoadCatalog(ctx domain.Context, reqs []domain.IngestionRequest) ([]domain.Variant, error)
	GetProductByID(ctx domain.Context, id string) (domain.Product, error)
	GetProductsBySlug(ctx domain.Context, slug string) ([]domain.Product, error)
	GetProductsByName(ctx domain.Context, name string) ([]domain.Product, error)
	LoadProducts(ctx domain.Context, ids []string) ([]domain.Product, error)
	GetCartProductInfo(ctx domain.Context, id string, style, sizeIndex int) (domain.CartProductInfo, error)
}

// Handler agrupa todos os métodos de Handler do catálogo.
type Handler struct {
	Service CatalogService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc CatalogService, log logger.Logger) *Handler {
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

		h.Logger.Info("Requisição concluída com sucesso", map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": successStatus,
		})

		if data != nil {
			if jsonErr := json.NewEncoder(w).Encode(data); jsonErr != nil {
				h.Logger.Error("Falha ao codificar JSON de resposta", jsonErr)
				http.Error(w, "Erro ao codificar resposta", http.StatusInternalServerError)
			}
		}
		return
	}

	// TRATAMENTO DE ERROS (Módulo: Error Handling)
	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		// Erros de cliente (4xx) são logged como info/warn
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

// IngestHandler lida com a requisição POST /v1/catalog/products.
// @Summary Ingere um produto ou variante no catálogo
// @Description Cria um produto novo com sua primeira variante, ou anexa uma variante nova ao produto indicado em "parent".
// @Tags catalog
// @Accept json
// @Produce json
// @Param ingestion body domain.IngestionRequest true "Payload de ingestão"
// @Success 201 {object} domain.Variant "Variante criada"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 404 {object} domain.ErrorResponse "Produto pai não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /catalog/products [post]
func (h *Handler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	claims, ok := middleware.GetUserClaimsFromContext(ctx)
	if ok {
		// Logamos o ID do usuário que está ingerindo o produto
		h.Logger.Info("Ingestão de catálogo iniciada por", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	} else {
		h.Logger.Warn("Ingestão de catálogo sem claims de usuário no contexto.", nil)
	}

	var req domain.IngestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	variant, err := h.Service.Ingest(ctx, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, variant, nil, http.StatusCreated)
}

// LoadCatalogHandler lida com a requisição POST /v1/catalog/products/load.
// @Summary Carga de catálogo em lote
// @Description Processa uma lista de requisições de ingestão em sequência; cada uma é sua própria unidade atômica.
// @Tags catalog
// @Accept json
// @Produce json
// @Param ingestions body []domain.IngestionRequest true "Lote de requisições de ingestão"
// @Success 201 {array} domain.Variant "Variantes ingeridas"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Security ApiKeyAuth
// @Router /catalog/products/load [post]
func (h *Handler) LoadCatalogHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	if claims, ok := middleware.GetUserClaimsFromContext(ctx); ok {
		h.Logger.Info("Carga de catálogo iniciada por", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
	}

	var reqs []domain.IngestionRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	variants, err := h.Service.LoadCatalog(ctx, reqs)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusCreated)
		return
	}

	h.handleServiceResponse(w, r, variants, nil, http.StatusCreated)
}

// ProductSubtreeHandler despacha as rotas GET sob /v1/products/:
//
//	GET /v1/products/{id}            busca por ID
//	GET /v1/products/{id}/cart-info  projeção de carrinho (?style=&size=)
//	GET /v1/products/slug/{slug}     busca por slug
//	GET /v1/products/name/{name}     busca por nome
func (h *Handler) ProductSubtreeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	path := strings.Trim(r.URL.Path, "/")
	segments := strings.Split(path, "/")

	// segments[0] = "v1", segments[1] = "products"
	switch {
	case len(segments) == 3 && segments[2] != "":
		h.getProductByID(w, r, segments[2])
	case len(segments) == 4 && segments[2] == "slug":
		h.getProductsBySlug(w, r, segments[3])
	case len(segments) == 4 && segments[2] == "name":
		h.getProductsByName(w, r, segments[3])
	case len(segments) == 4 && segments[3] == "cart-info":
		h.getCartProductInfo(w, r, segments[2])
	default:
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Formato de URL inválido ou ID ausente."), http.StatusOK)
	}
}

// getProductByID lida com GET /v1/products/{id}.
// @Summary Obtém um produto por ID
// @Description Busca o produto completo (variantes, detalhes, avaliações) pelo seu ID.
// @Tags catalog
// @Produce json
// @Param id path string true "ID do Produto"
// @Success 200 {object} domain.Product "Produto encontrado"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products/{id} [get]
func (h *Handler) getProductByID(w http.ResponseWriter, r *http.Request, id string) {
	product, err := h.Service.GetProductByID(r.Context(), id)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, product, nil, http.StatusOK)
}

// getProductsBySlug lida com GET /v1/products/slug/{slug}.
// @Summary Lista produtos por slug
// @Tags catalog
// @Produce json
// @Param slug path string true "Slug do Produto"
// @Success 200 {array} domain.Product "Produtos encontrados"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products/slug/{slug} [get]
func (h *Handler) getProductsBySlug(w http.ResponseWriter, r *http.Request, slug string) {
	products, err := h.Service.GetProductsBySlug(r.Context(), slug)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, products, nil, http.StatusOK)
}

// getProductsByName lida com GET /v1/products/name/{name}.
// @Summary Lista produtos por nome exato
// @Tags catalog
// @Produce json
// @Param name path string true "Nome do Produto"
// @Success 200 {array} domain.Product "Produtos encontrados"
// @Failure 500 {object} domain.ErrorResponse "Erro interno do servidor"
// @Router /products/name/{name} [get]
func (h *Handler) getProductsByName(w http.ResponseWriter, r *http.Request, name string) {
	products, err := h.Service.GetProductsByName(r.Context(), name)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, products, nil, http.StatusOK)
}

// getCartProductInfo lida com GET /v1/products/{id}/cart-info?style=&size=.
// @Summary Projeta um par (variante, tamanho) para o carrinho
// @Description Retorna preço de lista e preço efetivo (após desconto) do tamanho escolhido.
// @Tags catalog
// @Produce json
// @Param id path string true "ID do Produto"
// @Param style query int true "Índice da variante"
// @Param size query int true "Índice do tamanho"
// @Success 200 {object} domain.CartProductInfo "Informações para o carrinho"
// @Failure 400 {object} domain.ErrorResponse "Índices fora do intervalo"
// @Failure 404 {object} domain.ErrorResponse "Produto não encontrado"
// @Router /products/{id}/cart-info [get]
func (h *Handler) getCartProductInfo(w http.ResponseWriter, r *http.Request, id string) {
	style, err := strconv.Atoi(r.URL.Query().Get("style"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'style' deve ser um inteiro."), http.StatusOK)
		return
	}
	sizeIndex, err := strconv.Atoi(r.URL.Query().Get("size"))
	if err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("O parâmetro 'size' deve ser um inteiro."), http.StatusOK)
		return
	}

	info, err := h.Service.GetCartProductInfo(r.Context(), id, style, sizeIndex)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, info, nil, http.StatusOK)
}

// BatchLoadHandler lida com a requisição POST /v1/products/batch.
// @Summary Carrega um lote de produtos por IDs
// @Description Retorna os produtos na ordem pedida; IDs inexistentes são omitidos.
// @Tags catalog
// @Accept json
// @Produce json
// @Param ids body catalog.BatchRequest true "IDs dos produtos"
// @Success 200 {array} domain.Product "Produtos carregados"
// @Failure 400 {object} domain.ErrorResponse "Payload inválido"
// @Router /products/batch [post]
func (h *Handler) BatchLoadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), http.StatusBadRequest)
		return
	}

	products, err := h.Service.LoadProducts(r.Context(), req.IDs)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}
	h.handleServiceResponse(w, r, products, nil, http.StatusOK)
}

// BatchRequest é o payload do carregamento em lote.
type BatchRequest struct {
	IDs []string `json:"ids"`
}
