package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"gocatalog/config"
	"gocatalog/internal/api/catalog"
	"gocatalog/internal/api/category"
	"gocatalog/internal/api/review"
	"gocatalog/internal/api/search"
	"gocatalog/internal/api/user"
	"gocatalog/internal/domain"
	"gocatalog/internal/pkg/cache"
	"gocatalog/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências.
func NewRouter(
	catalogHandler *catalog.Handler,
	searchHandler *search.Handler,
	categoryHandler *category.Handler,
	reviewHandler *review.Handler,
	userHandler *user.Handler,
	tokenSvc middleware.TokenService,
	cacheClient cache.Client,
	cfg *config.Config,
) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	// Em projetos maiores, pode-se usar um mux de terceiros (e.g., gorilla/mux, chi)
	mux := http.NewServeMux()

	// Middlewares de autenticação e autorização
	auth := middleware.NewAuthMiddleware(tokenSvc)
	adminOnly := middleware.PermissionMiddleware(domain.RoleAdmin)

	// --- 1. Rotas de Health Check e Observabilidade ---
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// --- 2. Rotas de Usuário (v1) ---
	mux.HandleFunc("/v1/register", userHandler.RegisterUserHandler)
	mux.HandleFunc("/v1/login", userHandler.LoginUserHandler)

	// --- 3. Rotas de Ingestão de Catálogo (v1, protegidas) ---

	// POST /v1/catalog/products (criar produto ou anexar variante)
	mux.HandleFunc("/v1/catalog/products", auth(adminOnly(catalogHandler.IngestHandler)))

	// POST /v1/catalog/products/load (carga em lote de ingestões)
	mux.HandleFunc("/v1/catalog/products/load", auth(adminOnly(catalogHandler.LoadCatalogHandler)))

	// --- 4. Rotas de Consulta de Produtos (v1, públicas) ---

	// POST /v1/products/search (busca facetada)
	mux.HandleFunc("/v1/products/search", searchHandler.SearchHandler)

	// POST /v1/products/batch (carregamento em lote por IDs)
	mux.HandleFunc("/v1/products/batch", catalogHandler.BatchLoadHandler)

	// GET /v1/products/{id}, /v1/products/{id}/cart-info,
	// /v1/products/slug/{slug}, /v1/products/name/{name}
	mux.HandleFunc("/v1/products/", catalogHandler.ProductSubtreeHandler)

	// --- 5. Rotas de Categorias (v1) ---

	// GET lista; POST (admin) cria
	mux.HandleFunc("/v1/categories", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			auth(adminOnly(categoryHandler.CategoriesHandler))(w, r)
			return
		}
		categoryHandler.CategoriesHandler(w, r)
	})
	mux.HandleFunc("/v1/subcategories", categoryHandler.SubcategoriesHandler)

	// --- 6. Rotas de Avaliações (v1) ---

	// POST /v1/reviews (submissão autenticada)
	mux.HandleFunc("/v1/reviews", auth(reviewHandler.AddReviewHandler))

	// GET /v1/reviews/{productID}
	mux.HandleFunc("/v1/reviews/", reviewHandler.GetProductReviewsHandler)

	// --- 7. Middlewares Globais ---
	// Ordem: métricas por fora (medem inclusive rejeições do rate limiter).
	var handler http.Handler = mux
	handler = middleware.RateLimiter(cacheClient, cfg.RateLimitMaxRequests, cfg.RateLimitPeriod)(handler)
	handler = middleware.Metrics(handler)

	return handler
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
