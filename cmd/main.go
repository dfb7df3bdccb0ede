package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"gocatalog/config"
	"gocatalog/internal/pkg/cache"
	"gocatalog/internal/pkg/database"
	"gocatalog/internal/pkg/logger"
	"gocatalog/internal/pkg/token"

	// Camadas do Catálogo para Injeção de Dependências
	"gocatalog/internal/api/catalog" // Handlers
	"gocatalog/internal/api/category"
	"gocatalog/internal/api/review"
	"gocatalog/internal/api/router" // Roteador central
	"gocatalog/internal/api/search"
	"gocatalog/internal/api/user"
	"gocatalog/internal/repository/catalogrepo" // Acesso a Dados
	"gocatalog/internal/repository/categoryrepo"
	"gocatalog/internal/repository/reviewrepo"
	"gocatalog/internal/repository/userrepo"
	"gocatalog/internal/service/catalogservice" // Lógica de Negócio
	"gocatalog/internal/service/categoryservice"
	"gocatalog/internal/service/reviewservice"
	"gocatalog/internal/service/searchservice"
	"gocatalog/internal/service/userservice"
)

// @title GoCatalog API
// @version 1.0
// @description API de catálogo de produtos: ingestão de produtos e variantes, busca facetada, categorias e avaliações.
// @BasePath /v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// 1. Configuração e Inicialização
	log.Println("⚡ Inicializando serviço GoCatalog...")
	// 0. CARREGAR VARIÁVEIS DE AMBIENTE (.env)
	// O godotenv.Load() procura por um arquivo chamado .env na raiz.
	if err := godotenv.Load(); err != nil {
		// Se o arquivo .env não for encontrado (ou houver erro de leitura),
		// avisamos, mas continuamos, pois as variáveis essenciais podem
		// estar no ambiente do sistema (ex: Docker).
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig() // Carrega as configurações (URLs, Timeouts, etc.)
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close() // Fecha a conexão de DB ao sair
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Conexão Redis estabelecida.", nil)

	// 3. INJEÇÃO DE DEPENDÊNCIAS (Montagem da Clean Architecture)
	// Ordem: Repository -> Service -> Handler

	// A. Repositórios (Camada de Acesso a Dados)
	catalogRepo := catalogrepo.NewCatalogRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	categoryRepo := categoryrepo.NewCategoryRepository(db, cfg.DBTimeout, log)
	reviewRepo := reviewrepo.NewReviewRepository(db, cacheClient, cfg.DBTimeout, log)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	// B. Serviços (Camada de Lógica de Negócio)
	registry := categoryservice.NewRegistry(categoryRepo, log)
	catalogSvc := catalogservice.NewService(catalogRepo, registry, log)
	searchSvc := searchservice.NewService(catalogRepo, categoryRepo, log)
	reviewSvc := reviewservice.NewService(reviewRepo, log)
	log.Debug("Serviços de catálogo inicializados.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)
	userSvc := userservice.NewService(userRepo, tokenSvc)
	log.Debug("Serviços de usuário e token inicializados.", nil)

	// D. Handlers (Camada de Apresentação)
	catalogHandler := catalog.NewHandler(catalogSvc, log)
	searchHandler := search.NewHandler(searchSvc, log)
	categoryHandler := category.NewHandler(registry, log)
	reviewHandler := review.NewHandler(reviewSvc, log)
	userHandler := user.NewHandler(userSvc, log)
	log.Debug("Handlers inicializados.", nil)

	// 4. Configuração e Início do Roteador/Servidor

	// O roteador recebe os Handlers e aplica os middlewares globais
	r := router.NewRouter(catalogHandler, searchHandler, categoryHandler, reviewHandler, userHandler, tokenSvc, cacheClient, cfg)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r, // O roteador final
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoCatalog ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	// Lógica do Graceful Shutdown (captura de sinal)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	// Timeout para desligamento (usa o contexto)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
