package catalogservice

import (
	"context" // Necessário para o casting e chamadas de infraestrutura
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"gocatalog/internal/domain"
	apperror "gocatalog/internal/errors" // Usar o nome renomeado para evitar conflito
	"gocatalog/internal/pkg/logger"
	"gocatalog/internal/pricing"
)

// CatalogRepository define o contrato (interface) que este Serviço espera
// da camada de Persistência (DB, Cache).
type CatalogRepository interface {
	FindProductByID(ctx context.Context, id string) (domain.Product, error)
	FindProductsBySlug(ctx context.Context, slug string) ([]domain.Product, error)
	FindProductsByName(ctx context.Context, name string) ([]domain.Product, error)
	SaveIngestion(ctx context.Context, ing domain.Ingestion) (domain.Variant, error)
}

// CategoryRegistry é o contrato do registro de categorias usado na ingestão.
// O registro RESOLVE ou CONSTRÓI; quem persiste é a transação de SaveIngestion.
type CategoryRegistry interface {
	ResolveOrCreateCategory(ctx context.Context, name, slug string) (domain.Category, bool, error)
	ResolveOrCreateSubcategories(ctx context.Context, category domain.Category, categoryIsNew bool, inputs []domain.SubcategoryInput) ([]domain.Subcategory, error)
}

// Service implementa a lógica de negócio do catálogo: ingestão de produtos e
// variantes, consultas e a projeção de carrinho.
type Service struct {
	repo     CatalogRepository
	registry CategoryRegistry
	logger   logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Catálogo.
func NewService(repo CatalogRepository, registry CategoryRegistry, logger logger.Logger) *Service {
	return &Service{repo: repo, registry: registry, logger: logger}
}

// Ingest é o ponto de entrada da ingestão de catálogo. A requisição é
// despachada pelo campo Parent: vazio cria um produto novo com sua primeira
// variante; preenchido anexa uma variante nova ao produto existente.
func (s *Service) Ingest(ctx domain.Context, req domain.IngestionRequest) (domain.Variant, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	if strings.TrimSpace(req.Parent) != "" {
		return s.attachVariant(ctxGo, req)
	}
	return s.createProduct(ctxGo, req)
}

// createProduct monta a unidade de ingestão de um produto NOVO: resolve a
// categoria e as subcategorias no registro, constrói o produto e a primeira
// variante, e entrega tudo ao repositório em uma única transação.
func (s *Service) createProduct(ctx context.Context, req domain.IngestionRequest) (domain.Variant, error) {
	// 1. Validação de Regras de Negócio
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.SKU.Code) == "" {
		return domain.Variant{}, apperror.NewValidationError("Nome e código SKU são obrigatórios para o produto.")
	}
	if len(req.SKU.Sizes) == 0 {
		return domain.Variant{}, apperror.NewValidationError("A variante precisa de pelo menos um tamanho.")
	}

	shipping, err := parseOptionalInt(req.ShippingFee)
	if err != nil {
		return domain.Variant{}, apperror.NewValidationError("A taxa de envio deve ser numérica.")
	}

	// 2. Resolução de Categoria e Subcategorias
	category, categoryIsNew, err := s.registry.ResolveOrCreateCategory(ctx, req.Category.Name, req.Category.Slug)
	if err != nil {
		return domain.Variant{}, err
	}
	subcategories, err := s.registry.ResolveOrCreateSubcategories(ctx, category, categoryIsNew, req.Subcategories)
	if err != nil {
		return domain.Variant{}, err
	}

	// 3. Construção do Produto
	product := domain.Product{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Slug:         req.Slug,
		RefundPolicy: "refund",
		Shipping:     shipping,
		CreatedAt:    time.Now().UTC(),
		Category:     category,
	}

	variant, details, questions, replaceDetails, err := s.buildVariant(product.ID, req.SKU)
	if err != nil {
		return domain.Variant{}, err
	}

	ing := domain.Ingestion{
		Category:       category,
		NewCategory:    categoryIsNew,
		Subcategories:  subcategories,
		Product:        product,
		NewProduct:     true,
		Variant:        variant,
		Details:        details,
		ReplaceDetails: replaceDetails,
		Questions:      questions,
	}

	// 4. Delegação para a Camada de Persistência (transação única)
	created, err := s.repo.SaveIngestion(ctx, ing)
	if err != nil {
		s.logger.Error("Falha ao persistir a ingestão de produto novo.", err)
		return domain.Variant{}, err
	}

	s.logger.Info("Produto novo ingerido no catálogo.", map[string]interface{}{
		"product_id": product.ID,
		"variant_id": created.ID,
		"category":   category.Name,
	})
	return created, nil
}

// attachVariant anexa uma variante nova a um produto existente (Parent).
// Categoria e subcategorias do produto NÃO são alteradas neste fluxo.
func (s *Service) attachVariant(ctx context.Context, req domain.IngestionRequest) (domain.Variant, error) {
	if strings.TrimSpace(req.SKU.Code) == "" {
		return domain.Variant{}, apperror.NewValidationError("O código SKU é obrigatório para a variante.")
	}
	if len(req.SKU.Sizes) == 0 {
		return domain.Variant{}, apperror.NewValidationError("A variante precisa de pelo menos um tamanho.")
	}

	// O produto pai precisa existir; a busca devolve NotFoundError se não.
	parent, err := s.repo.FindProductByID(ctx, req.Parent)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Variant{}, apperror.NewNotFoundError(fmt.Sprintf("Produto pai com ID %s não foi encontrado.", req.Parent))
		}
		return domain.Variant{}, err
	}

	variant, details, questions, replaceDetails, err := s.buildVariant(parent.ID, req.SKU)
	if err != nil {
		return domain.Variant{}, err
	}

	ing := domain.Ingestion{
		Category:       parent.Category,
		Product:        parent,
		NewProduct:     false,
		Variant:        variant,
		Details:        details,
		ReplaceDetails: replaceDetails,
		Questions:      questions,
	}

	created, err := s.repo.SaveIngestion(ctx, ing)
	if err != nil {
		s.logger.Error("Falha ao persistir a variante anexada.", err)
		return domain.Variant{}, err
	}

	s.logger.Info("Variante anexada a produto existente.", map[string]interface{}{
		"product_id": parent.ID,
		"variant_id": created.ID,
	})
	return created, nil
}

// buildVariant constrói a Variant a partir do payload de SKU: cor própria
// (cada variante tem a SUA instância de Color), grade de tamanhos com
// back-reference para a variante, lista de Details de SUBSTITUIÇÃO e QAs.
func (s *Service) buildVariant(productID string, sku domain.SKUInput) (domain.Variant, []domain.Detail, []domain.QA, bool, error) {
	discount, err := parseOptionalInt(sku.Discount)
	if err != nil {
		return domain.Variant{}, nil, nil, false, apperror.NewValidationError("O desconto deve ser numérico.")
	}
	if discount < 0 || discount >= 100 {
		return domain.Variant{}, nil, nil, false, apperror.NewValidationError("O desconto deve estar entre 0 e 99.")
	}

	variant := domain.Variant{
		ID:        uuid.New().String(),
		ProductID: productID,
		SKU:       sku.Code,
		Discount:  discount,
		Images:    sku.Images,
		Color: domain.Color{
			ID:    uuid.New().String(),
			Color: sku.Color.Color,
			Image: sku.Color.Image,
		},
	}

	variant.Sizes = make([]domain.Size, 0, len(sku.Sizes))
	for _, in := range sku.Sizes {
		if in.Price < 0 || in.Quantity < 0 {
			return domain.Variant{}, nil, nil, false, apperror.NewValidationError("Preço e quantidade de um tamanho não podem ser negativos.")
		}
		variant.Sizes = append(variant.Sizes, domain.Size{
			ID:        uuid.New().String(),
			VariantID: variant.ID,
			Size:      in.Size,
			Quantity:  in.Quantity,
			Price:     in.Price,
		})
	}

	// Details presentes na requisição SUBSTITUEM a lista inteira do produto.
	replaceDetails := len(sku.Details) > 0
	details := make([]domain.Detail, 0, len(sku.Details))
	for _, in := range sku.Details {
		details = append(details, domain.Detail{
			ID:        uuid.New().String(),
			ProductID: productID,
			Name:      in.Name,
			Value:     in.Value,
		})
	}

	questions := make([]domain.QA, 0, len(sku.Questions))
	for _, in := range sku.Questions {
		questions = append(questions, domain.QA{
			ID:        uuid.New().String(),
			ProductID: productID,
			Question:  in.Question,
			Answer:    in.Answer,
		})
	}

	return variant, details, questions, replaceDetails, nil
}

// GetProductByID busca um produto completo pelo seu identificador.
func (s *Service) GetProductByID(ctx domain.Context, id string) (domain.Product, error) {
	// 1. Validação de Formato (Business Logic)
	if _, err := uuid.Parse(id); err != nil {
		return domain.Product{}, apperror.NewValidationError("O ID do produto deve ser um UUID válido.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	product, err := s.repo.FindProductByID(ctxGo, id)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.Product{}, apperror.NewNotFoundError(fmt.Sprintf("Produto com ID %s não foi encontrado.", id))
		}
		return domain.Product{}, err
	}
	return product, nil
}

// GetProductsBySlug busca produtos pelo slug (pode haver mais de um).
func (s *Service) GetProductsBySlug(ctx domain.Context, slug string) ([]domain.Product, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, apperror.NewValidationError("O slug do produto é obrigatório.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}
	return s.repo.FindProductsBySlug(ctxGo, slug)
}

// GetProductsByName busca produtos pelo nome exato.
func (s *Service) GetProductsByName(ctx domain.Context, name string) ([]domain.Product, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperror.NewValidationError("O nome do produto é obrigatório.")
	}

	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}
	return s.repo.FindProductsByName(ctxGo, name)
}

// LoadProducts carrega um lote de produtos pelos IDs, preservando a ordem
// pedida. IDs inexistentes são simplesmente omitidos do resultado.
func (s *Service) LoadProducts(ctx domain.Context, ids []string) ([]domain.Product, error) {
	ctxGo, ok := ctx.(context.Context)
	if !ok {
		ctxGo = context.Background()
	}

	products := make([]domain.Product, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return nil, apperror.NewValidationError(fmt.Sprintf("O ID '%s' não é um UUID válido.", id))
		}

		product, err := s.repo.FindProductByID(ctxGo, id)
		if err != nil {
			var notFound *apperror.NotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// LoadCatalog processa um lote de requisições de ingestão em sequência.
// Cada requisição é a SUA PRÓPRIA unidade atômica: as anteriores já
// confirmadas permanecem visíveis mesmo que uma posterior falhe — o erro
// interrompe a carga e é devolvido junto com as variantes já ingeridas.
func (s *Service) LoadCatalog(ctx domain.Context, reqs []domain.IngestionRequest) ([]domain.Variant, error) {
	if len(reqs) == 0 {
		return nil, apperror.NewValidationError("A carga de catálogo precisa de pelo menos uma requisição de ingestão.")
	}

	variants := make([]domain.Variant, 0, len(reqs))
	for i, req := range reqs {
		variant, err := s.Ingest(ctx, req)
		if err != nil {
			s.logger.Warn("Carga de catálogo interrompida por falha de ingestão.", map[string]interface{}{
				"index":    i,
				"ingested": len(variants),
			})
			return variants, err
		}
		variants = append(variants, variant)
	}

	s.logger.Info("Carga de catálogo concluída.", map[string]interface{}{"ingested": len(variants)})
	return variants, nil
}

// GetCartProductInfo projeta o par (variante, tamanho) de um produto para o
// fluxo de carrinho: style é o índice da variante dentro do produto, sizeIndex
// é o índice do tamanho dentro da grade da variante. O preço efetivo é o
// preço de lista reduzido pelo desconto-divisor da variante.
func (s *Service) GetCartProductInfo(ctx domain.Context, id string, style, sizeIndex int) (domain.CartProductInfo, error) {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return domain.CartProductInfo{}, err
	}

	if style < 0 || style >= len(product.Variants) {
		return domain.CartProductInfo{}, apperror.NewValidationError("Índice de variante (style) fora do intervalo.")
	}
	variant := product.Variants[style]

	if sizeIndex < 0 || sizeIndex >= len(variant.Sizes) {
		return domain.CartProductInfo{}, apperror.NewValidationError("Índice de tamanho fora do intervalo.")
	}
	size := variant.Sizes[sizeIndex]

	return domain.CartProductInfo{
		ID:          product.ID,
		Style:       style,
		Name:        product.Name,
		Slug:        product.Slug,
		SKU:         variant.SKU,
		Brand:       product.Brand,
		Shipping:    product.Shipping,
		Images:      variant.Images,
		Color:       variant.Color,
		Size:        size.Size,
		Price:       pricing.EffectivePrice(size.Price, variant.Discount),
		PriceBefore: size.Price,
		Quantity:    size.Quantity,
		Discount:    variant.Discount,
	}, nil
}

// parseOptionalInt interpreta os campos numéricos opcionais que chegam como
// string no payload de ingestão: vazio significa zero.
func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
