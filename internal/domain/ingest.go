package domain

// IngestionRequest é o payload de ingestão de catálogo (RF de carga de produtos).
// Se Parent estiver preenchido, a requisição anexa uma nova Variant ao produto
// existente; caso contrário, cria um produto novo com sua primeira Variant.
// Os campos numéricos opcionais (ShippingFee, SKU.Discount) chegam como string:
// string vazia significa "ausente", qualquer outro valor deve ser numérico.
type IngestionRequest struct {
	Parent        string             `json:"parent,omitempty"` // ID do produto pai (vazio = produto novo)
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Brand         string             `json:"brand"`
	Slug          string             `json:"slug"`
	ShippingFee   string             `json:"shipping_fee,omitempty"`
	Category      CategoryInput      `json:"category"`
	Subcategories []SubcategoryInput `json:"subcategories"`
	SKU           SKUInput           `json:"sku"`
}

// CategoryInput identifica a categoria pelo nome (chave natural do resolve-or-create).
type CategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SubcategoryInput identifica uma subcategoria pelo nome, no escopo da categoria.
type SubcategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// SKUInput descreve a Variant a ser construída nesta ingestão.
type SKUInput struct {
	Code      string        `json:"code"`
	Discount  string        `json:"discount,omitempty"`
	Color     ColorInput    `json:"color"`
	Images    []string      `json:"images"`
	Sizes     []SizeInput   `json:"sizes"`
	Details   []DetailInput `json:"details,omitempty"`
	Questions []QAInput     `json:"questions,omitempty"`
}

// ColorInput é a cor da nova Variant (sempre vira uma instância própria de Color).
type ColorInput struct {
	Color string `json:"label"`
	Image string `json:"image"`
}

// SizeInput é um tamanho da grade da nova Variant.
type SizeInput struct {
	Size     string `json:"label"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

// DetailInput é um par nome/valor; quando presente, a lista de Details do
// produto é SUBSTITUÍDA pela lista da requisição.
type DetailInput struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// QAInput é uma entrada de pergunta/resposta anexada ao produto na ingestão.
type QAInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Ingestion é a unidade atômica de escrita montada pelo serviço de ingestão e
// entregue INTEIRA ao repositório: ou todas as escritas ficam visíveis, ou
// nenhuma. Os flags New* indicam o que deve ser inserido nesta transação.
type Ingestion struct {
	Category       Category      // categoria resolvida (existente ou nova)
	NewCategory    bool          // true = inserir categoria e subcategorias nesta transação
	Subcategories  []Subcategory // subcategorias vinculadas ao produto
	Product        Product       // produto (novo ou existente; campos escalares já preenchidos)
	NewProduct     bool          // true = inserir produto e vínculos de subcategoria
	Variant        Variant       // a nova Variant, com Color e Sizes já encadeados
	Details        []Detail      // substituição da lista de Details (se ReplaceDetails)
	ReplaceDetails bool
	Questions      []QA // QAs anexadas ao produto nesta ingestão
}
