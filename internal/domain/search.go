package domain

// SearchParams define os parâmetros de busca facetada e paginação.
// Todos os filtros são opcionais: filtro omitido não impõe restrição.
// LowPrice/HighPrice são comparados contra o preço EFETIVO (após desconto).
type SearchParams struct {
	Search    string   `json:"search,omitempty"`
	Category  string   `json:"category,omitempty"` // ID exato da categoria
	Style     string   `json:"style,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	Material  string   `json:"material,omitempty"`
	Gender    string   `json:"gender,omitempty"`
	Rating    float64  `json:"rating,omitempty"` // avaliação mínima (rating >= Rating)
	LowPrice  *int     `json:"low_price,omitempty"`
	HighPrice *int     `json:"high_price,omitempty"`
	Sizes     []string `json:"sizes,omitempty"`
	Colors    []string `json:"colors,omitempty"`
	Page      int      `json:"page"` // 1-indexado
	PageSize  int      `json:"page_size"`
}

// VariantFilter é o filtro do Estágio 1 (nível de variante) entregue ao
// repositório: dentro de cada dimensão a pertinência é OR, entre dimensões é AND.
type VariantFilter struct {
	LowPrice  *int
	HighPrice *int
	Sizes     []string
	Colors    []string
}

// ProductFilter é o filtro do Estágio 2 (nível de produto), restrito aos
// identificadores candidatos sobreviventes do Estágio 1.
type ProductFilter struct {
	Search       string
	CategoryID   string
	Style        string
	Brand        string
	Material     string
	Gender       string
	RatingMin    float64
	CandidateIDs []string
}

// PriceRange é a faixa de preços efetivos (após desconto) de um produto,
// calculada sobre todos os tamanhos de todas as variantes.
type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// ProductSummary é o item da página de resultados: o produto completo
// enriquecido com a faixa de preço efetivo.
type ProductSummary struct {
	Product
	PriceRange PriceRange `json:"price_range"`
}

// DetailPair é um par nome/valor distinto, usado como faceta de filtro.
type DetailPair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SearchResult é a resposta da busca: a janela da página, o total do conjunto
// filtrado completo (o MESMO valor que delimitou a fatia) e as facetas
// agregadas sobre o escopo da categoria, independentes dos filtros ativos.
type SearchResult struct {
	Items         []ProductSummary `json:"items"`
	TotalCount    int              `json:"total_count"`
	Categories    []Category       `json:"categories"`
	Subcategories []Subcategory    `json:"subcategories"`
	Colors        []string         `json:"colors"`
	Sizes         []string         `json:"sizes"`
	Details       []DetailPair     `json:"details"`
	Brands        []string         `json:"brands"`
}
