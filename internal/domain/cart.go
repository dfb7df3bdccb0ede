package domain

// CartProductInfo é a projeção de um par (variante, tamanho) de um produto,
// com o preço antes e depois do desconto, usada pelo fluxo de carrinho.
type CartProductInfo struct {
	ID          string   `json:"id"`
	Style       int      `json:"style"` // índice da variante dentro do produto
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	SKU         string   `json:"sku"`
	Brand       string   `json:"brand"`
	Shipping    int      `json:"shipping"`
	Images      []string `json:"images"`
	Color       Color    `json:"color"`
	Size        string   `json:"size"`
	Price       int      `json:"price"`        // preço efetivo (após desconto)
	PriceBefore int      `json:"price_before"` // preço de lista
	Quantity    int      `json:"quantity"`     // quantidade disponível no tamanho
	Discount    int      `json:"discount"`
}
