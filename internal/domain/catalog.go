package domain

import (
	"time"
)

// Category representa uma categoria do catálogo (e.g., "Shoes").
// O nome é a chave natural usada pelo resolve-or-create da ingestão.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Subcategory representa uma subcategoria pertencente a exatamente uma Category.
// A chave natural é o par (categoria, nome).
type Subcategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
}

// Product representa o item principal do catálogo (a Entidade agregadora).
// Um Product possui uma Category, um conjunto de Subcategories (todas da mesma
// Category), e listas de Details, Questions, Reviews e Variants.
type Product struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Brand        string    `json:"brand"`
	Slug         string    `json:"slug"`
	RefundPolicy string    `json:"refund_policy"`
	Shipping     int       `json:"shipping"`
	Rating       float64   `json:"rating"`
	NumReviews   int       `json:"num_reviews"`
	CreatedAt    time.Time `json:"created_at"`

	Category      Category      `json:"category"`
	Subcategories []Subcategory `json:"subcategories"`
	Details       []Detail      `json:"details"`
	Questions     []QA          `json:"questions"`
	Reviews       []Review      `json:"reviews"`
	Variants      []Variant     `json:"sku_products"`
}

// Variant representa uma configuração comprável do produto (o "SKU"),
// distinguida pela cor, com seu próprio desconto e grade de tamanhos.
// Uma Variant pertence a exatamente um Product; reatribuição não é suportada.
type Variant struct {
	ID        string   `json:"id"`
	ProductID string   `json:"product_id"`
	SKU       string   `json:"sku"`      // Stock Keeping Unit (código único da variante)
	Discount  int      `json:"discount"` // 0 = sem desconto
	Images    []string `json:"images"`
	Sold      int      `json:"sold"`
	Color     Color    `json:"color"`
	Sizes     []Size   `json:"sizes"`
}

// Color é o atributo de cor de uma Variant. Cada Variant possui a SUA
// instância de Color (nunca compartilhada entre variantes, mesmo com rótulo igual).
type Color struct {
	ID    string `json:"id"`
	Color string `json:"color"`
	Image string `json:"color_image"`
}

// Size é um tamanho comprável de uma Variant, com quantidade e preço próprios.
// O preço é um inteiro na menor unidade da moeda (centavos).
type Size struct {
	ID        string `json:"id"`
	VariantID string `json:"variant_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"`
}

// Detail é um par nome/valor descritivo pertencente ao Product (e.g., "Material": "Couro").
type Detail struct {
	ID        string `json:"id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Name      string `json:"name"`
	Value     string `json:"value"`
}

// QA é uma entrada de pergunta/resposta pertencente ao Product.
type QA struct {
	ID        string `json:"id,omitempty"`
	ProductID string `json:"product_id,omitempty"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

// Context é uma interface que encapsula o Go context.Context.
// É usado para propagar o timeout e sinais de cancelamento pelas camadas.
// Isso evita a dependência direta do pacote "context" no domínio.
type Context interface{}
