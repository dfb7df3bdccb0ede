package domain

import "time"

// Review representa uma avaliação pertencente a um Product.
type Review struct {
	ID         string      `json:"id"`
	ProductID  string      `json:"product_id"`
	Rating     int         `json:"rating"`
	Fit        string      `json:"fit"`
	Review     string      `json:"review"`
	Images     []string    `json:"images"`
	Likes      int         `json:"likes"`
	Size       string      `json:"size"`
	Style      ReviewStyle `json:"style"`
	ReviewedBy Reviewer    `json:"reviewed_by"`
	CreatedAt  time.Time   `json:"created_at"`
}

// ReviewStyle referencia o estilo avaliado (cor + imagem da variante).
type ReviewStyle struct {
	Color string `json:"color"`
	Image string `json:"image"`
}

// Reviewer referencia quem avaliou (nome + imagem).
type Reviewer struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// ReviewRequest é o payload esperado para a submissão de uma avaliação.
type ReviewRequest struct {
	ProductID  string      `json:"product_id"`
	Rating     int         `json:"rating"`
	Fit        string      `json:"fit"`
	Review     string      `json:"review"`
	Images     []string    `json:"images"`
	Size       string      `json:"size"`
	Style      ReviewStyle `json:"style"`
	ReviewedBy Reviewer    `json:"reviewed_by"`
}
