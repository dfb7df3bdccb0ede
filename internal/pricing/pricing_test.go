package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"gocatalog/internal/pricing"
)

// TestEffectivePrice_SemDesconto verifica que desconto zero devolve o preço de lista.
func TestEffectivePrice_SemDesconto(t *testing.T) {
	assert.Equal(t, 100, pricing.EffectivePrice(100, 0))
	assert.Equal(t, 0, pricing.EffectivePrice(0, 0))
}

// TestEffectivePrice_DescontoComoDivisor verifica a aritmética de divisor.
func TestEffectivePrice_DescontoComoDivisor(t *testing.T) {
	assert.Equal(t, 90, pricing.EffectivePrice(100, 10)) // 100 - 100/10
	assert.Equal(t, 75, pricing.EffectivePrice(100, 25)) // 100 - 100/25
	assert.Equal(t, 50, pricing.EffectivePrice(100, 2))  // 100 - 100/2
}

// TestEffectivePrice_DivisaoTruncada verifica que a divisão inteira trunca,
// nunca arredonda: 99/10 = 9, logo 99 - 9 = 90.
func TestEffectivePrice_DivisaoTruncada(t *testing.T) {
	assert.Equal(t, 90, pricing.EffectivePrice(99, 10))
	assert.Equal(t, 96, pricing.EffectivePrice(101, 20)) // 101/20 = 5, 101 - 5 = 96
}
