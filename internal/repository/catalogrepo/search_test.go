package catalogrepo

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"gocatalog/internal/domain"
	"gocatalog/internal/pkg/logger"
)

// TestEscapeLike cobre a neutralização dos curingas do ILIKE no texto de
// busca: "%" e "_" viram literais e a barra invertida é dobrada primeiro.
func TestEscapeLike(t *testing.T) {
	cases := map[string]string{
		"boots":      "boots",
		"100%":       `100\%`,
		"size_42":    `size\_42`,
		`back\slash`: `back\\slash`,
		"":           "",
	}

	for in, want := range cases {
		assert.Equal(t, want, escapeLike(in), "entrada: %q", in)
	}
}

// TestFindProductsByFilters_EscapesSearchWildcards garante que o texto de
// busca chega escapado à consulta: buscar por "100%" não pode virar um
// padrão de prefixo.
func TestFindProductsByFilters_EscapesSearchWildcards(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := &CatalogRepository{DB: db, DBTimeout: 2 * time.Second, logger: logger.NewLogger("debug")}

	columns := []string{
		"id", "name", "description", "brand", "slug", "refund_policy",
		"shipping", "rating", "num_reviews", "created_at",
		"cat_id", "cat_name", "cat_slug",
	}
	dbMock.ExpectQuery("SELECT p.id, p.name").
		WithArgs(
			sqlmock.AnyArg(), `100\%`, sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnRows(sqlmock.NewRows(columns))

	products, err := repo.FindProductsByFilters(context.Background(), domain.ProductFilter{
		Search:       "100%",
		CandidateIDs: []string{"11111111-1111-1111-1111-111111111111"},
	})

	assert.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
