package catalog_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/boutique/internal/catalog"
	"github.com/pkordes/boutique/internal/domain"
)

// ---- helpers ---------------------------------------------------------------

func tag(label, category string) domain.Tag {
	return domain.Tag{ID: uuid.New(), Label: label, Category: category}
}

func productWith(name string, labels ...string) domain.Product {
	p := domain.Product{ID: uuid.New(), Name: name}
	for _, l := range labels {
		p.Tags = append(p.Tags, tag(l, "type"))
	}
	return p
}

func names(products []domain.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Name
	}
	return out
}

// ---- Matches ---------------------------------------------------------------

func TestMatches_EmptySelectionMatchesEverything(t *testing.T) {
	assert.True(t, catalog.Matches(productWith("bare"), nil))
	assert.True(t, catalog.Matches(productWith("tagged", "A"), []string{}))
}

func TestMatches_RequiresEverySelectedLabel(t *testing.T) {
	p := productWith("mug", "A", "B")

	assert.True(t, catalog.Matches(p, []string{"A"}))
	assert.True(t, catalog.Matches(p, []string{"A", "B"}))
	assert.False(t, catalog.Matches(p, []string{"A", "C"}))
}

func TestMatches_IsCaseSensitive(t *testing.T) {
	p := productWith("scarf", "Red")

	assert.False(t, catalog.Matches(p, []string{"red"}))
}

func TestMatches_IgnoresCategoryAndID(t *testing.T) {
	p := domain.Product{Tags: []domain.Tag{{ID: uuid.New(), Label: "vintage", Category: "theme"}}}

	assert.True(t, catalog.Matches(p, []string{"vintage"}))
}

// ---- FilterAll -------------------------------------------------------------

func TestFilterAll_AndSemantics(t *testing.T) {
	products := []domain.Product{
		productWith("AB", "A", "B"),
		productWith("A", "A"),
		productWith("BC", "B", "C"),
	}

	got := catalog.FilterAll(products, []string{"A", "B"})

	assert.Equal(t, []string{"AB"}, names(got))
}

func TestFilterAll_PreservesOrderAndInput(t *testing.T) {
	products := []domain.Product{
		productWith("first", "A"),
		productWith("skip", "B"),
		productWith("second", "A"),
	}

	got := catalog.FilterAll(products, []string{"A"})

	assert.Equal(t, []string{"first", "second"}, names(got))
	assert.Equal(t, []string{"first", "skip", "second"}, names(products))
}

func TestFilterAll_EmptyInput(t *testing.T) {
	got := catalog.FilterAll(nil, []string{"A"})

	assert.NotNil(t, got)
	assert.Empty(t, got)
}
