package cocktails

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecipeCard(t *testing.T) {
	c := &Cocktail{
		Name:         "Mojito",
		Instructions: "Muddle mint with sugar and lime, add rum, top with soda.",
		Ingredients:  []string{"white rum", "mint", "lime juice"},
		Alcoholic:    true,
		Ratings:      []Rating{{Score: 4}, {Score: 5}},
	}

	pdf, err := BuildRecipeCard(c)
	require.NoError(t, err)
	require.NotEmpty(t, pdf)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestBuildRecipeCard_EmptyCocktail(t *testing.T) {
	pdf, err := BuildRecipeCard(&Cocktail{Name: "Bare"})
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}
