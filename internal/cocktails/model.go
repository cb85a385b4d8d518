// Package cocktails holds the catalog: cocktail documents with their embedded
// ratings, stored in the cocktails collection.
package cocktails

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
)

const (
	NameMinLen        = 2
	NameMaxLen        = 100
	InstructionsMax   = 4000
	IngredientMaxLen  = 64
	FlavorStyleMaxLen = 64
	CommentMaxLen     = 500
)

// Rating is embedded in its cocktail; it has no independent lifecycle.
// At most one rating exists per (cocktail, user) pair.
type Rating struct {
	UserID    bson.ObjectID `bson:"userId" json:"userId"`
	Score     int           `bson:"score" json:"score"`
	Comment   string        `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type Cocktail struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string        `bson:"name" json:"name"`
	Instructions   string        `bson:"instructions,omitempty" json:"instructions,omitempty"`
	Ingredients    []string      `bson:"ingredients" json:"ingredients"`
	Alcoholic      bool          `bson:"alcoholic" json:"alcoholic"`
	OfficialRecipe bool          `bson:"officialRecipe" json:"officialRecipe"`
	FlavorStyle    string        `bson:"flavorStyle,omitempty" json:"flavorStyle,omitempty"`
	Image          string        `bson:"image,omitempty" json:"image,omitempty"`
	Ratings        []Rating      `bson:"ratings" json:"-"`
	CreatedAt      time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// WithStats is the read view: a cocktail plus aggregates derived from its
// current embedded ratings. There is no stored running aggregate.
type WithStats struct {
	Cocktail
	AverageRating float64 `json:"averageRating"`
	RatingsCount  int     `json:"ratingsCount"`
}

func (c Cocktail) Stats() WithStats {
	return WithStats{
		Cocktail:      c,
		AverageRating: Average(c.Ratings),
		RatingsCount:  len(c.Ratings),
	}
}

// Average returns the mean score rounded to one decimal, 0 when unrated.
func Average(rs []Rating) float64 {
	if len(rs) == 0 {
		return 0
	}
	sum := 0
	for _, r := range rs {
		sum += r.Score
	}
	avg := float64(sum) / float64(len(rs))
	return math.Round(avg*10) / 10
}

func ValidateName(name string) error {
	if n := len(name); n < NameMinLen || n > NameMaxLen {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field:   "name",
			Message: fmt.Sprintf("name must be %d-%d characters", NameMinLen, NameMaxLen),
		})
	}
	return nil
}

func ValidateInstructions(instructions string) error {
	if len(instructions) > InstructionsMax {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field:   "instructions",
			Message: fmt.Sprintf("instructions must be at most %d characters", InstructionsMax),
		})
	}
	return nil
}

func ValidateIngredients(list []string) error {
	for _, ing := range list {
		if len(ing) > IngredientMaxLen {
			return apperr.Validation("invalid data", apperr.FieldError{
				Field:   "ingredients",
				Message: fmt.Sprintf("each ingredient must be at most %d characters", IngredientMaxLen),
			})
		}
	}
	return nil
}

// NormalizeIngredients trims entries, drops empties and deduplicates while
// preserving order.
func NormalizeIngredients(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, ing := range list {
		ing = strings.TrimSpace(ing)
		if ing == "" {
			continue
		}
		if _, ok := seen[ing]; ok {
			continue
		}
		seen[ing] = struct{}{}
		out = append(out, ing)
	}
	return out
}
