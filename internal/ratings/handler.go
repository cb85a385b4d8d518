// Package ratings exposes the rating aggregate view and the rate operation on
// cocktails. Ratings live embedded in cocktail documents; aggregates always
// derive from the current embedded list.
package ratings

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
	"github.com/fgmcolas/ShakeItUp/internal/auth"
	"github.com/fgmcolas/ShakeItUp/internal/cocktails"
	"github.com/fgmcolas/ShakeItUp/internal/logging"
)

type Catalog interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*cocktails.Cocktail, error)
	UpsertRating(ctx context.Context, id bson.ObjectID, r cocktails.Rating) (created bool, err error)
}

// UserDirectory resolves rater ids to display usernames for the review list.
type UserDirectory interface {
	Usernames(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]string, error)
}

type Handler struct {
	Catalog Catalog
	Users   UserDirectory
	Log     logging.Logger
}

func NewHandler(catalog Catalog, users UserDirectory, log logging.Logger) *Handler {
	return &Handler{Catalog: catalog, Users: users, Log: log}
}

type Review struct {
	User      string    `json:"user"`
	Score     int       `json:"score"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type ratingsResponse struct {
	Average float64  `json:"average"`
	Count   int      `json:"count"`
	Reviews []Review `json:"reviews"`
}

// Get returns the aggregate and review list for a cocktail. Raters whose
// account cannot be resolved show as "Anonymous".
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := cocktails.ParseID(c.Params("cocktailId"))
	if err != nil {
		return err
	}

	ctx := userContext(c)
	cocktail, err := h.Catalog.FindByID(ctx, id)
	if err != nil {
		return err
	}

	raterIDs := make([]bson.ObjectID, 0, len(cocktail.Ratings))
	for _, r := range cocktail.Ratings {
		raterIDs = append(raterIDs, r.UserID)
	}
	names, err := h.Users.Usernames(ctx, raterIDs)
	if err != nil {
		return err
	}

	reviews := make([]Review, 0, len(cocktail.Ratings))
	for _, r := range cocktail.Ratings {
		name, ok := names[r.UserID]
		if !ok || name == "" {
			name = "Anonymous"
		}
		reviews = append(reviews, Review{
			User:      name,
			Score:     r.Score,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}

	return c.JSON(ratingsResponse{
		Average: cocktails.Average(cocktail.Ratings),
		Count:   len(cocktail.Ratings),
		Reviews: reviews,
	})
}

type rateRequest struct {
	Score   *float64 `json:"score"`
	Comment string   `json:"comment"`
}

type rateResponse struct {
	Message string `json:"message"`
}

// Rate creates or replaces the caller's rating on a cocktail. Replaying the
// same call leaves the stored state unchanged.
func (h *Handler) Rate(c *fiber.Ctx) error {
	callerID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	raterID, err := bson.ObjectIDFromHex(callerID)
	if err != nil {
		return apperr.Auth("invalid token")
	}

	id, err := cocktails.ParseID(c.Params("cocktailId"))
	if err != nil {
		return err
	}

	var req rateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}
	score, err := validateScore(req.Score)
	if err != nil {
		return err
	}
	comment := strings.TrimSpace(req.Comment)
	if len(comment) > cocktails.CommentMaxLen {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field: "comment", Message: "comment must be at most 500 characters",
		})
	}

	ctx := userContext(c)
	if _, err := h.Catalog.FindByID(ctx, id); err != nil {
		return err
	}

	now := time.Now().UTC()
	created, err := h.Catalog.UpsertRating(ctx, id, cocktails.Rating{
		UserID:    raterID,
		Score:     score,
		Comment:   comment,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return err
	}

	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(rateResponse{Message: "rating saved"})
}

// validateScore enforces an integer score in [1,5]; JSON numbers arrive as
// floats, so 4.5 must be caught here rather than truncated.
func validateScore(score *float64) (int, error) {
	invalid := apperr.Validation("invalid data", apperr.FieldError{
		Field: "score", Message: "score must be an integer between 1 and 5",
	})
	if score == nil {
		return 0, invalid
	}
	if *score != math.Trunc(*score) {
		return 0, invalid
	}
	n := int(*score)
	if n < 1 || n > 5 {
		return 0, invalid
	}
	return n, nil
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
