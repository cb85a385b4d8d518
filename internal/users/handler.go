package users

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
	"github.com/fgmcolas/ShakeItUp/internal/auth"
	"github.com/fgmcolas/ShakeItUp/internal/cocktails"
	"github.com/fgmcolas/ShakeItUp/internal/logging"
)

// Store is the slice of the user repository the handlers need.
type Store interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	SetFavorites(ctx context.Context, id bson.ObjectID, favorites []bson.ObjectID) ([]bson.ObjectID, error)
	AddFavorite(ctx context.Context, id, cocktailID bson.ObjectID) ([]bson.ObjectID, error)
	RemoveFavorite(ctx context.Context, id, cocktailID bson.ObjectID) ([]bson.ObjectID, error)
	SetIngredients(ctx context.Context, id bson.ObjectID, ingredients []string) ([]string, error)
}

// Catalog resolves favorite cocktail ids into documents for the profile view.
type Catalog interface {
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]cocktails.Cocktail, error)
}

type Handler struct {
	Users   Store
	Catalog Catalog
	Log     logging.Logger
}

func NewHandler(users Store, catalog Catalog, log logging.Logger) *Handler {
	return &Handler{Users: users, Catalog: catalog, Log: log}
}

type profileResponse struct {
	ID          string                `json:"id"`
	Username    string                `json:"username"`
	Email       string                `json:"email"`
	Favorites   []cocktails.WithStats `json:"favorites"`
	Ingredients []string              `json:"ingredients"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// GetProfile returns the user's own profile, favorites populated with full
// cocktail documents.
func (h *Handler) GetProfile(c *fiber.Ctx) error {
	id, err := targetUser(c)
	if err != nil {
		return err
	}

	ctx := userContext(c)
	u, err := h.Users.FindByID(ctx, id)
	if err != nil {
		return err
	}

	favs, err := h.Catalog.FindByIDs(ctx, u.Favorites)
	if err != nil {
		return err
	}
	populated := make([]cocktails.WithStats, 0, len(favs))
	for _, cocktail := range favs {
		populated = append(populated, cocktail.Stats())
	}

	return c.JSON(profileResponse{
		ID:          u.ID.Hex(),
		Username:    u.Username,
		Email:       u.Email,
		Favorites:   populated,
		Ingredients: u.Ingredients,
		CreatedAt:   u.CreatedAt,
	})
}

type replaceFavoritesRequest struct {
	Favorites []string `json:"favorites"`
}

type favoritesResponse struct {
	Favorites []string `json:"favorites"`
}

// ReplaceFavorites swaps the whole favorites set. Every id must be
// well-formed; duplicates collapse.
func (h *Handler) ReplaceFavorites(c *fiber.Ctx) error {
	id, err := targetUser(c)
	if err != nil {
		return err
	}

	var req replaceFavoritesRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	favorites := make([]bson.ObjectID, 0, len(req.Favorites))
	seen := make(map[bson.ObjectID]struct{}, len(req.Favorites))
	for _, raw := range req.Favorites {
		cid, err := cocktails.ParseID(raw)
		if err != nil {
			return apperr.Validation("invalid data", apperr.FieldError{
				Field: "favorites", Message: "favorites must contain valid cocktail ids",
			})
		}
		if _, dup := seen[cid]; dup {
			continue
		}
		seen[cid] = struct{}{}
		favorites = append(favorites, cid)
	}

	updated, err := h.Users.SetFavorites(userContext(c), id, favorites)
	if err != nil {
		return err
	}
	return c.JSON(favoritesResponse{Favorites: hexIDs(updated)})
}

type toggleFavoriteRequest struct {
	CocktailID string `json:"cocktailId"`
	// Action forces "add" or "remove"; when empty the toggle infers it from
	// current membership.
	Action string `json:"action"`
}

// ToggleFavorite flips membership for one cocktail. The read-then-decide step
// is not atomic against concurrent toggles; last write wins.
func (h *Handler) ToggleFavorite(c *fiber.Ctx) error {
	id, err := targetUser(c)
	if err != nil {
		return err
	}

	var req toggleFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}
	if req.CocktailID == "" {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field: "cocktailId", Message: "cocktailId is required",
		})
	}
	cid, err := cocktails.ParseID(req.CocktailID)
	if err != nil {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field: "cocktailId", Message: "invalid cocktail id",
		})
	}

	ctx := userContext(c)

	action := req.Action
	switch action {
	case "add", "remove":
	case "":
		u, err := h.Users.FindByID(ctx, id)
		if err != nil {
			return err
		}
		action = "add"
		for _, fav := range u.Favorites {
			if fav == cid {
				action = "remove"
				break
			}
		}
	default:
		return apperr.Validation("invalid data", apperr.FieldError{
			Field: "action", Message: "action must be add or remove",
		})
	}

	var updated []bson.ObjectID
	if action == "add" {
		updated, err = h.Users.AddFavorite(ctx, id, cid)
	} else {
		updated, err = h.Users.RemoveFavorite(ctx, id, cid)
	}
	if err != nil {
		return err
	}
	return c.JSON(favoritesResponse{Favorites: hexIDs(updated)})
}

type ingredientsRequest struct {
	Ingredients []string `json:"ingredients"`
}

type ingredientsResponse struct {
	Ingredients []string `json:"ingredients"`
}

// UpdateIngredients replaces the user's ingredient list, deduplicated with
// order preserved.
func (h *Handler) UpdateIngredients(c *fiber.Ctx) error {
	id, err := targetUser(c)
	if err != nil {
		return err
	}

	var req ingredientsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	list := cocktails.NormalizeIngredients(req.Ingredients)
	if err := cocktails.ValidateIngredients(list); err != nil {
		return err
	}

	updated, err := h.Users.SetIngredients(userContext(c), id, list)
	if err != nil {
		return err
	}
	return c.JSON(ingredientsResponse{Ingredients: updated})
}

// targetUser parses the :id route param and enforces that the authenticated
// caller is acting on their own account.
func targetUser(c *fiber.Ctx) (bson.ObjectID, error) {
	id, err := cocktails.ParseID(c.Params("id"))
	if err != nil {
		return bson.ObjectID{}, apperr.Validation("invalid data", apperr.FieldError{
			Field: "id", Message: "invalid user id",
		})
	}

	callerID, err := auth.UserID(c)
	if err != nil {
		return bson.ObjectID{}, err
	}
	if callerID != id.Hex() {
		return bson.ObjectID{}, apperr.Forbidden("cannot act on another user's account")
	}
	return id, nil
}

func hexIDs(ids []bson.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
