// Package http carries the authentication endpoints: registration, login and
// the current-user lookup.
package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
	"github.com/fgmcolas/ShakeItUp/internal/auth"
	"github.com/fgmcolas/ShakeItUp/internal/logging"
	"github.com/fgmcolas/ShakeItUp/internal/users"
)

// UserStore is the slice of the user repository the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, u *users.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*users.User, error)
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByUsernameLower(ctx context.Context, usernameLower string) (*users.User, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}

type AuthHandler struct {
	Users      UserStore
	Tokens     TokenIssuer
	BcryptCost int
	Log        logging.Logger
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type loginResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

// Register creates an account. Conflict messages say which field collided:
// friendlier signup at the cost of revealing that an address is registered.
// Login is where enumeration stays impossible.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	username := strings.TrimSpace(req.Username)
	email := users.NormalizeEmail(req.Email)

	if err := users.ValidateUsername(username); err != nil {
		return err
	}
	if err := users.ValidateEmail(email); err != nil {
		return err
	}
	if err := users.ValidatePassword(req.Password); err != nil {
		return err
	}

	ctx := userContext(c)

	// Precheck for a precise message; the unique indexes close the race
	// between this check and the insert.
	if _, err := h.Users.FindByEmail(ctx, email); err == nil {
		return apperr.Conflict("email is already registered")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return err
	}
	if _, err := h.Users.FindByUsernameLower(ctx, strings.ToLower(username)); err == nil {
		return apperr.Conflict("username is already taken")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return err
	}

	cost := h.BcryptCost
	if cost == 0 {
		cost = 12
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), cost)
	if err != nil {
		return apperr.Internal(err)
	}

	u := &users.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashed),
	}
	if err := h.Users.Create(ctx, u); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "registration successful"})
}

// Login authenticates by case-insensitive username. Unknown user and wrong
// password return the same error so neither can be told apart.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid body")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field: "username", Message: "username and password required",
		})
	}

	ctx := userContext(c)
	u, err := h.Users.FindByUsernameLower(ctx, strings.ToLower(username))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return apperr.Auth("invalid credentials")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return apperr.Auth("invalid credentials")
	}

	token, err := h.Tokens.Issue(u.ID.Hex())
	if err != nil {
		return apperr.Internal(err)
	}

	return c.JSON(loginResponse{
		Token: token,
		User: userView{
			ID:       u.ID.Hex(),
			Username: u.Username,
			Email:    u.Email,
		},
	})
}

// Me returns the authenticated caller's basic identity.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	callerID, err := auth.UserID(c)
	if err != nil {
		return err
	}
	id, err := bson.ObjectIDFromHex(callerID)
	if err != nil {
		return apperr.Auth("invalid token")
	}

	u, err := h.Users.FindByID(userContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(userView{ID: u.ID.Hex(), Username: u.Username, Email: u.Email})
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
