package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fgmcolas/ShakeItUp/internal/cocktails"
	handlers "github.com/fgmcolas/ShakeItUp/internal/http"
	"github.com/fgmcolas/ShakeItUp/internal/ratings"
	"github.com/fgmcolas/ShakeItUp/internal/users"
)

type Router struct {
	AuthHandler     *handlers.AuthHandler
	UserHandler     *users.Handler
	CocktailHandler *cocktails.Handler
	RatingHandler   *ratings.Handler

	AuthMW      fiber.Handler
	AuthLimiter fiber.Handler
	WriteLimit  fiber.Handler
}

func (r *Router) RegisterRoutes(app *fiber.App) {
	if r.AuthHandler != nil {
		app.Post("/api/auth/register", r.AuthLimiter, r.AuthHandler.Register)
		app.Post("/api/auth/login", r.AuthLimiter, r.AuthHandler.Login)
		app.Get("/api/me", r.AuthMW, r.AuthHandler.Me)
	}

	if r.UserHandler != nil {
		app.Get("/api/users/:id", r.AuthMW, r.UserHandler.GetProfile)
		app.Put("/api/users/:id/favorites", r.AuthMW, r.WriteLimit, r.UserHandler.ReplaceFavorites)
		app.Patch("/api/users/:id/favorites", r.AuthMW, r.WriteLimit, r.UserHandler.ToggleFavorite)
		app.Patch("/api/users/:id/ingredients", r.AuthMW, r.WriteLimit, r.UserHandler.UpdateIngredients)
	}

	if r.CocktailHandler != nil {
		app.Post("/api/cocktails", r.AuthMW, r.WriteLimit, r.CocktailHandler.Create)
		app.Get("/api/cocktails", r.CocktailHandler.List)
		app.Get("/api/cocktails/:id", r.CocktailHandler.Get)
		app.Get("/api/cocktails/:id/card", r.CocktailHandler.Card)
	}

	if r.RatingHandler != nil {
		app.Get("/api/ratings/:cocktailId", r.RatingHandler.Get)
		app.Post("/api/ratings/:cocktailId", r.AuthMW, r.WriteLimit, r.RatingHandler.Rate)
	}
}
