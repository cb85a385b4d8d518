package ratings

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
	"github.com/fgmcolas/ShakeItUp/internal/auth"
	"github.com/fgmcolas/ShakeItUp/internal/cocktails"
	"github.com/fgmcolas/ShakeItUp/internal/logging"
)

type fakeCatalog struct {
	byID map[bson.ObjectID]*cocktails.Cocktail
}

func (f *fakeCatalog) FindByID(_ context.Context, id bson.ObjectID) (*cocktails.Cocktail, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, apperr.NotFound("cocktail not found")
	}
	return c, nil
}

func (f *fakeCatalog) UpsertRating(_ context.Context, id bson.ObjectID, r cocktails.Rating) (bool, error) {
	c, ok := f.byID[id]
	if !ok {
		return false, apperr.NotFound("cocktail not found")
	}
	for i := range c.Ratings {
		if c.Ratings[i].UserID == r.UserID {
			r.CreatedAt = c.Ratings[i].CreatedAt
			c.Ratings[i] = r
			return false, nil
		}
	}
	c.Ratings = append(c.Ratings, r)
	return true, nil
}

type fakeDirectory struct {
	names map[bson.ObjectID]string
}

func (f *fakeDirectory) Usernames(_ context.Context, ids []bson.ObjectID) (map[bson.ObjectID]string, error) {
	out := make(map[bson.ObjectID]string, len(ids))
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func newTestApp(t *testing.T, catalog *fakeCatalog, dir *fakeDirectory) (*fiber.App, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService("test-secret", time.Hour)
	app := fiber.New(fiber.Config{ErrorHandler: apperr.FiberHandler(logging.NewDefault())})
	h := NewHandler(catalog, dir, logging.NewDefault())
	app.Get("/api/ratings/:cocktailId", h.Get)
	app.Post("/api/ratings/:cocktailId", auth.Middleware(tokens), h.Rate)
	return app, tokens
}

func rateAs(t *testing.T, app *fiber.App, tokens *auth.TokenService, userID bson.ObjectID, cocktailID string, body map[string]any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/ratings/"+cocktailID, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	tok, err := tokens.Issue(userID.Hex())
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func getAggregate(t *testing.T, app *fiber.App, cocktailID string) ratingsResponse {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ratings/"+cocktailID, nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var got ratingsResponse
	require.NoError(t, json.Unmarshal(raw, &got))
	return got
}

func TestGet_EmptyRatings(t *testing.T) {
	cid := bson.NewObjectID()
	catalog := &fakeCatalog{byID: map[bson.ObjectID]*cocktails.Cocktail{
		cid: {ID: cid, Name: "Mojito"},
	}}
	app, _ := newTestApp(t, catalog, &fakeDirectory{})

	got := getAggregate(t, app, cid.Hex())
	assert.Zero(t, got.Average)
	assert.Zero(t, got.Count)
	assert.Empty(t, got.Reviews)
}

func TestRate_ReplacesInsteadOfAppending(t *testing.T) {
	cid := bson.NewObjectID()
	userA := bson.NewObjectID()
	userB := bson.NewObjectID()
	catalog := &fakeCatalog{byID: map[bson.ObjectID]*cocktails.Cocktail{
		cid: {ID: cid, Name: "Mojito"},
	}}
	dir := &fakeDirectory{names: map[bson.ObjectID]string{userA: "alice", userB: "bob"}}
	app, tokens := newTestApp(t, catalog, dir)

	resp := rateAs(t, app, tokens, userA, cid.Hex(), map[string]any{"score": 4})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	got := getAggregate(t, app, cid.Hex())
	assert.InDelta(t, 4.0, got.Average, 1e-9)
	assert.Equal(t, 1, got.Count)

	// Re-rating replaces the earlier score rather than adding a second one.
	resp = rateAs(t, app, tokens, userA, cid.Hex(), map[string]any{"score": 2, "comment": "too sweet"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	got = getAggregate(t, app, cid.Hex())
	assert.InDelta(t, 2.0, got.Average, 1e-9)
	assert.Equal(t, 1, got.Count)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "alice", got.Reviews[0].User)
	assert.Equal(t, "too sweet", got.Reviews[0].Comment)

	resp = rateAs(t, app, tokens, userB, cid.Hex(), map[string]any{"score": 5})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	got = getAggregate(t, app, cid.Hex())
	assert.InDelta(t, 3.5, got.Average, 1e-9)
	assert.Equal(t, 2, got.Count)
}

func TestRate_Idempotent(t *testing.T) {
	cid := bson.NewObjectID()
	uid := bson.NewObjectID()
	catalog := &fakeCatalog{byID: map[bson.ObjectID]*cocktails.Cocktail{
		cid: {ID: cid, Name: "Negroni"},
	}}
	app, tokens := newTestApp(t, catalog, &fakeDirectory{})

	for i := 0; i < 3; i++ {
		rateAs(t, app, tokens, uid, cid.Hex(), map[string]any{"score": 3})
	}

	got := getAggregate(t, app, cid.Hex())
	assert.InDelta(t, 3.0, got.Average, 1e-9)
	assert.Equal(t, 1, got.Count)
}

func TestGet_AnonymousFallback(t *testing.T) {
	cid := bson.NewObjectID()
	ghost := bson.NewObjectID()
	catalog := &fakeCatalog{byID: map[bson.ObjectID]*cocktails.Cocktail{
		cid: {ID: cid, Name: "Mojito", Ratings: []cocktails.Rating{
			{UserID: ghost, Score: 5, CreatedAt: time.Now().UTC()},
		}},
	}}
	app, _ := newTestApp(t, catalog, &fakeDirectory{})

	got := getAggregate(t, app, cid.Hex())
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Anonymous", got.Reviews[0].User)
}

func TestRate_ScoreValidation(t *testing.T) {
	cid := bson.NewObjectID()
	uid := bson.NewObjectID()
	catalog := &fakeCatalog{byID: map[bson.ObjectID]*cocktails.Cocktail{
		cid: {ID: cid, Name: "Mojito"},
	}}
	app, tokens := newTestApp(t, catalog, &fakeDirectory{})

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing score", map[string]any{"comment": "nice"}},
		{"fractional score", map[string]any{"score": 4.5}},
		{"below range", map[string]any{"score": 0}},
		{"above range", map[string]any{"score": 6}},
		{"comment too long", map[string]any{"score": 3, "comment": strings.Repeat("x", cocktails.CommentMaxLen+1)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := rateAs(t, app, tokens, uid, cid.Hex(), tc.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}

	got := getAggregate(t, app, cid.Hex())
	assert.Zero(t, got.Count)
}

func TestRate_UnknownCocktail(t *testing.T) {
	app, tokens := newTestApp(t, &fakeCatalog{byID: map[bson.ObjectID]*cocktails.Cocktail{}}, &fakeDirectory{})

	resp := rateAs(t, app, tokens, bson.NewObjectID(), bson.NewObjectID().Hex(), map[string]any{"score": 3})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRate_RequiresToken(t *testing.T) {
	cid := bson.NewObjectID()
	catalog := &fakeCatalog{byID: map[bson.ObjectID]*cocktails.Cocktail{
		cid: {ID: cid, Name: "Mojito"},
	}}
	app, _ := newTestApp(t, catalog, &fakeDirectory{})

	req := httptest.NewRequest(http.MethodPost, "/api/ratings/"+cid.Hex(), strings.NewReader(`{"score":3}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
