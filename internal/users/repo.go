package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
)

type Repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection("users")}
}

// Create inserts the user and fills in its id and timestamps. The unique
// indexes on email and usernameLower are the real uniqueness guarantee; the
// handler's prechecks only improve the error message.
func (r *Repository) Create(ctx context.Context, u *User) error {
	now := time.Now().UTC()
	u.ID = bson.NewObjectID()
	u.UsernameLower = strings.ToLower(u.Username)
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Favorites == nil {
		u.Favorites = []bson.ObjectID{}
	}
	if u.Ingredients == nil {
		u.Ingredients = []string{}
	}

	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return conflictFromDuplicate(err)
		}
		return apperr.Internal(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

// conflictFromDuplicate keeps the registration error field-specific. Telling
// the caller which field collided is intentional here; login is where
// enumeration is a concern.
func conflictFromDuplicate(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "usernameLower"):
		return apperr.Conflict("username is already taken")
	case strings.Contains(msg, "email"):
		return apperr.Conflict("email is already registered")
	}
	return apperr.Conflict("account already exists")
}

func (r *Repository) FindByID(ctx context.Context, id bson.ObjectID) (*User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *Repository) FindByUsernameLower(ctx context.Context, usernameLower string) (*User, error) {
	return r.findOne(ctx, bson.M{"usernameLower": usernameLower})
}

func (r *Repository) findOne(ctx context.Context, filter bson.M) (*User, error) {
	var u User
	err := r.coll.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("find user: %w", err))
	}
	return &u, nil
}

// SetFavorites replaces the whole favorites set.
func (r *Repository) SetFavorites(ctx context.Context, id bson.ObjectID, favorites []bson.ObjectID) ([]bson.ObjectID, error) {
	return r.updateFavorites(ctx, id, bson.M{"$set": bson.M{
		"favorites": favorites,
		"updatedAt": time.Now().UTC(),
	}})
}

// AddFavorite adds a single cocktail to the set ($addToSet keeps it a set even
// under concurrent adds).
func (r *Repository) AddFavorite(ctx context.Context, id, cocktailID bson.ObjectID) ([]bson.ObjectID, error) {
	return r.updateFavorites(ctx, id, bson.M{
		"$addToSet": bson.M{"favorites": cocktailID},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *Repository) RemoveFavorite(ctx context.Context, id, cocktailID bson.ObjectID) ([]bson.ObjectID, error) {
	return r.updateFavorites(ctx, id, bson.M{
		"$pull": bson.M{"favorites": cocktailID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *Repository) updateFavorites(ctx context.Context, id bson.ObjectID, update bson.M) ([]bson.ObjectID, error) {
	var u User
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("update favorites: %w", err))
	}
	return u.Favorites, nil
}

func (r *Repository) SetIngredients(ctx context.Context, id bson.ObjectID, ingredients []string) ([]string, error) {
	var u User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"ingredients": ingredients, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("update ingredients: %w", err))
	}
	return u.Ingredients, nil
}

// Usernames resolves display usernames for a set of user ids. Missing ids are
// simply absent from the map.
func (r *Repository) Usernames(ctx context.Context, ids []bson.ObjectID) (map[bson.ObjectID]string, error) {
	out := make(map[bson.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := r.coll.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"username": 1}))
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("find usernames: %w", err))
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u User
		if err := cur.Decode(&u); err != nil {
			return nil, apperr.Internal(fmt.Errorf("decode user: %w", err))
		}
		out[u.ID] = u.Username
	}
	if err := cur.Err(); err != nil {
		return nil, apperr.Internal(fmt.Errorf("iterate usernames: %w", err))
	}
	return out, nil
}
