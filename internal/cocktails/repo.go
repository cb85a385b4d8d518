package cocktails

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
)

type Repository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) *Repository {
	return &Repository{coll: db.Collection("cocktails")}
}

// Create inserts the cocktail and fills in its id and timestamps. The unique
// index on name is the real uniqueness guarantee; a duplicate insert comes
// back as a conflict.
func (r *Repository) Create(ctx context.Context, c *Cocktail) error {
	now := time.Now().UTC()
	c.ID = bson.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Ingredients == nil {
		c.Ingredients = []string{}
	}
	if c.Ratings == nil {
		c.Ratings = []Rating{}
	}

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("this cocktail name is already taken")
		}
		return apperr.Internal(fmt.Errorf("insert cocktail: %w", err))
	}
	return nil
}

func (r *Repository) FindAll(ctx context.Context) ([]Cocktail, error) {
	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("find cocktails: %w", err))
	}
	defer cur.Close(ctx)

	var out []Cocktail
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode cocktails: %w", err))
	}
	return out, nil
}

func (r *Repository) FindByID(ctx context.Context, id bson.ObjectID) (*Cocktail, error) {
	var c Cocktail
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("cocktail not found")
	}
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("find cocktail: %w", err))
	}
	return &c, nil
}

func (r *Repository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]Cocktail, error) {
	if len(ids) == 0 {
		return []Cocktail{}, nil
	}
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("find cocktails by ids: %w", err))
	}
	defer cur.Close(ctx)

	var out []Cocktail
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Internal(fmt.Errorf("decode cocktails: %w", err))
	}
	return out, nil
}

// UpsertRating replaces the user's existing rating in place, or appends a new
// one. Both branches are single array-operator updates; the two-step decide is
// read-then-write and last write wins under concurrency.
func (r *Repository) UpsertRating(ctx context.Context, id bson.ObjectID, rating Rating) (created bool, err error) {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "ratings.userId": rating.UserID},
		bson.M{"$set": bson.M{
			"ratings.$.score":     rating.Score,
			"ratings.$.comment":   rating.Comment,
			"ratings.$.updatedAt": rating.UpdatedAt,
			"updatedAt":           rating.UpdatedAt,
		}},
	)
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("update rating: %w", err))
	}
	if res.MatchedCount > 0 {
		return false, nil
	}

	res, err = r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$push": bson.M{"ratings": rating},
			"$set":  bson.M{"updatedAt": rating.UpdatedAt},
		},
	)
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("append rating: %w", err))
	}
	if res.MatchedCount == 0 {
		return false, apperr.NotFound("cocktail not found")
	}
	return true, nil
}
