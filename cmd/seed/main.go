// Seeds the catalog from a JSON file of cocktails, upserting by unique name
// so it is safe to run repeatedly. RESET=true wipes the collection first.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fgmcolas/ShakeItUp/internal/cocktails"
	"github.com/fgmcolas/ShakeItUp/internal/config"
	storagemongo "github.com/fgmcolas/ShakeItUp/internal/storage/mongo"
)

type seedCocktail struct {
	Name           string   `json:"name" bson:"name"`
	Instructions   string   `json:"instructions" bson:"instructions,omitempty"`
	Ingredients    []string `json:"ingredients" bson:"ingredients"`
	Alcoholic      bool     `json:"alcoholic" bson:"alcoholic"`
	OfficialRecipe bool     `json:"officialRecipe" bson:"officialRecipe"`
	FlavorStyle    string   `json:"flavorStyle" bson:"flavorStyle,omitempty"`
	Image          string   `json:"image" bson:"image,omitempty"`
}

func main() {
	dataPath := flag.String("data", "data/cocktails.json", "path to the cocktail seed file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	raw, err := os.ReadFile(*dataPath)
	if err != nil {
		log.Fatalf("read seed file: %v", err)
	}
	var seeds []seedCocktail
	if err := json.Unmarshal(raw, &seeds); err != nil {
		log.Fatalf("parse seed file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, db, err := storagemongo.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatalf("mongo: %v", err)
	}
	defer client.Disconnect(context.Background())

	if err := storagemongo.EnsureIndexes(ctx, db, cfg.CocktailNameCI); err != nil {
		log.Fatalf("indexes: %v", err)
	}

	coll := db.Collection("cocktails")

	if strings.EqualFold(os.Getenv("RESET"), "true") {
		log.Println("RESET=true: deleting all cocktails before seeding")
		if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("reset: %v", err)
		}
	}

	inserted := 0
	now := time.Now().UTC()
	for _, s := range seeds {
		ingredients := cocktails.NormalizeIngredients(s.Ingredients)
		res, err := coll.UpdateOne(ctx,
			bson.M{"name": s.Name},
			bson.M{"$setOnInsert": bson.M{
				"name":           s.Name,
				"instructions":   s.Instructions,
				"ingredients":    ingredients,
				"alcoholic":      s.Alcoholic,
				"officialRecipe": s.OfficialRecipe,
				"flavorStyle":    s.FlavorStyle,
				"image":          s.Image,
				"ratings":        []cocktails.Rating{},
				"createdAt":      now,
				"updatedAt":      now,
			}},
			options.UpdateOne().SetUpsert(true),
		)
		if err != nil {
			log.Fatalf("upsert %q: %v", s.Name, err)
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}

	log.Printf("seeding done: inserted %d of %d", inserted, len(seeds))
}
