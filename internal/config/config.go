// Package config loads runtime configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Addr       string `envconfig:"ADDR" default:":8080"`
	CORSOrigin string `envconfig:"CORS_ORIGIN" default:"*"`

	// Store
	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDB  string `envconfig:"MONGO_DB" default:"shakeitup"`
	// CocktailNameCI makes the unique index on cocktail names
	// case-insensitive. Default matches the historical case-sensitive index.
	CocktailNameCI bool `envconfig:"COCKTAIL_NAME_CI" default:"false"`

	// Auth
	JWTSecret  string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL   time.Duration `envconfig:"TOKEN_TTL" default:"168h"`
	BcryptCost int           `envconfig:"BCRYPT_COST" default:"12"`

	// Image store (S3-compatible)
	S3Endpoint    string `envconfig:"S3_ENDPOINT" default:"localhost:9000"`
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3AccessKey   string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey   string `envconfig:"S3_SECRET_KEY"`
	S3Bucket      string `envconfig:"S3_BUCKET" default:"cocktail-images"`
	S3UseSSL      bool   `envconfig:"S3_USE_SSL" default:"false"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:9000"`

	// Rate limits
	AuthRateMax  int `envconfig:"RATE_LIMIT_AUTH_MAX" default:"10"`
	WriteRateMax int `envconfig:"RATE_LIMIT_WRITE_MAX" default:"60"`
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var c Config
	err := envconfig.Process("", &c)
	return c, err
}
