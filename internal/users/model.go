// Package users holds user accounts: credentials, favorites and the personal
// ingredient list, stored in the users collection.
package users

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fgmcolas/ShakeItUp/internal/apperr"
)

const (
	UsernameMinLen = 3
	UsernameMaxLen = 30
	PasswordMinLen = 8
	PasswordMaxLen = 128
)

// Same basic shape check the front end applies; not an RFC validator.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

// User is a stored account. Username keeps its display case; UsernameLower is
// the case-insensitive uniqueness key and is recomputed whenever Username
// changes. The password hash never serializes to JSON.
type User struct {
	ID            bson.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username      string          `bson:"username" json:"username"`
	UsernameLower string          `bson:"usernameLower" json:"-"`
	Email         string          `bson:"email" json:"email"`
	PasswordHash  string          `bson:"password" json:"-"`
	Favorites     []bson.ObjectID `bson:"favorites" json:"favorites"`
	Ingredients   []string        `bson:"ingredients" json:"ingredients"`
	CreatedAt     time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time       `bson:"updatedAt" json:"updatedAt"`
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidateUsername(username string) error {
	if n := len(username); n < UsernameMinLen || n > UsernameMaxLen {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field:   "username",
			Message: fmt.Sprintf("username must be %d-%d characters", UsernameMinLen, UsernameMaxLen),
		})
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field:   "email",
			Message: "invalid email",
		})
	}
	return nil
}

func ValidatePassword(password string) error {
	if n := len(password); n < PasswordMinLen || n > PasswordMaxLen {
		return apperr.Validation("invalid data", apperr.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("password must be %d-%d characters", PasswordMinLen, PasswordMaxLen),
		})
	}
	return nil
}
