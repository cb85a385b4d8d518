package apperr

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad input"), KindValidation},
		{"conflict", Conflict("taken"), KindConflict},
		{"not found", NotFound("absent"), KindNotFound},
		{"auth", Auth("invalid credentials"), KindAuth},
		{"forbidden", Forbidden("not yours"), KindForbidden},
		{"internal", Internal(io.ErrUnexpectedEOF), KindInternal},
		{"wrapped", fmt.Errorf("handler: %w", Conflict("taken")), KindConflict},
		{"foreign", errors.New("plain"), KindInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestInternal_PreservesCause(t *testing.T) {
	cause := errors.New("disk on fire")
	err := Internal(cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", err.Message)
}

func TestValidation_CarriesFieldDetail(t *testing.T) {
	err := Validation("invalid data",
		FieldError{Field: "username", Message: "must be 3-30 chars"},
		FieldError{Field: "password", Message: "required"},
	)

	require.Len(t, err.Fields, 2)
	assert.Equal(t, "username", err.Fields[0].Field)
}
