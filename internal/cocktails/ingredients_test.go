package cocktails

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIngredients(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []string
	}{
		{
			"structured sequence",
			[]string{"rum", "mint", "lime"},
			[]string{"rum", "mint", "lime"},
		},
		{
			"serialized json array",
			[]string{`["rum","mint","lime"]`},
			[]string{"rum", "mint", "lime"},
		},
		{
			"serialized with whitespace",
			[]string{`  ["gin", "tonic"]`},
			[]string{"gin", "tonic"},
		},
		{
			"malformed json degrades to empty",
			[]string{`["rum",`},
			[]string{},
		},
		{
			"json with wrong element types degrades to empty",
			[]string{`[1,2,3]`},
			[]string{},
		},
		{
			"single plain value is a sequence of one",
			[]string{"rum"},
			[]string{"rum"},
		},
		{
			"nothing provided",
			nil,
			[]string{},
		},
		{
			"serialized array dedupes",
			[]string{`["rum","rum","mint"]`},
			[]string{"rum", "mint"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseIngredients(tc.values))
		})
	}
}
