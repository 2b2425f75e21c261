package i18n_test

import (
	"testing"
	"time"

	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocale(t *testing.T) {
	tests := []struct {
		input string
		want  i18n.Locale
		ok    bool
	}{
		{"en", i18n.English, true},
		{"FR", i18n.French, true},
		{" fr ", i18n.French, true},
		{"de", i18n.English, false},
		{"", i18n.English, false},
	}
	for _, tc := range tests {
		got, ok := i18n.ParseLocale(tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
		assert.Equal(t, tc.ok, ok, "input %q", tc.input)
	}
}

func TestCatalogMessages(t *testing.T) {
	c := i18n.MustDefault()

	assert.Equal(t, "Post not found", c.T(i18n.English, i18n.MsgPostNotFound))
	assert.Equal(t, "Publication non trouvée", c.T(i18n.French, i18n.MsgPostNotFound))
	assert.Equal(t, "Missing required fields: text, owner",
		c.T(i18n.English, i18n.MsgMissingRequiredFields, "text, owner"))
	assert.Equal(t, "noSuchKey", c.T(i18n.French, "noSuchKey"))
}

func TestCatalogFallsBackToEnglish(t *testing.T) {
	tables := i18n.DefaultTables()
	fr := tables[i18n.French]
	delete(fr.Messages, i18n.MsgFailedToFetchTags)
	tables[i18n.French] = fr

	c, err := i18n.NewCatalog(tables)
	require.NoError(t, err)
	assert.Equal(t, "Failed to fetch tags", c.T(i18n.French, i18n.MsgFailedToFetchTags))
}

func TestCatalogEnumsAndFields(t *testing.T) {
	c := i18n.MustDefault()

	assert.Equal(t, "homme", c.Enum(i18n.French, "male"))
	assert.Equal(t, "femme", c.Enum(i18n.French, "female"))
	assert.Equal(t, "male", c.Enum(i18n.English, "male"), "english keeps the raw value")
	assert.Equal(t, "", c.Enum(i18n.French, ""))

	assert.Equal(t, "Prénom", c.Field(i18n.French, "firstName"))
	assert.Equal(t, "Email", c.Field(i18n.English, "email"))
	assert.Equal(t, "unknownField", c.Field(i18n.English, "unknownField"))
}

func TestFormatDate(t *testing.T) {
	c := i18n.MustDefault()
	d := time.Date(2024, 3, 9, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "03/09/2024", c.FormatDate(i18n.English, d))
	assert.Equal(t, "09/03/2024", c.FormatDate(i18n.French, d))
	assert.Equal(t, "03/09/2024", c.FormatDate(i18n.Locale("de"), d))
}

type signup struct {
	FirstName string `json:"firstName" validate:"required,min=2"`
	Email     string `json:"email" validate:"required,email"`
	Location  *struct {
		City string `json:"city" validate:"omitempty,min=2"`
	} `json:"location"`
}

func TestFieldErrors(t *testing.T) {
	c := i18n.MustDefault()

	input := signup{FirstName: "A", Email: "nope"}
	input.Location = &struct {
		City string `json:"city" validate:"omitempty,min=2"`
	}{City: "X"}

	err := c.Validator().Struct(input)
	require.Error(t, err)

	en := c.FieldErrors(i18n.English, err)
	require.Len(t, en, 3)
	assert.Contains(t, en, "firstName")
	assert.Contains(t, en, "email")
	assert.Contains(t, en, "location.city")
	assert.Contains(t, en["email"], "valid email")

	fr := c.FieldErrors(i18n.French, err)
	require.Len(t, fr, 3)
	assert.NotEqual(t, en["email"], fr["email"])

	assert.Nil(t, c.FieldErrors(i18n.English, assert.AnError))
}
