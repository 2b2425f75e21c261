package i18n

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
)

// Locale is a supported response language.
type Locale string

// Supported locales.
const (
	English Locale = "en"
	French  Locale = "fr"

	DefaultLocale = English
)

// Supported lists every locale the catalog serves.
var Supported = []Locale{English, French}

// ParseLocale accepts a two-letter code and reports whether it is supported.
func ParseLocale(code string) (Locale, bool) {
	loc := Locale(strings.ToLower(strings.TrimSpace(code)))
	for _, s := range Supported {
		if s == loc {
			return loc, true
		}
	}
	return DefaultLocale, false
}

var dateLayouts = map[Locale]string{
	English: "01/02/2006",
	French:  "02/01/2006",
}

// Key prefixes keep the three table sections apart from each other and from
// the validator's tag keys ("email" is both a field and a tag).
const (
	messagePrefix = "msg."
	fieldPrefix   = "field."
	enumPrefix    = "enum."
)

// Catalog is an immutable translation service. All mutation happens in
// NewCatalog; afterwards it is safe for concurrent use.
type Catalog struct {
	translators map[Locale]ut.Translator
	validate    *validator.Validate
}

// NewCatalog builds a catalog from the given tables and registers localized
// validation messages for every supported locale.
func NewCatalog(tables Tables) (*Catalog, error) {
	enLocale := en.New()
	uni := ut.New(enLocale, enLocale, fr.New())

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	c := &Catalog{
		translators: make(map[Locale]ut.Translator, len(Supported)),
		validate:    validate,
	}

	for _, loc := range Supported {
		trans, found := uni.GetTranslator(string(loc))
		if !found {
			return nil, fmt.Errorf("no translator for locale %q", loc)
		}
		table := tables[loc]
		for _, section := range []struct {
			prefix  string
			entries map[string]string
		}{
			{messagePrefix, table.Messages},
			{fieldPrefix, table.Fields},
			{enumPrefix, table.Enums},
		} {
			for key, text := range section.entries {
				if err := trans.Add(section.prefix+key, text, true); err != nil {
					return nil, fmt.Errorf("add %s translation %q: %w", loc, key, err)
				}
			}
		}
		c.translators[loc] = trans
	}

	if err := en_translations.RegisterDefaultTranslations(validate, c.translators[English]); err != nil {
		return nil, fmt.Errorf("register en validation translations: %w", err)
	}
	if err := fr_translations.RegisterDefaultTranslations(validate, c.translators[French]); err != nil {
		return nil, fmt.Errorf("register fr validation translations: %w", err)
	}

	return c, nil
}

// MustDefault returns a catalog over DefaultTables and panics on failure.
// It is meant for tests and for the composition root.
func MustDefault() *Catalog {
	c, err := NewCatalog(DefaultTables())
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) lookup(loc Locale, key string, params ...string) (string, bool) {
	trans, ok := c.translators[loc]
	if !ok {
		return "", false
	}
	s, err := trans.T(key, params...)
	if err != nil {
		return "", false
	}
	return s, true
}

// T translates a message key into loc, falling back to English and then to
// the key itself.
func (c *Catalog) T(loc Locale, key string, params ...string) string {
	if s, ok := c.lookup(loc, messagePrefix+key, params...); ok {
		return s
	}
	if s, ok := c.lookup(English, messagePrefix+key, params...); ok {
		return s
	}
	return key
}

// Field returns the localized label of an entity field.
func (c *Catalog) Field(loc Locale, name string) string {
	if s, ok := c.lookup(loc, fieldPrefix+name); ok {
		return s
	}
	return name
}

// Enum localizes an enumerated value such as a gender. Values without a
// translation in loc are returned unchanged.
func (c *Catalog) Enum(loc Locale, value string) string {
	if value == "" {
		return value
	}
	if s, ok := c.lookup(loc, enumPrefix+value); ok {
		return s
	}
	return value
}

// FormatDate renders t in the locale's short date layout
// (en MM/DD/YYYY, fr DD/MM/YYYY).
func (c *Catalog) FormatDate(loc Locale, t time.Time) string {
	layout, ok := dateLayouts[loc]
	if !ok {
		layout = dateLayouts[English]
	}
	return t.Format(layout)
}

// Validator returns the shared validator with localized messages registered.
func (c *Catalog) Validator() *validator.Validate {
	return c.validate
}

// FieldErrors translates a validator failure into field path → message.
// Paths are relative to the validated struct ("location.city").
func (c *Catalog) FieldErrors(loc Locale, err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	trans, ok := c.translators[loc]
	if !ok {
		trans = c.translators[English]
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if i := strings.IndexByte(path, '.'); i >= 0 {
			path = path[i+1:]
		}
		out[path] = fe.Translate(trans)
	}
	return out
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
