package i18n

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocaleContext(t *testing.T) {
	assert.Equal(t, English, FromContext(context.Background()))
	assert.Equal(t, French, FromContext(WithLocale(context.Background(), French)))
}
