package localization_test

import (
	"testing"

	"healjai/backend/internal/localization"

	"github.com/stretchr/testify/assert"
)

func TestGetString_KnownLanguages(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	assert.Equal(t, "กรุณากรอกชื่อ", loc.GetString("th", "error.name_required"))
	assert.Equal(t, "Please enter a name", loc.GetString("en", "error.name_required"))
}

func TestGetString_FallsBackToEnglish(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	assert.Equal(t, "Please enter a name", loc.GetString("de", "error.name_required"))
}

func TestGetString_UnknownKeyReturnsKey(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	assert.Equal(t, "no.such.key", loc.GetString("th", "no.such.key"))
}

func TestClosureNoticePresentInAllLocales(t *testing.T) {
	loc, err := localization.NewLocalizer()
	assert.NoError(t, err)

	for _, lang := range []string{"th", "en"} {
		notice := loc.GetString(lang, "system.partner_left")
		assert.NotEqual(t, "system.partner_left", notice, "locale %s misses the closure notice", lang)
	}
}
