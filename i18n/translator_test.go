package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	assert.Equal(t, "relational attributes are not supported", T("relational", nil))

	SetLanguage("ja")
	assert.NotEqual(t, "relational attributes are not supported", T("relational", nil))

	// reset to en
	SetLanguage("en")
}

func TestTranslator_Placeholders(t *testing.T) {
	msg := T("weights_length", map[string]string{"got": "2", "want": "3"})
	assert.Equal(t, "weights length 2 does not match 3 rows", msg)
}

func TestTranslator_UnknownCodeFallsBack(t *testing.T) {
	assert.Equal(t, "no_such_code", T("no_such_code", nil))
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	assert.Equal(t, "X:coerce", T("coerce", nil))
	SetTranslator(nil)
	assert.Equal(t, "write failed", T("write_failed", nil))
}
