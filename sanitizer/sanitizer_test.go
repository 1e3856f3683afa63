package sanitizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLEscapesStrings(t *testing.T) {
	got := HTML.Sanitize(`<script>alert("x")</script>`)
	assert.Equal(t, `&lt;script>alert("x")&lt;/script>`, got)
}

func TestHTMLLeavesScalarsAlone(t *testing.T) {
	assert.Equal(t, true, HTML.Sanitize(true))
	assert.Equal(t, 42.5, HTML.Sanitize(42.5))
	assert.Nil(t, HTML.Sanitize(nil))
	assert.Equal(t, json.Number("7"), HTML.Sanitize(json.Number("7")))
}

func TestHTMLWalksNestedValues(t *testing.T) {
	in := map[string]any{
		"line1": "<b>1</b> Main St",
		"tags":  []any{"<i>", 3, map[string]any{"note": "a & b"}},
	}

	out := HTML.Sanitize(in).(map[string]any)

	assert.Equal(t, "&lt;b>1&lt;/b> Main St", out["line1"])
	tags := out["tags"].([]any)
	assert.Equal(t, "&lt;i>", tags[0])
	assert.Equal(t, 3, tags[1])
	assert.Equal(t, "a & b", tags[2].(map[string]any)["note"])
}

func TestHTMLIsIdempotent(t *testing.T) {
	once := HTML.Sanitize("<b>Tom & Jerry</b>")
	twice := HTML.Sanitize(once)

	assert.Equal(t, "&lt;b>Tom & Jerry&lt;/b>", once)
	assert.Equal(t, once, twice)
}
