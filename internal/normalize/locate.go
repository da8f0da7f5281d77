package normalize

import (
	"bytes"
	"encoding/json"

	"github.com/tidwall/gjson"
)

// A locator returns the generated text at one place in an upstream response.
type locator func(doc gjson.Result) (string, bool)

// textLocators are tried in order; the first present, non-null value wins.
var textLocators = []locator{
	at("candidates.0.content.parts.0.text"),
	at("candidates.0.content.text"),
	at("candidates.0.text"),
	at("text"),
	at("rawText"),
}

func at(path string) locator {
	return func(doc gjson.Result) (string, bool) {
		r := doc.Get(path)
		if !r.Exists() || r.Type == gjson.Null {
			return "", false
		}
		if r.Type == gjson.String {
			return r.Str, true
		}
		return r.Raw, true
	}
}

// LocateText finds the generated text inside an upstream response document.
// When no known field is present the whole document, compacted, is returned,
// so there is always something to hand to Normalize.
func LocateText(doc []byte) string {
	parsed := gjson.ParseBytes(doc)
	if parsed.IsObject() {
		for _, loc := range textLocators {
			if text, ok := loc(parsed); ok {
				return text
			}
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, doc); err != nil {
		return string(doc)
	}
	return buf.String()
}
