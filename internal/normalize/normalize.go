// Package normalize turns free-form model output into a JSON value.
//
// Normalize tries, in order: a direct parse of the fence-stripped text, a
// parse of the first balanced {...} or [...] region, and a parse of the text
// after line breaks and trailing commas are cleaned up. The first strategy
// that yields valid JSON wins. When all of them fail the returned Outcome
// still carries every intermediate string so callers can report it.
package normalize

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/thinkscotty/postcraft/internal/models"
)

type Strategy string

const (
	StrategyDirect    Strategy = "direct"
	StrategyBalanced  Strategy = "balanced"
	StrategySanitized Strategy = "sanitized"
)

var (
	fencePattern         = regexp.MustCompile("```(?:json|yaml|txt)?")
	lineBreakPattern     = regexp.MustCompile(`\r\n|\n`)
	trailingCommaPattern = regexp.MustCompile(`,(\s*[}\]])`)
)

// Outcome is the result of normalizing one response.
type Outcome struct {
	OK       bool
	Strategy Strategy
	// Value is the parsed JSON, compacted. Empty unless OK.
	Value json.RawMessage

	// Raw is the input after fence stripping.
	Raw string
	// Sliced is the balanced region, nil if none was found.
	Sliced *string
	// Sanitized is only set when the sanitize strategy ran.
	Sanitized string
}

// Normalize applies the extraction strategies to text. It never fails; check
// Outcome.OK.
func Normalize(text string) Outcome {
	raw := StripFences(text)
	out := Outcome{Raw: raw}

	if v, ok := parse(raw); ok {
		return out.succeed(StrategyDirect, v)
	}

	if slice, found := BalancedSlice(raw); found {
		out.Sliced = &slice
		if v, ok := parse(slice); ok {
			return out.succeed(StrategyBalanced, v)
		}
	}

	out.Sanitized = Sanitize(raw)
	if v, ok := parse(out.Sanitized); ok {
		return out.succeed(StrategySanitized, v)
	}
	return out
}

// NormalizeDocument locates the generated text in an upstream response
// document and normalizes it.
func NormalizeDocument(doc []byte) Outcome {
	return Normalize(LocateText(doc))
}

// StripFences removes Markdown code fences (with an optional json, yaml or
// txt tag) anywhere in s and trims the result.
func StripFences(s string) string {
	return strings.TrimSpace(fencePattern.ReplaceAllString(s, ""))
}

// Sanitize collapses line breaks to spaces, drops commas directly before a
// closing brace or bracket, and discards anything before the first opening
// brace or bracket.
func Sanitize(s string) string {
	s = lineBreakPattern.ReplaceAllString(s, " ")
	s = trailingCommaPattern.ReplaceAllString(s, "$1")
	s = strings.TrimSpace(s)
	if i := firstOpening(s); i > 0 {
		s = s[i:]
	}
	return s
}

func (o Outcome) succeed(s Strategy, v json.RawMessage) Outcome {
	o.OK = true
	o.Strategy = s
	o.Value = v
	return o
}

func parse(s string) (json.RawMessage, bool) {
	b := []byte(s)
	if !json.Valid(b) {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

var errNotObject = errors.New("normalized value is not a JSON object")

// Package reads the well-known fields out of a successful outcome. Missing
// fields are left empty; values are not checked for count or content.
func (o Outcome) Package() (models.GeneratedPackage, error) {
	var pkg models.GeneratedPackage
	v := gjson.ParseBytes(o.Value)
	if !o.OK || !v.IsObject() {
		return pkg, errNotObject
	}

	pkg.MainPost = v.Get("main_post").String()
	pkg.ImagePrompt = v.Get("imagePrompt").String()
	for _, s := range v.Get("variants").Array() {
		pkg.Variants = append(pkg.Variants, s.String())
	}
	for _, s := range v.Get("hashtags").Array() {
		pkg.Hashtags = append(pkg.Hashtags, s.String())
	}
	return pkg, nil
}
