package normalize

import "strings"

// firstOpening returns the index of the earliest '{' or '[' in s, or -1.
func firstOpening(s string) int {
	return strings.IndexAny(s, "{[")
}

// BalancedSlice returns the first balanced {...} or [...] region of text.
//
// Only the delimiter type found first is counted: when the region starts with
// '{', brackets do not affect depth, and vice versa. A '"' toggles the
// in-string state and a backslash skips the next character, whether or not it
// is inside a string. ok is false when there is no opening delimiter or the
// region never closes.
func BalancedSlice(text string) (slice string, ok bool) {
	start := firstOpening(text)
	if start < 0 {
		return "", false
	}

	open := text[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}

	depth := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if escape {
			escape = false
			continue
		}
		if ch == '\\' {
			escape = true
			continue
		}
		if ch == '"' {
			inString = !inString
		}
		if inString {
			continue
		}
		switch ch {
		case open:
			depth++
		case closing:
			depth--
		}
		if depth == 0 {
			return text[start : i+1], true
		}
	}
	return "", false
}
