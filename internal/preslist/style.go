package preslist

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var unbrace = strings.NewReplacer("{", "", "}", "")

// SentenceCase lower-cases s except for its first letter. Brace-protected
// spans ("{DNA}") and all-caps words of two or more letters keep their case.
// The protection braces are dropped from the result.
func SentenceCase(s string) string {
	lower := cases.Lower(language.English)
	upper := cases.Upper(language.English)

	var b strings.Builder
	b.Grow(len(s))
	first := true
	depth := 0
	words := splitKeep(s)
	for _, w := range words {
		switch {
		case depth > 0 || strings.HasPrefix(w, "{"):
			depth += strings.Count(w, "{") - strings.Count(w, "}")
			b.WriteString(unbrace.Replace(w))
			first = first && !hasLetter(w)
		case isAcronym(w):
			b.WriteString(w)
			first = false
		case first && hasLetter(w):
			i := strings.IndexFunc(w, unicode.IsLetter)
			r, size := utf8.DecodeRuneInString(w[i:])
			b.WriteString(w[:i])
			b.WriteString(upper.String(string(r)))
			b.WriteString(lower.String(w[i+size:]))
			first = false
		default:
			b.WriteString(lower.String(w))
		}
	}
	return b.String()
}

// splitKeep splits s into words and the whitespace between them, keeping both.
func splitKeep(s string) []string {
	var out []string
	start := 0
	inSpace := false
	for i, r := range s {
		sp := unicode.IsSpace(r)
		if i > 0 && sp != inSpace {
			out = append(out, s[start:i])
			start = i
		}
		inSpace = sp
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}

func isAcronym(w string) bool {
	letters := 0
	for _, r := range w {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 2
}

func hasLetter(w string) bool {
	return strings.IndexFunc(w, unicode.IsLetter) >= 0
}
