package match

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// minTokenLength is the shortest name token, in runes, that counts toward a match.
const minTokenLength = 3

var diacritics = strings.NewReplacer(
	"ä", "a", "ö", "o", "ü", "u",
	"á", "a", "à", "a", "â", "a",
	"é", "e", "è", "e",
	"ñ", "n", "ï", "i", "ç", "c",
	"ß", "ss",
)

// Asciify maps the fixed set of diacritics to their base Latin letters.
// Other characters are left untouched.
func Asciify(s string) string {
	return diacritics.Replace(s)
}

// fold casefolds s. A Caser is stateful, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// Tokens returns the sorted word tokens of name used for matching.
func Tokens(name string) []string {
	words := strings.FieldsFunc(Asciify(fold(name)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := words[:0]
	for _, w := range words {
		if utf8.RuneCountInString(w) >= minTokenLength {
			tokens = append(tokens, w)
		}
	}
	sort.Strings(tokens)
	return tokens
}

// AuthorNamesMatch counts the tokens of a that also occur in b.
// Repeated tokens in a count once per occurrence.
func AuthorNamesMatch(a, b string) int {
	other := make(map[string]struct{})
	for _, t := range Tokens(b) {
		other[t] = struct{}{}
	}
	n := 0
	for _, t := range Tokens(a) {
		if _, ok := other[t]; ok {
			n++
		}
	}
	return n
}

// Simplify returns the form of name used in graph searches: marks stripped,
// punctuation other than hyphens and apostrophes replaced by spaces.
func Simplify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, name)
	if err != nil {
		stripped = name
	}
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '\'' {
			return r
		}
		return ' '
	}, stripped)
	return strings.Join(strings.Fields(cleaned), " ")
}
