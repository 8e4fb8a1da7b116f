// internal/mentions/matcher.go
package mentions

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mentioned reports whether any of names occurs in text as a whole word,
// case-insensitively. A name never matches inside a larger token, so
// "Notion" does not match "notional" and "AI" does not match "email".
// Punctuation-adjacent occurrences ("Notion.", "(Notion)", "Notion's")
// do match. An empty name set is never mentioned.
func Mentioned(names []string, text string) bool {
	_, ok := FirstOccurrence(names, text)
	return ok
}

// FirstOccurrence returns the byte offset of the earliest whole-word,
// case-insensitive occurrence of any name in text. The offset always
// indexes text itself, so callers may slice with it. The second return
// value is false when no name occurs.
func FirstOccurrence(names []string, text string) (int, bool) {
	earliest := -1

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		idx := wholeWordIndex(text, name)
		if idx >= 0 && (earliest == -1 || idx < earliest) {
			earliest = idx
		}
	}

	if earliest == -1 {
		return 0, false
	}
	return earliest, true
}

// wholeWordIndex finds the first case-insensitive occurrence of name in
// text that is not embedded inside a larger word. The scan folds rune by
// rune in place rather than lowering text up front: ToLower can change a
// rune's encoded length, which would leave offsets pointing into the
// wrong string.
func wholeWordIndex(text, name string) int {
	for idx := 0; idx < len(text); {
		end, ok := foldPrefixLen(text[idx:], name)
		if ok && boundaryBefore(text, idx) && boundaryAfter(text, idx+end) {
			return idx
		}

		_, size := utf8.DecodeRuneInString(text[idx:])
		idx += size
	}
	return -1
}

// foldPrefixLen reports whether name matches a prefix of s ignoring case
// and, if so, how many bytes of s the match covers.
func foldPrefixLen(s, name string) (int, bool) {
	n := 0
	for _, nameRune := range name {
		r, size := utf8.DecodeRuneInString(s[n:])
		if size == 0 {
			return 0, false
		}
		if unicode.ToLower(r) != unicode.ToLower(nameRune) {
			return 0, false
		}
		n += size
	}
	return n, true
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:idx])
	return !isWordRune(r)
}

func boundaryAfter(text string, end int) bool {
	if end >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[end:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
