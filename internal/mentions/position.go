// internal/mentions/position.go
package mentions

import (
	"github.com/BrandSignal-AI/brandsignal-workflows/internal/models"
)

// CommonCapitalizedWords is the stoplist used by the position heuristic:
// capitalized English words that usually open a sentence or act as generic
// modifiers rather than naming a product or brand. Membership is a pinned
// contract — position labels at the margin depend on it, so tune it only
// together with the tests that pin it.
var CommonCapitalizedWords = map[string]bool{
	"The": true, "This": true, "That": true, "These": true, "Those": true,
	"There": true, "Here": true,
	"When": true, "Where": true, "What": true, "Which": true, "Who": true,
	"How": true, "Why": true,
	"For": true, "And": true, "But": true, "Not": true, "You": true,
	"Your": true, "Our": true, "Its": true,
	"They": true, "Their": true, "Some": true, "Many": true, "Most": true,
	"All": true, "Any": true,
	"One": true, "Two": true, "Three": true, "Each": true, "Every": true,
	"Both": true, "Few": true,
	"Several": true, "Other": true, "Another": true, "Such": true,
	"Like": true, "Also": true,
	"Well": true, "Just": true, "Even": true, "Still": true,
	"Already": true, "However": true,
	"Although": true, "While": true, "Since": true, "Because": true,
	"After": true, "Before": true,
	"Over": true, "About": true, "Into": true, "With": true, "From": true,
	"Have": true, "Has": true,
	"Had": true, "Are": true, "Were": true, "Was": true, "Been": true,
	"Being": true, "Does": true,
	"Did": true, "Will": true, "Would": true, "Could": true, "Should": true,
	"May": true, "Might": true,
	"Can": true, "Shall": true, "Must": true, "Need": true, "Let": true,
	"Yes": true, "First": true,
	"Second": true, "Third": true, "Now": true, "Then": true, "Next": true,
	"Last": true, "New": true,
	"Old": true, "Good": true, "Best": true, "Great": true, "High": true,
	"Low": true, "Long": true,
	"Short": true, "Big": true, "Small": true, "Large": true, "Little": true,
	"Much": true, "More": true,
}

// Position labels where the first whole-word occurrence of any name falls
// within text.
//
// When nothing that looks like a prior product or brand name precedes the
// mention, the mention is the first notable name in the response and the
// label is "first". Otherwise the offset is bucketed by quartile of the
// total text length: Q1 is "early", Q2-Q3 "middle", Q4 "late".
func Position(text string, names []string) models.MentionPosition {
	idx, ok := FirstOccurrence(names, text)
	if !ok {
		return models.PositionNotMentioned
	}

	if !HasPriorProperNoun(text[:idx]) {
		return models.PositionFirst
	}

	quartile := float64(len(text)) / 4
	offset := float64(idx)
	switch {
	case offset < quartile:
		return models.PositionEarly
	case offset < quartile*3:
		return models.PositionMiddle
	default:
		return models.PositionLate
	}
}

// HasPriorProperNoun reports whether s contains a capitalized word of three
// or more letters that plausibly names a brand or product. A candidate must
// directly follow whitespace, and a candidate whose whitespace run hangs off
// sentence-final punctuation (".", "!", "?", newline) with no other entry
// point is sentence-initial filler, not a name. Stoplist words never count.
func HasPriorProperNoun(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 'A' || s[i] > 'Z' {
			continue
		}
		if i == 0 || !isASCIISpace(s[i-1]) {
			continue
		}

		j := i + 1
		for j < len(s) && isASCIILetter(s[j]) {
			j++
		}
		if j-i < 3 {
			continue
		}

		if !followsOpenBoundary(s, i) {
			continue
		}

		if !CommonCapitalizedWords[s[i:j]] {
			return true
		}
	}
	return false
}

// followsOpenBoundary checks the whitespace run ending at i-1: the word at i
// counts only if the run can be entered at some point not directly preceded
// by sentence-final punctuation.
func followsOpenBoundary(s string, i int) bool {
	runStart := i - 1
	for runStart > 0 && isASCIISpace(s[runStart-1]) {
		runStart--
	}
	for p := runStart; p < i; p++ {
		if p == 0 || !isSentenceEnd(s[p-1]) {
			return true
		}
	}
	return false
}

func isASCIISpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSentenceEnd(c byte) bool {
	switch c {
	case '.', '!', '?', '\n':
		return true
	}
	return false
}
