// Package intent detects visual-generation intent in user input.
//
// The detector is a deliberately simple substring heuristic, not
// tokenization or NLP: it reproduces the exact behavior users already rely
// on, including the transliterated Hindi/Urdu keywords. A false positive or
// negative is accepted as best effort and never corrected retroactively.
package intent

import "strings"

// Visual-noun keywords, including transliterated equivalents.
var imageKeywords = []string{
	"image", "picture", "photo", "drawing", "art",
	"tasveer", "tasvir", "photo banao", "tasveer banao", "draw",
}

// Action-verb keywords, including transliterated equivalents.
var actionKeywords = []string{
	"create", "generate", "make", "draw", "banao", "show",
}

// minLength is the exclusive lower bound on trimmed input length; anything
// at or below it never signals image intent regardless of keywords.
const minLength = 3

// IsImageRequest reports whether the input asks for image synthesis.
// It is true iff the lower-cased input contains at least one visual-noun
// keyword AND at least one action-verb keyword, and the trimmed input is
// longer than three characters.
//
// The result can override a declared non-creative mode toward the image
// strategy; it never disables the creative mode's image strategy.
func IsImageRequest(input string) bool {
	if len(strings.TrimSpace(input)) <= minLength {
		return false
	}
	lower := strings.ToLower(input)
	return containsAny(lower, imageKeywords) && containsAny(lower, actionKeywords)
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
