package mindmeld

import "strings"

// variantSuffixes stands in for stemming: plural, tense and adverb endings
// plus a few doubled-consonant forms.
var variantSuffixes = []string{"s", "es", "ed", "ing", "ly", "ate", "ion", "r", "red", "ring", "led"}

// IsSameWord reports whether a and b are the same word for game purposes:
// equal after lower-casing, or one is the other plus a known suffix.
func IsSameWord(a, b string) bool {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	for _, suffix := range variantSuffixes {
		if a == b+suffix || b == a+suffix {
			return true
		}
	}
	return false
}

// FirstVariant returns the first word in used that IsSameWord matches.
func FirstVariant(word string, used []string) (string, bool) {
	for _, u := range used {
		if u == "" {
			continue
		}
		if IsSameWord(word, u) {
			return u, true
		}
	}
	return "", false
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.TrimSpace(w))
}
