package clean

import (
	"regexp"
	"strings"
)

var (
	htmlTagRE  = regexp.MustCompile(`<[^>]+>`)
	urlRE      = regexp.MustCompile(`https?://\S+`)
	emailRE    = regexp.MustCompile(`\S+@\S+`)
	charsetRE  = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?'"-]`)
	ellipsisRE = regexp.MustCompile(`\.\.\.+`)
	bangRE     = regexp.MustCompile(`!!+`)
	questionRE = regexp.MustCompile(`\?\?+`)
)

// NormalizeText rewrites raw review text into its clean form: HTML tags,
// URLs and e-mail addresses removed, whitespace runs collapsed, characters
// outside letters/digits/basic punctuation dropped, and runs of repeated
// punctuation collapsed. The result is a fixpoint: normalizing it again
// returns it unchanged.
func NormalizeText(text string) string {
	text = htmlTagRE.ReplaceAllString(text, "")
	text = urlRE.ReplaceAllString(text, "")
	text = emailRE.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	text = charsetRE.ReplaceAllString(text, "")
	text = ellipsisRE.ReplaceAllString(text, ".")
	text = bangRE.ReplaceAllString(text, "!")
	text = questionRE.ReplaceAllString(text, "?")
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}

// Fingerprint derives the near-duplicate key of a review: its first n
// characters, lowercased, with all whitespace removed. Reviews sharing a
// fingerprint are treated as duplicates even if their endings differ;
// that imprecision is accepted.
func Fingerprint(text string, n int) string {
	runes := []rune(text)
	if len(runes) > n {
		runes = runes[:n]
	}
	return strings.Join(strings.Fields(strings.ToLower(string(runes))), "")
}
