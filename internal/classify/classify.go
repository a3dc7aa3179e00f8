// Package classify decides what kind of content a clipboard payload is.
//
// Classification is a pure function over the raw text: content containing
// a URL-shaped substring anywhere (even surrounded by prose) is treated
// as a URL, everything else as plain text. Image kind is assigned by the
// monitor, never by classification.
package classify

import "regexp"

// Kind is the content kind of a clipboard entry.
type Kind string

const (
	KindText  Kind = "text"
	KindURL   Kind = "url"
	KindImage Kind = "image"
)

// urlPattern matches http/https URLs as substrings: scheme, a dotted
// authority, and an optional path/query tail. It searches inside the text
// rather than anchoring, so URLs pasted with surrounding prose still match.
var urlPattern = regexp.MustCompile(`https?://[-\w.]+\.[a-zA-Z]{2,}[-/?#\[\]@!$&'()*+,;=.\w%~:]*`)

// Classify returns the content kind of text and, for URLs, the first
// URL-shaped substring found. The second return value is empty for
// plain text; absence of a URL is not an error.
func Classify(text string) (Kind, string) {
	if m := urlPattern.FindString(text); m != "" {
		return KindURL, m
	}
	return KindText, ""
}

// ExtractURL returns the first URL found in text, or "" if none.
func ExtractURL(text string) string {
	return urlPattern.FindString(text)
}
