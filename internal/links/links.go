// Package links builds and parses the deep links issued for posts.
//
// A deep link has the form https://t.me/<bot>?start=<id> and is resolved by
// the separate public-facing bot, not by this service.
package links

import "regexp"

// idPattern extracts the post identifier from a start deep link. The
// identifier alphabet is restricted to alphanumerics; anything else ends
// the match.
var idPattern = regexp.MustCompile(`\?start=([A-Za-z0-9]+)`)

// Make returns the public deep link for a post identifier.
func Make(botUsername, id string) string {
	return "https://t.me/" + botUsername + "?start=" + id
}

// ExtractID returns the post identifier embedded in a deep link, or
// ok=false if the text contains no ?start= parameter.
func ExtractID(text string) (id string, ok bool) {
	m := idPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}
