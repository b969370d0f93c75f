// Package ident generates the public identifiers assigned to posts.
//
// An identifier is the current Unix timestamp in seconds followed by three
// cryptographically random bytes in hex. The timestamp alone is not unique
// under concurrent calls; the random suffix is what makes collisions
// practically impossible. The result matches [A-Za-z0-9]+ so it can be
// embedded directly in a ?start= deep-link parameter.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// randomSuffixLen is the number of random bytes appended to the timestamp.
const randomSuffixLen = 3

// New creates a new post identifier.
func New() string {
	b := make([]byte, randomSuffixLen)
	if _, err := rand.Read(b); err != nil {
		log.Fatal().Err(err).Msg("Failed to read random bytes for post ID")
	}
	return strconv.FormatInt(time.Now().Unix(), 10) + hex.EncodeToString(b)
}
