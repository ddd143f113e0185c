package helpers

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// GravatarURL derives an avatar URL deterministically from an email
// address. Size 200, rating pg, robohash fallback: the parameters the
// directory has always used.
func GravatarURL(email string) string {
	h := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(h[:]) + "?s=200&r=pg&d=robohash"
}
