// Package avatar derives gravatar image URLs from email addresses. The URL is
// a pure function of the normalized email and is computed on every read, never
// persisted.
package avatar

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

const size = 128

// URL returns the gravatar URL for the given email. The email is trimmed and
// lowercased first so the same account always maps to the same image.
func URL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://gravatar.com/avatar/%s?s=%d", hex.EncodeToString(sum[:]), size)
}
