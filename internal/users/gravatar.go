package users

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL derives a default avatar URL from an email address.
// The hash input is the trimmed, lowercased address, as gravatar requires.
func GravatarURL(email string, size int) string {
	if size <= 0 {
		size = 200
	}
	normalized := strings.ToLower(strings.TrimSpace(email))
	sum := md5.Sum([]byte(normalized))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=%d&d=identicon&r=pg", sum, size)
}
