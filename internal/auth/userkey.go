// Package auth provides account registration, password verification and JWT
// session tokens for the sync server, plus the email-derived key that
// partitions each user's document store.
package auth

import "strings"

// EmailKey derives the storage partition key from an email address:
// lowercased, keeping only letters, digits, '@', '+' and '-'; every other
// character becomes an underscore. The key is stable for a given email, so
// a user's data always lands under the same partition, and the whitelist
// guarantees the key is a safe path and file name segment no matter what
// the email's local part contains.
func EmailKey(email string) string {
	lower := strings.ToLower(strings.TrimSpace(email))
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '@', r == '+', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
