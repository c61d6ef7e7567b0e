package util

import (
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // digest of a random value, not a password hash
	"encoding/hex"
	"fmt"
)

// CryptoRandomBytes generates cryptographically secure random bytes
func CryptoRandomBytes(length int64) ([]byte, error) {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	return buf, err
}

// FeedKeyToken generates a new feed key token: a 40-character lowercase hex
// digest of a high-entropy random value mixed with the site id and user
// login. Unpredictable without store access and effectively unique across
// the installation.
func FeedKeyToken(siteID int64, login string) (string, error) {
	entropy, err := CryptoRandomBytes(32)
	if err != nil {
		return "", err
	}
	h := sha1.New() //nolint:gosec
	h.Write(entropy)
	fmt.Fprintf(h, "%d:%s", siteID, login)
	return hex.EncodeToString(h.Sum(nil)), nil
}
