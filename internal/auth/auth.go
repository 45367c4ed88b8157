package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/blake2b"
)

var (
	// ErrMissingKey is returned when a request carries no access key.
	ErrMissingKey = errors.New("missing access key")
	// ErrInvalidKey is returned when a key does not match the configured hash.
	ErrInvalidKey = errors.New("invalid access key")
)

// HashKey returns the hex BLAKE2b-256 digest of an access key. Keys come from
// apikey.Generate and carry enough entropy that a fast digest is sufficient.
func HashKey(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// CheckKey compares a plaintext key against a hex digest in constant time.
func CheckKey(key, hash string) error {
	want := strings.ToLower(strings.TrimSpace(hash))
	if subtle.ConstantTimeCompare([]byte(HashKey(key)), []byte(want)) != 1 {
		return ErrInvalidKey
	}
	return nil
}

// KeyFromRequest extracts the access key from "Authorization: Bearer <key>"
// or, failing that, the api_key query parameter.
func KeyFromRequest(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok && strings.TrimSpace(token) != "" {
			return strings.TrimSpace(token), nil
		}
	}
	if key := r.URL.Query().Get("api_key"); key != "" {
		return key, nil
	}
	return "", ErrMissingKey
}

// Verify checks the request's key against hash.
func Verify(r *http.Request, hash string) error {
	key, err := KeyFromRequest(r)
	if err != nil {
		return err
	}
	return CheckKey(key, hash)
}
