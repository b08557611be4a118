package aicrypto

import "crypto/rand"

// RandomBytes returns n cryptographically random bytes. Every nonce, salt,
// and session identifier in this module flows through this one function so
// there is exactly one place to audit for randomness quality.
func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
