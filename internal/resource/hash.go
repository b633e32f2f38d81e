package resource

import "golang.org/x/crypto/bcrypt"

// BcryptHasher implements Hasher with bcrypt at the default cost, matching
// the credential hashing used at login.
type BcryptHasher struct{}

// Hash produces a one-way hash of plaintext.
func (BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
