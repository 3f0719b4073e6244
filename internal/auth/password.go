package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword produces a salted bcrypt digest. The salt is regenerated on
// every call, so repeated hashes of the same input differ.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// VerifyPassword reports whether the password matches the stored digest.
// Malformed digests verify as false, never panic.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
