package auth

import "golang.org/x/crypto/bcrypt"

// HashSecret digests a visitor-chosen post secret with the configured cost.
// Only the digest is ever persisted.
func HashSecret(secret string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifySecret checks a plaintext secret against its stored digest. The
// bcrypt comparison is constant-time.
func VerifySecret(digest, secret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
