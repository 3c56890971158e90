package utils

import "golang.org/x/crypto/bcrypt"

// DefaultPasswordCost is the bcrypt cost used by the hash-password command.
const DefaultPasswordCost = 12

// HashPassword returns a bcrypt hash of plain.  Costs outside bcrypt's
// accepted range fall back to DefaultPasswordCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultPasswordCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares the configured admin hash with a login attempt.
// A malformed hash never matches.
func VerifyPassword(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
