package utils

import (
	"github.com/rotisserie/eris"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor. Tests lower it.
var PasswordCost = 12

// HashPassword returns the bcrypt hash stored in users.password.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", eris.Wrap(err, "failed to hash password")
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored hash. A malformed
// hash never matches.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
