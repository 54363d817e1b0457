package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// Dashboard password bounds. bcrypt ignores everything past 72 bytes, so
// longer passwords are refused instead of silently truncated.
const (
	MinPasswordLen = 10
	MaxPasswordLen = 72
)

var ErrPasswordPolicy = errors.New("password must be 10 to 72 bytes")

// HashPassword checks the length policy and returns the bcrypt hash. Costs
// outside bcrypt's range fall back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if len(plain) < MinPasswordLen || len(plain) > MaxPasswordLen {
		return "", ErrPasswordPolicy
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
