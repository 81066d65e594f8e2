package internal

import (
	"crypto/rand"
	"math/big"
)

const (
	verifyCodeMin  = 100000
	verifyCodeSpan = 900000
)

// NewVerifyCode returns a uniformly random six-digit code in
// [100000, 999999]. The range excludes leading zeros so the code survives
// integer round trips through the mail channel payload.
func NewVerifyCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(verifyCodeSpan))
	if err != nil {
		return 0, err
	}
	return verifyCodeMin + int(n.Int64()), nil
}
