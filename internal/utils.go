package internal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
)

var ErrNotFound = errors.New("not found")

func RandomHex(n int) string {
	if n <= 0 {
		n = 16
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
