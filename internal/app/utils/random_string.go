// Package utils содержит вспомогательные функции,
// в том числе для генерации случайных кодов.
package utils

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const charset = "abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// StringWithCharset возвращает строку длины length,
// символы берутся из charset через crypto/rand.
func StringWithCharset(length int, charset string) (string, error) {
	if length <= 0 || charset == "" {
		return "", errors.New("length and charset must be non-empty")
	}

	limit := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}
	return string(b), nil
}

// RandomString возвращает случайный код длины length из [A-Za-z0-9].
func RandomString(length int) (string, error) {
	return StringWithCharset(length, charset)
}
