package service

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// MaxURLLength - максимальная длина исходного URL.
const MaxURLLength = 2048

var aliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateAlias проверяет пользовательский код.
func ValidateAlias(alias string) error {
	if !aliasPattern.MatchString(alias) {
		return ErrInvalidAlias
	}
	return nil
}

// ValidateURL принимает только абсолютные http(s) URL с хостом.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: URL cannot be empty", ErrInvalidURL)
	}
	if len(rawURL) > MaxURLLength {
		return fmt.Errorf("%w: URL is too long (max %d characters)", ErrInvalidURL, MaxURLLength)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%w: URL must start with http:// or https://", ErrInvalidURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%w: URL must contain a host", ErrInvalidURL)
	}
	return nil
}

// SanitizeInput удаляет управляющие символы и пробелы по краям.
func SanitizeInput(input string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(cleaned)
}
