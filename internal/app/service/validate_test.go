package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAlias(t *testing.T) {
	valid := []string{"mysite", "My-Site_2", "a", "-", "_", "ABCxyz0123456789"}
	for _, alias := range valid {
		assert.NoError(t, ValidateAlias(alias), alias)
	}

	invalid := []string{"", " ", "my site", "my.site", "a/b", "ünï", "a?b", "x#", "name%20"}
	for _, alias := range invalid {
		assert.ErrorIs(t, ValidateAlias(alias), ErrInvalidAlias, alias)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "https", url: "https://example.com", wantErr: false},
		{name: "http with path", url: "http://example.com/a/b?c=d", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "relative", url: "/just/a/path", wantErr: true},
		{name: "mailto", url: "mailto:someone@example.com", wantErr: true},
		{name: "no host", url: "https://", wantErr: true},
		{name: "too long", url: "https://example.com/" + strings.Repeat("a", MaxURLLength), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidURL)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "https://example.com", SanitizeInput("  https://example.com\t\n"))
	assert.Equal(t, "https://example.com", SanitizeInput("https://exa\x00mple.com"))
	assert.Equal(t, "", SanitizeInput("\r\n"))
}
