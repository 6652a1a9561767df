package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "example.com"},
		{"  Example.COM  ", "example.com"},
		{"https://example.com", "example.com"},
		{"http://www.example.com/page?q=1", "example.com"},
		{"example.com:8080", "example.com"},
		{"www.example.com/", "example.com"},
		{"t.me/joinchat", "t.me"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeDomain(tt.in), tt.in)
	}
}
