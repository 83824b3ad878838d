package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		path     string
		segments []string
		expected string
	}{
		{
			name:     "path only",
			base:     "https://cipapi.example.org",
			path:     "api/2/interpretation-request",
			expected: "https://cipapi.example.org/api/2/interpretation-request",
		},
		{
			name:     "with segments",
			base:     "https://cipapi.example.org/",
			path:     "api/2/interpretation-request",
			segments: []string{"29", "2"},
			expected: "https://cipapi.example.org/api/2/interpretation-request/29/2",
		},
		{
			name:     "sub resource",
			base:     "https://cipapi.example.org",
			path:     "api/2/interpretation-request",
			segments: []string{"dispatch", "29", "2"},
			expected: "https://cipapi.example.org/api/2/interpretation-request/dispatch/29/2",
		},
		{
			name:     "segment is escaped",
			base:     "https://cipapi.example.org",
			path:     "api/2/participants",
			segments: []string{"p 1", "consent"},
			expected: "https://cipapi.example.org/api/2/participants/p%201/consent",
		},
		{
			name:     "absolute path replaces base path",
			base:     "https://cipapi.example.org/legacy/",
			path:     "/api/2/referral",
			expected: "https://cipapi.example.org/api/2/referral",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildURL(tt.base, tt.path, tt.segments...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestBuildURL_InvalidBase(t *testing.T) {
	_, err := BuildURL("://bad", "api/2")
	assert.Error(t, err)
}
