package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	testCases := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "punctuation stripped",
			title:    "Hello, World!",
			expected: "hello-world",
		},
		{
			name:     "already a slug",
			title:    "hello-world",
			expected: "hello-world",
		},
		{
			name:     "whitespace runs collapse",
			title:    "Go   Concurrency \t Patterns",
			expected: "go-concurrency-patterns",
		},
		{
			name:     "hyphen runs collapse",
			title:    "state -- of -- the -- art",
			expected: "state-of-the-art",
		},
		{
			name:     "digits survive",
			title:    "Top 10 Posts of 2024",
			expected: "top-10-posts-of-2024",
		},
		{
			name:     "padding trimmed",
			title:    "  Padded Title  ",
			expected: "padded-title",
		},
		{
			name:     "nothing usable",
			title:    "???!!!",
			expected: "",
		},
		{
			name:     "empty title",
			title:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Slugify(tc.title))
		})
	}
}
