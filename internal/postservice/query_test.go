package postservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterCondition(t *testing.T) {
	testCases := []struct {
		name         string
		filter       Filter
		expectedCond string
		expectedArgs []any
	}{
		{
			name:         "empty filter matches everything",
			filter:       Filter{},
			expectedCond: "TRUE",
			expectedArgs: nil,
		},
		{
			name:         "plain search",
			filter:       Filter{Search: "cat"},
			expectedCond: `(p.title ILIKE $1 ESCAPE '\' OR p.content ILIKE $1 ESCAPE '\')`,
			expectedArgs: []any{"%cat%"},
		},
		{
			name:         "percent is literal",
			filter:       Filter{Search: "100%"},
			expectedCond: `(p.title ILIKE $1 ESCAPE '\' OR p.content ILIKE $1 ESCAPE '\')`,
			expectedArgs: []any{`%100\%%`},
		},
		{
			name:         "underscore is literal",
			filter:       Filter{Search: "snake_case"},
			expectedCond: `(p.title ILIKE $1 ESCAPE '\' OR p.content ILIKE $1 ESCAPE '\')`,
			expectedArgs: []any{`%snake\_case%`},
		},
		{
			name:         "backslash is literal",
			filter:       Filter{Search: `C:\temp`},
			expectedCond: `(p.title ILIKE $1 ESCAPE '\' OR p.content ILIKE $1 ESCAPE '\')`,
			expectedArgs: []any{`%C:\\temp%`},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cond, args := tc.filter.condition(1)
			assert.Equal(t, tc.expectedCond, cond)
			assert.Equal(t, tc.expectedArgs, args)
		})
	}
}

func TestFilterConditionPlaceholderPosition(t *testing.T) {
	cond, args := Filter{Search: "go"}.condition(3)
	assert.Equal(t, `(p.title ILIKE $3 ESCAPE '\' OR p.content ILIKE $3 ESCAPE '\')`, cond)
	assert.Len(t, args, 1)
}
