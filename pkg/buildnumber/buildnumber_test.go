package buildnumber

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	testCases := []struct {
		a, b     string
		expected int
	}{
		{"231.100", "231.100", 0},
		{"231.100", "231.99", 1},
		{"231.9", "231.10", -1},
		{"230.9999", "231.0", -1},
		{"232.0", "231.99999999", 1},
		{"231", "231.0", 0},
		{"231.0.1", "231", 1},
		{"2024.3", "2024.10", -1},
		{"AI-243.1", "AI-243.1", 0},
		{"AI-242.1", "AI-243.1", -1},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.expected, Compare(tc.a, tc.b), "Compare(%q, %q)", tc.a, tc.b)
		require.Equal(t, -tc.expected, Compare(tc.b, tc.a), "Compare(%q, %q)", tc.b, tc.a)
	}
}

func TestCompareMultiDigitSegmentsAreNotLexicographic(t *testing.T) {
	// "231.10" < "231.9" lexicographically, which is exactly the ordering bug
	// a naive string sort would introduce.
	require.Equal(t, 1, Compare("231.10", "231.9"))
	require.Equal(t, 1, Compare("251.23774.435", "251.9999.1"))
}
