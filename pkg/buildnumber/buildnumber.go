// Package buildnumber compares JetBrains IDE build numbers. Build numbers are
// dotted sequences of mixed alphanumeric segments ("251.23774.435",
// "AI-243.22562.218") that are neither semver nor plain strings: numeric
// segments compare numerically, everything else textually.
package buildnumber

import (
	"strconv"
	"strings"
)

// Compare returns -1, 0 or 1 depending on how build number a orders relative
// to b. Missing trailing segments compare as "0", so "231" == "231.0".
func Compare(a, b string) int {
	as := strings.Split(a, ".")
	bs := strings.Split(b, ".")
	n := len(as)
	if len(bs) > n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		c := compareSegment(segment(as, i), segment(bs, i))
		if c != 0 {
			return c
		}
	}
	return 0
}

func segment(parts []string, i int) string {
	if i >= len(parts) {
		return "0"
	}
	return parts[i]
}

func compareSegment(a, b string) int {
	an, aNum := strconv.Atoi(a)
	bn, bNum := strconv.Atoi(b)
	if aNum == nil && bNum == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}
