package marketplace

import (
	"strings"

	"github.com/nix-community/jetbrains-plugins-generator/pkg/buildnumber"
)

// Wildcard bounds expand to the lowest respectively highest value for the
// wildcarded position, so "231.*" admits everything from "231.0" up to
// "231.99999999" inclusive.
const (
	wildcardLow  = ".0"
	wildcardHigh = ".99999999"
)

// CompatibleRelease returns the first release whose [since, until] bounds
// admit the given IDE build number, or nil if none does. The releases are
// scanned in the order given and never re-sorted: the marketplace response
// order is the only ordering known to put preferred releases first, and
// sorting version strings lexicographically misorders multi-digit segments.
func CompatibleRelease(ideBuildNumber string, releases []Release) *Release {
	for i := range releases {
		release := &releases[i]
		if release.SinceBuild != "" {
			since := strings.ReplaceAll(release.SinceBuild, ".*", wildcardLow)
			if buildnumber.Compare(ideBuildNumber, since) < 0 {
				continue
			}
		}
		if release.UntilBuild != "" {
			until := strings.ReplaceAll(release.UntilBuild, ".*", wildcardHigh)
			if buildnumber.Compare(ideBuildNumber, until) > 0 {
				continue
			}
		}
		return release
	}
	return nil
}
