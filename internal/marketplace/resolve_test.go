package marketplace

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompatibleReleaseFirstAdmissibleWins(t *testing.T) {
	releases := []Release{
		{Version: "2.0", SinceBuild: "250.0"},
		{Version: "1.0", SinceBuild: "200.0", UntilBuild: "250.*"},
	}
	// Both admissible orders exist: build 251.100 only matches "2.0", but a
	// lower build admits both - the first one listed must win.
	got := CompatibleRelease("251.100", releases)
	require.NotNil(t, got)
	require.Equal(t, "2.0", got.Version)

	got = CompatibleRelease("250.5", releases)
	require.NotNil(t, got)
	require.Equal(t, "2.0", got.Version)

	// Reversing the list changes the result: the scan is order-dependent.
	reversed := []Release{releases[1], releases[0]}
	got = CompatibleRelease("250.5", reversed)
	require.NotNil(t, got)
	require.Equal(t, "1.0", got.Version)
}

func TestCompatibleReleaseNoMatch(t *testing.T) {
	releases := []Release{
		{Version: "1.0", SinceBuild: "200.0", UntilBuild: "230.*"},
	}
	require.Nil(t, CompatibleRelease("251.100", releases))
	require.Nil(t, CompatibleRelease("100.1", releases))
	require.Nil(t, CompatibleRelease("251.100", nil))
}

func TestCompatibleReleaseWildcardBounds(t *testing.T) {
	since := []Release{{Version: "1.0", SinceBuild: "231.*"}}
	require.NotNil(t, CompatibleRelease("231.0", since))
	require.NotNil(t, CompatibleRelease("231.5000", since))
	require.Nil(t, CompatibleRelease("230.9999", since))

	until := []Release{{Version: "1.0", UntilBuild: "231.*"}}
	require.NotNil(t, CompatibleRelease("231.99999999", until))
	require.NotNil(t, CompatibleRelease("231.12345", until))
	require.Nil(t, CompatibleRelease("232.0", until))
}

func TestCompatibleReleaseInclusiveBounds(t *testing.T) {
	releases := []Release{{Version: "1.0", SinceBuild: "231.100", UntilBuild: "233.200"}}
	require.NotNil(t, CompatibleRelease("231.100", releases))
	require.NotNil(t, CompatibleRelease("233.200", releases))
	require.Nil(t, CompatibleRelease("231.99", releases))
	require.Nil(t, CompatibleRelease("233.201", releases))
}

func TestCompatibleReleaseUnboundedSides(t *testing.T) {
	releases := []Release{{Version: "1.0"}}
	require.NotNil(t, CompatibleRelease("1.0", releases))
	require.NotNil(t, CompatibleRelease("99999.0", releases))
}
