package ide

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

type androidStudioReleases struct {
	Content struct {
		Items []androidStudioItem `json:"item"`
	} `json:"content"`
}

type androidStudioItem struct {
	Version       string `json:"version"`
	Build         string `json:"build"`
	PlatformBuild string `json:"platformBuild"`
	Channel       string `json:"channel"`
}

func (c *Collector) collectAndroidStudio(ctx context.Context) ([]IDE, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.androidStudioURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Android Studio releases: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Android Studio releases returned unexpected status: %d", resp.StatusCode)
	}

	var releases androidStudioReleases
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to parse Android Studio releases: %w", err)
	}

	var ides []IDE
	for _, item := range releases.Content.Items {
		if !strings.HasPrefix(item.Build, "AI-") {
			return nil, fmt.Errorf("unexpected Android Studio build %q: missing AI- prefix", item.Build)
		}
		// All channels are accepted because nixpkgs packages all of them.
		if !versionAllowed(item.Version) {
			c.log.Warnf("Ignoring %s %s: too old", AndroidStudio, item.Version)
			continue
		}
		ides = append(ides, IDE{
			Identity:    Identity{Product: AndroidStudio, Version: item.Version},
			BuildNumber: item.PlatformBuild,
		})
	}
	return ides, nil
}
