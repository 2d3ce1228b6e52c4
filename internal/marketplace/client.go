// Package marketplace talks to the JetBrains plugin marketplace: the plugin
// id indices, the per-plugin compatibility metadata, and the download
// existence probe.
package marketplace

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
)

// ErrNotFound reports that the download endpoint has no artifact for the
// probed (plugin, version) pair.
var ErrNotFound = errors.New("plugin artifact not found")

// Release is one published plugin release together with its IDE build
// compatibility bounds. Empty bounds are unbounded; bounds may carry a
// wildcard suffix like "231.*".
type Release struct {
	Version    string
	SinceBuild string
	UntilBuild string
}

type pluginRepository struct {
	Categories []struct {
		Plugins []struct {
			Version     string `xml:"version"`
			IdeaVersion struct {
				SinceBuild string `xml:"since-build,attr"`
				UntilBuild string `xml:"until-build,attr"`
			} `xml:"idea-version"`
		} `xml:"idea-plugin"`
	} `xml:"category"`
}

type Client struct {
	log     *logrus.Logger
	client  *retryablehttp.Client
	baseURL string
}

func NewClient(log *logrus.Logger, client *retryablehttp.Client, baseURL string) *Client {
	return &Client{
		log:     log,
		client:  client,
		baseURL: baseURL,
	}
}

// Index fetches a flat JSON list of plugin ids.
func (c *Client) Index(ctx context.Context, indexURL string) ([]string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, indexURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch plugin index: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("plugin index returned unexpected status: %d", resp.StatusCode)
	}
	var ids []string
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, fmt.Errorf("failed to parse plugin index: %w", err)
	}
	return ids, nil
}

// Details fetches the release list for one plugin, in the marketplace's own
// "most preferred first" order. A nil slice with a nil error means the
// endpoint has no compatibility data for this plugin.
func (c *Client) Details(ctx context.Context, pluginID string) ([]Release, error) {
	detailsURL := fmt.Sprintf("%s/plugins/list?pluginId=%s", c.baseURL, url.QueryEscape(pluginID))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, detailsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: failed details request: %w", pluginID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: failed details request: %d", pluginID, resp.StatusCode)
	}

	var repo pluginRepository
	if err := xml.NewDecoder(resp.Body).Decode(&repo); err != nil {
		return nil, fmt.Errorf("%s: failed to parse details response: %w", pluginID, err)
	}

	var releases []Release
	for _, category := range repo.Categories {
		for _, p := range category.Plugins {
			releases = append(releases, Release{
				Version:    p.Version,
				SinceBuild: p.IdeaVersion.SinceBuild,
				UntilBuild: p.IdeaVersion.UntilBuild,
			})
		}
	}
	return releases, nil
}

// ProbeDownload issues a HEAD request against the download endpoint and
// returns the final URL after redirects. It returns ErrNotFound on 404; any
// other non-success status is an error.
func (c *Client) ProbeDownload(ctx context.Context, pluginID, version string) (*url.URL, error) {
	probeURL := fmt.Sprintf("%s/plugin/download?pluginId=%s&version=%s",
		c.baseURL, url.QueryEscape(pluginID), url.QueryEscape(version))
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, probeURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s@%s: failed download HEAD request: %w", pluginID, version, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s@%s: failed download HEAD request: %d", pluginID, version, resp.StatusCode)
	}
	return resp.Request.URL, nil
}
