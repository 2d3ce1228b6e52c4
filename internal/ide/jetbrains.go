package ide

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// releaseChannelSuffix identifies the stable release channel in the updates
// feed; EAP and beta channels are ignored.
const releaseChannelSuffix = "RELEASE-licensing-RELEASE"

type updatesDocument struct {
	Products []updatesProduct `xml:"product"`
}

type updatesProduct struct {
	Codes    []string         `xml:"code"`
	Channels []updatesChannel `xml:"channel"`
}

type updatesChannel struct {
	ID     string         `xml:"id,attr"`
	Builds []updatesBuild `xml:"build"`
}

type updatesBuild struct {
	Number     string `xml:"number,attr"`
	FullNumber string `xml:"fullNumber,attr"`
	Version    string `xml:"version,attr"`
}

func (c *Collector) collectJetBrains(ctx context.Context) ([]IDE, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.updatesURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updates feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("updates feed returned unexpected status: %d", resp.StatusCode)
	}

	var doc updatesDocument
	if err := xml.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse updates feed: %w", err)
	}

	seen := make(map[Product]bool)
	var ides []IDE
	for _, product := range doc.Products {
		for _, code := range product.Codes {
			p, ok := ProductByCode(code)
			if !ok || seen[p] {
				continue
			}
			seen[p] = true
			for _, channel := range product.Channels {
				if !strings.HasSuffix(channel.ID, releaseChannelSuffix) {
					continue
				}
				for _, build := range channel.Builds {
					if !versionAllowed(build.Version) {
						c.log.Warnf("Ignoring %s %s: too old", p, build.Version)
						continue
					}
					buildNumber := build.FullNumber
					if buildNumber == "" {
						buildNumber = build.Number
					}
					ides = append(ides, IDE{
						Identity:    Identity{Product: p, Version: build.Version},
						BuildNumber: buildNumber,
					})
				}
			}
		}
	}
	return ides, nil
}
