package crawler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/nix-community/jetbrains-plugins-generator/internal/marketplace"
	"github.com/nix-community/jetbrains-plugins-generator/internal/plugindb"
	"github.com/nix-community/jetbrains-plugins-generator/internal/prefetch"
)

// resolveEntry returns the content address for one (plugin, version) pair.
// It consults the live database first (entries loaded from a prior run or
// merged earlier in this one), then the negative cache, and only then probes
// the download endpoint and hashes the artifact. A 404 probe is recorded and
// yields (zero, false, nil), not an error.
func (c *Crawler) resolveEntry(ctx context.Context, pluginID, version string) (plugindb.Entry, bool, error) {
	key := plugindb.NewKey(pluginID, version)
	if entry, ok := c.db.Lookup(key); ok {
		return entry, true, nil
	}
	if _, ok := c.notFound.Get(string(key)); ok {
		return plugindb.Entry{}, false, nil
	}

	c.log.Infof("%s@%s: Plugin not yet cached, downloading for hash...", pluginID, version)

	downloadURL, err := c.marketplace.ProbeDownload(ctx, pluginID, version)
	if errors.Is(err, marketplace.ErrNotFound) {
		c.log.Warnf("%s@%s: not available: skipping", pluginID, version)
		c.notFound.Set(string(key), struct{}{}, cache.NoExpiration)
		return plugindb.Entry{}, false, nil
	}
	if err != nil {
		return plugindb.Entry{}, false, err
	}

	// Query parameters do not change the served file, they only carry
	// analytics tokens. Strip them to keep the database stable.
	downloadURL.RawQuery = ""
	entry, err := c.hashArtifact(ctx, pluginID, version, downloadURL.String())
	if err != nil {
		return plugindb.Entry{}, false, err
	}
	return entry, true, nil
}

func (c *Crawler) hashArtifact(ctx context.Context, pluginID, version, url string) (plugindb.Entry, error) {
	path, ok := strings.CutPrefix(url, c.cfg.DownloadURLPrefix)
	if !ok {
		return plugindb.Entry{}, fmt.Errorf("download URL does not start with the expected prefix: %s", url)
	}

	// Plain .jar plugins are installed as a single file; everything else is
	// a ZIP that the IDE unpacks, so it is hashed unpacked.
	isJar := strings.HasSuffix(url, ".jar")
	nix32, err := c.prefetcher.Hash(ctx, prefetchName(pluginID, version), url, !isJar, isJar)
	if err != nil {
		return plugindb.Entry{}, err
	}
	hash, err := prefetch.EncodeHash(nix32)
	if err != nil {
		return plugindb.Entry{}, err
	}
	return plugindb.Entry{Path: path, Hash: hash}, nil
}

// prefetchName derives the store name passed to the prefetch tool. Nix store
// names only allow a restricted character set.
func prefetchName(pluginID, version string) string {
	name := pluginID + "-" + version + "-source"
	return strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, name)
}
