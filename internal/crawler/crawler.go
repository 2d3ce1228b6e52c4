// Package crawler drives the plugin crawl: for every candidate plugin id it
// fetches compatibility metadata, picks the newest installable version per
// IDE, resolves a content address for it and merges the result into the
// database.
package crawler

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nix-community/jetbrains-plugins-generator/internal/config"
	"github.com/nix-community/jetbrains-plugins-generator/internal/ide"
	"github.com/nix-community/jetbrains-plugins-generator/internal/marketplace"
	"github.com/nix-community/jetbrains-plugins-generator/internal/plugindb"
	"github.com/nix-community/jetbrains-plugins-generator/internal/prefetch"
)

type Crawler struct {
	log         *logrus.Logger
	cfg         *config.Config
	marketplace *marketplace.Client
	prefetcher  prefetch.Prefetcher
	db          *plugindb.Database
	// notFound records (plugin, version) keys whose download probe 404ed, so
	// a known-missing artifact is probed at most once per run.
	notFound *cache.Cache
}

func New(log *logrus.Logger, cfg *config.Config, mp *marketplace.Client, prefetcher prefetch.Prefetcher, db *plugindb.Database) *Crawler {
	return &Crawler{
		log:         log,
		cfg:         cfg,
		marketplace: mp,
		prefetcher:  prefetcher,
		db:          db,
		notFound:    cache.New(cache.NoExpiration, 0),
	}
}

// Run processes every plugin id under the configured concurrency cap. A
// plugin whose task keeps failing after all retries fails the run: the
// remaining tasks are cancelled and nothing should be persisted.
func (c *Crawler) Run(ctx context.Context, ides []ide.IDE, pluginIDs []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.CrawlConcurrency)
	for _, pluginID := range pluginIDs {
		pluginID := pluginID
		g.Go(func() error {
			return c.runSupervised(ctx, pluginID, ides)
		})
	}
	return g.Wait()
}

// runSupervised wraps one plugin task in a per-attempt timeout and an
// exponential backoff retry policy. Timeouts and upstream failures are
// treated alike: retried until the attempt budget is exhausted.
func (c *Crawler) runSupervised(ctx context.Context, pluginID string, ides []ide.IDE) error {
	policy := backoff.WithContext(
		backoff.WithMaxRetries(newExponentialBackOff(c.cfg.CrawlRetryDelay), c.cfg.CrawlMaxRetries),
		ctx,
	)
	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.CrawlTaskTimeout)
		defer cancel()
		return c.processPlugin(attemptCtx, pluginID, ides)
	}
	notify := func(err error, _ time.Duration) {
		c.log.Warnf("failed plugin processing %s: %v. Might retry.", pluginID, err)
	}
	return backoff.RetryNotify(attempt, policy, notify)
}

func newExponentialBackOff(baseDelay time.Duration) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = baseDelay
	// The retry count is the only budget; individual attempts can be long.
	bo.MaxElapsedTime = 0
	return bo
}

func (c *Crawler) processPlugin(ctx context.Context, pluginID string, ides []ide.IDE) error {
	c.log.Debugf("Processing %s...", pluginID)

	detailsID, ok := config.PluginDetailsID(pluginID)
	if !ok {
		c.log.Warnf("%s: plugin is marked as broken (%s), skipping...", pluginID, config.BrokenPluginReason(pluginID))
		return nil
	}

	releases, err := c.marketplace.Details(ctx, detailsID)
	if err != nil {
		return err
	}
	if releases == nil {
		c.log.Warnf("%s: No plugin details available. Skipping!", pluginID)
		return nil
	}

	for _, id := range ides {
		release := marketplace.CompatibleRelease(id.BuildNumber, releases)
		if release == nil {
			c.log.Debugf("%s: IDE %s not supported.", pluginID, id)
			continue
		}
		entry, ok, err := c.resolveEntry(ctx, pluginID, release.Version)
		if err != nil {
			return err
		}
		if ok {
			c.db.Insert(id.Identity, pluginID, release.Version, entry)
		}
	}
	return nil
}
