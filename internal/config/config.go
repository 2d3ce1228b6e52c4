package config

import (
	"fmt"
	"os/exec"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/kelseyhightower/envconfig"
)

// Config carries every tunable of the generator. All values have working
// defaults; the environment can override them for testing or mirrors.
type Config struct {
	MarketplaceURL     string        `envconfig:"MARKETPLACE_URL" default:"https://plugins.jetbrains.com"`
	DownloadURLPrefix  string        `envconfig:"DOWNLOAD_URL_PREFIX" default:"https://downloads.marketplace.jetbrains.com/"`
	PluginIndexURLs    []string      `envconfig:"PLUGIN_INDEX_URLS" default:"https://downloads.marketplace.jetbrains.com/files/pluginsXMLIds.json,https://downloads.marketplace.jetbrains.com/files/jbPluginsXMLIds.json"`
	UpdatesURL         string        `envconfig:"JETBRAINS_UPDATES_URL" default:"https://www.jetbrains.com/updates/updates.xml"`
	AndroidStudioURL   string        `envconfig:"ANDROID_STUDIO_RELEASES_URL" default:"https://jb.gg/android-studio-releases-list.json"`
	CrawlConcurrency   int           `envconfig:"CRAWL_CONCURRENCY" default:"16"`
	CrawlMaxRetries    uint64        `envconfig:"CRAWL_MAX_RETRIES" default:"3"`
	CrawlRetryDelay    time.Duration `envconfig:"CRAWL_RETRY_DELAY" default:"250ms"`
	CrawlTaskTimeout   time.Duration `envconfig:"CRAWL_TASK_TIMEOUT" default:"20m"`
	HTTPTimeout        time.Duration `envconfig:"HTTP_TIMEOUT" default:"10m"`
	PrefetchToolPath   string        `envconfig:"NIX_PREFETCH_URL_PATH"`
	StoreToolPath      string        `envconfig:"NIX_STORE_PATH"`
}

// NewConfigFromEnv builds the configuration and resolves the external nix
// tool paths once, so that everything downstream receives explicit paths
// instead of probing PATH lazily.
func NewConfigFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.resolveTools(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolveTools() error {
	var err error
	if c.PrefetchToolPath == "" {
		c.PrefetchToolPath, err = exec.LookPath("nix-prefetch-url")
		if err != nil {
			return fmt.Errorf("nix-prefetch-url not found in PATH: %w", err)
		}
	}
	if c.StoreToolPath == "" {
		c.StoreToolPath, err = exec.LookPath("nix-store")
		if err != nil {
			return fmt.Errorf("nix-store not found in PATH: %w", err)
		}
	}
	return nil
}

// CreateHTTPClient returns the shared retrying HTTP client used for all
// upstream requests.
func (c *Config) CreateHTTPClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = nil
	client.HTTPClient.Timeout = c.HTTPTimeout
	return client
}
