package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nix-community/jetbrains-plugins-generator/internal/config"
	"github.com/nix-community/jetbrains-plugins-generator/internal/crawler"
	"github.com/nix-community/jetbrains-plugins-generator/internal/ide"
	"github.com/nix-community/jetbrains-plugins-generator/internal/marketplace"
	"github.com/nix-community/jetbrains-plugins-generator/internal/plugindb"
	"github.com/nix-community/jetbrains-plugins-generator/internal/prefetch"
)

var version = "dev"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	var outputPath string
	cmd := &cobra.Command{
		Use:     "plugin-db-generator",
		Short:   "Generate the JetBrains plugin compatibility database",
		Version: version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	cmd.PersistentFlags().StringVarP(&outputPath, "output-path", "o", "", "output directory of the plugin database")
	_ = cmd.MarkPersistentFlagRequired("output-path")

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Fetch IDE releases and plugin metadata and update the database",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runGenerate(cmd.Context(), log, outputPath); err != nil {
				log.Errorf("ERROR: %v", err)
				os.Exit(1)
			}
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "cleanup",
		Short: "Remove database entries no longer referenced by any IDE",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if err := runCleanup(log, outputPath); err != nil {
				log.Errorf("ERROR: %v", err)
				os.Exit(1)
			}
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runGenerate(ctx context.Context, log *logrus.Logger, outputPath string) error {
	log.Infof("starting plugin-db-generator (version=%s)", version)
	cfg, err := config.NewConfigFromEnv()
	if err != nil {
		return err
	}
	client := cfg.CreateHTTPClient()
	mp := marketplace.NewClient(log, client, cfg.MarketplaceURL)
	collector := ide.NewCollector(log, client, cfg.UpdatesURL, cfg.AndroidStudioURL)

	var ides []ide.IDE
	pluginIDs := make([][]string, len(cfg.PluginIndexURLs))
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ides, err = collector.Collect(gctx)
		return err
	})
	for i, indexURL := range cfg.PluginIndexURLs {
		i, indexURL := i, indexURL
		g.Go(func() error {
			var err error
			pluginIDs[i], err = mp.Index(gctx, indexURL)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	var allPlugins []string
	for _, ids := range pluginIDs {
		allPlugins = append(allPlugins, ids...)
	}
	log.Infof("Indexing %d IDE versions and %d plugins.", len(ides), len(allPlugins))

	log.Info("Loading old database.")
	db, err := plugindb.Load(outputPath)
	if err != nil {
		return err
	}

	log.Info("Beginning plugin download...")
	prefetcher := prefetch.NewTool(log, cfg.PrefetchToolPath, cfg.StoreToolPath)
	c := crawler.New(log, cfg, mp, prefetcher, db)
	if err := c.Run(ctx, ides, allPlugins); err != nil {
		return err
	}

	log.Infof("Saving DB with %d entries for %d IDEs...", db.EntryCount(), db.IDECount())
	return db.Save(log, outputPath)
}

func runCleanup(log *logrus.Logger, outputPath string) error {
	log.Infof("starting plugin-db-generator cleanup (version=%s)", version)
	db, err := plugindb.LoadFull(log, outputPath)
	if err != nil {
		return err
	}
	removed := db.GarbageCollect()
	log.Infof("Removed %d unreferenced entries, %d remain.", removed, db.EntryCount())
	return db.Save(log, outputPath)
}
