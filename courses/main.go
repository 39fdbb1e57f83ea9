package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/signal"

	"github.com/miyuchina/catalog/catalog"
	"github.com/miyuchina/catalog/config"
	"github.com/miyuchina/catalog/fetch"
	"github.com/miyuchina/catalog/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var output *string
var workers *int
var dedup *string
var termsFile *string
var cacheDir *string

func init() {
	output = rootCmd.Flags().StringP("output", "o", "", "Checkpoint file to write (default $CATALOG_CHECKPOINT).")
	workers = rootCmd.Flags().Int("workers", -1, "Detail pages fetched at once (default $CATALOG_WORKERS).")
	dedup = rootCmd.Flags().String("dedup", "", "Duplicate policy, first or most-complete (default $CATALOG_DEDUP).")
	termsFile = rootCmd.Flags().String("terms", "", "Terms file to read (default $CATALOG_TERMS_FILE).")
	cacheDir = rootCmd.Flags().String("cache", "", "Page cache directory (default $CATALOG_CACHE_DIR).")
}

var rootCmd = &cobra.Command{
	Use:   "courses [term id...]",
	Short: "Scrapes course listings for the given terms into a checkpoint file.",
	Long:  "Scrapes course listings for the given terms into a checkpoint file. Without arguments every term in the terms file is scraped.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.New(cfg.LogLevel, cfg.LogPretty)
		applyFlags(cfg)

		policy, err := catalog.ParseDedupPolicy(cfg.Dedup)
		if err != nil {
			return err
		}

		terms, err := selectTerms(cfg, args)
		if err != nil {
			return err
		}
		if len(terms) == 0 {
			return errors.New("no terms to scrape; pass term ids or run terms first")
		}

		options := fetch.Options{
			UserAgent:         cfg.UserAgent,
			Timeout:           cfg.RequestTimeout,
			RetryCount:        cfg.RetryCount,
			RequestsPerSecond: cfg.RequestRate,
		}
		if cfg.CacheDir != "" {
			cache, err := fetch.OpenCache(cfg.CacheDir, cfg.CacheTTL)
			if err != nil {
				return err
			}
			defer cache.Close()
			options.Cache = cache
		}

		scraper := &catalog.Scraper{
			Fetcher: fetch.NewClient(options),
			Workers: cfg.Workers,
			Dedup:   policy,
		}
		results, err := scraper.ScrapeTerms(cmd.Context(), terms)
		if err != nil {
			return err
		}

		courses := catalog.AllCourses(results)
		if err := catalog.WriteCheckpoint(cfg.Checkpoint, courses); err != nil {
			return err
		}

		skipped := 0
		for _, result := range results {
			skipped += len(result.Skipped)
		}
		log.Info().
			Int("terms", len(results)).
			Int("courses", len(courses)).
			Int("skipped", skipped).
			Str("checkpoint", cfg.Checkpoint).
			Msg("Wrote checkpoint")
		return nil
	},
}

func applyFlags(cfg *config.Config) {
	if *output != "" {
		cfg.Checkpoint = *output
	}
	if *workers >= 0 {
		cfg.Workers = *workers
	}
	if *dedup != "" {
		cfg.Dedup = *dedup
	}
	if *termsFile != "" {
		cfg.TermsFile = *termsFile
	}
	if *cacheDir != "" {
		cfg.CacheDir = *cacheDir
	}
}

// selectTerms resolves scrape targets. A missing terms file is fine when term
// ids are given on the command line.
func selectTerms(cfg *config.Config, ids []string) ([]catalog.Term, error) {
	file, err := config.ReadTerms(cfg.TermsFile)
	if errors.Is(err, fs.ErrNotExist) && len(ids) > 0 {
		file = &config.TermsFile{}
	} else if err != nil {
		return nil, err
	}
	return file.Select(cfg.ListURL, ids)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SilenceUsage = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Unable to scrape courses")
		stop()
		os.Exit(1)
	}
}
