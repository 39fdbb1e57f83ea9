package main

import (
	"bytes"
	"context"
	"os"
	"os/signal"

	"github.com/PuerkitoBio/goquery"
	"github.com/miyuchina/catalog/catalog"
	"github.com/miyuchina/catalog/config"
	"github.com/miyuchina/catalog/fetch"
	"github.com/miyuchina/catalog/logger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var output *string

func init() {
	output = rootCmd.Flags().StringP("output", "o", "", "Terms file to write (default $CATALOG_TERMS_FILE).")
}

var rootCmd = &cobra.Command{
	Use:   "terms",
	Short: "Writes the terms offered by the catalog search form to the terms file.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger.New(cfg.LogLevel, cfg.LogPretty)
		if *output != "" {
			cfg.TermsFile = *output
		}

		client := fetch.NewClient(fetch.Options{
			UserAgent:  cfg.UserAgent,
			Timeout:    cfg.RequestTimeout,
			RetryCount: cfg.RetryCount,
		})
		page, err := client.Fetch(cmd.Context(), cfg.SearchURL)
		if err != nil {
			return err
		}
		document, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
		if err != nil {
			return err
		}

		options, err := catalog.ParseTermOptions(document)
		if err != nil {
			return err
		}

		file := &config.TermsFile{}
		for _, option := range options {
			file.Terms = append(file.Terms, config.TermEntry{ID: option.ID, Name: option.Name})
		}
		if err := config.WriteTerms(cfg.TermsFile, file); err != nil {
			return err
		}

		log.Info().Int("terms", len(file.Terms)).Str("file", cfg.TermsFile).Msg("Wrote terms")
		return nil
	},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SilenceUsage = true
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("Unable to determine terms")
		stop()
		os.Exit(1)
	}
}
