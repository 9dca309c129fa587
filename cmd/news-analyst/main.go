// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the news-analyst CLI. The CLI
// runs the citation-grounded briefing pipeline: scout candidates, build
// evidence, draft bullets, validate citations, publish the briefing.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HeroicSpider/ai-news-analyst/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// log is the process-wide logger, configured from root flags.
var log = logrus.New()

// rootCmd is the base command for the news-analyst CLI.
var rootCmd = &cobra.Command{
	Use:   "news-analyst",
	Short: "Citation-grounded daily tech briefings",
	Long: `news-analyst assembles a daily tech briefing from live news sources.
Candidates are scored by hotness, enriched with web-search evidence, drafted
by a generative model, and gated by a deterministic citation validator: a
bullet only ships if its citation resolves to evidence the pipeline itself
retrieved.

Each stage is reachable as a subcommand: run executes the full pipeline,
scout previews ranked candidates, history queries past runs.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configureLogging(cmd)

		// .env is optional developer convenience; absence is not an error.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func configureLogging(cmd *cobra.Command) {
	if jsonLog, _ := cmd.Flags().GetBool("log-json"); jsonLog {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	levelStr, _ := cmd.Flags().GetString("log-level")
	if level, err := logrus.ParseLevel(levelStr); err == nil {
		log.SetLevel(level)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./news-analyst.yaml or ~/.config/news-analyst/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "emit logs as JSON")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("news-analyst")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "news-analyst"))
		}
	}

	viper.SetEnvPrefix("NEWS_ANALYST")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
