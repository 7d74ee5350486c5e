// Command lectionary prints the 1928 Prayer Book calendar and daily-office
// lectionary from the command line.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/daily-office/internal/config"
	"github.com/zapponejosh/daily-office/internal/database"
	"github.com/zapponejosh/daily-office/internal/logger"
	"github.com/zapponejosh/daily-office/internal/reftables"
)

const (
	Version = "0.1.0"
	appName = "lectionary"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// state is shared by every subcommand once the persistent flags are parsed.
type state struct {
	source   string
	dataDir  string
	dbPath   string
	timezone string
	format   string
	links    bool
	logLevel string

	log    *slog.Logger
	cfg    *config.Config
	tables *reftables.Tables
}

func rootCmd() *cobra.Command {
	st := &state{}

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "1928 Book of Common Prayer calendar and lectionary",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return st.init(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&st.source, "source", config.SourceEmbedded, "Reference tables: embedded, dir, sqlite")
	flags.StringVar(&st.dataDir, "data-dir", "./data/reference", "Directory of JSON tables for --source=dir")
	flags.StringVar(&st.dbPath, "db", "./data/daily-office.db", "SQLite database for --source=sqlite")
	flags.StringVar(&st.timezone, "tz", "America/New_York", "Time zone that defines today")
	flags.StringVarP(&st.format, "format", "f", "json", "Output format: json, yaml")
	flags.BoolVar(&st.links, "links", false, "Keep markdown links in titles")
	flags.StringVar(&st.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		datesCmd(st),
		dayCmd(st),
		calendarCmd(st),
		yearCmd(st),
		coverageCmd(st),
		icsCmd(st),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func (st *state) init(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	st.log = logger.New(os.Stderr, st.logLevel, "text")

	switch st.format {
	case "json", "yaml":
	default:
		return fmt.Errorf("--format must be json or yaml, got %q", st.format)
	}

	cfg := &config.Config{
		ReferenceSource: st.source,
		DataDir:         st.dataDir,
		DatabasePath:    st.dbPath,
	}
	if err := cfg.UseTimezone(st.timezone); err != nil {
		return fmt.Errorf("--tz: %w", err)
	}
	st.cfg = cfg

	tables, db, err := database.LoadReference(ctx, cfg, st.log)
	if err != nil {
		return err
	}
	if db != nil {
		db.Close()
	}
	st.tables = tables
	return nil
}
