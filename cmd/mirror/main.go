package main

import (
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"slow_travel/internal/adapters/observability"
	sheetsad "slow_travel/internal/adapters/sheets"
	"slow_travel/internal/app"
	"slow_travel/internal/domain"
	"slow_travel/internal/shared"
	mysqlrepo "slow_travel/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()
	log.Logger = observability.NewLogger(cfg.AppEnv)
	cfg.LogWarnings()

	rootCmd := &cobra.Command{
		Use:   "mirror",
		Short: "Copy spreadsheet tabs into MySQL",
	}
	rootCmd.AddCommand(syncCmd(cfg), tabsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func syncCmd(cfg shared.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync [tab...]",
		Short: "Mirror the content tabs (or only the ones named)",
		RunE: func(cmd *cobra.Command, args []string) error {
			workers, _ := cmd.Flags().GetInt("workers")
			dsn, _ := cmd.Flags().GetString("dsn")
			strict, _ := cmd.Flags().GetBool("strict")

			tabs := domain.ContentTabs
			if len(args) > 0 {
				tabs = args
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := sql.Open("mysql", dsn)
			if err != nil {
				return fmt.Errorf("open mysql: %w", err)
			}
			defer db.Close()
			if err := db.PingContext(ctx); err != nil {
				return fmt.Errorf("ping mysql: %w", err)
			}
			repo := mysqlrepo.New(db)
			if err := repo.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure schema: %w", err)
			}

			log.Info().
				Int("workers", workers).
				Int("tabs", len(tabs)).
				Msg("mirror starting")

			src := sheetsad.New(cfg.SheetID, cfg.ServiceAccount, cfg.SheetsRPS)
			results, err := app.NewMirrorService(src, repo).MirrorAll(ctx, tabs, workers)
			if err != nil {
				return err
			}
			return report(cmd, results, strict)
		},
	}
	cmd.Flags().Int("workers", cfg.MirrorWorkers, "tabs copied concurrently")
	cmd.Flags().String("dsn", cfg.MySQLDSN, "MySQL DSN")
	cmd.Flags().Bool("strict", false, "exit non-zero when any tab fails or its header drifted")
	return cmd
}

func tabsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List the tabs sync copies by default with their expected columns",
		Run: func(cmd *cobra.Command, args []string) {
			for _, t := range domain.ContentTabs {
				cmd.Printf("%-20s %s\n", t, strings.Join(domain.Schema[t], ", "))
			}
		},
	}
}

// report prints one line per tab. With strict, failed or drifted tabs fail the run.
func report(cmd *cobra.Command, results []app.MirrorResult, strict bool) error {
	failed, drifted := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			cmd.Printf("%-20s FAILED  %v\n", r.Tab, r.Err)
			continue
		}
		if len(r.Missing) > 0 {
			drifted++
			cmd.Printf("%-20s %6d rows  missing columns: %s\n", r.Tab, r.Rows, strings.Join(r.Missing, ", "))
			continue
		}
		cmd.Printf("%-20s %6d rows\n", r.Tab, r.Rows)
	}
	log.Info().Int("tabs", len(results)).Int("failed", failed).Int("drifted", drifted).Msg("mirror completed")
	if strict && failed+drifted > 0 {
		return fmt.Errorf("%d of %d tabs failed, %d drifted", failed, len(results), drifted)
	}
	return nil
}
