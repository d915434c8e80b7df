package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"venue-rank-go/config"
	"venue-rank-go/internal/app"
	"venue-rank-go/internal/cache"
	"venue-rank-go/internal/format"
	"venue-rank-go/internal/logging"
	"venue-rank-go/internal/model"
	"venue-rank-go/internal/service"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "venuerank",
		Short: "Resolve publication venues to journal impact metrics",
		Long: `venuerank maps noisy venue names from citation searches onto a
reference journal catalog and reports each journal's impact metric and
quality band. Unmatched venues fall back to OpenAlex, a language model
estimate, and a live web search, in the configured order.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "YAML or TOML config file")
	rootCmd.PersistentFlags().String("catalog", "", "catalog source (CSV path, postgres:// URL or sqlite:path)")
	rootCmd.PersistentFlags().StringSlice("strategies", nil, "strategies to try, in order")
	rootCmd.PersistentFlags().Int("threshold", -1, "local match acceptance threshold (0-100)")

	rootCmd.AddCommand(resolveCmd())
	rootCmd.AddCommand(batchCmd())
	rootCmd.AddCommand(catalogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 读取配置并按命令行参数覆盖，然后构建解析组件
func setup(cmd *cobra.Command) (*app.App, *config.Config, func(), error) {
	godotenv.Load()

	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.Catalog.Source = v
	}
	if v, _ := cmd.Flags().GetStringSlice("strategies"); len(v) > 0 {
		cfg.Resolver.Strategies = v
	}
	if v, _ := cmd.Flags().GetInt("threshold"); v >= 0 {
		cfg.Resolver.Threshold = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	logger := logging.New(cfg.Log, os.Stderr)
	a, err := app.New(cmd.Context(), cfg, logger.Logger)
	if err != nil {
		logger.Close()
		return nil, nil, nil, err
	}
	cleanup := func() {
		a.Close()
		logger.Close()
	}
	return a, cfg, cleanup, nil
}

func resolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve VENUE...",
		Short: "Resolve one or more venue names",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			a, cfg, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ttl, _ := cfg.CacheTTL()
			store := cache.NewSession(ttl)
			results := make([]model.Result, 0, len(args))
			for _, v := range args {
				if ctx.Err() != nil {
					break
				}
				results = append(results, a.Coordinator.Resolve(ctx, store, v))
			}

			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			rows := make([]map[string]string, len(results))
			for i, r := range results {
				rows[i] = format.Row(r)
			}
			return printTable(cmd.OutOrStdout(), format.ResultColumns, rows)
		},
	}
	cmd.Flags().Bool("json", false, "print full results as JSON (includes per-strategy attempts)")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Resolve the venues of a list of citation records",
		Long: `Resolve the venue of each citation record, one at a time, pacing
records that needed a network lookup. Records come from a CSV file
(Title, Authors, Year, Journal/Venue, Citations, URL) or a saved
Google Scholar results page.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			recordsPath, _ := cmd.Flags().GetString("records")
			htmlPath, _ := cmd.Flags().GetString("scholar-html")
			limit, _ := cmd.Flags().GetInt("limit")
			out, _ := cmd.Flags().GetString("out")

			if (recordsPath == "") == (htmlPath == "") {
				return fmt.Errorf("exactly one of --records or --scholar-html is required")
			}

			var records []model.Record
			var err error
			if recordsPath != "" {
				records, err = service.LoadRecordsCSV(recordsPath)
			} else {
				records, err = service.LoadScholarHTML(htmlPath)
			}
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("no records found")
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(ctx)

			a, _, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			report, runErr := a.Search.Run(ctx, records, limit, &consoleProgress{w: cmd.ErrOrStderr()})

			if out != "" {
				if err := writeRows(out, report.Rows); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d rows to %s\n", len(report.Rows), out)
			} else if err := format.WriteCSV(cmd.OutOrStdout(), format.Columns, report.Rows); err != nil {
				return err
			}
			return runErr
		},
	}
	cmd.Flags().String("records", "", "CSV file of citation records")
	cmd.Flags().String("scholar-html", "", "saved Google Scholar results page")
	cmd.Flags().IntP("limit", "n", service.DefaultLimit, fmt.Sprintf("number of records to process (%d-%d)", service.MinLimit, service.MaxLimit))
	cmd.Flags().StringP("out", "o", "", "write rows to this CSV file instead of stdout")
	return cmd
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the journal catalog",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Load the catalog and print load statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Flags().Set("strategies", "LocalCatalog")
			a, cfg, cleanup, err := setup(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			rep := a.Catalog.Report()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "source\t%s\n", cfg.Catalog.Source)
			fmt.Fprintf(w, "rows\t%d\n", rep.Rows)
			fmt.Fprintf(w, "entries\t%d\n", rep.Kept)
			fmt.Fprintf(w, "dropped\t%d\n", rep.Dropped)
			fmt.Fprintf(w, "duplicates\t%d\n", rep.Duplicates)
			fmt.Fprintf(w, "below floor\t%d\n", rep.BelowFloor)
			return w.Flush()
		},
	})
	return cmd
}

// consoleProgress 把批处理进度打到 stderr
type consoleProgress struct {
	w     io.Writer
	total int
}

func (c *consoleProgress) Start(runID string, total int) error {
	c.total = total
	_, err := fmt.Fprintf(c.w, "run %s: %d records\n", runID, total)
	return err
}

func (c *consoleProgress) SetAction(progress int, action string) error {
	_, err := fmt.Fprintf(c.w, "[%3d%%] %s\n", progress, action)
	return err
}

func (c *consoleProgress) SendRow(done int, row map[string]string) error {
	_, err := fmt.Fprintf(c.w, "       %d/%d %s -> %s (%s, %s)\n",
		done, c.total, row[format.ColVenue], row[format.ColMetric], row[format.ColQuality], row[format.ColSource])
	return err
}

func writeRows(path string, rows []map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := format.WriteCSV(f, format.Columns, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printTable(w io.Writer, columns []string, rows []map[string]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = row[c]
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}
