package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/Skidy89/simple-language-loader/internal/cache"
	"github.com/Skidy89/simple-language-loader/internal/config"
	"github.com/Skidy89/simple-language-loader/internal/coverage"
	"github.com/Skidy89/simple-language-loader/internal/export"
	"github.com/Skidy89/simple-language-loader/internal/graph"
	"github.com/Skidy89/simple-language-loader/internal/loader"
	"github.com/Skidy89/simple-language-loader/internal/server"
	"github.com/Skidy89/simple-language-loader/internal/store"
	"github.com/Skidy89/simple-language-loader/internal/textutil"
	"github.com/Skidy89/simple-language-loader/internal/typegen"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd(config.Load()).Execute(); err != nil {
		os.Exit(1)
	}
}

// options holds the global flags shared by every subcommand.
type options struct {
	cfg      *config.Config
	ext      string
	workers  int
	logLevel string
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	opts := &options{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:          "langpack",
		Short:        "Load, check and publish .lang localization files",
		Long:         "Aggregates a directory of .lang files into one table, generates TypeScript declarations for it and publishes it to PostgreSQL, Neo4j or HTTP.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(strings.ToLower(opts.logLevel))
			if err != nil {
				return fmt.Errorf("parse log level: %w", err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.ext, "ext", cfg.LangExt, "Lang file extension")
	rootCmd.PersistentFlags().IntVar(&opts.workers, "workers", cfg.WorkerCount, "Number of files parsed concurrently")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn or error")

	rootCmd.AddCommand(loadCmd(opts))
	rootCmd.AddCommand(getCmd())
	rootCmd.AddCommand(typesCmd(opts))
	rootCmd.AddCommand(checkCmd(opts))
	rootCmd.AddCommand(publishCmd(opts))
	rootCmd.AddCommand(graphCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))

	return rootCmd
}

func (o *options) loader() *loader.Loader {
	return loader.New(o.ext, o.workers)
}

// dirArg returns the directory argument, falling back to LANGPACK_DIR.
func (o *options) dirArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return o.cfg.LangDir
}

func loadCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [directory]",
		Short: "Aggregate every lang file of a directory and print the decoded table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			fromDB, _ := cmd.Flags().GetBool("from-db")
			ctx, cancel := setupContext()
			defer cancel()

			if fromDB {
				table, err := fetchPublished(ctx, opts.cfg.DatabaseURL)
				if err != nil {
					return err
				}
				return export.Encode(cmd.OutOrStdout(), format, table.Decoded())
			}

			table, report, err := opts.loader().LoadWithReport(ctx, opts.dirArg(args))
			if err != nil {
				return fmt.Errorf("load lang files: %w", err)
			}
			logReport(report)
			return export.Encode(cmd.OutOrStdout(), format, table.Decoded())
		},
	}
	cmd.Flags().String("format", export.FormatJSON, "Output format: json or yaml")
	cmd.Flags().Bool("from-db", false, "Read the last published table from PostgreSQL instead of disk")
	return cmd
}

func getCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <file>",
		Short: "Parse a single lang file and print its decoded values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			raw, err := loader.LoadFile(args[0])
			if err != nil {
				return fmt.Errorf("load lang file: %w", err)
			}
			return export.Encode(cmd.OutOrStdout(), format, export.Resource(raw))
		},
	}
	cmd.Flags().String("format", export.FormatJSON, "Output format: json or yaml")
	return cmd
}

func typesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types [directory] <output>",
		Short: "Write TypeScript declarations describing the lang keys",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			placeholders, _ := cmd.Flags().GetBool("placeholders")
			dir, output := opts.cfg.LangDir, args[0]
			if len(args) == 2 {
				dir, output = args[0], args[1]
			}

			ctx, cancel := setupContext()
			defer cancel()

			table, err := opts.loader().Load(ctx, dir)
			if err != nil {
				return fmt.Errorf("load lang files: %w", err)
			}
			if err := typegen.WriteFile(output, table, typegen.Options{Placeholders: placeholders}); err != nil {
				return err
			}

			schema, _ := typegen.Schema(table)
			log.Info().
				Str("output", output).
				Str("schema", schema).
				Int("resources", len(table)).
				Msg("Type definitions written")
			return nil
		},
	}
	cmd.Flags().Bool("placeholders", opts.cfg.Placeholders, "Type values containing {name} placeholders as functions")
	return cmd
}

func checkCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [directory]",
		Short: "Compare every resource against a base resource",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, _ := cmd.Flags().GetString("base")
			strict, _ := cmd.Flags().GetBool("strict")

			ctx, cancel := setupContext()
			defer cancel()

			table, err := opts.loader().Load(ctx, opts.dirArg(args))
			if err != nil {
				return fmt.Errorf("load lang files: %w", err)
			}
			report, err := coverage.Check(table, base)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, issue := range report.Issues {
				fmt.Fprintln(out, textutil.Truncate(issue.String(), 200))
			}
			fmt.Fprintf(out, "%d resources checked against %q, %d issues\n", len(table), report.Base, len(report.Issues))

			if strict && !report.OK() {
				return fmt.Errorf("coverage check found %d issues", len(report.Issues))
			}
			return nil
		},
	}
	cmd.Flags().String("base", "", "Base resource (defaults to the first resource)")
	cmd.Flags().Bool("strict", false, "Exit with an error when any issue is found")
	return cmd
}

func publishCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "publish [directory]",
		Short: "Upsert the aggregated table into PostgreSQL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			table, err := opts.loader().Load(ctx, opts.dirArg(args))
			if err != nil {
				return fmt.Errorf("load lang files: %w", err)
			}

			pool, err := store.Connect(ctx, opts.cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			entries := store.NewEntryStore(pool)
			if err := entries.EnsureSchema(ctx); err != nil {
				return err
			}
			result, err := entries.Publish(ctx, table)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d resources published, %d rows upserted, %d rows pruned\n",
				result.Resources, result.Upserted, result.Pruned)
			return nil
		},
	}
}

func graphCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [directory]",
		Short: "Sync resources and keys into Neo4j and list missing keys",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usage, _ := cmd.Flags().GetBool("usage")

			ctx, cancel := setupContext()
			defer cancel()

			table, err := opts.loader().Load(ctx, opts.dirArg(args))
			if err != nil {
				return fmt.Errorf("load lang files: %w", err)
			}

			driver, err := graph.Connect(ctx, opts.cfg.Neo4jURI, opts.cfg.Neo4jUser, opts.cfg.Neo4jPassword)
			if err != nil {
				return err
			}
			defer driver.Close(ctx)

			builder := graph.NewGraphBuilder(driver)
			if err := builder.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("ensure graph schema: %w", err)
			}
			if err := builder.Sync(ctx, table); err != nil {
				return err
			}

			querier := graph.NewGraphQuerier(driver)
			out := cmd.OutOrStdout()

			missing, err := querier.MissingKeys(ctx)
			if err != nil {
				return err
			}
			for _, id := range sortedKeys(missing) {
				fmt.Fprintf(out, "%s: missing %s\n", id, strings.Join(missing[id], ", "))
			}

			if usage {
				counts, err := querier.KeyUsage(ctx)
				if err != nil {
					return err
				}
				for _, key := range sortedKeys(counts) {
					fmt.Fprintf(out, "%s\t%d\n", key, counts[key])
				}
			}
			return nil
		},
	}
	cmd.Flags().Bool("usage", false, "Also print how many resources define each key")
	return cmd
}

func serveCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [directory]",
		Short: "Serve the aggregated table over HTTP from a resident cache",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			dir := opts.dirArg(args)

			ctx, cancel := setupContext()
			defer cancel()

			resident := cache.New(opts.loader())
			// Fail fast on a bad directory instead of on the first request.
			if _, err := resident.LoadOrBuild(ctx, dir); err != nil {
				return err
			}
			return server.New(dir, resident).ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().String("addr", opts.cfg.ListenAddr, "Listen address")
	return cmd
}

func fetchPublished(ctx context.Context, databaseURL string) (loader.Table, error) {
	pool, err := store.Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return store.NewEntryStore(pool).Fetch(ctx)
}

func logReport(report loader.Report) {
	for _, id := range report.Unterminated {
		log.Warn().Str("resource", id).Msg("Value left open at end of file")
	}
	log.Info().
		Int("files", report.Files).
		Int("resources", report.Resources).
		Int("skipped_files", len(report.SkippedFiles)).
		Int("skipped_lines", report.SkippedLines).
		Msg("Lang files loaded")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
