// Package cli wires the collector into a cobra command tree: refresh,
// list, export and cache management. It is the consumer side of the
// producer/consumer split; the query engine runs here, never on the fetch
// goroutine.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"wpevents/internal/cache"
	"wpevents/internal/config"
	"wpevents/internal/event"
	"wpevents/internal/filter"
)

var (
	flagConfig   string
	flagCacheDir string
	flagVerbose  bool
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wpevents",
		Short: "Collect and query event listings from a WordPress site",
		Long: `wpevents walks the posts and categories collections of a WordPress
REST API, keeps a local snapshot, and filters or exports the normalized
events.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to yaml config file")
	cmd.PersistentFlags().StringVar(&flagCacheDir, "cache-dir", "", "Override the snapshot directory")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	cmd.AddCommand(newRefreshCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newCacheCmd())

	return cmd
}

// setup loads configuration and builds the logger shared by the
// subcommands.
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}
	if flagCacheDir != "" {
		cfg.Cache.Dir = flagCacheDir
	}

	level := parseLevel(cfg.LogLevel)
	if flagVerbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})

	return cfg, slog.New(handler), nil
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadEvents reads the snapshot and normalizes it, dropping records
// without a start date. Returns the events and the snapshot timestamp.
func loadEvents(cfg *config.Config) ([]event.Event, string, error) {
	store := cache.New(cfg.Cache.Dir)
	categories, posts, fetchedAt := store.Load()
	if categories == nil || posts == nil {
		return nil, "", fmt.Errorf("no snapshot in %s; run `wpevents refresh` first", cfg.Cache.Dir)
	}
	return event.NormalizeAll(posts, categories), fetchedAt, nil
}

// filterFlags are the query criteria shared by list and export.
type filterFlags struct {
	from       string
	to         string
	categories []string
	search     string
}

func (ff *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&ff.from, "from", "", "Earliest start date, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringVar(&ff.to, "to", "", "Latest start date, YYYY-MM-DD (inclusive)")
	cmd.Flags().StringArrayVar(&ff.categories, "category", nil, "Category name to keep, repeatable")
	cmd.Flags().StringVar(&ff.search, "search", "", "Substring to match in title or place")
}

func (ff *filterFlags) criteria() (filter.Criteria, error) {
	c := filter.Criteria{
		Categories: ff.categories,
		Query:      ff.search,
	}

	if ff.from != "" {
		t, err := time.Parse(time.DateOnly, ff.from)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("invalid --from date %q: %w", ff.from, err)
		}
		c.From = &t
	}
	if ff.to != "" {
		t, err := time.Parse(time.DateOnly, ff.to)
		if err != nil {
			return filter.Criteria{}, fmt.Errorf("invalid --to date %q: %w", ff.to, err)
		}
		c.To = &t
	}

	return c, nil
}
