package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wpevents/internal/cache"
	"wpevents/internal/fetcher"
	"wpevents/internal/wpapi"
)

func newRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Fetch all events from the API and rebuild the local snapshot",
		RunE:  runRefresh,
	}
}

func runRefresh(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	client := wpapi.New(wpapi.Config{
		PostsURL:      cfg.API.PostsURL,
		CategoriesURL: cfg.API.CategoriesURL,
		PerPage:       cfg.API.PerPage,
		Timeout:       cfg.API.Timeout,
		UserAgent:     cfg.API.UserAgent,
		RetryAttempts: cfg.API.Retry.Attempts,
		RetryInterval: cfg.API.Retry.Interval,
	}, logger)
	store := cache.New(cfg.Cache.Dir)
	f := fetcher.New(client, store, logger)

	updates, err := f.Refresh(cmd.Context())
	if err != nil {
		return err
	}

	// The run keeps its own aggregate for persistence; this count is the
	// consumer's independent accumulation.
	var loaded int
	for update := range updates {
		switch u := update.(type) {
		case fetcher.Status:
			fmt.Fprintln(cmd.ErrOrStderr(), u.Message)
		case fetcher.Progress:
			fmt.Fprintf(cmd.ErrOrStderr(), "page %d/%d\n", u.Page, u.TotalPages)
		case fetcher.Batch:
			loaded += len(u.Events)
		case fetcher.Finished:
			fmt.Fprintf(cmd.OutOrStdout(), "Fetched %d posts, %d events with a start date. Snapshot saved at %s.\n",
				len(u.Posts), loaded, u.FetchedAt)
		case fetcher.Failed:
			return fmt.Errorf("refresh failed: %s", u.Message)
		}
	}

	return nil
}
