package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hamed0406/uptimeboard/internal/client"
	"github.com/hamed0406/uptimeboard/internal/domain"
	"github.com/hamed0406/uptimeboard/internal/present"
)

type globalOpts struct {
	api      string
	key      string
	attempts int
	noColor  bool
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:           "uptimectl",
		Short:         "Manage and view the uptime dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.api, "api", envOr("API_BASE", "http://localhost:8080"), "Dashboard API base URL")
	root.PersistentFlags().StringVar(&opts.key, "key", os.Getenv("API_KEY"), "API key (admin key needed for add)")
	root.PersistentFlags().IntVar(&opts.attempts, "attempts", 3, "Attempts before giving up on an unreachable API")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(
		newAddCommand(opts),
		newListCommand(opts),
		newStatsCommand(opts),
	)
	return root
}

func (o *globalOpts) client() *client.Client {
	c := client.New(strings.TrimRight(o.api, "/"), o.key)
	c.Attempts = o.attempts
	return c
}

func (o *globalOpts) color(cmd *cobra.Command) bool {
	if o.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// prepareURL adds https:// when no scheme was typed and validates the result
// before anything is sent.
func prepareURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	if err := domain.ValidateURL(raw); err != nil {
		return "", err
	}
	return domain.NormalizeURL(raw), nil
}

func newAddCommand(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "add <url>",
		Short: "Start monitoring a website",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := prepareURL(args[0])
			if err != nil {
				return err
			}
			res, err := opts.client().Add(cmd.Context(), url)
			if errors.Is(err, domain.ErrDuplicateTarget) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is already monitored\n", url)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✔ added %s (%s)\n", res.Target.URL, res.Target.ID)
			if res.Website != nil {
				renderCards(cmd.OutOrStdout(), []present.Card{present.NewCard(*res.Website, time.Now())}, opts.color(cmd))
			}
			return nil
		},
	}
}

func newListCommand(opts *globalOpts) *cobra.Command {
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show every monitored website",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			out := cmd.OutOrStdout()
			for {
				snap, err := c.Websites(cmd.Context())
				switch {
				case err == nil:
					renderHeader(out, snap.Stats)
					renderCards(out, present.Cards(snap.Websites, time.Now()), opts.color(cmd))
				case watch <= 0:
					return err
				case cmd.Context().Err() != nil:
					return nil
				case errors.Is(err, domain.ErrServiceUnavailable):
					// keep watching; the next refresh may succeed
					renderUnavailable(cmd.ErrOrStderr(), err, watch)
				default:
					return err
				}
				if watch <= 0 {
					return nil
				}
				select {
				case <-cmd.Context().Done():
					return nil
				case <-time.After(watch):
					fmt.Fprintln(out)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&watch, "watch", 0, "Refresh every interval instead of exiting")
	return cmd
}

func newStatsCommand(opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show healthy, critical and unknown counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().Stats(cmd.Context())
			if err != nil {
				return err
			}
			renderHeader(cmd.OutOrStdout(), st)
			return nil
		},
	}
}
