package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/collfilter/internal/app"
	"github.com/five82/collfilter/internal/filter"
)

var (
	// Global flags
	configPath string
	prefsPath  string
	compareTo  string
	pagePath   string
	verbose    bool

	// filter flags
	tag       string
	onlyA     bool
	onlyB     bool
	withLinks bool
)

var rootCmd = &cobra.Command{
	Use:   "collfilter",
	Short: "Filter a collection comparison by tag and spares",
	Long: `collfilter loads the comparison between your collection and another
player's, then lets you narrow the three sections (what you need, what they
need, what you both have) by catalog tag and by who has spares.

Run without arguments to start the interactive interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return a.RunTUI(ctx)
		})
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Run one filter request and print the result",
	Example: `  collfilter filter --tag Forest --spares-b
  collfilter filter --page compare.html --links`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria := filter.Criteria{Tag: tag, OnlySparesA: onlyA, OnlySparesB: onlyB}
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			_, err := a.Print(ctx, criteria, cmd.OutOrStdout(), withLinks)
			return err
		})
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the known catalog tags",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			tags, err := a.KnownTags(ctx)
			if err != nil {
				return err
			}
			for _, t := range tags {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		})
	},
}

var forgetTagsCmd = &cobra.Command{
	Use:   "forget-tags",
	Short: "Drop the cached tag list so it is fetched again",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(ctx context.Context, a *app.App) error {
			return a.ForgetTags(ctx)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/collfilter/config.toml)")
	rootCmd.PersistentFlags().StringVar(&prefsPath, "prefs", "", "preferences file (default ~/.config/collfilter/prefs.toml)")
	rootCmd.PersistentFlags().StringVar(&compareTo, "compare-to", "", "account id to compare with (overrides compare_to)")
	rootCmd.PersistentFlags().StringVar(&pagePath, "page", "", "saved comparison page to read instead of downloading it")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")

	filterCmd.Flags().StringVarP(&tag, "tag", "t", "", "only items in this catalog tag")
	filterCmd.Flags().BoolVar(&onlyA, "spares-a", false, "drop items you have exactly one of")
	filterCmd.Flags().BoolVar(&onlyB, "spares-b", false, "drop items they have exactly one of")
	filterCmd.Flags().BoolVar(&withLinks, "links", false, "print the guide and collection links of every row")

	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(tagsCmd)
	rootCmd.AddCommand(forgetTagsCmd)
}

func withApp(ctx context.Context, fn func(context.Context, *app.App) error) error {
	a, err := app.New(app.Options{
		ConfigPath: configPath,
		PrefsPath:  prefsPath,
		CompareTo:  compareTo,
		PagePath:   pagePath,
		Verbose:    verbose,
	})
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(ctx, a)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "collfilter: %v\n", err)
		return 1
	}
	return 0
}
