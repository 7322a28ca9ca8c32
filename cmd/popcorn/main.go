package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:   "popcorn",
		Short: "Like, follow, save and comment on the popcorn movie network",
		Long: `popcorn drives the interaction core against the configured backend.

The backend is picked with BACKEND (supabase or json-server). Sign in once
with "popcorn login"; the session is kept in a file and reused by the
other commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env", "", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVar(&opts.metrics, "metrics", false, "print the interaction counters in Prometheus text format when done")
	rootCmd.PersistentFlags().StringVar(&opts.sessionPath, "session", "", "session file (default: <user config dir>/popcorn/session.json)")

	rootCmd.AddCommand(
		registerCmd(&opts),
		loginCmd(&opts),
		logoutCmd(&opts),
		likeCmd(&opts),
		followCmd(&opts),
		saveCmd(&opts),
		commentsCmd(&opts),
		feedCmd(&opts),
		postCmd(&opts),
		collectionCmd(&opts),
		deleteCmd(&opts),
		profileCmd(&opts),
	)
	return rootCmd
}
