package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var lookupLimit int

var lookupCmd = &cobra.Command{
	Use:   "lookup <player>",
	Short: "Search the local card reference table by player name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		entries, err := st.SearchEntries(ctx, args[0], lookupLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No entries found.")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	},
}

func init() {
	lookupCmd.Flags().IntVar(&lookupLimit, "limit", 50, "maximum entries to return")
	rootCmd.AddCommand(lookupCmd)
}
