package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSearchCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search pokemon whose name contains the query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := a.repo.Search(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "no matches for %q\n", args[0])
				return nil
			}

			shown := len(results)
			if limit > 0 && limit < shown {
				shown = limit
			}
			for _, r := range results[:shown] {
				fmt.Fprintf(out, "#%d %s\n", r.ID(), r.Name)
			}
			if shown < len(results) {
				fmt.Fprintf(out, "... and %d more\n", len(results)-shown)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of matches to print (0 for all)")
	return cmd
}
