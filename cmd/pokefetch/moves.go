package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nordgaard/pokefetch/pkg/bulk"
)

func newMovesCmd(a *app) *cobra.Command {
	var max int

	cmd := &cobra.Command{
		Use:   "moves <id-or-name>",
		Short: "List the learnable moves of a pokemon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := strconv.Atoi(args[0])
			if err != nil {
				p, err := a.repo.GetByName(ctx, args[0])
				if err != nil {
					return err
				}
				id = p.ID
			}

			orch, err := bulk.New(bulk.Config{
				Fetcher:  a.client,
				MaxMoves: max,
			})
			if err != nil {
				return err
			}

			moves, err := orch.MovesFor(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(moves) == 0 {
				fmt.Fprintln(out, "no moves resolved")
				return nil
			}

			fmt.Fprintf(out, "%-20s %-10s %5s %6s %4s %4s  %s\n",
				"MOVE", "METHOD", "LEVEL", "POWER", "ACC", "PP", "TYPE")
			for _, m := range moves {
				level := "-"
				if m.Method == "level-up" {
					level = strconv.Itoa(m.Level)
				}
				power := "-"
				if m.Power > 0 {
					power = strconv.Itoa(m.Power)
				}
				acc := "-"
				if m.Accuracy > 0 {
					acc = strconv.Itoa(m.Accuracy)
				}
				fmt.Fprintf(out, "%-20s %-10s %5s %6s %4s %4d  %s\n",
					m.Name, m.Method, level, power, acc, m.PP, m.Type)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&max, "max", bulk.DefaultMaxMoves, "maximum number of moves to resolve")
	return cmd
}
