package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nordgaard/pokefetch/pkg/client"
	"github.com/nordgaard/pokefetch/pkg/pokedex"
)

func newFetchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch <id-or-name>...",
		Short: "Fetch one or more pokemon by id or name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			var failed int
			for _, arg := range args {
				p, err := fetchOne(ctx, a, arg)
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s: %v\n", arg, err)
					if hint := client.RecoverySuggestion(err); hint != "" {
						fmt.Fprintf(out, "  hint: %s\n", hint)
					}
					continue
				}
				printPokemon(out, p)
			}

			if failed == len(args) {
				return fmt.Errorf("all %d fetches failed", failed)
			}
			return nil
		},
	}
}

func fetchOne(ctx context.Context, a *app, arg string) (*pokedex.Pokemon, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		return a.repo.GetByID(ctx, id)
	}
	return a.repo.GetByName(ctx, arg)
}

func printPokemon(w io.Writer, p *pokedex.Pokemon) {
	types := make([]string, len(p.Types))
	for i, t := range p.Types {
		types[i] = t.Type.Name
	}

	fmt.Fprintf(w, "#%d %s\n", p.ID, p.Name)
	fmt.Fprintf(w, "  types:  %s\n", strings.Join(types, ", "))
	fmt.Fprintf(w, "  height: %d  weight: %d  base xp: %d\n", p.Height, p.Weight, p.BaseExperience)
	for _, s := range p.Stats {
		fmt.Fprintf(w, "  %-16s %d\n", s.Stat.Name, s.BaseStat)
	}
}
