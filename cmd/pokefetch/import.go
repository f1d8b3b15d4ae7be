package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nordgaard/pokefetch/pkg/bulk"
)

func newImportCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Bulk-import the pokemon listing into the local caches",
		Long: `Import fetches the pokemon listing and then every entry in it,
sequentially and rate-limited. Partial results are kept on interruption,
and a static starter set is served if the listing itself fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			orch, err := bulk.New(bulk.Config{
				Fetcher:     a.client,
				TargetLimit: limit,
			})
			if err != nil {
				return err
			}

			done := make(chan struct{})
			go func() {
				ticker := time.NewTicker(500 * time.Millisecond)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						fraction, message, loading := orch.Progress()
						if loading {
							fmt.Fprintf(out, "\r%3.0f%% %-50s", fraction*100, message)
						}
					}
				}
			}()

			runErr := orch.Run(ctx)
			close(done)
			fmt.Fprintln(out)

			results := orch.Results()
			if a.store != nil {
				saved := 0
				for _, p := range results {
					if err := a.store.SavePokemon(ctx, p); err != nil {
						a.logger.Warn().Err(err).Int("id", p.ID).Msg("Failed to persist pokemon")
						continue
					}
					saved++
				}
				fmt.Fprintf(out, "persisted %d pokemon to %s\n", saved, a.cfg.DBPath)
			}

			if discarded := orch.Discarded(); len(discarded) > 0 {
				fmt.Fprintf(out, "skipped %d entries: %v\n", len(discarded), discarded)
			}

			switch orch.State() {
			case bulk.StateFailed:
				fmt.Fprintf(out, "listing failed, loaded %d fallback pokemon: %v\n", len(results), runErr)
			default:
				fmt.Fprintf(out, "imported %d pokemon\n", len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", bulk.DefaultTargetLimit, "maximum number of pokemon to import")
	return cmd
}
