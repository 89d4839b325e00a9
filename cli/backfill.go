package cli

import (
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/gunalchandran/grocery-backend/services"
)

// BackfillOptions holds flags for the backfill-prices command.
type BackfillOptions struct {
	*RootOptions
	DryRun bool
	Seed   int64
}

// NewBackfillPricesCommand creates the backfill-prices command.
func NewBackfillPricesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BackfillOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "backfill-prices",
		Short: "Assign keyword-based prices to every product",
		Long: `Assign every product a random whole price from the range of its
keyword category (dairy, sweets, snacks, ...). Products matching no keyword
get the default range.

Example:
  grocery-backend backfill-prices --dry-run
  grocery-backend backfill-prices --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBackfill(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print the new prices without writing them")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (0 uses the current time)")

	return cmd
}

func runBackfill(cmd *cobra.Command, opts *BackfillOptions) error {
	ctx := cmd.Context()
	db, err := opts.OpenStore(ctx, opts.Config)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close(ctx)

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	pricing := services.NewPricing(db, rand.New(rand.NewSource(seed)))

	res, err := pricing.Backfill(ctx, opts.DryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.DryRun {
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "PRODUCT\tCATEGORY\tOLD\tNEW")
		for _, c := range res.Changes {
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%.2f\n", c.Name, c.Category, c.OldPrice, c.NewPrice)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Dry run: %d products would be updated\n", len(res.Changes))
		return nil
	}
	fmt.Fprintf(out, "Updated %d products, skipped %d\n", res.Updated, res.Skipped)
	return nil
}
