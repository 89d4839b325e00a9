package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gunalchandran/grocery-backend/services"
)

// NewExportProductsCommand creates the export-products command.
func NewExportProductsCommand(opts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export-products",
		Short: "Write the catalog to an xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := opts.OpenStore(ctx, opts.Config)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer db.Close(ctx)

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := services.NewCatalog(db, nil).Export(ctx, f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Products exported to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "products.xlsx", "output file")
	return cmd
}
