package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/pkg/pagination"
)

func newProductsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Inspect the catalog",
	}

	var page, perPage int
	list := &cobra.Command{
		Use:   "list",
		Short: "List products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.api.ListProducts(cmd.Context(), pagination.Params{Page: page, PerPage: perPage})
			if err != nil {
				return fmt.Errorf("list products: %w", err)
			}
			out := cmd.OutOrStdout()
			printProducts(out, res.Data)
			fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("page %d of %d, %d products", res.Page, res.TotalPages, res.TotalCount)))
			return nil
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().IntVar(&perPage, "per-page", 20, "products per page (max 100)")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := c.api.GetProduct(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get product: %w", err)
			}
			printProduct(cmd.OutOrStdout(), p)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}
