package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the cart",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "Show the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cart, err := c.api.ListCart(cmd.Context())
			if err != nil {
				return fmt.Errorf("list cart: %w", err)
			}
			printCart(cmd.OutOrStdout(), cart)
			return nil
		},
	}

	var quantity int
	add := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item, err := c.api.AddToCart(cmd.Context(), args[0], quantity)
			if err != nil {
				return fmt.Errorf("add to cart: %w", err)
			}
			printItem(cmd.OutOrStdout(), item)
			return nil
		},
	}
	add.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")

	update := &cobra.Command{
		Use:   "update <line-id> <quantity>",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
			item, err := c.api.UpdateCartItemQuantity(cmd.Context(), args[0], qty)
			if err != nil {
				return fmt.Errorf("update cart line: %w", err)
			}
			printItem(cmd.OutOrStdout(), item)
			return nil
		},
	}

	remove := &cobra.Command{
		Use:     "remove <line-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a cart line",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.api.RemoveFromCart(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("remove cart line: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, update, remove)
	return cmd
}
