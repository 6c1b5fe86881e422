package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/utafrali/storefront/internal/overlay"
)

func newOverlayCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay",
		Short: "Work with overlay URLs",
	}

	resolve := &cobra.Command{
		Use:   "resolve <url>",
		Short: "Show what the overlay encoded in a page URL displays",
		Example: `  storefrontctl overlay resolve '/?modal=product&id=3'
  storefrontctl overlay resolve 'http://localhost:3000/?modal=cart'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse url: %w", err)
			}
			res, err := c.api.ResolveOverlay(cmd.Context(), overlay.Derive(u.Query()))
			if err != nil {
				return fmt.Errorf("resolve overlay: %w", err)
			}
			printResolution(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.AddCommand(resolve)
	return cmd
}
