package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zet-health/zet_booking/internal/cart"
)

func newCartCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the tests and packages picked for booking",
	}

	var item cart.Item
	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a test or package, bumping its quantity if present",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			item.ID = args[0]
			got, err := c.app.cart.Add(cmd.Context(), item)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s x%d in cart\n", label(got), got.Quantity)
			return nil
		},
	}
	add.Flags().StringVar(&item.Name, "name", "", "display name")
	add.Flags().Float64Var(&item.Price, "price", 0, "unit price in rupees")
	add.Flags().StringVar(&item.Image, "image", "", "image url")
	add.Flags().StringToStringVar(&item.Metadata, "meta", nil, "extra key=value attributes")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an item entirely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.cart.Remove(cmd.Context(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.cart.Clear(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show the cart and its total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			items := c.app.cart.Items()
			if len(items) == 0 {
				fmt.Fprintln(out, "Cart is empty")
				return nil
			}
			for _, it := range items {
				fmt.Fprintf(out, "%-12s %-30s %3d x %8.2f\n", it.ID, it.Name, it.Quantity, it.Price)
			}
			fmt.Fprintf(out, "Items: %d  Total: %.2f\n", c.app.cart.Count(), c.app.cart.Total())
			return nil
		},
	})

	return cmd
}

func label(it cart.Item) string {
	if it.Name != "" {
		return it.Name
	}
	return it.ID
}
