package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zet-health/zet_booking/internal/address"
	"github.com/zet-health/zet_booking/internal/apiclient"
)

func newAddressCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "address",
		Short: "Manage saved collection addresses",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved addresses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := c.app.addresses.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved addresses")
				return nil
			}
			for _, a := range list {
				printAddress(cmd.OutOrStdout(), a)
			}
			return nil
		},
	})

	var in apiclient.Address
	add := &cobra.Command{
		Use:   "add",
		Short: "Save a new address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.addresses.Add(cmd.Context(), in)
		},
	}
	add.Flags().StringVar(&in.Address, "address", "", "street address")
	add.Flags().StringVar(&in.HouseNo, "house-no", "", "house or flat number")
	add.Flags().StringVar(&in.Landmark, "landmark", "", "nearby landmark")
	add.Flags().StringVar(&in.Location, "area", "", "area or locality")
	add.Flags().StringVar(&in.Pincode, "pincode", "", "6-digit pincode")
	add.Flags().StringVar(&in.City, "city", "", "city")
	add.Flags().StringVar(&in.State, "state", "", "state")
	add.Flags().StringVar(&in.AddressType, "type", "Home", "address type (Home, Work, Other)")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.addresses.Delete(cmd.Context(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "select <id>",
		Short: "Use a saved address for the next booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app.addresses.SelectByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), "Selected ")
			printAddress(cmd.OutOrStdout(), a)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "current",
		Short: "Show the address selected for the next booking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.app.addresses.Current(cmd.Context())
			if errors.Is(err, address.ErrNoAddressSelected) {
				fmt.Fprintln(cmd.OutOrStdout(), "No address selected")
				return nil
			}
			if err != nil {
				return err
			}
			printAddress(cmd.OutOrStdout(), a)
			return nil
		},
	})

	return cmd
}

func printAddress(w io.Writer, a apiclient.Address) {
	fmt.Fprintf(w, "[%s] %s, %s, %s %s\n", a.ID, a.Address, a.Location, a.City, a.Pincode)
}
