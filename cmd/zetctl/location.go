package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zet-health/zet_booking/internal/location"
)

func newLocationCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "location",
		Short: "Choose where samples are collected",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cities",
		Short: "List serviceable cities and their areas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, city := range location.Cities() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s: %s\n", city.Key, city.Name, strings.Join(city.SubLocations, ", "))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <city> [area]",
		Short: "Select a serviceable city, optionally narrowed to an area",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub := ""
			if len(args) == 2 {
				sub = args[1]
			}
			sel, err := c.app.location.SetLocation(cmd.Context(), args[0], sub)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Location set to %s\n", sel.DisplayName)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "manual <name>",
		Short: "Use a free-text location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := c.app.location.SetManualLocation(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Location set to %s\n", sel.DisplayName)
			return nil
		},
	})

	var lat, lon float64
	detect := &cobra.Command{
		Use:   "detect",
		Short: "Resolve coordinates to a city and select it when serviceable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			det, err := c.app.detector(location.Coordinates{Latitude: lat, Longitude: lon}).DetectLocation(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Detected %s, %s\n", det.City, det.State)
			return nil
		},
	}
	detect.Flags().Float64Var(&lat, "lat", 0, "latitude")
	detect.Flags().Float64Var(&lon, "lon", 0, "longitude")
	_ = detect.MarkFlagRequired("lat")
	_ = detect.MarkFlagRequired("lon")
	cmd.AddCommand(detect)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the selected location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.location.ClearLocation(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current location label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), c.app.location.CurrentLabel())
			return nil
		},
	})

	return cmd
}
