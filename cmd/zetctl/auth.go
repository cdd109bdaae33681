package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zet-health/zet_booking/internal/session"
)

func newOTPCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "otp",
		Short: "Log in with a one-time password",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "request <mobile>",
		Short: "Send an OTP to a registered mobile number",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.app.auth.RequestOTP(cmd.Context(), args[0])
			if session.IsNotRegistered(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "Number not registered. Run `zetctl register` first.")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OTP sent to %s. Run `zetctl otp verify <code>`.\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <code>",
		Short: "Verify the OTP and start a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.auth.VerifyOTP(cmd.Context(), args[0]); err != nil {
				return err
			}
			s := c.app.auth.Session()
			name := s.User.Name
			if name == "" {
				name = s.User.MobileNumber
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", name)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resend [mobile]",
		Short: "Resend the OTP once the cooldown has passed",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mobile := ""
			if len(args) == 1 {
				mobile = args[0]
			}
			err := c.app.auth.ResendOTP(cmd.Context(), mobile)
			if errors.Is(err, session.ErrResendCooldown) {
				fmt.Fprintf(cmd.OutOrStdout(), "Resend OTP in %ds\n", c.app.auth.ResendAvailableIn())
			}
			return err
		},
	})

	return cmd
}

func newRegisterCmd(c *cli) *cobra.Command {
	var in session.RegisterInput
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account for a mobile number",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := c.app.auth.Register(cmd.Context(), in)
			if session.IsAlreadyRegistered(err) {
				fmt.Fprintln(cmd.OutOrStdout(), "Number already registered. Run `zetctl otp request` to log in.")
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s. Run `zetctl otp request %s` to log in.\n", in.Mobile, in.Mobile)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Mobile, "mobile", "", "10-digit mobile number")
	cmd.Flags().StringVar(&in.Gender, "gender", "", "male, female or other")
	cmd.Flags().StringVar(&in.DeviceID, "device-id", "", "device identifier (generated when empty)")
	return cmd
}

func newWhoamiCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the session state and profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			s := c.app.auth.Session()
			switch s.State() {
			case session.StateAnonymous:
				fmt.Fprintln(out, "Not logged in")
				return nil
			case session.StateOTPPending:
				fmt.Fprintf(out, "Waiting for OTP sent to %s\n", s.PendingLogin.MobileNumber)
				if wait := c.app.auth.ResendAvailableIn(); wait > 0 {
					fmt.Fprintf(out, "Resend OTP in %ds\n", wait)
				}
				return nil
			}

			profile, err := c.app.auth.FetchProfile(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Name:   %s\nMobile: %s\n", profile.Name, profile.MobileNumber)
			if profile.Email != "" {
				fmt.Fprintf(out, "Email:  %s\n", profile.Email)
			}
			if profile.Gender != "" {
				fmt.Fprintf(out, "Gender: %s\n", profile.Gender)
			}
			return nil
		},
	}
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.auth.Logout(cmd.Context())
		},
	}
}
