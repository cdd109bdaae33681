package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/zet-health/zet_booking/internal/config"
)

type cli struct {
	root     *cobra.Command
	app      *app
	storage  string
	logLevel string
}

func newCLI() *cli {
	c := &cli{}
	root := &cobra.Command{
		Use:   "zetctl",
		Short: "Book lab tests from the terminal",
		Long: `zetctl drives the booking client: OTP login, service location, cart and
saved collection addresses. State persists between invocations in the
configured storage backend (ZET_STORAGE=file|memory|redis).

Examples:
  zetctl otp request 9876543210
  zetctl otp verify 123456
  zetctl location set bangalore Whitefield
  zetctl cart add cbc --name "Complete Blood Count" --price 350`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if c.storage != "" {
				cfg.Storage = c.storage
			}
			if c.logLevel != "" {
				cfg.LogLevel = c.logLevel
			}
			a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}

	root.PersistentFlags().StringVar(&c.storage, "storage", "", "storage backend override (memory, file, redis)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newOTPCmd(c),
		newRegisterCmd(c),
		newWhoamiCmd(c),
		newLogoutCmd(c),
		newLocationCmd(c),
		newCartCmd(c),
		newAddressCmd(c),
	)
	c.root = root
	return c
}

// execute runs the command line and closes the app, also when the command
// fails.
func (c *cli) execute(ctx context.Context) error {
	defer c.close()
	return c.root.ExecuteContext(ctx)
}

func (c *cli) close() {
	if c.app != nil {
		c.app.Close()
	}
}
