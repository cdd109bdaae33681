// Command zetctl drives the booking client core from a terminal: OTP login,
// location selection, cart and saved addresses.
package main

import (
	"context"
	"os"
)

func main() {
	if err := newCLI().execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
