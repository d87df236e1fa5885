// Command solat fetches, resolves and publishes daily prayer times.
//
// Exit codes:
//
//	0  success
//	1  fetch or resolution failure
//	2  invalid input (flags, zone, date, range)
//	3  no entries for the requested zone or date
//	4  output could not be written
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/config"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/logging"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
)

const (
	exitFailure    = 1
	exitUsage      = 2
	exitNoEntries  = 3
	exitWriteError = 4
)

// exitError carries a process exit code through cobra's RunE.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitCode maps a command error to the process exit code.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailure
}

// cli holds state shared by every subcommand.
type cli struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	root := newRootCmd(os.Stdout, os.Stderr)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if solat.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, solat.FormatUserError(err))
		}
		os.Exit(exitCode(err))
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "solat",
		Short: "Daily prayer times for JAKIM zones (default SGR01, Ampang)",
		Long: `solat fetches JAKIM e-solat timetables, resolves a single day's times from
saved tables in any of the usual layouts, and publishes today's times to
MQTT displays.

Settings come from the environment (and a .env file); flags override them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	root.AddCommand(
		c.newFetchCmd(),
		c.newTodayCmd(),
		c.newLookupCmd(),
		c.newResolveCmd(),
		c.newZonesCmd(),
		c.newPublishCmd(),
	)
	return root
}

// setup loads .env and the configuration, and sends logs to stderr so
// stdout carries only command output.
func (c *cli) setup() error {
	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		return withCode(exitUsage, err)
	}
	c.cfg = cfg

	logging.SetupWriter(c.stderr, cfg.Logging.Level, cfg.Logging.Format)
	return nil
}
