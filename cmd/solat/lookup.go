package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/app"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

type lookupOptions struct {
	zone      string
	date      string
	file      string
	delimiter string
	asJSON    bool
}

func (c *cli) newTodayCmd() *cobra.Command {
	var opts lookupOptions

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show today's prayer times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(nil, "")
			if err != nil {
				return err
			}
			opts.date = svc.TodayDate()
			return c.runLookup(cmd.Context(), svc, opts)
		},
	}

	cmd.Flags().StringVar(&opts.zone, "zone", "", "zone code (default SOLAT_ZONE)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) newLookupCmd() *cobra.Command {
	var opts lookupOptions

	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Show prayer times for a date",
		Long: `Show prayer times for one date. The date may be written as 2025-09-05,
5-Sep-25, 05-Sep-2025, 5/9/2025 or "Sep 5, 2025".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := c.service(nil, "")
			if err != nil {
				return err
			}
			return c.runLookup(cmd.Context(), svc, opts)
		},
	}

	cmd.Flags().StringVar(&opts.date, "date", "", "date to look up")
	cmd.Flags().StringVar(&opts.zone, "zone", "", "zone code (default SOLAT_ZONE)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func (c *cli) newResolveCmd() *cobra.Command {
	var opts lookupOptions

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a date against any timetable file",
		Long: `Resolve one date against a .csv, .txt or .xlsx timetable, whatever its
column names, delimiter or date layout. On a miss the dates the file does
hold are printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := source.ReadTableFile(opts.file)
			if err != nil {
				return withCode(exitUsage, err)
			}
			svc, err := c.service(source.StaticLoader{Text: text}, opts.delimiter)
			if err != nil {
				return err
			}
			return c.runLookup(cmd.Context(), svc, opts)
		},
	}

	cmd.Flags().StringVar(&opts.file, "file", "", "timetable file")
	cmd.Flags().StringVar(&opts.date, "date", "", "date to look up")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "auto, comma, semicolon or tab (default SOLAT_DELIMITER)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print JSON")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

// service builds a Service. A nil loader means the configured sources; a
// non-empty delimiter overrides SOLAT_DELIMITER.
func (c *cli) service(loader source.Loader, delimiter string) (*solat.Service, error) {
	cfg := *c.cfg
	if delimiter != "" {
		if _, ok := timetable.ParseDelimiter(delimiter); !ok {
			return nil, withCode(exitUsage, fmt.Errorf("unknown delimiter %q", delimiter))
		}
		cfg.Source.Delimiter = delimiter
	}
	if loader == nil {
		loader = app.NewLoader(&cfg, app.NewClient(&cfg))
	}

	svc, err := app.NewService(&cfg, loader)
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return svc, nil
}

func (c *cli) runLookup(ctx context.Context, svc *solat.Service, opts lookupOptions) error {
	dt, err := svc.Lookup(ctx, opts.zone, opts.date)
	if err != nil {
		return lookupError(err)
	}

	if opts.asJSON {
		enc := json.NewEncoder(c.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(dt); err != nil {
			return withCode(exitWriteError, err)
		}
	} else if err := printDayTimes(c.stdout, dt); err != nil {
		return withCode(exitWriteError, err)
	}

	if !dt.Found() {
		return withCode(exitNoEntries, errors.New(dt.Message))
	}
	return nil
}

// lookupError assigns an exit code to a Service.Lookup failure.
func lookupError(err error) error {
	switch {
	case errors.Is(err, solat.ErrUnknownZone), errors.Is(err, solat.ErrInvalidDate):
		return withCode(exitUsage, err)
	case errors.Is(err, source.ErrTableNotFound):
		return withCode(exitNoEntries, err)
	default:
		return withCode(exitFailure, err)
	}
}

// printDayTimes writes dt as an aligned two-column listing in field order.
func printDayTimes(w io.Writer, dt solat.DayTimes) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s (%s)\n", dt.Zone, dt.Date, dt.Status)
	if dt.Found() {
		for _, name := range timetable.FieldNames(timetable.DefaultFields()) {
			v := dt.Times[name]
			if v == "" {
				v = "-"
			}
			fmt.Fprintf(tw, "  %s\t%s\n", name, v)
		}
	} else {
		fmt.Fprintf(tw, "  %s\n", dt.Message)
	}

	return tw.Flush()
}
