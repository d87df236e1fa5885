package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/zone"
)

// maxParallelFetches bounds concurrent e-solat requests.
const maxParallelFetches = 4

type fetchOptions struct {
	zones   []string
	period  string
	start   string
	end     string
	out     string
	outdir  string
	timeout time.Duration
	retries int
}

func (c *cli) newFetchCmd() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download timetables from e-solat and save them as CSV",
		Long: `Download JAKIM e-solat timetables and save one CSV per zone.

Files are named <prefix>_<zone>_<period>_<YYYY-MM>.csv, or
<prefix>_<zone>_<start>_to_<end>.csv for --period duration, in --outdir.

Examples:
  solat fetch
  solat fetch --zone SGR01 --zone WLY01 --period year
  solat fetch --period duration --start 2025-09-01 --end 2025-09-30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.applyFetchDefaults(cmd, &opts)
			return c.runFetch(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&opts.zones, "zone", nil, "zone code, repeatable or comma-separated (default SOLAT_ZONE)")
	f.StringVar(&opts.period, "period", "", "week, month, year or duration (default SOLAT_PERIOD)")
	f.StringVar(&opts.start, "start", "", "first day for --period duration (YYYY-MM-DD)")
	f.StringVar(&opts.end, "end", "", "last day for --period duration (YYYY-MM-DD)")
	f.StringVar(&opts.out, "out", "", "output file name; single zone only")
	f.StringVar(&opts.outdir, "outdir", "", "output directory (default SOLAT_DATA_DIR)")
	f.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (default ESOLAT_TIMEOUT)")
	f.IntVar(&opts.retries, "retries", 0, "attempts per zone (default ESOLAT_RETRIES)")

	return cmd
}

// applyFetchDefaults fills unset flags from the configuration.
func (c *cli) applyFetchDefaults(cmd *cobra.Command, opts *fetchOptions) {
	if len(opts.zones) == 0 {
		opts.zones = []string{c.cfg.Source.Zone}
	}
	if !cmd.Flags().Changed("period") {
		opts.period = c.cfg.Source.Period
	}
	if opts.outdir == "" {
		opts.outdir = c.cfg.Source.DataDir
	}
	if opts.timeout <= 0 {
		opts.timeout = c.cfg.Fetch.Timeout
	}
	if opts.retries <= 0 {
		opts.retries = c.cfg.Fetch.Retries
	}
}

// fetchRequests validates the options and expands them into one request
// per distinct zone.
func fetchRequests(opts fetchOptions) ([]source.Request, error) {
	period, err := source.ParsePeriod(opts.period)
	if err != nil {
		return nil, err
	}
	if err := source.ValidateRange(period, opts.start, opts.end); err != nil {
		return nil, err
	}

	var reqs []source.Request
	seen := make(map[string]bool)
	for _, arg := range opts.zones {
		for _, code := range strings.Split(arg, ",") {
			code = zone.Normalize(code)
			if code == "" || seen[code] {
				continue
			}
			if _, ok := zone.Get(code); !ok {
				return nil, fmt.Errorf("%w: %s", solat.ErrUnknownZone, code)
			}
			seen[code] = true
			reqs = append(reqs, source.Request{Zone: code, Period: period, Start: opts.start, End: opts.end})
		}
	}

	if len(reqs) == 0 {
		return nil, errors.New("no zone given")
	}
	if opts.out != "" && len(reqs) > 1 {
		return nil, errors.New("--out names a single file; drop it to fetch several zones")
	}
	return reqs, nil
}

func (c *cli) runFetch(ctx context.Context, opts fetchOptions) error {
	reqs, err := fetchRequests(opts)
	if err != nil {
		return withCode(exitUsage, err)
	}

	client := source.NewClient(source.ClientConfig{
		BaseURL: c.cfg.Fetch.BaseURL,
		Timeout: opts.timeout,
		Retries: opts.retries,
		Backoff: c.cfg.Fetch.Backoff,
	})

	day := time.Now().In(c.location())
	prefix := c.cfg.Source.FilePrefix

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)

	for _, req := range reqs {
		req := req
		g.Go(func() error {
			records, err := client.Fetch(gctx, req)
			if err != nil {
				return withCode(exitFailure, err)
			}
			if len(records) == 0 {
				return withCode(exitNoEntries, fmt.Errorf("%w: e-solat returned no entries for %s", source.ErrTableNotFound, req.Zone))
			}

			name := opts.out
			if name == "" {
				name = source.TableName(prefix, req, day, "csv")
			}
			path, err := source.SaveCSV(opts.outdir, name, records)
			if err != nil {
				return withCode(exitWriteError, err)
			}

			rng := source.DateRange(records)
			slog.Info("saved timetable",
				"zone", req.Zone,
				"records", len(records),
				"first", rng.First,
				"last", rng.Last,
				"days", rng.Days,
			)

			mu.Lock()
			defer mu.Unlock()
			fmt.Fprintln(c.stdout, path)
			return nil
		})
	}

	return g.Wait()
}

func (c *cli) location() *time.Location {
	return solat.LoadLocation(c.cfg.Clock.Timezone)
}
