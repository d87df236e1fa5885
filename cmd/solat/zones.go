package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/zone"
)

func (c *cli) newZonesCmd() *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "zones",
		Short: "List JAKIM zone codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			zones := zone.All()
			if state != "" {
				zones = zone.ByState(state)
			}
			if len(zones) == 0 {
				return withCode(exitNoEntries, fmt.Errorf("no zones for state %q (states: %v)", state, zone.States()))
			}

			tw := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tSTATE\tAREA")
			for _, z := range zones {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", z.Code, z.State, z.Label)
			}
			if err := tw.Flush(); err != nil {
				return withCode(exitWriteError, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "only this state's zones")
	return cmd
}
