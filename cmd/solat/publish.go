package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/app"
)

func (c *cli) newPublishCmd() *cobra.Command {
	var loop bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish today's times to the MQTT broker",
		Long: `Resolve today's times and publish them, retained, to MQTT_TOPIC on
MQTT_BROKER. With --loop it keeps publishing every MQTT_PUBLISH_INTERVAL
until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !c.cfg.MQTT.Enabled() {
				return withCode(exitUsage, errors.New("MQTT_BROKER is not set"))
			}

			svc, err := c.service(nil, "")
			if err != nil {
				return err
			}

			pub, err := app.ConnectPublisher(c.cfg)
			if err != nil {
				return withCode(exitFailure, err)
			}
			defer pub.Close()

			if loop {
				svc.StartPublisher(cmd.Context(), pub, c.cfg.MQTT.Interval)
				return nil
			}

			if !svc.PublishOnce(cmd.Context(), pub) {
				return withCode(exitFailure, errors.New("publish failed; see log"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&loop, "loop", false, "keep publishing on MQTT_PUBLISH_INTERVAL")
	return cmd
}
