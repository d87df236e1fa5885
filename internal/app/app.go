// Package app builds the runtime components shared by the server and the
// CLI from a loaded configuration.
package app

import (
	"context"
	"log/slog"

	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/config"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/publish"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/solat"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/source"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/store"
	"github.com/abdullahzubairwan/waktu-solat-ampang/internal/timetable"
)

// NewClient returns an e-solat client configured from cfg.Fetch.
func NewClient(cfg *config.Config) *source.Client {
	return source.NewClient(source.ClientConfig{
		BaseURL: cfg.Fetch.BaseURL,
		Timeout: cfg.Fetch.Timeout,
		Retries: cfg.Fetch.Retries,
		Backoff: cfg.Fetch.Backoff,
	})
}

// NewLoader reads tables from the data directory, falling back to the
// e-solat API when SOLAT_USE_API is set.
func NewLoader(cfg *config.Config, client *source.Client) source.Loader {
	delim, _ := timetable.ParseDelimiter(cfg.Source.Delimiter)
	dir := source.DirLoader{
		Dir:    cfg.Source.DataDir,
		Prefix: cfg.Source.FilePrefix,
		Parse:  timetable.ParseOptions{Delimiter: delim},
	}
	if !cfg.Source.UseAPI || client == nil {
		return dir
	}
	return source.ChainLoader{dir, source.APILoader{Client: client}}
}

// NewService builds the resolution service for the configured zone, clock
// and delimiter.
func NewService(cfg *config.Config, loader source.Loader) (*solat.Service, error) {
	delim, _ := timetable.ParseDelimiter(cfg.Source.Delimiter)
	return solat.NewService(loader, solat.Config{
		Zone:     cfg.Source.Zone,
		Location: solat.LoadLocation(cfg.Clock.Timezone),
		Parse:    timetable.ParseOptions{Delimiter: delim},
	})
}

// OpenStore connects to the lookup log and migrates it. Returns nil without
// error when no database is configured.
func OpenStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	if !cfg.Database.Enabled() {
		return nil, nil
	}

	st, err := store.Open(ctx, store.PoolConfig{
		URL:             cfg.Database.URL,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}

	slog.Info("connected to database", "name", store.DatabaseName(cfg.Database.URL))
	return st, nil
}

// Retention returns the lookup log pruning settings.
func Retention(cfg *config.Config) store.RetentionConfig {
	return store.RetentionConfig{
		KeepFor:       cfg.Database.Retention,
		CheckInterval: cfg.Database.PurgeInterval,
	}
}

// ConnectPublisher dials the MQTT broker. Returns nil without error when no
// broker is configured.
func ConnectPublisher(cfg *config.Config) (*publish.Publisher, error) {
	if !cfg.MQTT.Enabled() {
		return nil, nil
	}
	return publish.Connect(publish.Config{
		Broker:   cfg.MQTT.Broker,
		ClientID: cfg.MQTT.ClientID,
		Username: cfg.MQTT.Username,
		Password: cfg.MQTT.Password,
		Topic:    cfg.MQTT.Topic,
		QoS:      byte(cfg.MQTT.QoS),
		Retained: cfg.MQTT.Retained,
		Timeout:  cfg.MQTT.Timeout,
	})
}
