package main

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotcache/internal/app/server"
	"hotcache/internal/config"
)

func newServeCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the cache and serve it over HTTP",
		Args:  cobra.NoArgs,
		Long: `Load the entry list once, then refresh it in the background every
--frequency while serving the current copy over HTTP.

Configuration is read from configs/application.yaml (or --config) and
HOTCACHE_* environment variables; flags override both.`,
		Example: `  hotcached serve --frequency 3m
  hotcached serve --config /etc/hotcached.yaml --addr :9090
  HOTCACHE_SOURCE_KIND=http HOTCACHE_SOURCE_URL=https://example.com/entries hotcached serve --frequency 30s`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := config.New(file)
			for key, flag := range map[string]string{
				"server.addr":      "addr",
				"server.log_level": "log-level",
				"cache.frequency":  "frequency",
				"cache.timeout":    "timeout",
				"source.kind":      "source",
			} {
				if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return err
				}
			}

			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			config.SetupLogging(cfg.Server.LogLevel)

			if err := server.Run(cmd.Context(), cfg); err != nil {
				log.Error().Err(err).Msg("server stopped")
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "config", "c", "", "config file (default configs/application.yaml)")
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().Duration("frequency", 0, "delay between refreshes (required)")
	cmd.Flags().Duration("timeout", 0, "bound on each load (0 = none)")
	cmd.Flags().String("source", "", "entry source: postgres or http")

	return cmd
}
