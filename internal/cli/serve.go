package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stateviz/internal/server"
	"github.com/matzehuels/stateviz/pkg/config"
)

// serveCommand creates the serve command for running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		properties string
		noWatch    bool
		noMetrics  bool
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve [registry]",
		Short: "Serve machines, layouts and highlights over HTTP",
		Long: `Serve machines, layouts and highlights over HTTP.

The registry defaults to the configured registry file. While serving, the
file is watched and reloaded on change; a reload that fails keeps the
previous machines. Prometheus metrics are exposed on /metrics.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.Config.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if noWatch {
				cfg.Watch = false
			}
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return c.runServe(cmd.Context(), path, properties, serveOptions{
				server:  cfg,
				metrics: !noMetrics,
				noCache: noCache,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringVar(&properties, "properties", "", "property bag JSON (default from config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the registry on change")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "do not expose /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

type serveOptions struct {
	server  config.ServerConfig
	metrics bool
	noCache bool
}

func (c *CLI) runServe(ctx context.Context, path, properties string, so serveOptions) error {
	reg, err := c.loadRegistry(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, so.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var metrics *server.Metrics
	if so.metrics {
		metrics = server.NewMetrics()
		metrics.Install()
	}

	srv, err := server.New(server.Options{
		Registry:   reg,
		Properties: c.loadProperties(properties),
		Runner:     runner,
		Layout:     c.Config.Layout,
		Server:     so.server,
		Logger:     c.Logger,
		Metrics:    metrics,
	})
	if err != nil {
		return err
	}

	printSuccess("Serving %d machines", reg.Len())
	printKeyValue("Address", StyleLink.Render(serverURL(so.server.Addr)))
	printKeyValue("Registry", reg.Path())
	if so.server.Watch {
		printDetail("Watching %s for changes", reg.Path())
	}
	printNewline()

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, context.Canceled) {
		return err
	}
	printInfo("Server stopped")
	return nil
}

// serverURL turns a listen address into a browsable URL.
func serverURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr
}
