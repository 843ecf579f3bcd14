package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/diogo/cookieschat/internal/chat"
	"github.com/diogo/cookieschat/internal/config"
	"github.com/diogo/cookieschat/internal/logging"
	"github.com/diogo/cookieschat/internal/metrics"
	"github.com/diogo/cookieschat/internal/web"
)

var (
	addrFlag    string
	metricsFlag bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat over HTTP",
	Long: `Serve a single chat session as a web page.

Every browser tab shares the same conversation. The page follows the
session over a websocket and disables its input while a reply is pending.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cmd)
	},
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().BoolVar(&metricsFlag, "metrics", false, "Expose prometheus metrics")
}

// newMetricsRegistry registers the chat collector next to the runtime ones
func newMetricsRegistry() (*prometheus.Registry, *metrics.Metrics) {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m,
	)
	return reg, m
}

// buildServers returns the HTTP servers for cfg. Metrics share the chat
// listener unless a different address is configured.
func buildServers(cfg config.Config, session web.Session, reg *prometheus.Registry) ([]*http.Server, error) {
	opts := []web.Option{web.WithModelName(cfg.Model)}

	separateMetrics := reg != nil && cfg.Metrics.Addr != "" && cfg.Metrics.Addr != cfg.Server.Addr
	if reg != nil && !separateMetrics {
		opts = append(opts, web.WithMetrics(reg))
	}

	srv, err := web.NewServer(session, opts...)
	if err != nil {
		return nil, err
	}
	servers := []*http.Server{web.NewHTTPServer(cfg.Server.Addr, srv.Handler())}

	if separateMetrics {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", web.MetricsHandler(reg))
		servers = append(servers, web.NewHTTPServer(cfg.Metrics.Addr, mux))
	}
	return servers, nil
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}
	if cmd != nil && cmd.Flags().Changed("metrics") {
		cfg.Metrics.Enabled = metricsFlag
	}

	logging.Setup(deps.Stderr, cfg.LogLevel, true)

	var (
		reg      *prometheus.Registry
		sessOpts []chat.Option
	)
	if cfg.Metrics.Enabled {
		var m *metrics.Metrics
		reg, m = newMetricsRegistry()
		sessOpts = append(sessOpts, chat.WithRecorder(m))
	}

	rt, err := newRuntime(ctx, cfg, sessOpts...)
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	servers, err := buildServers(cfg, rt.session, reg)
	if err != nil {
		return err
	}

	log.Info().
		Str("session", rt.session.ID()).
		Str("model", rt.modelName).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("serving chat")

	return web.ListenAndServe(ctx, servers...)
}
