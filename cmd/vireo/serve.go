package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vireo-dev/vireo/pkg/metrics"
	"github.com/vireo-dev/vireo/pkg/server"
	"github.com/vireo-dev/vireo/pkg/vdom"
)

func serveCmd() *cobra.Command {
	var (
		addr        string
		allowOrigin bool
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo counter server",
		Long: `Run a server hosting the built-in counter application.

Each WebSocket client on /ws gets its own session. Prometheus metrics
are exposed on /metrics.

Examples:
  vireo serve
  vireo serve --addr=:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(addr, allowOrigin, logLevel)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "Listen address")
	cmd.Flags().BoolVar(&allowOrigin, "allow-any-origin", false, "Accept WebSocket connections from any origin")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	return cmd
}

func runServe(addr string, allowOrigin bool, logLevel string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []server.Option{
		server.WithAddress(addr),
		server.WithLogger(logger),
		server.WithObserver(metrics.NewObserver()),
	}
	if allowOrigin {
		opts = append(opts, server.WithCheckOrigin(func(*http.Request) bool { return true }))
	}

	srv := server.New(func() server.App { return &counter{} }, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}

type incr struct{ by int }
type reset struct{}

// counter is the demo application: two buttons and a running total.
type counter struct {
	total int
}

func (c *counter) Update(msg any) {
	switch m := msg.(type) {
	case incr:
		c.total += m.by
	case reset:
		c.total = 0
	}
}

func (c *counter) View() *vdom.VNode {
	return vdom.Div(
		vdom.Class("counter"),
		vdom.H1(vdom.Text("Counter")),
		vdom.P(vdom.Textf("Total: %d", c.total)),
		vdom.Button(
			vdom.OnClick(func() any { return incr{by: 1} }),
			vdom.Text("+1"),
		),
		vdom.Button(
			vdom.OnClick(func() any { return incr{by: 10} }),
			vdom.Text("+10"),
		),
		vdom.Button(
			vdom.OnClick(func() any { return reset{} }),
			vdom.Text("Reset"),
		),
	)
}
