package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/inview/cmd/inview/internal/config"
	"github.com/go-drift/inview/cmd/inview/internal/sim"
	"github.com/go-drift/inview/pkg/metrics"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

func newSimulateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Replay a scenario and print visibility changes",
		Long: `Replays a scenario on a virtual clock. Each visibility vector the tracker
publishes is printed as it happens (text) or as a report at the end (yaml).

With --metrics-addr, session counters are served on /metrics after the run
until the process is interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: runSimulate,
	}
	c.Flags().StringP("format", "f", formatText, "Output format (text, yaml)")
	c.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address after the run")
	return c
}

func runSimulate(cmd *cobra.Command, args []string) error {
	logger, err := setupLogging(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	if format != formatText && format != formatYAML {
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatText, formatYAML)
	}
	addr, _ := cmd.Flags().GetString("metrics-addr")

	sc, err := config.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	opts := []sim.Option{sim.WithLogger(logger)}
	var reg *prometheus.Registry
	if addr != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		opts = append(opts, sim.WithCollector(metrics.NewCollector(reg)))
	}
	if format == formatText {
		names := targetNames(sc)
		opts = append(opts, sim.WithEmitHandler(func(e sim.Emission) {
			printEmission(out, names, e)
		}))
	}

	report, err := sim.New(sc, opts...).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("simulation finished", "steps", len(sc.Steps), "emissions", len(report.Emissions))

	if format == formatYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
	}

	if addr == "" {
		return nil
	}
	return serveMetrics(ctx, addr, reg, logger)
}

func targetNames(sc *config.Scenario) []string {
	names := make([]string, len(sc.Targets))
	for i, t := range sc.Targets {
		names[i] = t.Name
	}
	return names
}

func printEmission(w io.Writer, names []string, e sim.Emission) {
	var b strings.Builder
	fmt.Fprintf(&b, "step %d", e.Step)
	if e.Label != "" {
		fmt.Fprintf(&b, " (%s)", e.Label)
	}
	b.WriteString(":")
	for i, v := range e.Values {
		fmt.Fprintf(&b, " %s=%t", names[i], v)
	}
	fmt.Fprintln(w, b.String())
}

// serveMetrics serves reg until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving metrics", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop metrics server: %w", err)
	}
	return nil
}
