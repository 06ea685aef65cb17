// Command gecho runs the uppercase TCP echo server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cat2neat/gecho"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const shutdownGrace = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("gecho", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("addr", gecho.DefaultAddr, "address to listen on")
	backlog := fs.Int("backlog", gecho.DefaultBacklog, "pending connection queue length")
	bufSize := fs.Int("buf", gecho.DefaultBufferSize, "per-connection read buffer size")
	metricsAddr := fs.String("metrics", "", "serve Prometheus metrics on this address (disabled when empty)")
	debug := fs.Bool("debug", false, "log every read, write and close")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	ln, err := gecho.Listen(*addr, *backlog)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "Server is listening on %s...\n", ln.Addr())

	logger := gecho.BuiltinLogger{L: log.New(stdout, "", log.LstdFlags)}
	stats := &gecho.TrafficStatistics{}
	var wrappers []gecho.NewConn
	if *metricsAddr != "" {
		wrappers = append(wrappers, gecho.NewStatsConn)
	}
	if *debug {
		wrappers = append(wrappers, gecho.NewDebugConn(logger))
	}
	srv := &gecho.Server{
		Logger:     logger,
		Statistics: stats,
		NewConn:    gecho.ChainConn(wrappers...),
	}
	srv.SetEchoHandler(*bufSize, gecho.UpperASCII)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, gecho.ErrServerClosed) {
			return err
		}
		return nil
	})

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(gecho.NewCollector(stats), collectors.NewGoCollector())
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{Addr: *metricsAddr, Handler: mux}
		g.Go(func() error {
			if err := metricsSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("gecho: metrics: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("gecho: shutdown: %v; closing remaining connections", err)
			srv.Close()
		}
		if metricsSrv != nil {
			metricsSrv.Shutdown(shutdownCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
