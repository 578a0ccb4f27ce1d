// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

// Command xmlrpcd serves the conformance and benchmark XML-RPC fixtures
// over HTTP.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"

	"github.com/Query-farm/vgi-xmlrpc/benchmark"
	"github.com/Query-farm/vgi-xmlrpc/conformance"
	"github.com/Query-farm/vgi-xmlrpc/xmlrpc"
	xmlotel "github.com/Query-farm/vgi-xmlrpc/xmlrpc/otel"
)

var (
	App = NewApp()
)

// NewApp creates the command line application.
func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "xmlrpcd"
	app.Usage = "XML-RPC reference server"
	app.Version = "0.1.0"
	app.Flags = AppFlags
	app.Action = entry
	return app
}

// newLogger builds the process logger from cfg.
func newLogger(cfg Log) (*log.Logger, error) {
	logger := log.New()
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, errors.Wrap(err, "log level")
	}
	logger.SetLevel(level)
	if cfg.Format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}

// newHandler builds the HTTP handler serving the fixtures at cfg.Server.Path.
func newHandler(cfg *Config, logger *log.Logger) http.Handler {
	route := xmlrpc.NewRoute(
		xmlrpc.WithName(cfg.Server.Name),
		xmlrpc.WithProtocolName(cfg.Server.Name),
		xmlrpc.WithLogger(logger),
		xmlrpc.WithMaxBodySize(cfg.Server.MaxBodySize),
		xmlrpc.WithPages(cfg.Server.Pages),
	)
	route.SetCompressionLevel(cfg.Server.CompressionLevel)
	if cfg.Server.RateLimit > 0 {
		route.Use(xmlrpc.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	}
	benchmark.RegisterMethods(route)
	conformance.RegisterMethods(route)

	if cfg.Otel.Stdout {
		xmlotel.InstrumentRoute(route, xmlotel.DefaultConfig())
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, route)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	if !cfg.CORS.Enabled {
		return mux
	}
	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Content-Type", "Content-Encoding", "Accept-Encoding", "X-Request-Id", "traceparent", "tracestate"},
		ExposedHeaders: []string{"X-Request-Id"},
	}).Handler(mux)
}

func entry(ctx *cli.Context) error {
	cfg, err := GetConfig(ctx)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	shutdownTelemetry := func(context.Context) error { return nil }
	if cfg.Otel.Stdout {
		if shutdownTelemetry, err = setupStdoutTelemetry(os.Stdout); err != nil {
			return err
		}
		logger.Info("OpenTelemetry stdout exporters are enabled")
	}

	addr := net.JoinHostPort(cfg.Server.ListenAddress, strconv.Itoa(cfg.Server.ListenPort))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	srv := &http.Server{
		Handler:           newHandler(cfg, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.WithFields(log.Fields{
		"addr": listener.Addr().String(),
		"path": cfg.Server.Path,
		"cors": cfg.CORS.Enabled,
	}).Info("xmlrpcd listening")

	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "http serve")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("error while shutting down the http server")
		}
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.WithError(err).Warn("error while flushing telemetry")
		}
		return nil
	})
	return g.Wait()
}

func main() {
	if err := App.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
