// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Query-farm/vgi-xmlrpc/conformance"
	"github.com/Query-farm/vgi-xmlrpc/xmlrpc"
)

// Serves the conformance methods over HTTP on an ephemeral loopback port
// and prints PORT:<n> once listening. With --unix <path> it listens on a
// unix socket instead and prints UNIX:<path>.
func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if os.Getenv("XMLRPC_DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	route := xmlrpc.NewRoute(
		xmlrpc.WithName("conformance"),
		xmlrpc.WithProtocolName("XML-RPC Conformance"),
		xmlrpc.WithLogger(logger),
	)
	route.SetCompressionLevel(3)
	conformance.RegisterMethods(route)

	var (
		listener net.Listener
		err      error
	)
	if len(os.Args) > 2 && os.Args[1] == "--unix" {
		path := os.Args[2]
		os.Remove(path)
		listener, err = net.Listen("unix", path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to listen on unix socket: %v\n", err)
			os.Exit(1)
		}
		defer os.Remove(path)
		fmt.Printf("UNIX:%s\n", path)
	} else {
		listener, err = net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to listen: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("PORT:%d\n", listener.Addr().(*net.TCPAddr).Port)
	}
	os.Stdout.Sync()

	srv := &http.Server{Handler: route}

	// Catch SIGTERM/SIGINT so the process exits cleanly and flushes
	// coverage data when built with -cover.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigCh
		srv.Shutdown(context.Background())
	}()

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "http serve error: %v\n", err)
		os.Exit(1)
	}
}
