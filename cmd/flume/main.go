package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crimson-sun/flume/internal/config"
	"github.com/crimson-sun/flume/internal/ingest"
	"github.com/crimson-sun/flume/pkg/flume"
)

// flume reads log lines from stdin (plain text or NDJSON) and ships
// them to the configured GELF endpoint. Configuration comes from
// FLUME_* environment variables.
func main() {
	cfg := config.Load()

	app := flume.New(cfg)
	if err := app.Start(); err != nil {
		log.Fatalf("failed to start shipper: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(os.Stderr, "\nreceived %v, shutting down...\n", sig)
		os.Stdin.Close()
	}()

	fmt.Fprintf(os.Stderr, "flume: shipping to %s:%d over %s\n", cfg.Server, cfg.Port, cfg.Protocol)

	parser := ingest.NewParser()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if ev := parser.Parse(scanner.Text()); ev != nil {
			app.Append(ev)
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		fmt.Fprintf(os.Stderr, "flume: stdin: %v\n", err)
	}

	app.Stop()
	if n := app.Dropped(); n > 0 {
		fmt.Fprintf(os.Stderr, "flume: %d messages dropped under backpressure\n", n)
	}
}
