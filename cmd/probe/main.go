package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"relayprobe/internal/config"
	"relayprobe/internal/logger"
	"relayprobe/internal/prober"
	"relayprobe/internal/report"
)

// netDialContext overrides the TCP dial used by the prober. Nil keeps the default.
var netDialContext func(ctx context.Context, network, addr string) (net.Conn, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one probe and returns the process exit code: 0 when the
// connection succeeded, 1 otherwise.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("probe", flag.ContinueOnError)
	flags.SetOutput(stderr)
	var (
		configPath = flags.String("config", "", "path to configuration file (YAML)")
		wait       = flags.Duration("wait", 0, "how long to wait for an unsolicited message (default 5s)")
		logLevel   = flags.String("log-level", "", "diagnostic log level written to stderr")
	)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: probe [flags] [endpoint-uri]\n\nendpoint defaults to %s\n\n", config.DefaultEndpoint)
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	console := report.NewConsole(stdout)
	console.Banner()
	if flags.NArg() > 1 {
		console.Failure(fmt.Errorf("expected at most one endpoint, got %d", flags.NArg()))
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		console.Failure(fmt.Errorf("load config: %w", err))
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := logger.Init(stderr, cfg.LogLevel); err != nil {
		console.Failure(fmt.Errorf("log level: %w", err))
		return 1
	}

	endpoint := cfg.Endpoint
	if flags.NArg() == 1 {
		endpoint = flags.Arg(0)
	}
	messageWait := cfg.MessageWait()
	if *wait > 0 {
		messageWait = *wait
	}

	log := logger.WithComponent("probe").With().Str("probe_id", uuid.NewString()).Logger()
	p := prober.New(prober.Options{
		MessageWait:      messageWait,
		HandshakeTimeout: cfg.HandshakeTimeout(),
		Logger:           &log,
		NetDialContext:   netDialContext,
	}, console)

	result, err := p.Probe(ctx, endpoint)
	console.Outcome(err)

	log.Info().
		Str("endpoint", result.Endpoint).
		Bool("ok", result.OK).
		Bool("received", result.Received).
		Str("kind", prober.KindOf(err).String()).
		Msg("probe finished")
	if err != nil {
		return 1
	}
	return 0
}
