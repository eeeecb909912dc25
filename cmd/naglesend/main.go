// Command naglesend reads lines from standard input and sends them
// downstream in batches.
//
// Lines are added to a bounded nagle.Collection. A sender takes batches of
// up to batch.maxBatchSize lines, waiting at most batch.maxWait for a batch
// to fill, and writes each batch to one destination:
//
//	naglesend                                   # standard output
//	naglesend -ws ws://localhost:8080/ingest    # one WebSocket message per batch
//	naglesend -nats nats://localhost:4222 -subject logs.batch
//
// When standard input ends, or on SIGINT/SIGTERM, buffered lines are flushed
// before exiting, bounded by -drain-timeout.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/MasterOfBinary/gonagle/nagle"
	"github.com/MasterOfBinary/gonagle/processor"
	"github.com/MasterOfBinary/gonagle/sender"
	"github.com/MasterOfBinary/gonagle/source"
	"github.com/MasterOfBinary/gonagle/transport"
)

type flags struct {
	configPath   string
	wsURL        string
	natsURL      string
	subject      string
	metricsAddr  string
	drainTimeout time.Duration
	skipBlank    bool
	verbose      bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "naglesend:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (flags, error) {
	var f flags

	fs := flag.NewFlagSet("naglesend", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&f.wsURL, "ws", "", "send batches to this WebSocket URL")
	fs.StringVar(&f.natsURL, "nats", "", "publish batches to this NATS server")
	fs.StringVar(&f.subject, "subject", "naglesend.batch", "NATS subject")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	fs.DurationVar(&f.drainTimeout, "drain-timeout", 30*time.Second, "how long to wait for buffered lines on shutdown")
	fs.BoolVar(&f.skipBlank, "skip-blank", false, "drop blank lines and trim surrounding whitespace")
	fs.BoolVar(&f.verbose, "v", false, "log every batch")

	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	if fs.NArg() > 0 {
		return flags{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if f.wsURL != "" && f.natsURL != "" {
		return flags{}, errors.New("-ws and -nats are mutually exclusive")
	}
	return f, nil
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	f, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	nlog := nagle.NewSlogLogger(logger)

	cfg := sender.DefaultFileConfig()
	if f.configPath != "" {
		if cfg, err = sender.LoadConfigFile(f.configPath); err != nil {
			return err
		}
	}

	registry := prometheus.NewRegistry()
	stats, err := nagle.NewPrometheusStats(registry, "naglesend")
	if err != nil {
		return err
	}

	opts := append(cfg.CollectionOptions(), nagle.WithLogger(nlog), nagle.WithStats(stats))
	coll, err := nagle.New[[]byte](cfg.Capacity, opts...)
	if err != nil {
		return err
	}

	flush, cleanup, err := newFlusher(ctx, f, stdout)
	if err != nil {
		_ = coll.Close()
		return err
	}

	if f.skipBlank {
		flush = processor.Chain[[]byte](flush,
			&processor.Transform[[]byte]{Func: func(b []byte) ([]byte, error) {
				return bytes.TrimSpace(b), nil
			}},
			&processor.Filter[[]byte]{Predicate: func(b []byte) bool { return len(b) > 0 }},
		)
	}

	s := sender.New(coll, sender.NewConstantConfig(&cfg.Batch), flush,
		sender.WithLogger(nlog),
		sender.WithErrorHandler(func(err error) {
			logger.Error("flush failed", "error", err)
		}))

	// The sender runs until Close so that buffered lines are flushed even
	// after ctx is canceled.
	sender.IgnoreErrors(s.Go(context.Background()))

	eg, ctx := errgroup.WithContext(ctx)
	stopped := make(chan struct{})

	readDone := make(chan error, 1)
	go func() {
		readDone <- (&source.Lines{Reader: stdin}).Read(ctx, coll)
	}()

	eg.Go(func() error {
		defer close(stopped)

		var readErr error
		select {
		case readErr = <-readDone:
			if readErr != nil && !errors.Is(readErr, context.Canceled) {
				logger.Error("reading input", "error", readErr)
			} else {
				readErr = nil
			}
		case <-ctx.Done():
			logger.Info("shutting down", "buffered", coll.Count())
		}

		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.drainTimeout)
		defer cancel()

		if err := s.Close(closeCtx); err != nil {
			return fmt.Errorf("draining: %w", err)
		}
		if cleanup != nil {
			if err := cleanup(); err != nil {
				return err
			}
		}

		st := stats.GetStats()
		logger.Info("done",
			"lines", st.ItemsTaken,
			"batches", st.BatchesTaken,
			"avgBatch", fmt.Sprintf("%.1f", st.AverageBatchSize()))
		return readErr
	})

	if f.metricsAddr != "" {
		srv := metricsServer(f.metricsAddr, registry)
		eg.Go(func() error {
			logger.Info("serving metrics", "addr", f.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			select {
			case <-stopped:
			case <-ctx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return eg.Wait()
}

// newFlusher returns the flush function for the selected destination and a
// cleanup function to run once the sender has drained.
func newFlusher(ctx context.Context, f flags, stdout io.Writer) (sender.FlushFunc[[]byte], func() error, error) {
	switch {
	case f.wsURL != "":
		ws, err := transport.DialWebSocket(ctx, f.wsURL, nil)
		if err != nil {
			return nil, nil, err
		}
		return ws.Flush, ws.Close, nil

	case f.natsURL != "":
		nc, err := nats.Connect(f.natsURL, nats.Name("naglesend"))
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to %s: %w", f.natsURL, err)
		}
		nf, err := transport.NewNATSFlusher(nc, f.subject)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		return nf.Flush, func() error {
			defer nc.Close()
			return nc.Flush()
		}, nil

	default:
		return transport.NewWriterFlusher(stdout).Flush, nil, nil
	}
}

func metricsServer(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
