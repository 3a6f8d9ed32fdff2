package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/angeloszaimis/status-checker/config"
	"github.com/angeloszaimis/status-checker/internal/checker"
	"github.com/angeloszaimis/status-checker/internal/circuitbreaker"
	"github.com/angeloszaimis/status-checker/internal/httpserver"
	"github.com/angeloszaimis/status-checker/internal/kafka"
	"github.com/angeloszaimis/status-checker/internal/metrics"
	"github.com/angeloszaimis/status-checker/internal/model"
	"github.com/angeloszaimis/status-checker/internal/report"
	"github.com/angeloszaimis/status-checker/internal/scheduler"
	"github.com/angeloszaimis/status-checker/internal/store"
	"github.com/angeloszaimis/status-checker/internal/urls"
	"github.com/angeloszaimis/status-checker/pkg/logger"
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

const (
	metricsBufferSize = 1024
	publishTimeout    = 10 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run executes one check run and returns the process exit code. Results go to
// stdout, logs and usage errors to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(stdout, config.Usage())
			return exitOK
		}
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, config.Usage())
		return exitUsage
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.AddSource, cfg.Logging.Environment, stderr)

	list, err := urls.Collect(cfg.Input.File, cfg.Input.URLs)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n\n%s", err, config.Usage())
		return exitUsage
	}

	timeout, backoff, maxBackoff := cfg.Durations()
	settings := scheduler.Settings{
		Workers:    cfg.Run.Workers,
		Timeout:    timeout,
		Retries:    cfg.Run.Retries,
		Backoff:    backoff,
		MaxBackoff: maxBackoff,
	}

	metricsCtx, stopMetrics := context.WithCancel(context.Background())
	defer stopMetrics()

	metricsCollector := metrics.NewCollector(metricsBufferSize, log)
	metricsCollector.Start(metricsCtx)

	opts := []scheduler.Option{
		scheduler.WithRecorder(metricsCollector),
		scheduler.WithResultHandler(func(result model.Result) {
			report.PrintResult(stdout, result)
		}),
	}
	breakers := newBreakers(cfg.Breaker)
	if breakers != nil {
		opts = append(opts, scheduler.WithBreakers(breakers))
	}

	sched, err := scheduler.New(settings, checker.New(nil), log, opts...)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	}

	srv := startMetricsServer(cfg.Metrics.Address, metricsCollector, log)

	var (
		results    model.Report
		g          errgroup.Group
		startedAt  = time.Now()
		finishedAt time.Time
	)

	if srv != nil {
		g.Go(func() error {
			if err := srv.Serve(); err != nil {
				log.Error("Metrics server stopped", slog.Any("err", err))
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			if srv != nil {
				if err := srv.Shutdown(context.Background()); err != nil {
					log.Error("Error during metrics server shutdown", slog.Any("err", err))
				}
			}
		}()

		var err error
		results, err = sched.Run(ctx, list)
		finishedAt = time.Now()
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, scheduler.ErrInterrupted) {
			log.Warn("Run interrupted", slog.Any("err", err))
			fmt.Fprintln(stderr, "Interrupted, no report written")
			return exitInterrupted
		}
		log.Error("Run failed", slog.Any("err", err))
		return exitFailure
	}

	stopMetrics()
	metricsCollector.Wait()
	snap := metricsCollector.Snapshot()
	log.Debug("Run metrics",
		slog.Int64("attempts", snap.TotalAttempts),
		slog.Int64("retries", snap.Retries),
		slog.Int("hosts", len(snap.Hosts)))

	if breakers != nil {
		if open := breakers.Open(); len(open) > 0 {
			log.Warn("Hosts with open circuits", slog.Any("hosts", open))
		}
	}

	doc := report.NewDocument(uuid.NewString(), startedAt, finishedAt, report.Settings{
		Workers: settings.Workers,
		Timeout: settings.Timeout.String(),
		Retries: settings.Retries,
	}, results)

	report.PrintSummary(stdout, doc.Summary)

	if err := report.WriteFile(cfg.Output.Path, doc, cfg.Output.Format); err != nil {
		log.Error("Failed to write report", slog.String("path", cfg.Output.Path), slog.Any("err", err))
		return exitFailure
	}
	fmt.Fprintf(stdout, "Report written to %s\n", cfg.Output.Path)

	publish(cfg, doc, log)

	return exitOK
}

func newBreakers(cfg config.BreakerConfig) *circuitbreaker.Registry {
	if cfg.Threshold <= 0 {
		return nil
	}
	resetTimeout, _ := config.ParseDuration(cfg.ResetTimeout)
	return circuitbreaker.NewRegistry(cfg.Threshold, resetTimeout)
}

// startMetricsServer returns nil when addr is empty or cannot be bound; the
// run goes ahead without live metrics.
func startMetricsServer(addr string, metricsCollector *metrics.Collector, log *slog.Logger) *httpserver.Server {
	if addr == "" {
		return nil
	}

	srv, err := httpserver.New(addr, setupRouter(metricsCollector))
	if err != nil {
		log.Error("Failed to create metrics server", slog.Any("err", err))
		return nil
	}

	if err := srv.Listen(); err != nil {
		log.Error("Failed to start metrics server", slog.String("addr", addr), slog.Any("err", err))
		return nil
	}

	log.Info("Serving metrics", slog.String("addr", srv.Addr()))

	return srv
}

// publish exports the report to the configured sinks. Failures are logged
// and leave the exit code alone.
func publish(cfg *config.Config, doc report.Document, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if cfg.Kafka.Broker != "" {
		producer := kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
		if err := producer.PublishReport(ctx, doc.RunID, doc.Results); err != nil {
			log.Error("Failed to publish results", slog.String("broker", cfg.Kafka.Broker), slog.Any("err", err))
		} else {
			log.Info("Published results", slog.String("topic", cfg.Kafka.Topic), slog.Int("count", len(doc.Results)))
		}
		if err := producer.Close(); err != nil {
			log.Warn("Failed to close producer", slog.Any("err", err))
		}
	}

	if cfg.Redis.Address != "" {
		ttl, _ := config.ParseDuration(cfg.Redis.TTL)
		reports := store.NewRedisReportStore(cfg.Redis.Address, cfg.Redis.Prefix, ttl)
		if err := reports.SaveReport(ctx, doc); err != nil {
			log.Error("Failed to store report", slog.String("addr", cfg.Redis.Address), slog.Any("err", err))
		} else {
			log.Info("Stored report", slog.String("key", cfg.Redis.Prefix+doc.RunID))
		}
		if err := reports.Close(); err != nil {
			log.Warn("Failed to close report store", slog.Any("err", err))
		}
	}
}
