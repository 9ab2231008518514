// Command workgate-demo floods a small executor with a burst of tasks and reports how
// admission control, the bounded queue and shutdown handled them.
//
// Usage:
//
//	workgate-demo [-config demo.yaml] [-workers 2] [-queue 1] [-ceiling 3] [-tasks 6]
//	              [-policy abort|caller-runs] [-shutdown graceful|immediate]
//	              [-metrics-addr :9090 -linger 30s] [-log-level info]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/ygrebnov/workgate"
	"github.com/ygrebnov/workgate/eventlog"
	"github.com/ygrebnov/workgate/metrics"
)

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, os.Stdout); err != nil {
		_ = level.Error(logger).Log("msg", "demo failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(w io.Writer, lvl string) (log.Logger, error) {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)

	var opt level.Option
	switch lvl {
	case "debug":
		opt = level.AllowDebug()
	case "", "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}
	return level.NewFilter(logger, opt), nil
}

// outcome is the fate of one submitted task.
type outcome struct {
	index  int
	seq    uint64
	status string
	err    error
}

// run executes the burst scenario and prints a report to out.
func run(ctx context.Context, cfg demoConfig, logger log.Logger, out io.Writer) error {
	policy, err := cfg.rejectionPolicy()
	if err != nil {
		return err
	}
	mode, err := cfg.shutdownMode()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	var srv *fasthttp.Server
	if cfg.MetricsAddr != "" {
		srv = serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() { _ = srv.Shutdown() }()
	}

	e, err := workgate.New[int](
		ctx,
		workgate.WithWorkers(cfg.Workers),
		workgate.WithQueueCapacity(cfg.QueueCapacity),
		workgate.WithCeiling(cfg.Ceiling),
		workgate.WithAdmissionTimeout(cfg.AdmissionTimeout),
		workgate.WithEnqueueTimeout(cfg.EnqueueTimeout),
		workgate.WithRejectionPolicy(policy),
		workgate.WithObserver(eventlog.New(logger)),
		workgate.WithMetrics(metrics.NewPrometheusProvider(reg)),
	)
	if err != nil {
		return err
	}
	_ = level.Info(logger).Log("msg", "executor started", "executor", e.ID(),
		"workers", cfg.Workers, "queue", cfg.QueueCapacity, "ceiling", e.Stats().Ceiling)

	// the whole burst arrives at once, like concurrent clients
	outcomes := make([]outcome, cfg.Tasks)
	var wg sync.WaitGroup
	for i := 0; i < cfg.Tasks; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = submitOne(e, cfg, i)
		}(i)
	}
	wg.Wait()

	if err := e.Shutdown(mode); err != nil {
		return err
	}
	if err := e.AwaitTermination(cfg.AwaitTimeout); errors.Is(err, workgate.ErrStillRunning) {
		_ = level.Warn(logger).Log("msg", "executor did not terminate in time, forcing shutdown")
		_ = e.Shutdown(workgate.Immediate)
		if err := e.AwaitTermination(cfg.AwaitTimeout); err != nil {
			return err
		}
	}

	report(out, outcomes, e.Stats())

	if srv != nil && cfg.Linger > 0 {
		_ = level.Info(logger).Log("msg", "serving metrics", "addr", cfg.MetricsAddr, "linger", cfg.Linger)
		select {
		case <-time.After(cfg.Linger):
		case <-ctx.Done():
		}
	}
	return nil
}

// submitOne submits the i-th task and waits for its outcome.
func submitOne(e *workgate.Executor[int], cfg demoConfig, i int) outcome {
	h, err := e.Submit(func(ctx context.Context) (int, error) {
		select {
		case <-time.After(cfg.TaskDuration):
		case <-ctx.Done():
			return 0, ctx.Err()
		}
		if cfg.FailEvery > 0 && (i+1)%cfg.FailEvery == 0 {
			return 0, fmt.Errorf("task %d: simulated failure", i)
		}
		return i, nil
	})
	if err != nil {
		return outcome{index: i, status: "Rejected", err: err}
	}

	_, err = h.Get(workgate.NoTimeout)
	return outcome{index: i, seq: h.Seq(), status: h.Status().String(), err: err}
}

func report(out io.Writer, outcomes []outcome, s workgate.Stats) {
	for _, o := range outcomes {
		if o.err != nil {
			fmt.Fprintf(out, "task %2d seq=%-3d %-10s %v\n", o.index, o.seq, o.status, o.err)
			continue
		}
		fmt.Fprintf(out, "task %2d seq=%-3d %s\n", o.index, o.seq, o.status)
	}
	fmt.Fprintf(out,
		"admitted=%d rejected=%d completed=%d failed=%d discarded=%d peak_in_flight=%d/%d state=%s\n",
		s.Admitted, s.Rejected, s.Completed, s.Failed, s.Discarded, s.PeakInFlight, s.Ceiling, s.State)
}

// serveMetrics exposes reg on /metrics through fasthttp.
func serveMetrics(addr string, reg *prometheus.Registry, logger log.Logger) *fasthttp.Server {
	metricsHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			switch string(ctx.Path()) {
			case "/metrics":
				metricsHandler(ctx)
			default:
				ctx.Error("not found", fasthttp.StatusNotFound)
			}
		},
		Name: "workgate-demo",
	}
	go func() {
		if err := srv.ListenAndServe(addr); err != nil {
			_ = level.Error(logger).Log("msg", "metrics server stopped", "err", err)
		}
	}()
	return srv
}
