package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ygrebnov/workgate"
)

// demoConfig is the demo configuration, loadable from YAML and overridable by flags.
type demoConfig struct {
	Workers          uint          `yaml:"workers"`
	QueueCapacity    uint          `yaml:"queue_capacity"`
	Ceiling          uint          `yaml:"ceiling"`
	AdmissionTimeout time.Duration `yaml:"admission_timeout"`
	EnqueueTimeout   time.Duration `yaml:"enqueue_timeout"`
	Policy           string        `yaml:"policy"`   // abort | caller-runs
	Shutdown         string        `yaml:"shutdown"` // graceful | immediate
	AwaitTimeout     time.Duration `yaml:"await_timeout"`

	Tasks        int           `yaml:"tasks"`
	TaskDuration time.Duration `yaml:"task_duration"`
	FailEvery    int           `yaml:"fail_every"` // every n-th task returns an error; 0 disables

	LogLevel    string        `yaml:"log_level"` // debug | info | warn | error
	MetricsAddr string        `yaml:"metrics_addr"`
	Linger      time.Duration `yaml:"linger"`
}

// defaultDemoConfig mirrors the resource-exhaustion scenario: two workers, a one-slot
// queue and more tasks than the executor can hold.
func defaultDemoConfig() demoConfig {
	return demoConfig{
		Workers:          2,
		QueueCapacity:    1,
		Ceiling:          0, // QueueCapacity + Workers
		AdmissionTimeout: 100 * time.Millisecond,
		EnqueueTimeout:   time.Second,
		Policy:           "abort",
		Shutdown:         "graceful",
		AwaitTimeout:     2 * time.Second,
		Tasks:            6,
		TaskDuration:     500 * time.Millisecond,
		LogLevel:         "info",
	}
}

// loadYAML overlays the YAML file at path onto cfg.
func loadYAML(path string, cfg *demoConfig) error {
	// #nosec G304 -- path is an operator-supplied flag.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config file %s: %w", path, err)
	}
	return nil
}

// parseConfig builds the configuration from defaults, then an optional YAML file,
// then explicitly set flags.
func parseConfig(args []string) (demoConfig, error) {
	cfg := defaultDemoConfig()
	fs := flag.NewFlagSet("workgate-demo", flag.ContinueOnError)

	path := fs.String("config", "", "YAML configuration file")
	var flags demoConfig
	fs.UintVar(&flags.Workers, "workers", cfg.Workers, "number of workers (W)")
	fs.UintVar(&flags.QueueCapacity, "queue", cfg.QueueCapacity, "queue capacity (N)")
	fs.UintVar(&flags.Ceiling, "ceiling", cfg.Ceiling, "in-flight ceiling (M), 0 for N+W")
	fs.DurationVar(&flags.AdmissionTimeout, "admission-timeout", cfg.AdmissionTimeout, "admission wait")
	fs.DurationVar(&flags.EnqueueTimeout, "enqueue-timeout", cfg.EnqueueTimeout, "queue space wait")
	fs.StringVar(&flags.Policy, "policy", cfg.Policy, "rejection policy: abort or caller-runs")
	fs.StringVar(&flags.Shutdown, "shutdown", cfg.Shutdown, "shutdown mode: graceful or immediate")
	fs.DurationVar(&flags.AwaitTimeout, "await", cfg.AwaitTimeout, "termination wait before escalating")
	fs.IntVar(&flags.Tasks, "tasks", cfg.Tasks, "number of tasks to submit")
	fs.DurationVar(&flags.TaskDuration, "task-duration", cfg.TaskDuration, "how long each task sleeps")
	fs.IntVar(&flags.FailEvery, "fail-every", cfg.FailEvery, "every n-th task fails, 0 disables")
	fs.StringVar(&flags.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&flags.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve /metrics on this address")
	fs.DurationVar(&flags.Linger, "linger", cfg.Linger, "keep serving metrics this long after the run")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if *path != "" {
		if err := loadYAML(*path, &cfg); err != nil {
			return cfg, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Workers = flags.Workers
		case "queue":
			cfg.QueueCapacity = flags.QueueCapacity
		case "ceiling":
			cfg.Ceiling = flags.Ceiling
		case "admission-timeout":
			cfg.AdmissionTimeout = flags.AdmissionTimeout
		case "enqueue-timeout":
			cfg.EnqueueTimeout = flags.EnqueueTimeout
		case "policy":
			cfg.Policy = flags.Policy
		case "shutdown":
			cfg.Shutdown = flags.Shutdown
		case "await":
			cfg.AwaitTimeout = flags.AwaitTimeout
		case "tasks":
			cfg.Tasks = flags.Tasks
		case "task-duration":
			cfg.TaskDuration = flags.TaskDuration
		case "fail-every":
			cfg.FailEvery = flags.FailEvery
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "metrics-addr":
			cfg.MetricsAddr = flags.MetricsAddr
		case "linger":
			cfg.Linger = flags.Linger
		}
	})
	return cfg, nil
}

func (c demoConfig) rejectionPolicy() (workgate.RejectionPolicy, error) {
	switch c.Policy {
	case "", "abort":
		return workgate.RejectAbort, nil
	case "caller-runs":
		return workgate.RejectCallerRuns, nil
	default:
		return 0, fmt.Errorf("unknown rejection policy %q", c.Policy)
	}
}

func (c demoConfig) shutdownMode() (workgate.ShutdownMode, error) {
	switch c.Shutdown {
	case "", "graceful":
		return workgate.Graceful, nil
	case "immediate":
		return workgate.Immediate, nil
	default:
		return 0, fmt.Errorf("unknown shutdown mode %q", c.Shutdown)
	}
}
