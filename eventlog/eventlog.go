// Package eventlog logs executor events as structured records through go-kit/log.
package eventlog

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ygrebnov/workgate"
)

// Observer writes every workgate.Event it receives to a go-kit logger.
//
// Levels: task failures, rejections and discards are logged at warn, worker defects at
// error, lifecycle events at info and per-task progress at debug. Filter with
// level.NewFilter to drop the noisy ones.
type Observer struct {
	logger log.Logger
}

// New returns an Observer writing to logger. A nil logger discards everything.
func New(logger log.Logger) *Observer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Observer{logger: logger}
}

// Observe implements workgate.Observer.
func (o *Observer) Observe(ev workgate.Event) {
	kv := []interface{}{
		"event", ev.Kind.String(),
		"executor", ev.Executor,
	}
	if ev.Seq != 0 {
		kv = append(kv, "seq", ev.Seq)
	}
	if ev.Worker >= 0 {
		kv = append(kv, "worker", ev.Worker)
	}

	switch ev.Kind {
	case workgate.EventTaskCompleted, workgate.EventTaskFailed:
		kv = append(kv, "duration", ev.Duration)
	case workgate.EventShutdownRequested:
		kv = append(kv, "mode", ev.Mode.String())
	}
	if ev.Err != nil {
		kv = append(kv, "err", ev.Err)
	}

	_ = leveled(o.logger, ev.Kind).Log(kv...)
}

func leveled(logger log.Logger, k workgate.EventKind) log.Logger {
	switch k {
	case workgate.EventWorkerDefect:
		return level.Error(logger)
	case workgate.EventTaskFailed, workgate.EventRejected, workgate.EventTaskDiscarded:
		return level.Warn(logger)
	case workgate.EventShutdownRequested, workgate.EventTerminated:
		return level.Info(logger)
	default:
		return level.Debug(logger)
	}
}
