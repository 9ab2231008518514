package eventlog_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/workgate"
	"github.com/ygrebnov/workgate/eventlog"
)

func TestObserver_FormatsEvents(t *testing.T) {
	var buf bytes.Buffer
	o := eventlog.New(log.NewLogfmtLogger(&buf))

	o.Observe(workgate.Event{Kind: workgate.EventTaskFailed, Executor: "ex-1", Seq: 7, Worker: 2,
		Duration: 5 * time.Millisecond, Err: errors.New("boom")})
	o.Observe(workgate.Event{Kind: workgate.EventShutdownRequested, Executor: "ex-1", Worker: -1,
		Mode: workgate.Immediate})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	require.Contains(t, lines[0], "level=warn")
	require.Contains(t, lines[0], "event=TaskFailed")
	require.Contains(t, lines[0], "executor=ex-1")
	require.Contains(t, lines[0], "seq=7")
	require.Contains(t, lines[0], "worker=2")
	require.Contains(t, lines[0], "duration=5ms")
	require.Contains(t, lines[0], "err=boom")

	require.Contains(t, lines[1], "level=info")
	require.Contains(t, lines[1], "mode=immediate")
	require.NotContains(t, lines[1], "worker=")
}

func TestObserver_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	o := eventlog.New(level.NewFilter(log.NewLogfmtLogger(&buf), level.AllowInfo()))

	o.Observe(workgate.Event{Kind: workgate.EventTaskStarted, Seq: 1, Worker: 0})
	require.Empty(t, buf.String(), "debug events must be filtered out")

	o.Observe(workgate.Event{Kind: workgate.EventWorkerDefect, Worker: 0, Err: workgate.ErrWorkerDefect})
	require.Contains(t, buf.String(), "level=error")
	require.Contains(t, buf.String(), "event=WorkerDefect")
}

func TestObserver_WithExecutor(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogfmtLogger(log.NewSyncWriter(&buf))

	e, err := workgate.New[int](context.Background(),
		workgate.WithWorkers(1),
		workgate.WithQueueCapacity(1),
		workgate.WithObserver(eventlog.New(logger)),
	)
	require.NoError(t, err)

	h, err := e.Submit(workgate.TaskValue[int](func(context.Context) int { return 1 }))
	require.NoError(t, err)
	_, err = h.Get(time.Second)
	require.NoError(t, err)
	require.NoError(t, e.ShutdownAndWait(time.Second))

	out := buf.String()
	for _, kind := range []string{"Admitted", "TaskStarted", "TaskCompleted", "ShutdownRequested", "Terminated"} {
		require.Contains(t, out, "event="+kind)
	}
	require.Contains(t, out, "executor="+e.ID())
}

func TestNew_NilLogger(t *testing.T) {
	require.NotPanics(t, func() {
		eventlog.New(nil).Observe(workgate.Event{Kind: workgate.EventTerminated, Worker: -1})
	})
}
