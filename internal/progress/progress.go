// Package progress reports engine progress through log/slog.
//
// Lines follow the "<task> :: <subtask> :: Start", "<task> :: <subtask> 25%",
// "<task> :: <subtask> :: Finished" pattern, one Start/Finished pair per
// subtask and at most one line per 25% of the subtask's volume.
package progress

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/roach88/pregel/internal/pregel"
)

// step is the percentage granularity of progress lines.
const step = 25

// Logger is a pregel.ProgressSink writing to a slog.Logger.
//
// BeginSubtask and EndSubtask must not race with each other; LogProgress
// is safe for concurrent use.
type Logger struct {
	logger *slog.Logger
	task   string
	volume int64

	mu      sync.RWMutex
	subtask string

	done     atomic.Int64
	reported atomic.Int64
}

var _ pregel.ProgressSink = (*Logger)(nil)

// New creates a sink for task. volume is the amount of work per subtask,
// usually the node count; zero disables percentage lines.
func New(logger *slog.Logger, task string, volume int64) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, task: task, volume: volume}
}

// BeginSubtask implements pregel.ProgressSink.
func (l *Logger) BeginSubtask(name string) {
	l.mu.Lock()
	l.subtask = name
	l.mu.Unlock()
	l.done.Store(0)
	l.reported.Store(0)
	l.logger.Info(fmt.Sprintf("%s :: %s :: Start", l.task, name))
}

// LogProgress implements pregel.ProgressSink.
func (l *Logger) LogProgress(delta int64) {
	done := l.done.Add(delta)
	if l.volume <= 0 {
		return
	}
	pct := min(done*100/l.volume, 100)
	bucket := pct / step * step
	for {
		last := l.reported.Load()
		if bucket <= last {
			return
		}
		if l.reported.CompareAndSwap(last, bucket) {
			break
		}
	}

	l.mu.RLock()
	subtask := l.subtask
	l.mu.RUnlock()
	l.logger.Info(fmt.Sprintf("%s :: %s %d%%", l.task, subtask, bucket))
}

// EndSubtask implements pregel.ProgressSink.
func (l *Logger) EndSubtask(name string) {
	l.logger.Info(fmt.Sprintf("%s :: %s :: Finished", l.task, name),
		"processed", humanize.Comma(l.done.Load()))
}

// Done returns the work reported in the current subtask.
func (l *Logger) Done() int64 {
	return l.done.Load()
}
