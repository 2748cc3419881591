// Package notify carries user-facing notifications out of the service layer.
// The gateway surfaces them as flash messages, the CLI prints them; services
// stay ignorant of the presentation.
package notify

import (
	"context"
	"sync"

	"github.com/mkurbatov/landledger/internal/logging"
)

// Notifier receives user-facing messages. Implementations must be safe for
// concurrent use.
type Notifier interface {
	Success(msg string)
	Info(msg string)
	Warning(msg string)
	Error(msg string)
}

// LogNotifier writes notifications to the structured log. It is the default
// sink when no interactive surface is attached.
type LogNotifier struct {
	log logging.Logger
}

func NewLogNotifier(log logging.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Success(msg string) { n.log.Info(context.Background(), msg, "kind", "success") }
func (n *LogNotifier) Info(msg string)    { n.log.Info(context.Background(), msg, "kind", "info") }
func (n *LogNotifier) Warning(msg string) { n.log.Warn(context.Background(), msg, "kind", "warning") }
func (n *LogNotifier) Error(msg string)   { n.log.Error(context.Background(), msg, "kind", "error") }

// Recorder collects notifications in memory. Used in tests and by the
// gateway's flash middleware.
type Recorder struct {
	mu        sync.Mutex
	Successes []string
	Infos     []string
	Warnings  []string
	Errors    []string
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Successes = append(r.Successes, msg)
}

func (r *Recorder) Info(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Infos = append(r.Infos, msg)
}

func (r *Recorder) Warning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, msg)
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}
