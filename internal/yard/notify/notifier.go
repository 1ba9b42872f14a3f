package notify

import (
	"github.com/yardtrack-io/yardtrack/pkg/log"
)

// Notifier surfaces operation outcomes to the operator. It is the stand-in
// for UI toasts: every asynchronous boundary converts its failure into one of
// these calls instead of letting the error escape.
type Notifier interface {
	Info(msg string)
	Success(msg string)
	Error(msg string)
}

// logNotifier writes notifications to the structured log.
type logNotifier struct {
	logger log.Logger
}

// NewLogNotifier returns a Notifier backed by the global logger.
func NewLogNotifier() Notifier {
	return &logNotifier{logger: log.WithName("notify")}
}

func (n *logNotifier) Info(msg string)    { n.logger.Info(msg, "kind", "info") }
func (n *logNotifier) Success(msg string) { n.logger.Info(msg, "kind", "success") }
func (n *logNotifier) Error(msg string)   { n.logger.Warn(msg, "kind", "error") }

// Nop returns a Notifier that discards everything. Useful in tests.
func Nop() Notifier { return nopNotifier{} }

type nopNotifier struct{}

func (nopNotifier) Info(string)    {}
func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
