package journal

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Sink receives the text of every enabled write.
type Sink interface {
	Emit(s *Stream, text string)
}

// TextSink writes raw text: the error category to Err, everything else to Out.
type TextSink struct {
	mu  sync.Mutex
	Out io.Writer
	Err io.Writer
}

// NewTextSink returns a TextSink, defaulting to stdout and stderr.
func NewTextSink(out, errOut io.Writer) *TextSink {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	return &TextSink{Out: out, Err: errOut}
}

func (t *TextSink) Emit(s *Stream, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.Out
	if s.Category() == Error {
		w = t.Err
	}
	_, _ = io.WriteString(w, text)
}

// LogSink turns each write into a zerolog event.
type LogSink struct {
	Logger zerolog.Logger
}

// NewLogSink returns a sink writing through the given logger.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{Logger: logger}
}

func (l *LogSink) Emit(s *Stream, text string) {
	var ev *zerolog.Event
	switch s.Category() {
	case Error:
		ev = l.Logger.Error()
	case Debug:
		ev = l.Logger.Debug()
	case Dump:
		ev = l.Logger.Trace()
	default:
		ev = l.Logger.Info()
	}
	ev.Str("category", string(s.Category())).
		Str("stream", s.Name()).
		Int("rank", s.journal.Rank()).
		Msg(strings.TrimRight(text, "\n"))
}
