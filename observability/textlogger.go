package observability

import (
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
)

// textLogger writes key=value lines to an io.Writer. No third-party
// structured logging library appears anywhere in the dependency corpus
// this project is grounded on, so the concrete Logger implementation used
// by the daemon entrypoint is a small stdlib-backed one; everything above
// it (Logger, Field, With) is the same interface the rest of the codebase
// already logs against.
type textLogger struct {
	mu     *sync.Mutex
	out    *log.Logger
	fields []Field
}

// NewTextLogger builds a Logger that writes "level msg key=val ..." lines
// to w, one per call.
func NewTextLogger(w io.Writer) Logger {
	return &textLogger{mu: &sync.Mutex{}, out: log.New(w, "", log.LstdFlags|log.Lmicroseconds)}
}

func (l *textLogger) log(level, msg string, fields ...Field) {
	var b strings.Builder
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)
	for _, f := range append(append([]Field{}, l.fields...), fields...) {
		fmt.Fprintf(&b, " %s=%v", f.Key(), f.Value())
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Println(b.String())
}

func (l *textLogger) Debug(msg string, fields ...Field) { l.log("DEBUG", msg, fields...) }
func (l *textLogger) Info(msg string, fields ...Field)  { l.log("INFO", msg, fields...) }
func (l *textLogger) Warn(msg string, fields ...Field)  { l.log("WARN", msg, fields...) }
func (l *textLogger) Error(msg string, fields ...Field) { l.log("ERROR", msg, fields...) }

func (l *textLogger) With(fields ...Field) Logger {
	merged := append(append([]Field{}, l.fields...), fields...)
	return &textLogger{mu: l.mu, out: l.out, fields: merged}
}
