// Package logging hands out named logrus loggers that share level, format and
// output settings.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// Output formats accepted by SetFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	mu      sync.Mutex
	loggers = make(map[string]*Handle)

	// Settings applied to loggers created later.
	level    = logrus.InfoLevel
	output   io.Writer = os.Stderr
	colorful           = isatty.IsTerminal(os.Stderr.Fd())
	jsonFmt  bool
)

var framePlaceHolder = runtime.Frame{Function: "???", File: "???", Line: 0}

// Handle is a named logger. In text mode it formats its own entries as
//
//	2006/01/02 15:04:05.000000 name[pid] <LEVEL>: message [func@file:line] map[k:v]
type Handle struct {
	*logrus.Logger

	name     string
	pid      int
	colorful bool
}

// Format implements logrus.Formatter.
func (l *Handle) Format(e *logrus.Entry) ([]byte, error) {
	lvlStr := strings.ToUpper(e.Level.String())
	if l.colorful {
		var color int

		switch e.Level {
		case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
			color = 31 // RED
		case logrus.WarnLevel:
			color = 33 // YELLOW
		case logrus.InfoLevel:
			color = 34 // BLUE
		default: // logrus.TraceLevel, logrus.DebugLevel
			color = 35 // MAGENTA
		}

		lvlStr = fmt.Sprintf("\033[1;%dm%s\033[0m", color, lvlStr)
	}

	const timeFormat = "2006/01/02 15:04:05.000000"

	caller := e.Caller
	if caller == nil {
		caller = &framePlaceHolder
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%v %s[%d] <%v>: %v [%s@%s:%d]",
		e.Time.Format(timeFormat),
		l.name,
		l.pid,
		lvlStr,
		strings.TrimRight(e.Message, "\n"),
		MethodName(caller.Function),
		path.Base(caller.File),
		caller.Line)

	if len(e.Data) != 0 {
		fmt.Fprintf(&b, " %v", e.Data)
	}

	b.WriteByte('\n')

	return []byte(b.String()), nil
}

// MethodName strips the package path and closure suffixes from a runtime
// function name.
func MethodName(fullFuncName string) string {
	firstSlash := strings.Index(fullFuncName, "/")
	if firstSlash != -1 && firstSlash < len(fullFuncName)-1 {
		fullFuncName = fullFuncName[firstSlash+1:]
	}

	lastDot := strings.LastIndex(fullFuncName, ".")
	if lastDot == -1 || lastDot == len(fullFuncName)-1 {
		return fullFuncName
	}

	method := fullFuncName[lastDot+1:]

	// func1, func2 ...
	if strings.HasPrefix(method, "func") && len(method) > 4 && method[4] >= '0' && method[4] <= '9' {
		if candidate := MethodName(fullFuncName[:lastDot]); candidate != "" {
			method = candidate
		}
	}

	// init.0, gowrap1 leftovers
	if len(method) == 1 && method[0] >= '0' && method[0] <= '9' {
		if candidate := MethodName(fullFuncName[:lastDot]); candidate != "" {
			method = candidate
		}
	}

	return method
}

func newLogger(name string) *Handle {
	l := &Handle{Logger: logrus.New(), name: name, pid: os.Getpid(), colorful: colorful}
	l.SetReportCaller(true)
	l.SetLevel(level)
	l.SetOutput(output)
	l.applyFormat()

	return l
}

func (l *Handle) applyFormat() {
	if jsonFmt {
		l.Formatter = &logrus.JSONFormatter{}

		return
	}

	l.Formatter = l
}

// GetLogger returns the logger registered under name, creating it on first use.
func GetLogger(name string) *Handle {
	mu.Lock()
	defer mu.Unlock()

	if logger, ok := loggers[name]; ok {
		return logger
	}

	logger := newLogger(name)
	loggers[name] = logger

	return logger
}

// SetLevel sets the level of every logger.
func SetLevel(lvl logrus.Level) {
	mu.Lock()
	defer mu.Unlock()

	level = lvl
	for _, logger := range loggers {
		logger.SetLevel(lvl)
	}
}

// SetLevelString parses and applies a level name such as "debug".
func SetLevelString(s string) error {
	lvl, err := logrus.ParseLevel(s)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", s, err)
	}

	SetLevel(lvl)

	return nil
}

// SetFormat switches every logger between FormatText and FormatJSON.
func SetFormat(format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		format = FormatText
	case FormatJSON:
	default:
		return fmt.Errorf("invalid log format %q (must be %s or %s)", format, FormatText, FormatJSON)
	}

	mu.Lock()
	defer mu.Unlock()

	jsonFmt = format == FormatJSON
	for _, logger := range loggers {
		logger.applyFormat()
	}

	return nil
}

// DisableColor turns off level colors.
func DisableColor() {
	mu.Lock()
	defer mu.Unlock()

	colorful = false
	for _, logger := range loggers {
		logger.colorful = false
	}
}

// SetOutput redirects every logger to w. Colors are dropped unless w is a terminal.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	output = w

	if f, ok := w.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		colorful = false
	}

	for _, logger := range loggers {
		logger.SetOutput(w)
		logger.colorful = colorful
	}
}
