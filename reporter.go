package csimage

import "log"

// Reporter receives progress and diagnostics from a conversion. Errorf is
// used for fatal conditions; the converter never exits the process itself.
type Reporter interface {
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

type logReporter struct {
	logger  *log.Logger
	verbose bool
}

// NewLogReporter returns a Reporter writing to logger. Informational
// messages are only written if verbose is true, warnings and errors are
// always written.
func NewLogReporter(logger *log.Logger, verbose bool) Reporter {
	return &logReporter{
		logger:  logger,
		verbose: verbose,
	}
}

func (r *logReporter) Infof(format string, v ...interface{}) {
	if r.verbose {
		r.logger.Printf(format, v...)
	}
}

func (r *logReporter) Warnf(format string, v ...interface{}) {
	r.logger.Printf("warning: "+format, v...)
}

func (r *logReporter) Errorf(format string, v ...interface{}) {
	r.logger.Printf("error: "+format, v...)
}

type discard struct{}

func (discard) Infof(string, ...interface{})  {}
func (discard) Warnf(string, ...interface{})  {}
func (discard) Errorf(string, ...interface{}) {}

// Discard is a Reporter that drops everything.
var Discard Reporter = discard{}
