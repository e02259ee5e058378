package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/ownbox/pkg/types"
)

var errInvalidLogLevel = errors.New("invalid log level")

// newLogger builds the CLI logger. verbose forces debug level.
func newLogger(w io.Writer, level string, verbose bool) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w %q", errInvalidLogLevel, level)
	}
	if verbose {
		lvl = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "ownbox",
		Level:  lvl,
	}), nil
}

// logObserver logs accepted transitions at debug level and rejected ones
// as warnings.
func logObserver(logger *log.Logger) types.Observer {
	return types.ObserverFunc(func(t types.Transition) {
		if t.Rejected() {
			logger.Warn("ownership violation",
				"binding", t.Binding, "op", t.Op, "state", t.From, "reason", t.Violation)
			return
		}
		logger.Debug("transition",
			"binding", t.Binding, "op", t.Op, "from", t.From, "to", t.To, "readers", t.Readers)
	})
}
