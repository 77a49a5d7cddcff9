package liblog

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func Logger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "deferred-gl",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel accepts the level names understood by charmbracelet/log ("debug", "info", "warn", "error", "fatal").
func SetLevel(name string) error {
	level, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	Logger().SetLevel(level)
	return nil
}

func Debugf(msg string, args ...any) {
	Logger().Helper()
	Logger().Debugf(msg, args...)
}

func Infof(msg string, args ...any) {
	Logger().Helper()
	Logger().Infof(msg, args...)
}

func Warnf(msg string, args ...any) {
	Logger().Helper()
	Logger().Warnf(msg, args...)
}

func Errorf(msg string, args ...any) {
	Logger().Helper()
	Logger().Errorf(msg, args...)
}

func Fatalf(msg string, args ...any) {
	Logger().Helper()
	Logger().Fatalf(msg, args...)
}
