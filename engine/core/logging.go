package core

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

// LogConfig configures the process-wide logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level        string
	ReportCaller bool
	// Output defaults to stderr.
	Output io.Writer
}

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "ScreenFX 🎞️ ",
			})
			l.SetLevel(log.InfoLevel)
			singleton = &logger{l}
		})
	return singleton
}

// LogInitialize applies the given configuration to the logger. It can be
// called again, e.g. after the settings file was reloaded.
func LogInitialize(config LogConfig) error {
	l := getLogger()
	if config.Level != "" {
		level, err := log.ParseLevel(config.Level)
		if err != nil {
			return err
		}
		l.SetLevel(level)
	}
	if config.Output != nil {
		l.SetOutput(config.Output)
	}
	l.SetReportCaller(config.ReportCaller)
	return nil
}

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}
