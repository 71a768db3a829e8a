package log

import "github.com/mazrean/blobbackup/internal/pkg/log"

// Logger defines the interface for logging operations used by the backup run and the storage providers.
// It provides methods for the debug, info, warn and error levels.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

var DefaultLogger Logger = log.NewLogger(log.Info) // DefaultLogger is the default logger instance
