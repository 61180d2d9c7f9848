package db

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type OpenOptions struct {
	Driver      string
	SQLitePath  string
	PostgresDSN string
	// Logger receives schema migration events. Nil discards them.
	Logger *slog.Logger
}

func Open(options OpenOptions) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(options.Driver)) {
	case "", DriverSQLite:
		return OpenSQLite(options.SQLitePath, options.Logger)
	case DriverPostgres:
		return OpenPostgres(options.PostgresDSN, options.Logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", options.Driver)
	}
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
