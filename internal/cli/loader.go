package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/flashillumination/flashbooks/internal/audit"
	"github.com/flashillumination/flashbooks/internal/config"
	"github.com/flashillumination/flashbooks/internal/engine"
	"github.com/flashillumination/flashbooks/internal/ledger"
	"github.com/flashillumination/flashbooks/internal/views"
)

// setupLogging configures slog based on the verbose flag. Logs go to
// stderr so stdout stays clean for command output.
func setupLogging(verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// resolveAsOf parses the --as-of flag, defaulting to today.
func resolveAsOf(opts *RootOptions) (time.Time, error) {
	if opts.AsOf == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation("2006-01-02", opts.AsOf, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q (want YYYY-MM-DD)", opts.AsOf)
	}
	return t, nil
}

// loadBooks restores a books file through the engine: the records are
// submitted as mutations in dependency order, each one recomputing the
// snapshot, and optionally recorded on an audit trail.
//
// Returns the final snapshot. The engine is stopped before returning;
// one-shot commands only need the result.
func loadBooks(ctx context.Context, opts *RootOptions, path, auditPath string) (*views.Snapshot, error) {
	asOf, err := resolveAsOf(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "resolve reference date", err)
	}

	books, err := config.Load(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load books file", err)
	}

	st, err := ledger.NewStore(books.Settings())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid company settings", err)
	}

	var engOpts []engine.Option
	if auditPath != "" {
		trail, err := audit.Open(auditPath)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "open audit log", err)
		}
		defer trail.Close()

		last, err := trail.LastSeq(ctx)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "read audit log", err)
		}
		engOpts = append(engOpts, engine.WithAudit(trail), engine.WithClock(engine.NewClockAt(last)))
	}

	eng := engine.New(st, asOf, engine.UUIDv7Generator{}, engOpts...)

	runErr := make(chan error, 1)
	go func() {
		runErr <- eng.Run(ctx)
	}()

	for _, m := range books.Mutations() {
		res, err := eng.Mutate(ctx, m)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "apply records", err)
		}
		if !res.OK() {
			eng.Stop()
			<-runErr
			return nil, WrapExitError(ExitFailure,
				fmt.Sprintf("record rejected: %s %s %s", m.Op, m.Entity, m.RecordID()),
				res.Errors[0])
		}
	}

	eng.Stop()
	<-runErr

	return eng.Snapshot(), nil
}
