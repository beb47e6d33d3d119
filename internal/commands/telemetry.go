package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-sitecontent/pkg/interfaces"
)

// TelemetryStatus is the outcome class of one execution.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo describes a finished execution.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry is invoked once per execution, after the outcome is known.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs the outcome on the execution logger.
func DefaultTelemetry[T command.Message]() Telemetry[T] {
	return func(_ context.Context, _ T, info TelemetryInfo) {
		logger := EnsureLogger(info.Logger)
		switch info.Status {
		case TelemetryStatusSuccess:
			logger.Info("command.execute.success", "duration_ms", info.Duration.Milliseconds())
		case TelemetryStatusContextError:
			logger.Error("command.execute.context_error", "duration_ms", info.Duration.Milliseconds(), "error", info.Error)
		default:
			logger.Error("command.execute.failed", "duration_ms", info.Duration.Milliseconds(), "error", info.Error)
		}
	}
}

// Observer receives every command outcome, typically a metrics recorder.
type Observer interface {
	CommandFinished(command, status string, elapsed time.Duration)
}

// ObservedTelemetry logs like DefaultTelemetry and then reports the outcome
// to observer.
func ObservedTelemetry[T command.Message](observer Observer) Telemetry[T] {
	base := DefaultTelemetry[T]()
	return func(ctx context.Context, msg T, info TelemetryInfo) {
		base(ctx, msg, info)
		if observer != nil {
			observer.CommandFinished(info.Command, string(info.Status), info.Duration)
		}
	}
}
