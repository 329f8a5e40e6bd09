package logger

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/event"
)

const slowCommand = 200 * time.Millisecond

func NewMongoMonitor() *event.CommandMonitor {
	return &event.CommandMonitor{
		Started: func(ctx context.Context, evt *event.CommandStartedEvent) {
			slog.DebugContext(ctx, "mongo command started",
				slog.String("command", evt.CommandName),
				slog.String("database", evt.DatabaseName),
				slog.Int64("request_id", evt.RequestID),
			)
		},
		Succeeded: func(ctx context.Context, evt *event.CommandSucceededEvent) {
			attrs := []any{
				slog.String("command", evt.CommandName),
				slog.Duration("latency", evt.Duration),
				slog.Int64("request_id", evt.RequestID),
			}
			if evt.Duration > slowCommand {
				slog.WarnContext(ctx, "mongo command slow", attrs...)
				return
			}
			slog.DebugContext(ctx, "mongo command succeeded", attrs...)
		},
		Failed: func(ctx context.Context, evt *event.CommandFailedEvent) {
			slog.ErrorContext(ctx, "mongo command failed",
				slog.String("command", evt.CommandName),
				slog.Duration("latency", evt.Duration),
				slog.Int64("request_id", evt.RequestID),
				slog.Any("err", evt.Failure),
			)
		},
	}
}
