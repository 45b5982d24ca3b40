package typeorder

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/pyrite-check/pyrite/internal/typesystem"
)

// Event describes an order operation the engine dropped instead of failing,
// such as connecting an annotation that was never inserted.
type Event struct {
	ID         string
	Operation  string
	Annotation typesystem.Type
}

// Reporter receives dropped-operation events. The default reporter logs them;
// hosts tracking checker health can install their own.
type Reporter func(Event)

func logReporter(logger *slog.Logger) Reporter {
	return func(event Event) {
		logger.Warn("invalid type order operation",
			"event_id", event.ID,
			"operation", event.Operation,
			"annotation", event.Annotation.String())
	}
}

func (e *Engine) reportInvalidOperation(operation string, annotation typesystem.Type) {
	e.report(Event{
		ID:         uuid.NewString(),
		Operation:  operation,
		Annotation: annotation,
	})
}
