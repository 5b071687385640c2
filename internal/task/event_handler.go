package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taskgraph/taskgraph/internal/core/events"
)

// EventHandler turns task lifecycle events into audit log entries, so a
// node's history shows completions, sweep transitions and fines alongside
// manual edits.
type EventHandler struct {
	repo   Repository
	logger *slog.Logger
}

func NewEventHandler(repo Repository, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		repo:   repo,
		logger: logger,
	}
}

func (h *EventHandler) HandleTaskCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(*events.TaskCompletedEvent)
	if !ok {
		h.logger.Error("invalid event type for task completed handler", "event_type", event.EventType())
		return fmt.Errorf("expected TaskCompletedEvent, got %T", event)
	}

	log := &TaskLog{
		NodeID:            completed.NodeID,
		EditorID:          completed.AssigneeID,
		ChangeDescription: "task completed",
		CreatedAt:         completed.OccurredAt(),
	}
	if err := h.repo.AppendLog(log); err != nil {
		h.logger.Error("failed to append completion log",
			"error", err,
			"node_id", completed.NodeID,
			"event_id", completed.EventID())
		return fmt.Errorf("audit log failed for node %d: %w", completed.NodeID, err)
	}
	return nil
}

func (h *EventHandler) HandleTaskOverdue(ctx context.Context, event events.Event) error {
	overdue, ok := event.(*events.TaskOverdueEvent)
	if !ok {
		h.logger.Error("invalid event type for task overdue handler", "event_type", event.EventType())
		return fmt.Errorf("expected TaskOverdueEvent, got %T", event)
	}

	log := &TaskLog{
		NodeID:   overdue.NodeID,
		EditorID: overdue.AssigneeID,
		ChangeDescription: fmt.Sprintf("status changed to %s: due date %s passed",
			StatusOverdue, overdue.DueDate.Format(time.RFC3339)),
		CreatedAt: overdue.OccurredAt(),
	}
	if err := h.repo.AppendLog(log); err != nil {
		h.logger.Error("failed to append overdue log",
			"error", err,
			"node_id", overdue.NodeID,
			"event_id", overdue.EventID())
		return fmt.Errorf("audit log failed for node %d: %w", overdue.NodeID, err)
	}
	return nil
}

func (h *EventHandler) HandleFineIssued(ctx context.Context, event events.Event) error {
	issued, ok := event.(*events.FineIssuedEvent)
	if !ok {
		h.logger.Error("invalid event type for fine issued handler", "event_type", event.EventType())
		return fmt.Errorf("expected FineIssuedEvent, got %T", event)
	}

	log := &TaskLog{
		NodeID:            issued.NodeID,
		EditorID:          issued.UserID,
		ChangeDescription: fmt.Sprintf("fine issued: amount %.2f (%s)", issued.Amount, issued.Reason),
		CreatedAt:         issued.OccurredAt(),
	}
	if err := h.repo.AppendLog(log); err != nil {
		h.logger.Error("failed to append fine log",
			"error", err,
			"node_id", issued.NodeID,
			"fine_id", issued.FineID,
			"event_id", issued.EventID())
		return fmt.Errorf("audit log failed for node %d: %w", issued.NodeID, err)
	}
	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeTaskCompleted, h.HandleTaskCompleted)
	eventBus.Subscribe(events.EventTypeTaskOverdue, h.HandleTaskOverdue)
	eventBus.Subscribe(events.EventTypeFineIssued, h.HandleFineIssued)

	h.logger.Info("task event handlers registered",
		"handlers", []string{
			events.EventTypeTaskCompleted,
			events.EventTypeTaskOverdue,
			events.EventTypeFineIssued,
		})
}
