package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTaskCompleted = "task.completed"
	EventTypeTaskOverdue   = "task.overdue"
	EventTypeFineIssued    = "fine.issued"
)

type TaskCompletedEvent struct {
	BaseEvent
	NodeID     int64 `json:"node_id"`
	AssigneeID int64 `json:"assignee_id"`
}

func NewTaskCompletedEvent(nodeID, assigneeID int64) *TaskCompletedEvent {
	return &TaskCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTaskCompleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"node_id":     nodeID,
				"assignee_id": assigneeID,
			},
		},
		NodeID:     nodeID,
		AssigneeID: assigneeID,
	}
}

type TaskOverdueEvent struct {
	BaseEvent
	NodeID     int64     `json:"node_id"`
	AssigneeID int64     `json:"assignee_id"`
	DueDate    time.Time `json:"due_date"`
}

func NewTaskOverdueEvent(nodeID, assigneeID int64, dueDate time.Time) *TaskOverdueEvent {
	return &TaskOverdueEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeTaskOverdue,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"node_id":     nodeID,
				"assignee_id": assigneeID,
				"due_date":    dueDate,
			},
		},
		NodeID:     nodeID,
		AssigneeID: assigneeID,
		DueDate:    dueDate,
	}
}

type FineIssuedEvent struct {
	BaseEvent
	FineID int64   `json:"fine_id"`
	UserID int64   `json:"user_id"`
	NodeID int64   `json:"node_id"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

func NewFineIssuedEvent(fineID, userID, nodeID int64, amount float64, reason string) *FineIssuedEvent {
	return &FineIssuedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeFineIssued,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"fine_id": fineID,
				"user_id": userID,
				"node_id": nodeID,
				"amount":  amount,
				"reason":  reason,
			},
		},
		FineID: fineID,
		UserID: userID,
		NodeID: nodeID,
		Amount: amount,
		Reason: reason,
	}
}
