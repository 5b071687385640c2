package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	taskDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/task"
)

// Node statuses. Completed is terminal: no transition ever leaves it.
// Overdue is entered only by the enforcement sweep, and only from pending.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusOverdue    = "overdue"
)

func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

type Node struct {
	ID           int64      `json:"id"`
	WorkflowID   *int64     `json:"workflow_id,omitempty"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	CreatorID    int64      `json:"creator_id"`
	AssigneeID   int64      `json:"assignee_id"`
	SupervisorID *int64     `json:"supervisor_id,omitempty"`
	DueDate      time.Time  `json:"due_date"`
	IsUrgent     bool       `json:"is_urgent"`
	Status       string     `json:"status"`
	SeenAt       *time.Time `json:"seen_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (n *Node) IsCompleted() bool {
	return n.Status == StatusCompleted
}

// TaskSummary is the listing row for a user's open tasks. BlockedByCount is
// the number of direct predecessors that are not completed; the listing
// never looks further up the chain.
type TaskSummary struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Status         string     `json:"status"`
	DueDate        time.Time  `json:"due_date"`
	IsUrgent       bool       `json:"is_urgent"`
	SeenAt         *time.Time `json:"seen_at,omitempty"`
	CreatorName    *string    `json:"creator_name,omitempty"`
	AssigneeName   *string    `json:"assignee_name,omitempty"`
	SupervisorName *string    `json:"supervisor_name,omitempty"`
	IsAssignee     bool       `json:"is_assignee"`
	BlockedByCount int64      `json:"blocked_by_count"`
}

// TaskLog is one append-only entry in a node's edit history.
type TaskLog struct {
	ID                int64     `json:"id"`
	NodeID            int64     `json:"node_id"`
	EditorID          int64     `json:"editor_id"`
	EditorName        string    `json:"editor_name,omitempty"`
	ChangeDescription string    `json:"change_description"`
	CreatedAt         time.Time `json:"created_at"`
}

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrNotAssignee          = errors.New("you are not the assignee for this task")
	ErrTaskBlocked          = errors.New("task is blocked by an incomplete dependency")
	ErrTaskAlreadyCompleted = errors.New("task is already completed")
	ErrAssigneeRoleTooHigh  = errors.New("cannot assign tasks to users with a higher role or to admins")
	ErrInvalidStatus        = errors.New("invalid task status")
)

// BlockedError carries the incomplete prerequisites so callers can name the
// blockage instead of returning a generic failure.
type BlockedError struct {
	Titles []string
}

func (e *BlockedError) Error() string {
	if len(e.Titles) == 0 {
		return ErrTaskBlocked.Error()
	}
	return fmt.Sprintf("task is blocked by an incomplete dependency: %s", strings.Join(e.Titles, ", "))
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrTaskBlocked
}

func ToDataModel(n *Node) *taskDatamodel.Node {
	return &taskDatamodel.Node{
		ID:           n.ID,
		WorkflowID:   n.WorkflowID,
		Title:        n.Title,
		Description:  n.Description,
		CreatorID:    n.CreatorID,
		AssigneeID:   n.AssigneeID,
		SupervisorID: n.SupervisorID,
		DueDate:      n.DueDate,
		IsUrgent:     n.IsUrgent,
		Status:       n.Status,
		SeenAt:       n.SeenAt,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

func FromDataModel(n *taskDatamodel.Node) *Node {
	return &Node{
		ID:           n.ID,
		WorkflowID:   n.WorkflowID,
		Title:        n.Title,
		Description:  n.Description,
		CreatorID:    n.CreatorID,
		AssigneeID:   n.AssigneeID,
		SupervisorID: n.SupervisorID,
		DueDate:      n.DueDate,
		IsUrgent:     n.IsUrgent,
		Status:       n.Status,
		SeenAt:       n.SeenAt,
		CreatedAt:    n.CreatedAt,
		UpdatedAt:    n.UpdatedAt,
	}
}

func FromDataModelSlice(nodes []*taskDatamodel.Node) []*Node {
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = FromDataModel(n)
	}
	return result
}

func LogFromDataModel(l *taskDatamodel.TaskLog) *TaskLog {
	return &TaskLog{
		ID:                l.ID,
		NodeID:            l.NodeID,
		EditorID:          l.EditorID,
		ChangeDescription: l.ChangeDescription,
		CreatedAt:         l.CreatedAt,
	}
}
