package task

import "time"

// Node is a unit of work inside (or outside) a workflow. The composite
// index on (status, due_date) keeps the enforcement sweep's candidate scan
// cheap as the table grows.
type Node struct {
	ID           int64      `gorm:"primaryKey"`
	WorkflowID   *int64     `gorm:"column:workflow_id;index"`
	Title        string     `gorm:"column:title;not null"`
	Description  string     `gorm:"column:description"`
	CreatorID    int64      `gorm:"column:creator_id;not null"`
	AssigneeID   int64      `gorm:"column:assignee_id;not null;index"`
	SupervisorID *int64     `gorm:"column:supervisor_id"`
	DueDate      time.Time  `gorm:"column:due_date;index:idx_nodes_status_due,priority:2"`
	IsUrgent     bool       `gorm:"column:is_urgent;default:false"`
	Status       string     `gorm:"column:status;default:pending;index:idx_nodes_status_due,priority:1"`
	SeenAt       *time.Time `gorm:"column:seen_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Node) TableName() string {
	return "nodes"
}

// TaskLog is an append-only audit record of an admin edit to a node.
type TaskLog struct {
	ID                int64     `gorm:"primaryKey"`
	NodeID            int64     `gorm:"column:node_id;not null;index"`
	EditorID          int64     `gorm:"column:editor_id;not null"`
	ChangeDescription string    `gorm:"column:change_description;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (TaskLog) TableName() string {
	return "task_logs"
}
