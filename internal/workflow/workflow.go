package workflow

import (
	"errors"
	"time"

	workflowDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/workflow"
)

type Workflow struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Stats summarizes one workflow's nodes by status for the admin overview.
type Stats struct {
	WorkflowID int64  `json:"workflow_id"`
	Name       string `json:"name"`
	Total      int64  `json:"total"`
	Pending    int64  `json:"pending"`
	InProgress int64  `json:"in_progress"`
	Completed  int64  `json:"completed"`
	Overdue    int64  `json:"overdue"`
	Urgent     int64  `json:"urgent"`
}

var ErrWorkflowNotFound = errors.New("workflow not found")

func ToDataModel(w *Workflow) *workflowDatamodel.Workflow {
	return &workflowDatamodel.Workflow{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func FromDataModel(w *workflowDatamodel.Workflow) *Workflow {
	return &Workflow{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func FromDataModelSlice(workflows []*workflowDatamodel.Workflow) []*Workflow {
	result := make([]*Workflow, len(workflows))
	for i, w := range workflows {
		result[i] = FromDataModel(w)
	}
	return result
}
