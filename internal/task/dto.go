package task

import (
	"fmt"
	"time"

	errors "github.com/taskgraph/taskgraph/internal"
	"github.com/taskgraph/taskgraph/internal/core/common/validation"
)

type CreateTaskDTO struct {
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	AssigneeID   int64     `json:"assignee_id"`
	SupervisorID *int64    `json:"supervisor_id,omitempty"`
	WorkflowID   *int64    `json:"workflow_id,omitempty"`
	DueDate      time.Time `json:"due_date"`
	IsUrgent     bool      `json:"is_urgent"`
}

func (dto *CreateTaskDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("title", dto.Title).
		Required().
		MaxLength(200)

	validator.Field("description", dto.Description).
		MaxLength(2000)

	validator.Field("due_date", dto.DueDate).
		Required().
		NotPast(time.Now)

	validator.Field("assignee_id", dto.AssigneeID).
		Required()

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateTaskDTO carries a partial update; nil fields are left untouched.
type UpdateTaskDTO struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	AssigneeID   *int64     `json:"assignee_id,omitempty"`
	SupervisorID *int64     `json:"supervisor_id,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	IsUrgent     *bool      `json:"is_urgent,omitempty"`
	Status       *string    `json:"status,omitempty"`
}

func (dto *UpdateTaskDTO) Validate() error {
	validator := validation.NewValidator()

	if dto.Title != nil {
		validator.Field("title", *dto.Title).
			Required().
			MaxLength(200)
	}
	if dto.Description != nil {
		validator.Field("description", *dto.Description).
			MaxLength(2000)
	}
	if dto.DueDate != nil {
		validator.Field("due_date", *dto.DueDate).
			NotPast(time.Now)
	}
	if dto.Status != nil {
		validator.Field("status", *dto.Status).
			Custom(func(value interface{}) *errors.AppError {
				s, ok := value.(string)
				if !ok || !ValidStatus(s) {
					return errors.NewValidationFieldError("status",
						fmt.Sprintf("status must be one of %s, %s, %s, %s",
							StatusPending, StatusInProgress, StatusCompleted, StatusOverdue),
						errors.ErrCodeValidationFailed)
				}
				return nil
			})
	}

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
