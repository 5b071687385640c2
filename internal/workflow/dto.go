package workflow

import "github.com/taskgraph/taskgraph/internal/core/common/validation"

type CreateWorkflowDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (dto *CreateWorkflowDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("name", dto.Name).
		Required().
		MaxLength(200)

	validator.Field("description", dto.Description).
		MaxLength(2000)

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateWorkflowDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (dto *UpdateWorkflowDTO) Validate() error {
	validator := validation.NewValidator()

	if dto.Name != nil {
		validator.Field("name", *dto.Name).
			Required().
			MaxLength(200)
	}
	if dto.Description != nil {
		validator.Field("description", *dto.Description).
			MaxLength(2000)
	}

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
