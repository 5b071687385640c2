package workflow

import (
	"log/slog"
	"time"

	"github.com/taskgraph/taskgraph/internal/task"
	"github.com/taskgraph/taskgraph/internal/user"
)

// Repository defines the data access methods for workflows.
type Repository interface {
	Create(w *Workflow) (*Workflow, error)
	List() ([]*Workflow, error)
	GetByID(id int64) (*Workflow, error)
	Update(w *Workflow) (*Workflow, error)
	Delete(id int64) error
	Stats(id int64) (*Stats, error)
}

// TaskCreator adds nodes on behalf of the workflow service.
type TaskCreator interface {
	CreateTask(creatorID int64, creatorRole user.Role, dto task.CreateTaskDTO) (*task.Node, error)
}

type Service struct {
	repo   Repository
	tasks  TaskCreator
	logger *slog.Logger
}

func NewService(repo Repository, tasks TaskCreator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		tasks:  tasks,
		logger: logger,
	}
}

func (s *Service) CreateWorkflow(dto CreateWorkflowDTO) (*Workflow, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	created, err := s.repo.Create(&Workflow{
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.logger.Error("failed to create workflow", "error", err, "name", dto.Name)
		return nil, err
	}

	s.logger.Info("workflow created", "workflow_id", created.ID, "name", created.Name)
	return created, nil
}

func (s *Service) ListWorkflows() ([]*Workflow, error) {
	return s.repo.List()
}

func (s *Service) GetWorkflow(id int64) (*Workflow, error) {
	return s.repo.GetByID(id)
}

func (s *Service) UpdateWorkflow(id int64, dto UpdateWorkflowDTO) (*Workflow, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	w, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		w.Name = *dto.Name
	}
	if dto.Description != nil {
		w.Description = *dto.Description
	}
	w.UpdatedAt = time.Now()

	updated, err := s.repo.Update(w)
	if err != nil {
		s.logger.Error("failed to update workflow", "error", err, "workflow_id", id)
		return nil, err
	}
	return updated, nil
}

// AddNode creates a task inside the workflow. The same role rules apply as
// for standalone task creation.
func (s *Service) AddNode(workflowID, creatorID int64, creatorRole user.Role, dto task.CreateTaskDTO) (*task.Node, error) {
	if _, err := s.repo.GetByID(workflowID); err != nil {
		return nil, err
	}

	dto.WorkflowID = &workflowID
	return s.tasks.CreateTask(creatorID, creatorRole, dto)
}

// GetStats returns per-status node counts for the workflow.
func (s *Service) GetStats(id int64) (*Stats, error) {
	stats, err := s.repo.Stats(id)
	if err != nil {
		s.logger.Error("failed to load workflow stats", "error", err, "workflow_id", id)
		return nil, err
	}
	return stats, nil
}

// DeleteWorkflow removes the workflow and all of its nodes, together with
// the fines, edges and logs attached to those nodes, in one transaction.
func (s *Service) DeleteWorkflow(id int64) error {
	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete workflow", "error", err, "workflow_id", id)
		return err
	}
	s.logger.Info("workflow deleted", "workflow_id", id)
	return nil
}
