package task

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taskgraph/taskgraph/internal/core/events"
	"github.com/taskgraph/taskgraph/internal/user"
)

// Repository defines the data access methods the task service needs.
type Repository interface {
	Create(node *Node) (*Node, error)
	GetByID(id int64) (*Node, error)
	ListForUser(userID int64) ([]*TaskSummary, error)
	MarkSeen(nodeID, userID int64, seenAt time.Time) error
	Complete(id int64, completedAt time.Time) (bool, error)
	Update(node *Node) (*Node, error)
	Delete(id int64) error
	AppendLog(log *TaskLog) error
	LogsForNode(nodeID int64) ([]*TaskLog, error)
}

// DependencyChecker answers the one-hop blocking question for a node.
type DependencyChecker interface {
	IsBlocked(nodeID int64) (bool, error)
	BlockingTitles(nodeID int64) ([]string, error)
}

// UserDirectory looks up users for assignment role checks.
type UserDirectory interface {
	GetByID(id int64) (*user.User, error)
}

type Service struct {
	repo     Repository
	deps     DependencyChecker
	users    UserDirectory
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, deps DependencyChecker, users UserDirectory, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		deps:     deps,
		users:    users,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateTask creates a node assigned to another user. The assignee must not
// outrank the creator, and admins never receive assignments.
func (s *Service) CreateTask(creatorID int64, creatorRole user.Role, dto CreateTaskDTO) (*Node, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	assignee, err := s.users.GetByID(dto.AssigneeID)
	if err != nil {
		s.logger.Warn("assignee lookup failed", "assignee_id", dto.AssigneeID, "error", err)
		return nil, err
	}
	if assignee.Role > creatorRole || assignee.Role == user.RoleAdmin {
		s.logger.Warn("assignment rejected by role check",
			"creator_id", creatorID,
			"creator_role", creatorRole.String(),
			"assignee_id", assignee.ID,
			"assignee_role", assignee.Role.String())
		return nil, ErrAssigneeRoleTooHigh
	}

	now := time.Now()
	node := &Node{
		WorkflowID:   dto.WorkflowID,
		Title:        dto.Title,
		Description:  dto.Description,
		CreatorID:    creatorID,
		AssigneeID:   dto.AssigneeID,
		SupervisorID: dto.SupervisorID,
		DueDate:      dto.DueDate,
		IsUrgent:     dto.IsUrgent,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(node)
	if err != nil {
		s.logger.Error("failed to create task", "error", err, "title", dto.Title)
		return nil, err
	}

	s.logger.Info("task created",
		"node_id", created.ID,
		"creator_id", creatorID,
		"assignee_id", created.AssigneeID,
		"due_date", created.DueDate)
	return created, nil
}

func (s *Service) GetTask(id int64) (*Node, error) {
	return s.repo.GetByID(id)
}

// ListMyTasks returns the open tasks the user is assigned to or supervises,
// urgent first, then by nearest due date.
func (s *Service) ListMyTasks(userID int64) ([]*TaskSummary, error) {
	summaries, err := s.repo.ListForUser(userID)
	if err != nil {
		s.logger.Error("failed to list tasks", "error", err, "user_id", userID)
		return nil, err
	}
	return summaries, nil
}

// MarkSeen records the first time the assignee viewed the task. Repeat calls
// and calls by non-assignees are silently ignored; the first timestamp wins.
func (s *Service) MarkSeen(nodeID, userID int64) error {
	if err := s.repo.MarkSeen(nodeID, userID, time.Now()); err != nil {
		s.logger.Error("failed to mark task seen", "error", err, "node_id", nodeID, "user_id", userID)
		return err
	}
	return nil
}

// CompleteTask marks a node completed on behalf of its assignee. The checks
// run in a fixed order: existence, assignee, terminal status, then the
// one-hop dependency gate. An overdue task can still be completed; the fine
// already issued for it stands.
func (s *Service) CompleteTask(ctx context.Context, nodeID, requesterID int64) (*Node, error) {
	node, err := s.repo.GetByID(nodeID)
	if err != nil {
		return nil, err
	}

	if node.AssigneeID != requesterID {
		s.logger.Warn("completion rejected, requester is not the assignee",
			"node_id", nodeID, "requester_id", requesterID, "assignee_id", node.AssigneeID)
		return nil, ErrNotAssignee
	}

	if node.IsCompleted() {
		return nil, ErrTaskAlreadyCompleted
	}

	blocked, err := s.deps.IsBlocked(nodeID)
	if err != nil {
		s.logger.Error("dependency check failed", "error", err, "node_id", nodeID)
		return nil, err
	}
	if blocked {
		titles, err := s.deps.BlockingTitles(nodeID)
		if err != nil {
			return nil, err
		}
		return nil, &BlockedError{Titles: titles}
	}

	changed, err := s.repo.Complete(nodeID, time.Now())
	if err != nil {
		s.logger.Error("failed to complete task", "error", err, "node_id", nodeID)
		return nil, err
	}
	if !changed {
		// Lost a race with a concurrent completion.
		return nil, ErrTaskAlreadyCompleted
	}

	node, err = s.repo.GetByID(nodeID)
	if err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		event := events.NewTaskCompletedEvent(node.ID, node.AssigneeID)
		if err := s.eventBus.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish task completed event", "error", err, "node_id", node.ID)
		}
	}

	s.logger.Info("task completed", "node_id", node.ID, "assignee_id", node.AssigneeID)
	return node, nil
}

// UpdateTask applies a partial edit and appends a human-readable entry to
// the node's change history describing exactly which fields moved.
func (s *Service) UpdateTask(editorID, nodeID int64, dto UpdateTaskDTO) (*Node, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	node, err := s.repo.GetByID(nodeID)
	if err != nil {
		return nil, err
	}

	var changes []string

	if dto.Title != nil && *dto.Title != node.Title {
		changes = append(changes, fmt.Sprintf("title changed from %q to %q", node.Title, *dto.Title))
		node.Title = *dto.Title
	}
	if dto.Description != nil && *dto.Description != node.Description {
		changes = append(changes, "description updated")
		node.Description = *dto.Description
	}
	if dto.AssigneeID != nil && *dto.AssigneeID != node.AssigneeID {
		assignee, err := s.users.GetByID(*dto.AssigneeID)
		if err != nil {
			return nil, err
		}
		if assignee.Role == user.RoleAdmin {
			return nil, ErrAssigneeRoleTooHigh
		}
		changes = append(changes, fmt.Sprintf("assignee changed to %s", assignee.Username))
		node.AssigneeID = *dto.AssigneeID
	}
	if dto.SupervisorID != nil {
		if node.SupervisorID == nil || *dto.SupervisorID != *node.SupervisorID {
			changes = append(changes, "supervisor changed")
			node.SupervisorID = dto.SupervisorID
		}
	}
	if dto.DueDate != nil && !dto.DueDate.Equal(node.DueDate) {
		changes = append(changes, fmt.Sprintf("due date changed from %s to %s",
			node.DueDate.Format(time.RFC3339), dto.DueDate.Format(time.RFC3339)))
		node.DueDate = *dto.DueDate
	}
	if dto.IsUrgent != nil && *dto.IsUrgent != node.IsUrgent {
		changes = append(changes, fmt.Sprintf("urgency set to %t", *dto.IsUrgent))
		node.IsUrgent = *dto.IsUrgent
	}
	if dto.Status != nil && *dto.Status != node.Status {
		changes = append(changes, fmt.Sprintf("status changed from %s to %s", node.Status, *dto.Status))
		node.Status = *dto.Status
	}

	if len(changes) == 0 {
		return node, nil
	}

	node.UpdatedAt = time.Now()
	updated, err := s.repo.Update(node)
	if err != nil {
		s.logger.Error("failed to update task", "error", err, "node_id", nodeID)
		return nil, err
	}

	log := &TaskLog{
		NodeID:            nodeID,
		EditorID:          editorID,
		ChangeDescription: strings.Join(changes, "; "),
		CreatedAt:         node.UpdatedAt,
	}
	if err := s.repo.AppendLog(log); err != nil {
		s.logger.Warn("failed to append task log", "error", err, "node_id", nodeID)
	}

	s.logger.Info("task updated", "node_id", nodeID, "editor_id", editorID, "changes", len(changes))
	return updated, nil
}

// DeleteTask removes a node together with its fines, edges and history in
// one transaction. A failure leaves everything in place.
func (s *Service) DeleteTask(nodeID int64) error {
	if err := s.repo.Delete(nodeID); err != nil {
		s.logger.Error("failed to delete task", "error", err, "node_id", nodeID)
		return err
	}
	s.logger.Info("task deleted", "node_id", nodeID)
	return nil
}

func (s *Service) GetTaskLogs(nodeID int64) ([]*TaskLog, error) {
	if _, err := s.repo.GetByID(nodeID); err != nil {
		return nil, err
	}
	return s.repo.LogsForNode(nodeID)
}
