package postgres

import (
	"errors"
	"time"

	fineDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/fine"
	graphDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/graph"
	taskDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/task"
	"github.com/taskgraph/taskgraph/internal/task"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TaskRepository implements the task.Repository interface using GORM. It
// also serves the enforcement sweep via MarkOverdue.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(node *task.Node) (*task.Node, error) {
	dm := task.ToDataModel(node)
	dm.ID = 0
	if err := r.db.Create(dm).Error; err != nil {
		return nil, err
	}
	return task.FromDataModel(dm), nil
}

func (r *TaskRepository) GetByID(id int64) (*task.Node, error) {
	var dm taskDatamodel.Node
	if err := r.db.First(&dm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, task.ErrTaskNotFound
		}
		return nil, err
	}
	return task.FromDataModel(&dm), nil
}

// ListForUser returns the caller's open tasks with joined usernames and the
// count of direct incomplete prerequisites, urgent first then by due date.
func (r *TaskRepository) ListForUser(userID int64) ([]*task.TaskSummary, error) {
	var summaries []*task.TaskSummary
	err := r.db.Raw(`
		SELECT n.id, n.title, n.status, n.due_date, n.is_urgent, n.seen_at,
			creator.username AS creator_name,
			assignee.username AS assignee_name,
			supervisor.username AS supervisor_name,
			(n.assignee_id = ?) AS is_assignee,
			(SELECT COUNT(*)
				FROM edges e
				JOIN nodes dep ON e.source_node_id = dep.id
				WHERE e.target_node_id = n.id AND dep.status <> ?) AS blocked_by_count
		FROM nodes n
		LEFT JOIN users creator ON n.creator_id = creator.id
		LEFT JOIN users assignee ON n.assignee_id = assignee.id
		LEFT JOIN users supervisor ON n.supervisor_id = supervisor.id
		WHERE (n.assignee_id = ? OR n.supervisor_id = ?) AND n.status <> ?
		ORDER BY n.is_urgent DESC, n.due_date ASC`,
		userID, task.StatusCompleted, userID, userID, task.StatusCompleted,
	).Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// MarkSeen stamps seen_at once. Repeat calls and calls from users other
// than the assignee match zero rows and are not an error.
func (r *TaskRepository) MarkSeen(nodeID, userID int64, seenAt time.Time) error {
	return r.db.Model(&taskDatamodel.Node{}).
		Where("id = ? AND assignee_id = ? AND seen_at IS NULL", nodeID, userID).
		Update("seen_at", seenAt).Error
}

// Complete flips a node to completed only if it is not already there. The
// returned bool reports whether this call won the transition.
func (r *TaskRepository) Complete(id int64, completedAt time.Time) (bool, error) {
	result := r.db.Model(&taskDatamodel.Node{}).
		Where("id = ? AND status <> ?", id, task.StatusCompleted).
		Updates(map[string]interface{}{
			"status":     task.StatusCompleted,
			"updated_at": completedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *TaskRepository) Update(node *task.Node) (*task.Node, error) {
	dm := task.ToDataModel(node)
	result := r.db.Model(&taskDatamodel.Node{}).
		Where("id = ?", dm.ID).
		Updates(map[string]interface{}{
			"workflow_id":   dm.WorkflowID,
			"title":         dm.Title,
			"description":   dm.Description,
			"assignee_id":   dm.AssigneeID,
			"supervisor_id": dm.SupervisorID,
			"due_date":      dm.DueDate,
			"is_urgent":     dm.IsUrgent,
			"status":        dm.Status,
			"updated_at":    dm.UpdatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, task.ErrTaskNotFound
	}
	return r.GetByID(dm.ID)
}

// Delete removes a node and everything hanging off it in one transaction:
// fines, edges in either direction, then the edit history and the node.
func (r *TaskRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("node_id = ?", id).Delete(&fineDatamodel.Fine{}).Error; err != nil {
			return err
		}
		if err := tx.Where("source_node_id = ? OR target_node_id = ?", id, id).
			Delete(&graphDatamodel.Edge{}).Error; err != nil {
			return err
		}
		if err := tx.Where("node_id = ?", id).Delete(&taskDatamodel.TaskLog{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&taskDatamodel.Node{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return task.ErrTaskNotFound
		}
		return nil
	})
}

func (r *TaskRepository) AppendLog(log *task.TaskLog) error {
	dm := &taskDatamodel.TaskLog{
		NodeID:            log.NodeID,
		EditorID:          log.EditorID,
		ChangeDescription: log.ChangeDescription,
		CreatedAt:         log.CreatedAt,
	}
	return r.db.Create(dm).Error
}

func (r *TaskRepository) LogsForNode(nodeID int64) ([]*task.TaskLog, error) {
	var logs []*task.TaskLog
	err := r.db.Raw(`
		SELECT l.id, l.node_id, l.editor_id, u.username AS editor_name,
			l.change_description, l.created_at
		FROM task_logs l
		LEFT JOIN users u ON l.editor_id = u.id
		WHERE l.node_id = ?
		ORDER BY l.created_at DESC`,
		nodeID,
	).Scan(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// MarkOverdue is the enforcement sweep's single conditional update: every
// pending node past its due date flips to overdue in one statement, and the
// RETURNING clause hands back exactly the rows this call transitioned. Rows
// some concurrent sweep already moved do not match, so no node is returned
// twice.
func (r *TaskRepository) MarkOverdue(now time.Time) ([]*task.Node, error) {
	var flipped []*taskDatamodel.Node
	err := r.db.Model(&flipped).
		Clauses(clause.Returning{}).
		Where("status = ? AND due_date < ?", task.StatusPending, now).
		Updates(map[string]interface{}{
			"status":     task.StatusOverdue,
			"updated_at": now,
		}).Error
	if err != nil {
		return nil, err
	}
	return task.FromDataModelSlice(flipped), nil
}
