package postgres

import (
	"errors"

	fineDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/fine"
	graphDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/graph"
	taskDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/task"
	workflowDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/workflow"
	"github.com/taskgraph/taskgraph/internal/task"
	"github.com/taskgraph/taskgraph/internal/workflow"
	"gorm.io/gorm"
)

// WorkflowRepository implements the workflow.Repository interface using GORM
type WorkflowRepository struct {
	db *gorm.DB
}

func NewWorkflowRepository(db *gorm.DB) *WorkflowRepository {
	return &WorkflowRepository{db: db}
}

func (r *WorkflowRepository) Create(w *workflow.Workflow) (*workflow.Workflow, error) {
	dm := workflow.ToDataModel(w)
	dm.ID = 0
	if err := r.db.Create(dm).Error; err != nil {
		return nil, err
	}
	return workflow.FromDataModel(dm), nil
}

func (r *WorkflowRepository) List() ([]*workflow.Workflow, error) {
	var dms []*workflowDatamodel.Workflow
	if err := r.db.Order("created_at ASC").Find(&dms).Error; err != nil {
		return nil, err
	}
	return workflow.FromDataModelSlice(dms), nil
}

func (r *WorkflowRepository) GetByID(id int64) (*workflow.Workflow, error) {
	var dm workflowDatamodel.Workflow
	if err := r.db.First(&dm, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, workflow.ErrWorkflowNotFound
		}
		return nil, err
	}
	return workflow.FromDataModel(&dm), nil
}

func (r *WorkflowRepository) Update(w *workflow.Workflow) (*workflow.Workflow, error) {
	dm := workflow.ToDataModel(w)
	result := r.db.Model(&workflowDatamodel.Workflow{}).
		Where("id = ?", dm.ID).
		Updates(map[string]interface{}{
			"name":        dm.Name,
			"description": dm.Description,
			"updated_at":  dm.UpdatedAt,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, workflow.ErrWorkflowNotFound
	}
	return r.GetByID(dm.ID)
}

// Delete cascades through the workflow's nodes: each node's fines, edges
// and logs go first, then the nodes, then the workflow row. One
// transaction; a failure rolls everything back.
func (r *WorkflowRepository) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var nodeIDs []int64
		if err := tx.Model(&taskDatamodel.Node{}).
			Where("workflow_id = ?", id).
			Pluck("id", &nodeIDs).Error; err != nil {
			return err
		}

		if len(nodeIDs) > 0 {
			if err := tx.Where("node_id IN ?", nodeIDs).
				Delete(&fineDatamodel.Fine{}).Error; err != nil {
				return err
			}
			if err := tx.Where("source_node_id IN ? OR target_node_id IN ?", nodeIDs, nodeIDs).
				Delete(&graphDatamodel.Edge{}).Error; err != nil {
				return err
			}
			if err := tx.Where("node_id IN ?", nodeIDs).
				Delete(&taskDatamodel.TaskLog{}).Error; err != nil {
				return err
			}
			if err := tx.Where("workflow_id = ?", id).
				Delete(&taskDatamodel.Node{}).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&workflowDatamodel.Workflow{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return workflow.ErrWorkflowNotFound
		}
		return nil
	})
}

func (r *WorkflowRepository) Stats(id int64) (*workflow.Stats, error) {
	wf, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	stats := &workflow.Stats{
		WorkflowID: wf.ID,
		Name:       wf.Name,
	}

	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := r.db.Model(&taskDatamodel.Node{}).
		Select("status, COUNT(*) AS count").
		Where("workflow_id = ?", id).
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, err
	}

	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case task.StatusPending:
			stats.Pending = c.Count
		case task.StatusInProgress:
			stats.InProgress = c.Count
		case task.StatusCompleted:
			stats.Completed = c.Count
		case task.StatusOverdue:
			stats.Overdue = c.Count
		}
	}

	if err := r.db.Model(&taskDatamodel.Node{}).
		Where("workflow_id = ? AND is_urgent = ?", id, true).
		Count(&stats.Urgent).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
