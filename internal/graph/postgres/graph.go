package postgres

import (
	graphDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/graph"
	"github.com/taskgraph/taskgraph/internal/graph"
	"github.com/taskgraph/taskgraph/internal/task"
	"gorm.io/gorm"
)

// GraphRepository implements the graph.Repository interface using GORM
type GraphRepository struct {
	db *gorm.DB
}

func NewGraphRepository(db *gorm.DB) *GraphRepository {
	return &GraphRepository{db: db}
}

func (r *GraphRepository) CreateEdge(sourceID, targetID int64) (*graph.Edge, error) {
	dm := &graphDatamodel.Edge{
		SourceNodeID: sourceID,
		TargetNodeID: targetID,
	}
	if err := r.db.Create(dm).Error; err != nil {
		return nil, err
	}
	return graph.FromDataModel(dm), nil
}

func (r *GraphRepository) DeleteEdge(id int64) error {
	result := r.db.Delete(&graphDatamodel.Edge{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return graph.ErrEdgeNotFound
	}
	return nil
}

func (r *GraphRepository) IncomingEdges(nodeID int64) ([]*graph.Edge, error) {
	var dms []*graphDatamodel.Edge
	err := r.db.Where("target_node_id = ?", nodeID).Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return graph.FromDataModelSlice(dms), nil
}

func (r *GraphRepository) OutgoingEdges(nodeID int64) ([]*graph.Edge, error) {
	var dms []*graphDatamodel.Edge
	err := r.db.Where("source_node_id = ?", nodeID).Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return graph.FromDataModelSlice(dms), nil
}

// IncompleteSourceTitles returns the titles of direct predecessors of the
// node that are not yet completed. The one-hop blocking semantics live in
// this query: only direct sources are considered.
func (r *GraphRepository) IncompleteSourceTitles(nodeID int64) ([]string, error) {
	var titles []string
	err := r.db.
		Table("edges e").
		Select("n.title").
		Joins("JOIN nodes n ON e.source_node_id = n.id").
		Where("e.target_node_id = ? AND n.status <> ?", nodeID, task.StatusCompleted).
		Scan(&titles).Error
	if err != nil {
		return nil, err
	}
	return titles, nil
}

func (r *GraphRepository) MasterFlow() (*graph.MasterFlow, error) {
	var nodes []graph.FlowNode
	err := r.db.
		Table("nodes n").
		Select("n.id, n.title, n.status, w.name AS workflow_name").
		Joins("LEFT JOIN workflows w ON n.workflow_id = w.id").
		Scan(&nodes).Error
	if err != nil {
		return nil, err
	}

	var dms []*graphDatamodel.Edge
	if err := r.db.Find(&dms).Error; err != nil {
		return nil, err
	}

	return &graph.MasterFlow{
		Nodes: nodes,
		Edges: graph.FromDataModelSlice(dms),
	}, nil
}
