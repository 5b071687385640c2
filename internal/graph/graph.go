package graph

import (
	"errors"
	"time"

	graphDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/graph"
)

// Edge is a directed precedence constraint between two nodes: the source
// must be completed before the target may be completed.
type Edge struct {
	ID           int64     `json:"id"`
	SourceNodeID int64     `json:"source_node_id"`
	TargetNodeID int64     `json:"target_node_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// FlowNode is a node projection for the master flow chart.
type FlowNode struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	Status       string  `json:"status"`
	WorkflowName *string `json:"workflow_name,omitempty"`
}

// MasterFlow is the full graph snapshot served to the admin chart.
type MasterFlow struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []*Edge    `json:"edges"`
}

var (
	ErrSelfDependency = errors.New("a task cannot depend on itself")
	ErrEdgeNotFound   = errors.New("edge not found")
)

func ToDataModel(e *Edge) *graphDatamodel.Edge {
	return &graphDatamodel.Edge{
		ID:           e.ID,
		SourceNodeID: e.SourceNodeID,
		TargetNodeID: e.TargetNodeID,
		CreatedAt:    e.CreatedAt,
	}
}

func FromDataModel(e *graphDatamodel.Edge) *Edge {
	return &Edge{
		ID:           e.ID,
		SourceNodeID: e.SourceNodeID,
		TargetNodeID: e.TargetNodeID,
		CreatedAt:    e.CreatedAt,
	}
}

func FromDataModelSlice(edges []*graphDatamodel.Edge) []*Edge {
	result := make([]*Edge, len(edges))
	for i, e := range edges {
		result[i] = FromDataModel(e)
	}
	return result
}
