package graph

import "errors"

// CreateEdgeDTO is the request payload for creating a dependency.
type CreateEdgeDTO struct {
	SourceNodeID int64 `json:"source_node_id"`
	TargetNodeID int64 `json:"target_node_id"`
}

func (dto CreateEdgeDTO) Validate() error {
	if dto.SourceNodeID == 0 {
		return errors.New("source_node_id is required")
	}
	if dto.TargetNodeID == 0 {
		return errors.New("target_node_id is required")
	}
	return nil
}
