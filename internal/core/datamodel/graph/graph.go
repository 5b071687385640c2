package graph

import "time"

// Edge is a directed precedence constraint: the source node must reach
// completed before the target node may be completed.
type Edge struct {
	ID           int64     `gorm:"primaryKey"`
	SourceNodeID int64     `gorm:"column:source_node_id;not null;index"`
	TargetNodeID int64     `gorm:"column:target_node_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Edge) TableName() string {
	return "edges"
}
