package graph

import (
	"log/slog"
)

// Repository defines the data access methods for edges and graph queries.
type Repository interface {
	CreateEdge(sourceID, targetID int64) (*Edge, error)
	DeleteEdge(id int64) error
	IncomingEdges(nodeID int64) ([]*Edge, error)
	OutgoingEdges(nodeID int64) ([]*Edge, error)
	IncompleteSourceTitles(nodeID int64) ([]string, error)
	MasterFlow() (*MasterFlow, error)
}

// Service answers dependency questions and manages edges. Blocking is a
// one-hop check over direct predecessors only; no transitive closure is
// computed. A target unblocks the instant all of its direct sources are
// completed, regardless of the state further up the chain. Cycles are not
// rejected at creation time; nodes on a cycle simply block each other until
// an admin intervenes.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// CreateEdge persists a dependency. Self-dependencies are rejected.
func (s *Service) CreateEdge(sourceID, targetID int64) (*Edge, error) {
	if sourceID == targetID {
		s.logger.Warn("rejected self-dependency", "node_id", sourceID)
		return nil, ErrSelfDependency
	}

	edge, err := s.repo.CreateEdge(sourceID, targetID)
	if err != nil {
		s.logger.Error("failed to create edge", "error", err, "source_id", sourceID, "target_id", targetID)
		return nil, err
	}

	s.logger.Info("edge created", "edge_id", edge.ID, "source_id", sourceID, "target_id", targetID)
	return edge, nil
}

func (s *Service) DeleteEdge(id int64) error {
	if err := s.repo.DeleteEdge(id); err != nil {
		s.logger.Error("failed to delete edge", "error", err, "edge_id", id)
		return err
	}
	s.logger.Info("edge deleted", "edge_id", id)
	return nil
}

// IsBlocked reports whether the node has at least one direct predecessor
// that is not completed. A node with no incoming edges is never blocked.
func (s *Service) IsBlocked(nodeID int64) (bool, error) {
	titles, err := s.repo.IncompleteSourceTitles(nodeID)
	if err != nil {
		return false, err
	}
	return len(titles) > 0, nil
}

// BlockingTitles returns the titles of incomplete direct prerequisites,
// used to name the blockage in completion errors.
func (s *Service) BlockingTitles(nodeID int64) ([]string, error) {
	return s.repo.IncompleteSourceTitles(nodeID)
}

func (s *Service) IncomingEdges(nodeID int64) ([]*Edge, error) {
	return s.repo.IncomingEdges(nodeID)
}

func (s *Service) OutgoingEdges(nodeID int64) ([]*Edge, error) {
	return s.repo.OutgoingEdges(nodeID)
}

// GetMasterFlow returns every node and edge for the admin flow chart.
func (s *Service) GetMasterFlow() (*MasterFlow, error) {
	flow, err := s.repo.MasterFlow()
	if err != nil {
		s.logger.Error("failed to load master flow", "error", err)
		return nil, err
	}
	return flow, nil
}
