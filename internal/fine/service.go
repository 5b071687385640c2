package fine

import (
	"log/slog"
	"time"
)

// Repository defines the data access methods for the fine ledger.
type Repository interface {
	Create(fine *Fine) (*Fine, error)
	Resolve(id int64) error
	ListForUser(userID int64) ([]*FineRecord, error)
	ListAll() ([]*FineRecord, error)
}

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

// IssueFine records a fine against a user for a node. Callers decide the
// amount; the enforcement sweep passes its configured value.
func (s *Service) IssueFine(userID, nodeID int64, amount float64, reason string) (*Fine, error) {
	f := &Fine{
		UserID:    userID,
		NodeID:    nodeID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	}

	created, err := s.repo.Create(f)
	if err != nil {
		s.logger.Error("failed to issue fine", "error", err, "user_id", userID, "node_id", nodeID)
		return nil, err
	}

	s.logger.Info("fine issued",
		"fine_id", created.ID,
		"user_id", userID,
		"node_id", nodeID,
		"amount", amount)
	return created, nil
}

// ResolveFine marks a fine paid. Resolving an already resolved fine is a
// no-op success; the ledger entry itself is never removed.
func (s *Service) ResolveFine(id int64) error {
	if err := s.repo.Resolve(id); err != nil {
		if err != ErrFineNotFound {
			s.logger.Error("failed to resolve fine", "error", err, "fine_id", id)
		}
		return err
	}
	s.logger.Info("fine resolved", "fine_id", id)
	return nil
}

func (s *Service) ListFines(userID int64) ([]*FineRecord, error) {
	return s.repo.ListForUser(userID)
}

func (s *Service) ListAllFines() ([]*FineRecord, error) {
	return s.repo.ListAll()
}
