package user

import (
	"log/slog"
)

// Repository defines the data access methods for users.
type Repository interface {
	GetByID(id int64) (*User, error)
	GetAssignable(maxRole Role) ([]*User, error)
	AdjustScore(userID int64, delta float64) error
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

func (s *Service) GetByID(userID int64) (*User, error) {
	u, err := s.repo.GetByID(userID)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", userID)
		return nil, err
	}
	return u, nil
}

// AssignableUsers lists users the requester may assign tasks to: role not
// above the requester's own, and never admins.
func (s *Service) AssignableUsers(requesterRole Role) ([]*User, error) {
	users, err := s.repo.GetAssignable(requesterRole)
	if err != nil {
		s.logger.Error("failed to list assignable users", "error", err, "requester_role", requesterRole.String())
		return nil, err
	}
	return users, nil
}
