package fine

import "github.com/taskgraph/taskgraph/internal/core/common/validation"

// IssueFineDTO is the admin manual penalty request. A zero amount falls
// back to the configured default at the service boundary.
type IssueFineDTO struct {
	UserID int64   `json:"user_id"`
	NodeID int64   `json:"node_id"`
	Amount float64 `json:"amount,omitempty"`
	Reason string  `json:"reason"`
}

func (dto *IssueFineDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("user_id", dto.UserID).
		Required()

	validator.Field("node_id", dto.NodeID).
		Required()

	validator.Field("reason", dto.Reason).
		Required().
		MaxLength(500)

	if err := validator.Validate(); err != nil {
		return err
	}
	return nil
}
