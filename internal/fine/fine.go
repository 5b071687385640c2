package fine

import (
	"errors"
	"time"

	fineDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/fine"
)

// DefaultReason is attached to fines issued by the enforcement sweep.
const DefaultReason = "Missed deadline"

type Fine struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	NodeID    int64     `json:"node_id"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

// FineRecord is a listing row with the joined node title and username.
type FineRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  *string   `json:"username,omitempty"`
	NodeID    int64     `json:"node_id"`
	NodeTitle *string   `json:"node_title,omitempty"`
	Amount    float64   `json:"amount"`
	Reason    string    `json:"reason"`
	Resolved  bool      `json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
}

var ErrFineNotFound = errors.New("fine not found")

func ToDataModel(f *Fine) *fineDatamodel.Fine {
	return &fineDatamodel.Fine{
		ID:        f.ID,
		UserID:    f.UserID,
		NodeID:    f.NodeID,
		Amount:    f.Amount,
		Reason:    f.Reason,
		Resolved:  f.Resolved,
		CreatedAt: f.CreatedAt,
	}
}

func FromDataModel(f *fineDatamodel.Fine) *Fine {
	return &Fine{
		ID:        f.ID,
		UserID:    f.UserID,
		NodeID:    f.NodeID,
		Amount:    f.Amount,
		Reason:    f.Reason,
		Resolved:  f.Resolved,
		CreatedAt: f.CreatedAt,
	}
}
