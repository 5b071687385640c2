package postgres

import (
	fineDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/fine"
	"github.com/taskgraph/taskgraph/internal/fine"
	"gorm.io/gorm"
)

// FineRepository implements the fine.Repository interface using GORM
type FineRepository struct {
	db *gorm.DB
}

func NewFineRepository(db *gorm.DB) *FineRepository {
	return &FineRepository{db: db}
}

func (r *FineRepository) Create(f *fine.Fine) (*fine.Fine, error) {
	dm := fine.ToDataModel(f)
	dm.ID = 0
	if err := r.db.Create(dm).Error; err != nil {
		return nil, err
	}
	return fine.FromDataModel(dm), nil
}

// Resolve sets resolved unconditionally for the row; resolving twice leaves
// the row exactly as the first call did.
func (r *FineRepository) Resolve(id int64) error {
	result := r.db.Model(&fineDatamodel.Fine{}).
		Where("id = ?", id).
		Update("resolved", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fine.ErrFineNotFound
	}
	return nil
}

func (r *FineRepository) ListForUser(userID int64) ([]*fine.FineRecord, error) {
	var records []*fine.FineRecord
	err := r.db.Raw(`
		SELECT f.id, f.user_id, u.username, f.node_id, n.title AS node_title,
			f.amount, f.reason, f.resolved, f.created_at
		FROM fines f
		LEFT JOIN users u ON f.user_id = u.id
		LEFT JOIN nodes n ON f.node_id = n.id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC`,
		userID,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FineRepository) ListAll() ([]*fine.FineRecord, error) {
	var records []*fine.FineRecord
	err := r.db.Raw(`
		SELECT f.id, f.user_id, u.username, f.node_id, n.title AS node_title,
			f.amount, f.reason, f.resolved, f.created_at
		FROM fines f
		LEFT JOIN users u ON f.user_id = u.id
		LEFT JOIN nodes n ON f.node_id = n.id
		ORDER BY f.created_at DESC`,
	).Scan(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}
