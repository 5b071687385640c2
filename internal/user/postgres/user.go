package postgres

import (
	userDatamodel "github.com/taskgraph/taskgraph/internal/core/datamodel/user"
	"github.com/taskgraph/taskgraph/internal/user"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id int64) (*user.User, error) {
	var dm userDatamodel.User
	err := r.db.Where("id = ?", id).First(&dm).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return user.FromDataModel(&dm), nil
}

// GetAssignable returns active users with role <= maxRole, excluding admins.
func (r *UserRepository) GetAssignable(maxRole user.Role) ([]*user.User, error) {
	var dms []*userDatamodel.User
	err := r.db.Where("role <= ? AND role < ? AND is_active = ?", int(maxRole), int(user.RoleAdmin), true).
		Order("username ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return user.FromDataModelSlice(dms), nil
}

// AdjustScore applies the delta as a single atomic update; the score has no
// floor and may go negative.
func (r *UserRepository) AdjustScore(userID int64, delta float64) error {
	result := r.db.Model(&userDatamodel.User{}).
		Where("id = ?", userID).
		UpdateColumn("score", gorm.Expr("score + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}
