package fine

import "time"

type Fine struct {
	ID        int64     `gorm:"primaryKey"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	NodeID    int64     `gorm:"column:node_id;not null;index"`
	Amount    float64   `gorm:"column:amount;default:10"`
	Reason    string    `gorm:"column:reason"`
	Resolved  bool      `gorm:"column:resolved;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Fine) TableName() string {
	return "fines"
}
