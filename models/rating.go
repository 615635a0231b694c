package models

import "github.com/google/uuid"

// 每个 (user, resource) 至多一条评分记录，重复评分走覆盖
type Rating struct {
	Base
	ResourceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_resource_user" json:"resource_id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ratings_resource_user" json:"user_id"`
	Score      int       `gorm:"not null" json:"score"`
	Feedback   string    `gorm:"type:text" json:"feedback"`

	Resource Resource `gorm:"foreignKey:ResourceID" json:"-"`
	User     User     `gorm:"foreignKey:UserID" json:"-"`
}
