package models

import "time"

// Relation is a directed follow edge: FromUser follows ToUser.
// The reverse edge is a separate row; the relation is not symmetric.
type Relation struct {
	FromUserID uint      `gorm:"primaryKey;autoIncrement:false" json:"from_user_id"`
	ToUserID   uint      `gorm:"primaryKey;autoIncrement:false;index:idx_user_relations_to_user" json:"to_user_id"`
	CreatedAt  time.Time `json:"created_at"`

	FromUser User `gorm:"foreignKey:FromUserID;constraint:OnDelete:CASCADE" json:"-"`
	ToUser   User `gorm:"foreignKey:ToUserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Relation) TableName() string {
	return "user_relations"
}

// FollowStats summarises both directions of a user's relations.
type FollowStats struct {
	UserID         uint  `json:"user_id"`
	FollowingCount int64 `json:"following_count"`
	FollowersCount int64 `json:"followers_count"`
}

// FollowStatus describes the relation between a viewer and another user.
type FollowStatus struct {
	UserID     uint `json:"user_id"`
	IsFollow   bool `json:"is_follow"`
	IsFollower bool `json:"is_follower"`
}
