package models

import "time"

// UserGroup is the membership association. A user may belong to any number of
// groups; the pair is unique and rows are deleted independently of the user
// and group lifecycles that created them.
type UserGroup struct {
	UserID     uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	GroupID    uint64    `gorm:"primarykey;autoIncrement:false" json:"group_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	// Relations
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}
