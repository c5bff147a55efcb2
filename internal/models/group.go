package models

import "time"

// Group's AdminID is the legacy single-admin pointer. It is denormalized from
// the GroupAdmin set: always either one of the group's current admins or nil,
// repaired whenever the admin set changes.
type Group struct {
	ID        uint64    `gorm:"primarykey" json:"group_id"`
	Name      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	AdminID   *uint64   `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Members []UserGroup  `gorm:"foreignKey:GroupID" json:"members,omitempty"`
	Admins  []GroupAdmin `gorm:"foreignKey:GroupID" json:"admins,omitempty"`
	Tasks   []Task       `gorm:"foreignKey:GroupID" json:"tasks,omitempty"`
}
