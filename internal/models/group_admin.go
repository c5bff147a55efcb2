package models

import "time"

// GroupAdmin is the many-to-many admin association. A group may have several
// admins and a user may administer several groups; Group.AdminID points into
// this set for display purposes.
type GroupAdmin struct {
	GroupID    uint64    `gorm:"primarykey;autoIncrement:false" json:"group_id"`
	AdminID    uint64    `gorm:"primarykey;autoIncrement:false" json:"admin_id"`
	AssignedAt time.Time `gorm:"autoCreateTime" json:"assigned_at"`

	// Relations
	Group Group `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Admin User  `gorm:"foreignKey:AdminID" json:"admin,omitempty"`
}
