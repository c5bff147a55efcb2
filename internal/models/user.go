package models

import "time"

// User identities come from the chat platform, so the primary key is
// supplied by the caller rather than generated. Users are never hard-removed:
// Deleted implies Banned, and deleted users stay resolvable for historical
// task records while disappearing from membership and assignment listings.
type User struct {
	ID         uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Username   string    `gorm:"type:varchar(255)" json:"username,omitempty"`
	Registered bool      `gorm:"not null;default:false" json:"registered"`
	Banned     bool      `gorm:"not null;default:false" json:"banned"`
	Deleted    bool      `gorm:"not null;default:false" json:"deleted"`
	CreatedAt  time.Time `json:"created_at"`

	// Relations
	CreatedTasks []Task         `gorm:"foreignKey:CreatedBy" json:"-"`
	Assignments  []TaskAssignee `gorm:"foreignKey:UserID" json:"-"`
	Groups       []UserGroup    `gorm:"foreignKey:UserID" json:"-"`
}
