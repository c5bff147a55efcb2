package models

import "time"

// TaskAssignee holds one person's individual status on a task. These rows are
// the source of truth: the task's aggregate Status and its legacy
// AssignedToList are both views over them. Rows are cascade-deleted with the
// task.
type TaskAssignee struct {
	TaskID          uint64     `gorm:"primarykey;autoIncrement:false" json:"task_id"`
	UserID          uint64     `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	Status          TaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AssignedAt      time.Time  `gorm:"autoCreateTime" json:"assigned_at"`
	StatusUpdatedAt time.Time  `json:"status_updated_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
