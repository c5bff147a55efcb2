package models

import "time"

// TaskHistory is an append-only audit trail. Entries are written in the same
// transaction as the change they record.
type TaskHistory struct {
	ID        uint64    `gorm:"primarykey" json:"history_id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	Action    string    `gorm:"type:varchar(50);not null" json:"action"`
	OldValue  string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue  string    `gorm:"type:text" json:"new_value,omitempty"`
	ChangedBy uint64    `json:"changed_by"`
	ChangedAt time.Time `gorm:"autoCreateTime" json:"changed_at"`
}
