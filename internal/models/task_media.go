package models

import "time"

// MaxMediaPerTask caps attachments per task.
const MaxMediaPerTask = 20

type TaskMedia struct {
	ID       uint64    `gorm:"primarykey" json:"media_id"`
	TaskID   uint64    `gorm:"not null;index" json:"task_id"`
	FileID   string    `gorm:"type:varchar(255);not null" json:"file_id"`
	FileType string    `gorm:"type:varchar(20);not null" json:"file_type"`
	FileName string    `gorm:"type:varchar(255)" json:"file_name,omitempty"`
	FileSize int64     `json:"file_size,omitempty"`
	AddedAt  time.Time `gorm:"autoCreateTime" json:"added_at"`
}
