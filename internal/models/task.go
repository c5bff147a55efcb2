package models

import (
	"encoding/json"
	"time"
)

// Task.Status is a cached value derived from the task's TaskAssignee rows via
// AggregateStatus; it is recomputed inside the same transaction as every
// assignee mutation. AssignedToList is the legacy denormalized JSON array of
// assignee IDs, resynced from the same rows and never written independently.
type Task struct {
	ID             uint64     `gorm:"primarykey" json:"task_id"`
	Title          string     `gorm:"type:varchar(255)" json:"title"`
	Description    string     `gorm:"type:text;not null" json:"description"`
	Date           string     `gorm:"type:varchar(20);not null" json:"date"`
	Time           string     `gorm:"type:varchar(20);not null" json:"time"`
	GroupID        uint64     `gorm:"not null" json:"group_id"`
	CreatedBy      uint64     `json:"created_by"`
	Status         TaskStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	AssignedToList string     `gorm:"type:text" json:"assigned_to_list"`
	HasMedia       bool       `gorm:"not null;default:false" json:"has_media"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Group     Group          `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Creator   User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Assignees []TaskAssignee `gorm:"foreignKey:TaskID" json:"assignees,omitempty"`
	Media     []TaskMedia    `gorm:"foreignKey:TaskID" json:"media,omitempty"`
}

// AssignedIDs decodes the legacy assignee-ID list. A malformed or empty value
// decodes to an empty list rather than an error, matching how the stored
// column has always been read.
func (t *Task) AssignedIDs() []uint64 {
	if t.AssignedToList == "" {
		return nil
	}
	var ids []uint64
	if err := json.Unmarshal([]byte(t.AssignedToList), &ids); err != nil {
		return nil
	}
	return ids
}

// EncodeAssignedIDs produces the stored form of the legacy assignee-ID list.
func EncodeAssignedIDs(ids []uint64) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(ids)
	return string(b)
}
