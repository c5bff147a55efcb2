package models

import "time"

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

type RegistrationRequest struct {
	ID          uint64        `gorm:"primarykey" json:"request_id"`
	UserID      uint64        `gorm:"uniqueIndex;not null" json:"user_id"`
	Name        string        `gorm:"type:varchar(255);not null" json:"name"`
	Username    string        `gorm:"type:varchar(255)" json:"username,omitempty"`
	Status      RequestStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RequestedAt time.Time     `gorm:"autoCreateTime" json:"requested_at"`
	ReviewedBy  *uint64       `json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time    `json:"reviewed_at,omitempty"`
}
