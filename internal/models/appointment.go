package models

import (
	"time"
)

// AppointmentStatus represents the lifecycle status of an appointment.
type AppointmentStatus string

const (
	StatusScheduled    AppointmentStatus = "scheduled"
	StatusCompleted    AppointmentStatus = "completed"
	StatusNotCompleted AppointmentStatus = "not_completed"
)

// Appointment represents a scheduled client visit or administrative task.
// ClientID is nil for tasks not tied to a client (office errands and the
// like); those never touch the client's mirrored scheduling status.
type Appointment struct {
	BaseModel
	ClientID    *string           `gorm:"size:36;index" json:"clientId"`
	BrokerID    string            `gorm:"size:36;index;not null" json:"brokerId"`
	ScheduledAt time.Time         `gorm:"index" json:"scheduledAt"`
	Status      AppointmentStatus `gorm:"size:20;default:'scheduled'" json:"status"`
	Title       string            `gorm:"size:255" json:"title"`
	Description string            `gorm:"type:text" json:"description"`

	// Relations
	Client *Client `gorm:"foreignKey:ClientID" json:"-"`
	Broker User    `gorm:"foreignKey:BrokerID" json:"-"`
}

// MirrorStatus translates an appointment status into the value stored on
// the owning client's SchedulingStatus field.
func (s AppointmentStatus) MirrorStatus() SchedulingStatus {
	switch s {
	case StatusCompleted:
		return SchedulingCompleted
	case StatusNotCompleted:
		return SchedulingNotCompleted
	default:
		return SchedulingAwaiting
	}
}
