package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventStatusConfirmed = "confirmed"
	EventStatusTentative = "tentative"
	EventStatusCancelled = "cancelled"
)

// CalendarEvent mirrors what calendar sync writes. Cancelled, all-day and
// user-marked focus events are filtered out of meeting math downstream.
type CalendarEvent struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_event_user_start" json:"user_id"`
	User            *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title           string    `gorm:"column:title;not null" json:"title"`
	StartTime       time.Time `gorm:"column:start_time;not null;index:idx_event_user_start" json:"start_time"`
	EndTime         time.Time `gorm:"column:end_time;not null" json:"end_time"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	IsAllDay        bool      `gorm:"column:is_all_day;not null;default:false" json:"is_all_day"`
	IsFocusTime     bool      `gorm:"column:is_focus_time;not null;default:false" json:"is_focus_time"`
	AttendeeCount   int       `gorm:"column:attendee_count;not null;default:1" json:"attendee_count"`
	IsOrganizer     bool      `gorm:"column:is_organizer;not null;default:false" json:"is_organizer"`
	Status          string    `gorm:"column:status;not null;default:'confirmed'" json:"status"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (CalendarEvent) TableName() string { return "calendar_event" }
