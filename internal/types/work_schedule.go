package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkSchedule holds the user's work window. WorkDays uses ISO weekday
// numbers (1=Monday .. 7=Sunday); times are "HH:MM" local to the user.
type WorkSchedule struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	User         *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	WorkDays     datatypes.JSON `gorm:"type:jsonb;column:work_days" json:"work_days"`
	StartTime    string         `gorm:"column:start_time;not null;default:'09:00'" json:"start_time"`
	EndTime      string         `gorm:"column:end_time;not null;default:'18:00'" json:"end_time"`
	DayStartHour int            `gorm:"column:day_start_hour;not null;default:0" json:"day_start_hour"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (WorkSchedule) TableName() string { return "work_schedule" }
