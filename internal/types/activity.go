package types

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a raw window/URL sample produced by the desktop watcher. The
// engine only reads these; ingestion owns the writes.
type Activity struct {
	ID              uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_activity_user_start" json:"user_id"`
	User            *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	AppName         string    `gorm:"column:app_name;not null" json:"app_name"`
	WindowTitle     string    `gorm:"column:window_title" json:"window_title"`
	URL             *string   `gorm:"column:url" json:"url,omitempty"`
	StartTime       time.Time `gorm:"column:start_time;not null;index:idx_activity_user_start" json:"start_time"`
	DurationSeconds int       `gorm:"column:duration_seconds;not null;default:0" json:"duration_seconds"`
	CreatedAt       time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Activity) TableName() string { return "activity" }

func (a *Activity) EndTime() time.Time {
	return a.StartTime.Add(time.Duration(a.DurationSeconds) * time.Second)
}
