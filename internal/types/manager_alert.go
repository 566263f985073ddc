package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	AlertOverMeeting  = "over_meeting"
	AlertFocusDeficit = "focus_deficit"
	AlertTeamTrend    = "team_trend"
)

const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	PriorityLow      = "low"
)

// ManagerAlert notifies a team manager that a member (or the whole team when
// TargetUserID is nil) crossed a threshold. At most one non-dismissed alert
// per (team, target_user, alert_type) may exist per calendar day.
type ManagerAlert struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeamID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"team_id"`
	Team         *Team      `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeamID;references:ID" json:"team,omitempty"`
	TargetUserID *uuid.UUID `gorm:"type:uuid;index" json:"target_user_id,omitempty"`
	TargetUser   *User      `gorm:"constraint:OnDelete:SET NULL;foreignKey:TargetUserID;references:ID" json:"target_user,omitempty"`

	AlertType string `gorm:"column:alert_type;not null;index" json:"alert_type"`
	Priority  string `gorm:"column:priority;not null;default:'medium'" json:"priority"`
	Title     string `gorm:"column:title;not null" json:"title"`
	Message   string `gorm:"column:message;not null" json:"message"`

	MetricName     string  `gorm:"column:metric_name" json:"metric_name"`
	MetricValue    float64 `gorm:"column:metric_value;not null;default:0" json:"metric_value"`
	ThresholdValue float64 `gorm:"column:threshold_value;not null;default:0" json:"threshold_value"`
	Suggestion     string  `gorm:"column:suggestion" json:"suggestion"`

	IsDismissed bool       `gorm:"column:is_dismissed;not null;default:false" json:"is_dismissed"`
	DismissedAt *time.Time `gorm:"column:dismissed_at" json:"dismissed_at,omitempty"`
	ExpiresAt   *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ManagerAlert) TableName() string { return "manager_alert" }
