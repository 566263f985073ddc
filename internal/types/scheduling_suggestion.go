package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SuggestionBestMeetingTime = "best_meeting_time"
	SuggestionFocusBlock      = "focus_block"
)

// SchedulingSuggestion is a generated meeting/focus slot for a team. Only the
// status flags mutate after creation.
type SchedulingSuggestion struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeamID uuid.UUID `gorm:"type:uuid;not null;index" json:"team_id"`
	Team   *Team     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeamID;references:ID" json:"team,omitempty"`

	SuggestionType string    `gorm:"column:suggestion_type;not null;default:'best_meeting_time'" json:"suggestion_type"`
	SuggestedStart time.Time `gorm:"column:suggested_start;not null" json:"suggested_start"`
	SuggestedEnd   time.Time `gorm:"column:suggested_end;not null" json:"suggested_end"`
	Reason         string    `gorm:"column:reason" json:"reason"`

	ImpactScore       float64        `gorm:"column:impact_score;not null;default:0" json:"impact_score"`
	AvailabilityScore float64        `gorm:"column:availability_score;not null;default:0" json:"availability_score"`
	AffectedMembers   datatypes.JSON `gorm:"type:jsonb;column:affected_members" json:"affected_members"`

	IsApplied   bool `gorm:"column:is_applied;not null;default:false" json:"is_applied"`
	IsDismissed bool `gorm:"column:is_dismissed;not null;default:false" json:"is_dismissed"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (SchedulingSuggestion) TableName() string { return "scheduling_suggestion" }
