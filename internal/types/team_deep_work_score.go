package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// TeamDeepWorkScore aggregates member DeepWorkScores for one day. Unique on
// (team_id, date) with the same upsert discipline as the member score.
type TeamDeepWorkScore struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeamID uuid.UUID `gorm:"type:uuid;not null;index:idx_team_score_date,unique" json:"team_id"`
	Team   *Team     `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeamID;references:ID" json:"team,omitempty"`
	Date   time.Time `gorm:"column:date;not null;index:idx_team_score_date,unique" json:"date"`

	AvgDeepWorkScore      float64 `gorm:"column:avg_deep_work_score;not null;default:0" json:"avg_deep_work_score"`
	TotalDeepWorkMinutes  int     `gorm:"column:total_deep_work_minutes;not null;default:0" json:"total_deep_work_minutes"`
	AvgDeepWorkMinutes    float64 `gorm:"column:avg_deep_work_minutes;not null;default:0" json:"avg_deep_work_minutes"`
	TotalMeetingMinutes   int     `gorm:"column:total_meeting_minutes;not null;default:0" json:"total_meeting_minutes"`
	AvgMeetingMinutes     float64 `gorm:"column:avg_meeting_minutes;not null;default:0" json:"avg_meeting_minutes"`
	AvgMeetingLoadPercent float64 `gorm:"column:avg_meeting_load_percent;not null;default:0" json:"avg_meeting_load_percent"`
	TotalMeetingCount     int     `gorm:"column:total_meeting_count;not null;default:0" json:"total_meeting_count"`

	AvgFragmentationScore float64 `gorm:"column:avg_fragmentation_score;not null;default:0" json:"avg_fragmentation_score"`
	AvgContextSwitches    float64 `gorm:"column:avg_context_switches;not null;default:0" json:"avg_context_switches"`
	AvgLongestFocusBlock  float64 `gorm:"column:avg_longest_focus_block;not null;default:0" json:"avg_longest_focus_block"`

	TotalProductiveMinutes  int     `gorm:"column:total_productive_minutes;not null;default:0" json:"total_productive_minutes"`
	TotalDistractingMinutes int     `gorm:"column:total_distracting_minutes;not null;default:0" json:"total_distracting_minutes"`
	AvgFocusEfficiency      float64 `gorm:"column:avg_focus_efficiency;not null;default:0" json:"avg_focus_efficiency"`

	MemberCount                 int        `gorm:"column:member_count;not null;default:0" json:"member_count"`
	MembersOverMeetingThreshold int        `gorm:"column:members_over_meeting_threshold;not null;default:0" json:"members_over_meeting_threshold"`
	MembersWithDeepWork         int        `gorm:"column:members_with_deep_work;not null;default:0" json:"members_with_deep_work"`
	NeedsAttentionCount         int        `gorm:"column:needs_attention_count;not null;default:0" json:"needs_attention_count"`
	TopPerformerID              *uuid.UUID `gorm:"type:uuid;column:top_performer_id" json:"top_performer_id,omitempty"`

	ScoreDistribution       datatypes.JSON `gorm:"type:jsonb;column:score_distribution" json:"score_distribution"`
	MeetingLoadDistribution datatypes.JSON `gorm:"type:jsonb;column:meeting_load_distribution" json:"meeting_load_distribution"`

	VsYesterday    *float64 `gorm:"column:vs_yesterday" json:"vs_yesterday,omitempty"`
	TrendDirection string   `gorm:"column:trend_direction;not null;default:'stable'" json:"trend_direction"`

	CalculatedAt time.Time `gorm:"column:calculated_at;not null;default:now()" json:"calculated_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (TeamDeepWorkScore) TableName() string { return "team_deep_work_score" }
