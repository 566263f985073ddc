package types

import (
	"time"

	"github.com/google/uuid"
)

// DeepWorkScore is the per-user, per-day metric bundle. The (user_id, date)
// pair is unique; recomputation upserts onto it and never inserts twice.
type DeepWorkScore struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_score_user_date,unique" json:"user_id"`
	User   *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Date   time.Time `gorm:"column:date;not null;index:idx_score_user_date,unique" json:"date"`

	DeepWorkScore       int `gorm:"column:deep_work_score;not null;default:0" json:"deep_work_score"`
	DeepWorkMinutes     int `gorm:"column:deep_work_minutes;not null;default:0" json:"deep_work_minutes"`
	TotalTrackedMinutes int `gorm:"column:total_tracked_minutes;not null;default:0" json:"total_tracked_minutes"`

	TotalMeetingMinutes int     `gorm:"column:total_meeting_minutes;not null;default:0" json:"total_meeting_minutes"`
	MeetingCount        int     `gorm:"column:meeting_count;not null;default:0" json:"meeting_count"`
	MeetingLoadPercent  float64 `gorm:"column:meeting_load_percent;not null;default:0" json:"meeting_load_percent"`

	FragmentationScore       int     `gorm:"column:fragmentation_score;not null;default:0" json:"fragmentation_score"`
	ContextSwitches          int     `gorm:"column:context_switches;not null;default:0" json:"context_switches"`
	LongestFocusBlockMinutes int     `gorm:"column:longest_focus_block_minutes;not null;default:0" json:"longest_focus_block_minutes"`
	AverageFocusBlockMinutes float64 `gorm:"column:average_focus_block_minutes;not null;default:0" json:"average_focus_block_minutes"`
	FocusBlocksCount         int     `gorm:"column:focus_blocks_count;not null;default:0" json:"focus_blocks_count"`

	ProductiveMinutes  int     `gorm:"column:productive_minutes;not null;default:0" json:"productive_minutes"`
	NeutralMinutes     int     `gorm:"column:neutral_minutes;not null;default:0" json:"neutral_minutes"`
	DistractingMinutes int     `gorm:"column:distracting_minutes;not null;default:0" json:"distracting_minutes"`
	FocusEfficiency    float64 `gorm:"column:focus_efficiency;not null;default:0" json:"focus_efficiency"`

	WorkStartTime *time.Time `gorm:"column:work_start_time" json:"work_start_time,omitempty"`
	WorkEndTime   *time.Time `gorm:"column:work_end_time" json:"work_end_time,omitempty"`
	BestFocusHour *int       `gorm:"column:best_focus_hour" json:"best_focus_hour,omitempty"`

	VsYesterday *float64 `gorm:"column:vs_yesterday" json:"vs_yesterday,omitempty"`
	VsWeekAvg   *float64 `gorm:"column:vs_week_avg" json:"vs_week_avg,omitempty"`
	VsMonthAvg  *float64 `gorm:"column:vs_month_avg" json:"vs_month_avg,omitempty"`

	CalculatedAt time.Time `gorm:"column:calculated_at;not null;default:now()" json:"calculated_at"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (DeepWorkScore) TableName() string { return "deep_work_score" }
