package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/types"
)

func newTestTeamService() *TeamDeepWorkService {
	return &TeamDeepWorkService{
		meetingLoadThreshold:  40,
		criticalLoadThreshold: 60,
		deepWorkFloorMinutes:  120,
		lowScoreThreshold:     30,
		now:                   time.Now,
	}
}

func TestFillTeamAggregates(t *testing.T) {
	svc := newTestTeamService()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	strong := uuid.New()
	rows := []*types.DeepWorkScore{
		{UserID: strong, Date: day, DeepWorkScore: 80, DeepWorkMinutes: 240, TotalMeetingMinutes: 60, MeetingCount: 2,
			MeetingLoadPercent: 11.1, FragmentationScore: 10, ContextSwitches: 4, LongestFocusBlockMinutes: 120,
			ProductiveMinutes: 300, DistractingMinutes: 20, FocusEfficiency: 0.8},
		{UserID: uuid.New(), Date: day, DeepWorkScore: 20, DeepWorkMinutes: 30, TotalMeetingMinutes: 300, MeetingCount: 7,
			MeetingLoadPercent: 55.6, FragmentationScore: 90, ContextSwitches: 30, LongestFocusBlockMinutes: 30,
			ProductiveMinutes: 60, DistractingMinutes: 120, FocusEfficiency: 0.25},
	}

	row := &types.TeamDeepWorkScore{}
	svc.fillTeamAggregates(row, rows)

	if row.MemberCount != 2 {
		t.Fatalf("member count=%d, want 2", row.MemberCount)
	}
	if row.AvgDeepWorkScore != 50 {
		t.Fatalf("avg score=%v, want 50", row.AvgDeepWorkScore)
	}
	if row.TotalDeepWorkMinutes != 270 || row.TotalMeetingMinutes != 360 || row.TotalMeetingCount != 9 {
		t.Fatalf("totals wrong: %+v", row)
	}
	if row.MembersOverMeetingThreshold != 1 {
		t.Fatalf("over threshold=%d, want 1", row.MembersOverMeetingThreshold)
	}
	if row.MembersWithDeepWork != 1 {
		t.Fatalf("with deep work=%d, want 1", row.MembersWithDeepWork)
	}
	if row.NeedsAttentionCount != 1 {
		t.Fatalf("needs attention=%d, want 1", row.NeedsAttentionCount)
	}
	if row.TopPerformerID == nil || *row.TopPerformerID != strong {
		t.Fatalf("top performer=%v, want %v", row.TopPerformerID, strong)
	}

	var dist map[string]int
	if err := json.Unmarshal(row.ScoreDistribution, &dist); err != nil {
		t.Fatalf("unmarshal distribution: %v", err)
	}
	if dist["80-100"] != 1 || dist["20-40"] != 1 {
		t.Fatalf("score distribution=%v", dist)
	}
}

func TestDistributionBuckets(t *testing.T) {
	got := distributionBuckets([]float64{0, 19.9, 20, 59, 85, 100, 130})
	want := map[string]int{"0-20": 2, "20-40": 1, "40-60": 1, "60-80": 0, "80-100": 3}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("bucket %s=%d, want %d (full: %v)", k, got[k], v, got)
		}
	}
}

func TestTeamTrend(t *testing.T) {
	cases := []struct {
		name      string
		current   float64
		prior     float64
		wantDelta float64
		wantDir   string
	}{
		{name: "improving", current: 66, prior: 60, wantDelta: 10, wantDir: types.TrendImproving},
		{name: "declining", current: 54, prior: 60, wantDelta: -10, wantDir: types.TrendDeclining},
		{name: "stable_small_move", current: 61, prior: 60, wantDelta: 1.7, wantDir: types.TrendStable},
		{name: "zero_baseline", current: 30, prior: 0, wantDelta: 0, wantDir: types.TrendStable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			delta := teamTrendDelta(tc.current, tc.prior)
			if delta != tc.wantDelta {
				t.Fatalf("delta=%v, want %v", delta, tc.wantDelta)
			}
			if dir := trendDirection(delta); dir != tc.wantDir {
				t.Fatalf("direction=%q, want %q", dir, tc.wantDir)
			}
		})
	}
}

func TestMemberAlerts(t *testing.T) {
	svc := newTestTeamService()
	teamID := uuid.New()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name           string
		score          *types.DeepWorkScore
		wantTypes      []string
		wantPriorities []string
	}{
		{
			name:           "critical_meeting_load",
			score:          &types.DeepWorkScore{UserID: uuid.New(), Date: day, MeetingLoadPercent: 65, DeepWorkMinutes: 200},
			wantTypes:      []string{types.AlertOverMeeting},
			wantPriorities: []string{types.PriorityCritical},
		},
		{
			name:           "elevated_meeting_load",
			score:          &types.DeepWorkScore{UserID: uuid.New(), Date: day, MeetingLoadPercent: 45, DeepWorkMinutes: 200},
			wantTypes:      []string{types.AlertOverMeeting},
			wantPriorities: []string{types.PriorityMedium},
		},
		{
			name:           "focus_deficit",
			score:          &types.DeepWorkScore{UserID: uuid.New(), Date: day, MeetingLoadPercent: 10, DeepWorkMinutes: 20},
			wantTypes:      []string{types.AlertFocusDeficit},
			wantPriorities: []string{types.PriorityHigh},
		},
		{
			name:           "both_fire_together",
			score:          &types.DeepWorkScore{UserID: uuid.New(), Date: day, MeetingLoadPercent: 70, DeepWorkMinutes: 0},
			wantTypes:      []string{types.AlertOverMeeting, types.AlertFocusDeficit},
			wantPriorities: []string{types.PriorityCritical, types.PriorityHigh},
		},
		{
			name:  "healthy_day_no_alerts",
			score: &types.DeepWorkScore{UserID: uuid.New(), Date: day, MeetingLoadPercent: 20, DeepWorkMinutes: 180},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := svc.memberAlerts(teamID, tc.score, "Sam")
			if len(got) != len(tc.wantTypes) {
				t.Fatalf("alerts=%d, want %d", len(got), len(tc.wantTypes))
			}
			for i, a := range got {
				if a.AlertType != tc.wantTypes[i] || a.Priority != tc.wantPriorities[i] {
					t.Fatalf("alert %d = %s/%s, want %s/%s", i, a.AlertType, a.Priority, tc.wantTypes[i], tc.wantPriorities[i])
				}
				if a.TargetUserID == nil || *a.TargetUserID != tc.score.UserID {
					t.Fatalf("alert %d target=%v, want %v", i, a.TargetUserID, tc.score.UserID)
				}
			}
		})
	}
}

func TestMemberAvailability(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	slotStart := day.Add(10 * time.Hour)
	slotEnd := day.Add(11 * time.Hour)

	busyDuring := []interval{{start: day.Add(10*time.Hour + 30*time.Minute), end: day.Add(11 * time.Hour)}}
	busyElsewhere := []interval{{start: day.Add(14 * time.Hour), end: day.Add(15 * time.Hour)}}

	cases := []struct {
		name string
		busy [][]interval
		want float64
	}{
		{name: "everyone_free", busy: [][]interval{nil, busyElsewhere}, want: 1},
		{name: "half_free", busy: [][]interval{busyDuring, busyElsewhere}, want: 0.5},
		{name: "nobody", busy: nil, want: 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := memberAvailability(slotStart, slotEnd, tc.busy); got != tc.want {
				t.Fatalf("availability=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestTeamMeetingSlots(t *testing.T) {
	// Monday, everyone free all day.
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(8 * time.Hour)
	memberBusy := [][]interval{nil, nil}

	slots := teamMeetingSlots(day, day, now, nil, memberBusy, 0)
	if len(slots) == 0 {
		t.Fatalf("expected at least one slot for an empty calendar")
	}
	best := slots[0]
	if best.start.Hour() != 9 {
		t.Fatalf("best slot starts at %v, want 09:00", best.start)
	}
	if got := best.end.Sub(best.start); got != time.Hour {
		t.Fatalf("slot length=%v, want one hour", got)
	}
	if best.availability != 1 {
		t.Fatalf("availability=%v, want 1", best.availability)
	}
	for i := 1; i < len(slots); i++ {
		if slots[i].impact > slots[i-1].impact {
			t.Fatalf("slots not ordered by impact")
		}
	}

	// Higher team fragmentation raises impact for the same slot.
	fragmented := teamMeetingSlots(day, day, now, nil, memberBusy, 100)
	if fragmented[0].impact <= slots[0].impact {
		t.Fatalf("fragmented impact=%v should exceed calm impact=%v", fragmented[0].impact, slots[0].impact)
	}
}
