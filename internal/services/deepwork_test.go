package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/repos/testutil"
	"github.com/productify/deepwork-backend/internal/types"
)

func mkSample(start time.Time, minutes int, score float64, app string) scoredSample {
	return scoredSample{
		start:   start,
		end:     start.Add(time.Duration(minutes) * time.Minute),
		minutes: minutes,
		score:   score,
		appName: app,
	}
}

func TestDetectFocusBlocks(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		samples  []scoredSample
		meetings []meetingWindow
		want     []int
	}{
		{
			name: "uninterrupted_productive_run",
			samples: []scoredSample{
				mkSample(day, 30, 0.95, "Visual Studio Code"),
				mkSample(day.Add(30*time.Minute), 30, 0.95, "Visual Studio Code"),
				mkSample(day.Add(60*time.Minute), 30, 0.95, "Visual Studio Code"),
			},
			want: []int{90},
		},
		{
			name: "distraction_splits_the_run",
			samples: []scoredSample{
				mkSample(day, 40, 0.9, "Code"),
				mkSample(day.Add(40*time.Minute), 10, 0.1, "Twitter"),
				mkSample(day.Add(50*time.Minute), 45, 0.9, "Code"),
			},
			want: []int{40, 45},
		},
		{
			name: "short_runs_do_not_count",
			samples: []scoredSample{
				mkSample(day, 20, 0.9, "Code"),
				mkSample(day.Add(20*time.Minute), 5, 0.1, "Twitter"),
				mkSample(day.Add(25*time.Minute), 25, 0.9, "Code"),
			},
			want: nil,
		},
		{
			name: "meeting_breaks_the_run",
			samples: []scoredSample{
				mkSample(day, 40, 0.9, "Code"),
				mkSample(day.Add(40*time.Minute), 30, 0.9, "Code"),
				mkSample(day.Add(70*time.Minute), 40, 0.9, "Code"),
			},
			meetings: []meetingWindow{
				{start: day.Add(40 * time.Minute), end: day.Add(70 * time.Minute)},
			},
			want: []int{40, 40},
		},
		{
			name:    "no_samples",
			samples: nil,
			want:    nil,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := detectFocusBlocks(tc.samples, tc.meetings)
			if len(got) != len(tc.want) {
				t.Fatalf("blocks=%v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("blocks=%v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFragmentationScore(t *testing.T) {
	cases := []struct {
		name         string
		meetingCount int
		switches     int
		blocks       []int
		avgBlock     float64
		want         int
	}{
		{name: "calm_day_long_blocks", meetingCount: 0, switches: 0, blocks: []int{90}, avgBlock: 90, want: 0},
		{name: "six_meetings_caps_at_fifty", meetingCount: 6, switches: 0, blocks: []int{90}, avgBlock: 90, want: 50},
		{name: "switch_penalty_caps_at_thirty", meetingCount: 0, switches: 40, blocks: []int{90}, avgBlock: 90, want: 30},
		{name: "no_blocks_penalty", meetingCount: 0, switches: 0, blocks: nil, avgBlock: 0, want: 20},
		{name: "short_blocks_partial_penalty", meetingCount: 0, switches: 0, blocks: []int{45}, avgBlock: 45, want: 10},
		{name: "clamped_at_hundred", meetingCount: 10, switches: 50, blocks: nil, avgBlock: 0, want: 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := fragmentationScore(tc.meetingCount, tc.switches, tc.blocks, tc.avgBlock)
			if got != tc.want {
				t.Fatalf("fragmentation=%d, want %d", got, tc.want)
			}
		})
	}
}

func TestOverallScore(t *testing.T) {
	cases := []struct {
		name        string
		deepWork    int
		efficiency  float64
		meetingLoad float64
		frag        int
		want        int
	}{
		{name: "perfect_day", deepWork: 240, efficiency: 1, meetingLoad: 0, frag: 0, want: 100},
		{name: "empty_day", deepWork: 0, efficiency: 0, meetingLoad: 0, frag: 100, want: 20},
		{name: "meeting_load_fifty_zeroes_component", deepWork: 240, efficiency: 1, meetingLoad: 50, frag: 0, want: 80},
		{name: "volume_capped_at_target", deepWork: 480, efficiency: 0, meetingLoad: 100, frag: 100, want: 40},
		{name: "half_volume", deepWork: 120, efficiency: 0, meetingLoad: 0, frag: 100, want: 40},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := overallScore(tc.deepWork, tc.efficiency, tc.meetingLoad, tc.frag)
			if got != tc.want {
				t.Fatalf("score=%d, want %d", got, tc.want)
			}
		})
	}
}

func TestBucketMinutes(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	samples := []scoredSample{
		mkSample(day, 60, 0.95, "Code"),              // productive
		mkSample(day.Add(time.Hour), 30, 0.6, "IDE"), // boundary is productive
		mkSample(day.Add(2*time.Hour), 20, 0.5, "Mail"),
		mkSample(day.Add(3*time.Hour), 10, 0.35, "Twitter"), // boundary is distracting
		mkSample(day.Add(4*time.Hour), 15, 0.1, "YouTube"),
	}
	productive, neutral, distracting := bucketMinutes(samples)
	if productive != 90 || neutral != 20 || distracting != 25 {
		t.Fatalf("got p=%d n=%d d=%d, want 90/20/25", productive, neutral, distracting)
	}
}

func TestContextSwitches(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	samples := []scoredSample{
		mkSample(day, 10, 0.9, "Code"),
		mkSample(day.Add(10*time.Minute), 10, 0.9, "Code"),
		mkSample(day.Add(20*time.Minute), 10, 0.5, "Mail"),
		mkSample(day.Add(30*time.Minute), 10, 0.9, "Code"),
	}
	if got := contextSwitches(samples); got != 2 {
		t.Fatalf("switches=%d, want 2", got)
	}
	if got := contextSwitches(nil); got != 0 {
		t.Fatalf("switches on empty=%d, want 0", got)
	}
}

func TestBestFocusHour(t *testing.T) {
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	samples := []scoredSample{
		mkSample(day.Add(9*time.Hour), 30, 0.9, "Code"),
		mkSample(day.Add(9*time.Hour+30*time.Minute), 30, 0.9, "Code"),
		mkSample(day.Add(14*time.Hour), 30, 0.5, "Mail"),
	}
	got := bestFocusHour(samples)
	if got == nil || *got != 9 {
		t.Fatalf("best hour=%v, want 9", got)
	}
	if bestFocusHour(nil) != nil {
		t.Fatalf("expected nil best hour with no samples")
	}
}

func TestTrendDelta(t *testing.T) {
	cases := []struct {
		name    string
		current float64
		prior   float64
		want    float64
	}{
		{name: "improvement", current: 60, prior: 50, want: 20},
		{name: "decline", current: 40, prior: 50, want: -20},
		{name: "zero_prior_guard", current: 50, prior: 0, want: 5000},
		{name: "rounded_to_one_decimal", current: 61, prior: 47, want: 29.8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := trendDelta(tc.current, tc.prior); got != tc.want {
				t.Fatalf("delta=%v, want %v", got, tc.want)
			}
		})
	}
}

func TestBuildWeeklySummary(t *testing.T) {
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	t.Run("empty_week_is_zero_valued", func(t *testing.T) {
		got := buildWeeklySummary(weekStart, nil)
		if got == nil {
			t.Fatalf("expected a summary, got nil")
		}
		if got.DaysTracked != 0 || got.AvgScore != 0 || got.BestDay != nil || got.WorstDay != nil {
			t.Fatalf("expected zero-valued summary: %+v", got)
		}
	})

	t.Run("aggregates_and_extremes", func(t *testing.T) {
		userID := uuid.New()
		rows := []*types.DeepWorkScore{
			{UserID: userID, Date: weekStart, DeepWorkScore: 40, DeepWorkMinutes: 120, TotalMeetingMinutes: 60, FragmentationScore: 50, FocusEfficiency: 0.4},
			{UserID: userID, Date: weekStart.AddDate(0, 0, 1), DeepWorkScore: 80, DeepWorkMinutes: 240, TotalMeetingMinutes: 30, FragmentationScore: 10, FocusEfficiency: 0.8},
			{UserID: userID, Date: weekStart.AddDate(0, 0, 2), DeepWorkScore: 60, DeepWorkMinutes: 180, TotalMeetingMinutes: 90, FragmentationScore: 30, FocusEfficiency: 0.6},
		}
		got := buildWeeklySummary(weekStart, rows)
		if got.DaysTracked != 3 {
			t.Fatalf("days=%d, want 3", got.DaysTracked)
		}
		if got.AvgScore != 60 {
			t.Fatalf("avg=%v, want 60", got.AvgScore)
		}
		if got.TotalDeepWorkHours != 9 {
			t.Fatalf("deep work hours=%v, want 9", got.TotalDeepWorkHours)
		}
		if got.TotalMeetingHours != 3 {
			t.Fatalf("meeting hours=%v, want 3", got.TotalMeetingHours)
		}
		if got.BestDay == nil || got.BestDay.Score != 80 {
			t.Fatalf("best day=%+v, want score 80", got.BestDay)
		}
		if got.WorstDay == nil || got.WorstDay.Score != 40 {
			t.Fatalf("worst day=%+v, want score 40", got.WorstDay)
		}
	})
}

func TestMeetingWindowsFiltering(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	events := []*types.CalendarEvent{
		{Title: "Standup", StartTime: day, EndTime: day.Add(15 * time.Minute), DurationMinutes: 15, Status: types.EventStatusConfirmed},
		{Title: "OOO", StartTime: day, EndTime: day.Add(8 * time.Hour), DurationMinutes: 480, IsAllDay: true, Status: types.EventStatusConfirmed},
		{Title: "Focus block", StartTime: day.Add(time.Hour), EndTime: day.Add(3 * time.Hour), DurationMinutes: 120, IsFocusTime: true, Status: types.EventStatusConfirmed},
		{Title: "Cancelled sync", StartTime: day.Add(4 * time.Hour), EndTime: day.Add(5 * time.Hour), DurationMinutes: 60, Status: types.EventStatusCancelled},
	}

	windows := meetingWindows(events)
	if len(windows) != 1 {
		t.Fatalf("windows=%d, want 1 (only the standup occupies the user)", len(windows))
	}
	minutes, count := meetingTotals(events)
	if minutes != 15 || count != 1 {
		t.Fatalf("totals=%d/%d, want 15/1", minutes, count)
	}
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2026, 3, 2, 17, 45, 12, 0, time.FixedZone("CET", 3600))
	got := NormalizeDate(in)
	want := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("normalized=%v, want %v", got, want)
	}
}

func TestDetectFocusBlocksUnsortedInput(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	samples := []scoredSample{
		mkSample(day.Add(60*time.Minute), 40, 0.9, "Code"),
		mkSample(day, 30, 0.9, "Code"),
		mkSample(day.Add(30*time.Minute), 30, 0.1, "Twitter"),
	}
	got := detectFocusBlocks(samples, nil)
	if len(got) != 2 || got[0] != 30 || got[1] != 40 {
		t.Fatalf("blocks=%v, want [30 40]", got)
	}
}

func TestCalculateDailyScoreMeetingsOnly(t *testing.T) {
	db := testutil.OpenDB(t)
	log := testutil.NewLogger(t)
	ctx := context.Background()

	activityRepo := repos.NewActivityRepo(db, log)
	eventRepo := repos.NewCalendarEventRepo(db, log)
	scoreRepo := repos.NewDeepWorkScoreRepo(db, log)
	scheduleRepo := repos.NewWorkScheduleRepo(db, log)
	ruleRepo := repos.NewRuleRepo(db, log)
	classifier := NewClassificationService(log, NewRuleCacheService(log, ruleRepo, nil))
	svc := NewDeepWorkService(log, activityRepo, eventRepo, scoreRepo, scheduleRepo, classifier)

	userID := uuid.New()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if _, err := eventRepo.Create(ctx, nil, []*types.CalendarEvent{{
		ID:              uuid.New(),
		UserID:          userID,
		Title:           "Sprint planning",
		StartTime:       day.Add(10 * time.Hour),
		EndTime:         day.Add(11 * time.Hour),
		DurationMinutes: 60,
		Status:          types.EventStatusConfirmed,
	}}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	score, err := svc.CalculateDailyScore(ctx, userID, day)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	// A day with meetings but no tracked activity still records the
	// meeting metrics.
	if score.MeetingCount != 1 || score.TotalMeetingMinutes != 60 {
		t.Fatalf("meetings: count=%d minutes=%d, want 1/60", score.MeetingCount, score.TotalMeetingMinutes)
	}
	if score.MeetingLoadPercent != 11.1 {
		t.Fatalf("meeting load=%v, want 11.1", score.MeetingLoadPercent)
	}
	if score.FragmentationScore != 100 {
		t.Fatalf("fragmentation=%v, want 100", score.FragmentationScore)
	}
	if score.DeepWorkMinutes != 0 || score.FocusBlocksCount != 0 || score.TotalTrackedMinutes != 0 {
		t.Fatalf("activity metrics should stay zero: %+v", score)
	}
	if score.WorkStartTime != nil || score.WorkEndTime != nil {
		t.Fatalf("work window should stay unset without activities")
	}
}
