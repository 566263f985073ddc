package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/classify"
	"github.com/productify/deepwork-backend/internal/platform/envutil"
	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/types"
)

const (
	// A focus block only counts once it reaches this length.
	minFocusBlockMinutes = 30
	// Four hours of deep work earns the full volume component.
	deepWorkTargetMinutes = 240.0
)

// DeepWorkService computes the per-user daily score from raw activity samples
// and calendar events, and serves the stored results back out.
type DeepWorkService struct {
	log        *logger.Logger
	activities repos.ActivityRepo
	events     repos.CalendarEventRepo
	scores     repos.DeepWorkScoreRepo
	schedules  repos.WorkScheduleRepo
	classifier *ClassificationService
	workHours  float64
}

func NewDeepWorkService(
	log *logger.Logger,
	activities repos.ActivityRepo,
	events repos.CalendarEventRepo,
	scores repos.DeepWorkScoreRepo,
	schedules repos.WorkScheduleRepo,
	classifier *ClassificationService,
) *DeepWorkService {
	return &DeepWorkService{
		log:        log.With("service", "DeepWorkService"),
		activities: activities,
		events:     events,
		scores:     scores,
		schedules:  schedules,
		classifier: classifier,
		workHours:  envutil.Float("WORK_HOURS_PER_DAY", 9),
	}
}

// scoredSample is an activity after classification. Excluded samples never
// become one of these.
type scoredSample struct {
	start   time.Time
	end     time.Time
	minutes int
	score   float64
	appName string
}

type meetingWindow struct {
	start time.Time
	end   time.Time
}

// CalculateDailyScore recomputes and stores the score for one user-day. It is
// idempotent: rerunning the same day overwrites the stored row.
func (s *DeepWorkService) CalculateDailyScore(ctx context.Context, userID uuid.UUID, date time.Time) (*types.DeepWorkScore, error) {
	day := NormalizeDate(date)

	schedule, err := s.schedules.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}
	dayStart := day
	if schedule != nil && schedule.DayStartHour > 0 {
		dayStart = day.Add(time.Duration(schedule.DayStartHour) * time.Hour)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	rawActivities, err := s.activities.GetByUserAndRange(ctx, nil, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	rawEvents, err := s.events.GetByUserAndRange(ctx, nil, userID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	samples, err := s.scoreSamples(ctx, userID, rawActivities)
	if err != nil {
		return nil, err
	}

	row := &types.DeepWorkScore{UserID: userID, Date: day}
	meetings := meetingWindows(rawEvents)
	if len(samples) > 0 || len(meetings) > 0 {
		s.fillDailyMetrics(row, samples, rawEvents, meetings)
		if err := s.fillTrends(ctx, row, userID, day); err != nil {
			return nil, err
		}
	}

	stored, err := s.scores.Upsert(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("store score: %w", err)
	}
	s.log.Info("daily score calculated",
		"user_id", userID.String(),
		"date", day.Format("2006-01-02"),
		"score", stored.DeepWorkScore,
	)
	return stored, nil
}

func (s *DeepWorkService) GetScoreForDate(ctx context.Context, userID uuid.UUID, date time.Time) (*types.DeepWorkScore, error) {
	return s.scores.GetByUserAndDate(ctx, nil, userID, NormalizeDate(date))
}

func (s *DeepWorkService) GetScoresForRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*types.DeepWorkScore, error) {
	return s.scores.GetRange(ctx, nil, userID, NormalizeDate(from), NormalizeDate(to))
}

// scoreSamples classifies every raw activity and drops excluded ones so they
// never influence totals, blocks, or switch counts.
func (s *DeepWorkService) scoreSamples(ctx context.Context, userID uuid.UUID, rows []*types.Activity) ([]scoredSample, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	inputs := make([]ClassifyInput, len(rows))
	for i, a := range rows {
		url := ""
		if a.URL != nil {
			url = *a.URL
		}
		inputs[i] = ClassifyInput{AppName: a.AppName, WindowTitle: a.WindowTitle, URL: url}
	}
	results, err := s.classifier.ClassifyBatch(ctx, userID, inputs)
	if err != nil {
		return nil, fmt.Errorf("classify activities: %w", err)
	}

	samples := make([]scoredSample, 0, len(rows))
	for i, a := range rows {
		if results[i].ProductivityType == classify.TypeExcluded {
			continue
		}
		samples = append(samples, scoredSample{
			start:   a.StartTime,
			end:     a.EndTime(),
			minutes: a.DurationSeconds / 60,
			score:   results[i].ProductivityScore,
			appName: a.AppName,
		})
	}
	return samples, nil
}

func (s *DeepWorkService) fillDailyMetrics(row *types.DeepWorkScore, samples []scoredSample, events []*types.CalendarEvent, meetings []meetingWindow) {
	blocks := detectFocusBlocks(samples, meetings)

	deepWorkMinutes := 0
	longest := 0
	for _, b := range blocks {
		deepWorkMinutes += b
		if b > longest {
			longest = b
		}
	}
	avgBlock := 0.0
	if len(blocks) > 0 {
		avgBlock = round1(float64(deepWorkMinutes) / float64(len(blocks)))
	}

	productive, neutral, distracting := bucketMinutes(samples)
	totalTracked := productive + neutral + distracting

	meetingMinutes, meetingCount := meetingTotals(events)
	workMinutes := s.workHours * 60
	meetingLoad := round1(float64(meetingMinutes) / workMinutes * 100)

	efficiency := 0.0
	if available := workMinutes - float64(meetingMinutes); available > 0 {
		efficiency = round2(math.Min(float64(productive)/available, 1))
	}

	switches := contextSwitches(samples)
	frag := fragmentationScore(meetingCount, switches, blocks, avgBlock)
	if len(samples) == 0 {
		// Meetings with nothing tracked around them: the day is fully
		// fragmented.
		frag = 100
	}

	row.DeepWorkMinutes = deepWorkMinutes
	row.TotalTrackedMinutes = totalTracked
	row.TotalMeetingMinutes = meetingMinutes
	row.MeetingCount = meetingCount
	row.MeetingLoadPercent = meetingLoad
	row.FragmentationScore = frag
	row.ContextSwitches = switches
	row.LongestFocusBlockMinutes = longest
	row.AverageFocusBlockMinutes = avgBlock
	row.FocusBlocksCount = len(blocks)
	row.ProductiveMinutes = productive
	row.NeutralMinutes = neutral
	row.DistractingMinutes = distracting
	row.FocusEfficiency = efficiency
	row.DeepWorkScore = overallScore(deepWorkMinutes, efficiency, meetingLoad, frag)

	if len(samples) > 0 {
		workStart := samples[0].start
		workEnd := samples[0].end
		for _, sm := range samples[1:] {
			if sm.start.Before(workStart) {
				workStart = sm.start
			}
			if sm.end.After(workEnd) {
				workEnd = sm.end
			}
		}
		row.WorkStartTime = &workStart
		row.WorkEndTime = &workEnd
		row.BestFocusHour = bestFocusHour(samples)
	}
}

func (s *DeepWorkService) fillTrends(ctx context.Context, row *types.DeepWorkScore, userID uuid.UUID, day time.Time) error {
	current := float64(row.DeepWorkScore)

	yesterday, err := s.scores.GetByUserAndDate(ctx, nil, userID, day.AddDate(0, 0, -1))
	if err != nil {
		return fmt.Errorf("load yesterday: %w", err)
	}
	if yesterday != nil {
		d := trendDelta(current, float64(yesterday.DeepWorkScore))
		row.VsYesterday = &d
	}

	weekAvg, err := s.scores.AvgScoreBetween(ctx, nil, userID, day.AddDate(0, 0, -7), day)
	if err != nil {
		return fmt.Errorf("load week average: %w", err)
	}
	if weekAvg != nil {
		d := trendDelta(current, *weekAvg)
		row.VsWeekAvg = &d
	}

	monthAvg, err := s.scores.AvgScoreBetween(ctx, nil, userID, day.AddDate(0, 0, -30), day)
	if err != nil {
		return fmt.Errorf("load month average: %w", err)
	}
	if monthAvg != nil {
		d := trendDelta(current, *monthAvg)
		row.VsMonthAvg = &d
	}
	return nil
}

// WeeklySummary is the rollup of up to seven daily scores.
type WeeklySummary struct {
	WeekStart          time.Time     `json:"week_start"`
	AvgScore           float64       `json:"avg_score"`
	TotalDeepWorkHours float64       `json:"total_deep_work_hours"`
	TotalMeetingHours  float64       `json:"total_meeting_hours"`
	AvgFragmentation   float64       `json:"avg_fragmentation"`
	AvgFocusEfficiency float64       `json:"avg_focus_efficiency"`
	BestDay            *DailySummary `json:"best_day,omitempty"`
	WorstDay           *DailySummary `json:"worst_day,omitempty"`
	DaysTracked        int           `json:"days_tracked"`
	Days               []DailySummary `json:"days"`
}

type DailySummary struct {
	Date            string  `json:"date"`
	Score           int     `json:"score"`
	DeepWorkMinutes int     `json:"deep_work_minutes"`
	MeetingMinutes  int     `json:"meeting_minutes"`
	Fragmentation   int     `json:"fragmentation"`
	FocusEfficiency float64 `json:"focus_efficiency"`
}

// GetWeeklySummary aggregates the stored dailies for the seven days starting
// at weekStart. A week with no stored rows comes back zero-valued, not nil.
func (s *DeepWorkService) GetWeeklySummary(ctx context.Context, userID uuid.UUID, weekStart time.Time) (*WeeklySummary, error) {
	start := NormalizeDate(weekStart)
	rows, err := s.scores.GetRange(ctx, nil, userID, start, start.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}
	return buildWeeklySummary(start, rows), nil
}

func buildWeeklySummary(weekStart time.Time, rows []*types.DeepWorkScore) *WeeklySummary {
	summary := &WeeklySummary{WeekStart: weekStart, Days: []DailySummary{}}
	if len(rows) == 0 {
		return summary
	}

	var scoreSum, fragSum, effSum float64
	var deepWorkMinutes, meetingMinutes int
	for _, r := range rows {
		day := DailySummary{
			Date:            r.Date.Format("2006-01-02"),
			Score:           r.DeepWorkScore,
			DeepWorkMinutes: r.DeepWorkMinutes,
			MeetingMinutes:  r.TotalMeetingMinutes,
			Fragmentation:   r.FragmentationScore,
			FocusEfficiency: r.FocusEfficiency,
		}
		summary.Days = append(summary.Days, day)

		scoreSum += float64(r.DeepWorkScore)
		fragSum += float64(r.FragmentationScore)
		effSum += r.FocusEfficiency
		deepWorkMinutes += r.DeepWorkMinutes
		meetingMinutes += r.TotalMeetingMinutes

		if summary.BestDay == nil || day.Score > summary.BestDay.Score {
			d := day
			summary.BestDay = &d
		}
		if summary.WorstDay == nil || day.Score < summary.WorstDay.Score {
			d := day
			summary.WorstDay = &d
		}
	}

	n := float64(len(rows))
	summary.AvgScore = round1(scoreSum / n)
	summary.TotalDeepWorkHours = round1(float64(deepWorkMinutes) / 60)
	summary.TotalMeetingHours = round1(float64(meetingMinutes) / 60)
	summary.AvgFragmentation = round1(fragSum / n)
	summary.AvgFocusEfficiency = round2(effSum / n)
	summary.DaysTracked = len(rows)
	return summary
}

// detectFocusBlocks accumulates contiguous productive, meeting-free minutes.
// A run is emitted once it reaches the minimum block length; anything shorter
// is shallow work and vanishes. Input order is not trusted; samples are
// sorted by start time first.
func detectFocusBlocks(samples []scoredSample, meetings []meetingWindow) []int {
	sort.Slice(samples, func(i, j int) bool { return samples[i].start.Before(samples[j].start) })
	var blocks []int
	run := 0
	for _, sm := range samples {
		if sm.score >= classify.ProductiveThreshold && !insideMeeting(sm.start, meetings) {
			run += sm.minutes
			continue
		}
		if run >= minFocusBlockMinutes {
			blocks = append(blocks, run)
		}
		run = 0
	}
	if run >= minFocusBlockMinutes {
		blocks = append(blocks, run)
	}
	return blocks
}

func insideMeeting(at time.Time, meetings []meetingWindow) bool {
	for _, m := range meetings {
		if !at.Before(m.start) && at.Before(m.end) {
			return true
		}
	}
	return false
}

// meetingWindows keeps only events that actually occupy the user: cancelled,
// all-day and self-declared focus events fall out.
func meetingWindows(events []*types.CalendarEvent) []meetingWindow {
	var windows []meetingWindow
	for _, e := range events {
		if e.IsAllDay || e.IsFocusTime || e.Status == types.EventStatusCancelled {
			continue
		}
		windows = append(windows, meetingWindow{start: e.StartTime, end: e.EndTime})
	}
	return windows
}

func meetingTotals(events []*types.CalendarEvent) (minutes, count int) {
	for _, e := range events {
		if e.IsAllDay || e.IsFocusTime || e.Status == types.EventStatusCancelled {
			continue
		}
		minutes += e.DurationMinutes
		count++
	}
	return minutes, count
}

func bucketMinutes(samples []scoredSample) (productive, neutral, distracting int) {
	for _, sm := range samples {
		switch {
		case sm.score >= classify.ProductiveThreshold:
			productive += sm.minutes
		case sm.score <= classify.DistractingThreshold:
			distracting += sm.minutes
		default:
			neutral += sm.minutes
		}
	}
	return productive, neutral, distracting
}

func contextSwitches(samples []scoredSample) int {
	switches := 0
	for i := 1; i < len(samples); i++ {
		if samples[i].appName != samples[i-1].appName {
			switches++
		}
	}
	return switches
}

// fragmentationScore measures how broken up the day was, 0 (calm) to 100
// (shredded). Meetings and app switches contribute capped penalties; short or
// missing focus blocks add the rest.
func fragmentationScore(meetingCount, switches int, blocks []int, avgBlock float64) int {
	score := 0.0
	score += math.Min(float64(meetingCount)*10, 50)
	score += math.Min(float64(switches)*2, 30)
	if len(blocks) > 0 {
		if avgBlock < 90 {
			score += (1 - avgBlock/90) * 20
		}
	} else {
		score += 20
	}
	if score > 100 {
		score = 100
	}
	return int(score)
}

// overallScore blends volume (40), efficiency (25), meeting load (20) and
// calm (15) into a 0-100 daily score.
func overallScore(deepWorkMinutes int, efficiency, meetingLoad float64, fragmentation int) int {
	volume := math.Min(float64(deepWorkMinutes)/deepWorkTargetMinutes, 1) * 40
	eff := efficiency * 25
	load := math.Max(0, 1-2*meetingLoad/100) * 20
	calm := (1 - float64(fragmentation)/100) * 15

	score := int(volume) + int(eff) + int(load) + int(calm)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

func bestFocusHour(samples []scoredSample) *int {
	sums := map[int]float64{}
	counts := map[int]int{}
	for _, sm := range samples {
		h := sm.start.Hour()
		sums[h] += sm.score
		counts[h]++
	}
	best := -1
	bestMean := -1.0
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		mean := sums[h] / float64(counts[h])
		if mean > bestMean {
			bestMean = mean
			best = h
		}
	}
	if best < 0 {
		return nil
	}
	return &best
}

// trendDelta is the percent change against a prior value, guarded so a zero
// baseline cannot blow up.
func trendDelta(current, prior float64) float64 {
	return round1((current - prior) / math.Max(prior, 1) * 100)
}

// NormalizeDate truncates to UTC midnight so (user, date) keys line up no
// matter what wall time the caller passed.
func NormalizeDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
