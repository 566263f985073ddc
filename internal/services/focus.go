package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/types"
)

const (
	defaultMinGapMinutes = 30
	maxFocusSuggestions  = 10
)

// FocusService finds open calendar gaps inside the user's working hours and
// turns the best ones into focus-time suggestions.
type FocusService struct {
	log       *logger.Logger
	events    repos.CalendarEventRepo
	schedules repos.WorkScheduleRepo
}

func NewFocusService(log *logger.Logger, events repos.CalendarEventRepo, schedules repos.WorkScheduleRepo) *FocusService {
	return &FocusService{
		log:       log.With("service", "FocusService"),
		events:    events,
		schedules: schedules,
	}
}

type Gap struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	QualityScore    int       `json:"quality_score"`
}

type FocusSuggestion struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
	QualityScore    int       `json:"quality_score"`
	Priority        string    `json:"priority"`
	Reason          string    `json:"reason"`
}

// workWindow is one day's working hours resolved from the user's schedule.
type workWindow struct {
	start time.Time
	end   time.Time
}

type interval struct {
	start time.Time
	end   time.Time
}

// DetectCalendarGaps returns every free slot of at least minGapMinutes inside
// working hours between from and to (dates, inclusive). Days off the user's
// work-day list yield nothing.
func (s *FocusService) DetectCalendarGaps(ctx context.Context, userID uuid.UUID, from, to time.Time, minGapMinutes int) ([]Gap, error) {
	if minGapMinutes <= 0 {
		minGapMinutes = defaultMinGapMinutes
	}
	fromDay := NormalizeDate(from)
	toDay := NormalizeDate(to)
	if toDay.Before(fromDay) {
		return nil, fmt.Errorf("invalid range: to precedes from")
	}

	schedule, err := s.schedules.GetByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("load schedule: %w", err)
	}

	rawEvents, err := s.events.GetByUserAndRange(ctx, nil, userID, fromDay, toDay.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}
	busy := busyIntervals(rawEvents)

	gaps := []Gap{}
	for day := fromDay; !day.After(toDay); day = day.AddDate(0, 0, 1) {
		window, ok := resolveWorkWindow(schedule, day)
		if !ok {
			continue
		}
		for _, g := range gapsInWindow(window, busy, minGapMinutes) {
			gaps = append(gaps, Gap{
				Start:           g.start,
				End:             g.end,
				DurationMinutes: int(g.end.Sub(g.start).Minutes()),
				QualityScore:    gapQuality(g.start, int(g.end.Sub(g.start).Minutes())),
			})
		}
	}
	return gaps, nil
}

// GetFocusSuggestions ranks the upcoming gaps by quality and returns the top
// few with a priority and a human reason attached.
func (s *FocusService) GetFocusSuggestions(ctx context.Context, userID uuid.UUID, now time.Time, daysAhead int) ([]FocusSuggestion, error) {
	if daysAhead <= 0 {
		daysAhead = 1
	}
	today := NormalizeDate(now)
	gaps, err := s.DetectCalendarGaps(ctx, userID, today, today.AddDate(0, 0, daysAhead-1), defaultMinGapMinutes)
	if err != nil {
		return nil, err
	}
	return rankFocusSuggestions(gaps, now), nil
}

func rankFocusSuggestions(gaps []Gap, now time.Time) []FocusSuggestion {
	upcoming := make([]Gap, 0, len(gaps))
	for _, g := range gaps {
		if g.End.After(now) {
			upcoming = append(upcoming, g)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		if upcoming[i].QualityScore != upcoming[j].QualityScore {
			return upcoming[i].QualityScore > upcoming[j].QualityScore
		}
		return upcoming[i].Start.Before(upcoming[j].Start)
	})
	if len(upcoming) > maxFocusSuggestions {
		upcoming = upcoming[:maxFocusSuggestions]
	}

	suggestions := make([]FocusSuggestion, 0, len(upcoming))
	for _, g := range upcoming {
		suggestions = append(suggestions, FocusSuggestion{
			Start:           g.Start,
			End:             g.End,
			DurationMinutes: g.DurationMinutes,
			QualityScore:    g.QualityScore,
			Priority:        suggestionPriority(g.QualityScore),
			Reason:          suggestionReason(g, now),
		})
	}
	return suggestions
}

func suggestionPriority(quality int) string {
	switch {
	case quality >= 70:
		return types.PriorityHigh
	case quality >= 50:
		return types.PriorityMedium
	default:
		return types.PriorityLow
	}
}

func suggestionReason(g Gap, now time.Time) string {
	switch {
	case g.Start.Hour() < 12:
		return "Morning hours are ideal for deep work before meetings"
	case g.DurationMinutes >= 90:
		return fmt.Sprintf("This %d-minute block is long enough for meaningful deep work", g.DurationMinutes)
	case NormalizeDate(g.Start).Equal(NormalizeDate(now)):
		return "You have time available today for focused work"
	default:
		return "Good opportunity for focused work"
	}
}

// gapQuality scores a slot 0-100: a base of 50, shifted by time of day, plus
// a length bonus. Mornings win, late afternoons barely register.
func gapQuality(start time.Time, durationMinutes int) int {
	score := 50
	switch h := start.Hour(); {
	case h >= 9 && h < 12:
		score += 30
	case h >= 13 && h < 15:
		score += 15
	case h >= 15 && h < 17:
		score += 5
	default:
		score -= 10
	}
	switch {
	case durationMinutes >= 120:
		score += 20
	case durationMinutes >= 90:
		score += 15
	case durationMinutes >= 60:
		score += 10
	case durationMinutes >= 45:
		score += 5
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// gapsInWindow subtracts the busy intervals from one working window. Busy
// intervals must be sorted by start; overlapping events are merged by walking
// a cursor forward.
func gapsInWindow(window workWindow, busy []interval, minGapMinutes int) []interval {
	var gaps []interval
	minDur := time.Duration(minGapMinutes) * time.Minute

	cursor := window.start
	for _, b := range busy {
		if !b.end.After(window.start) || !b.start.Before(window.end) {
			continue
		}
		if b.start.After(cursor) && b.start.Sub(cursor) >= minDur {
			end := b.start
			if end.After(window.end) {
				end = window.end
			}
			if end.Sub(cursor) >= minDur {
				gaps = append(gaps, interval{start: cursor, end: end})
			}
		}
		if b.end.After(cursor) {
			cursor = b.end
		}
	}
	if cursor.Before(window.end) && window.end.Sub(cursor) >= minDur {
		gaps = append(gaps, interval{start: cursor, end: window.end})
	}
	return gaps
}

// busyIntervals keeps events that occupy calendar time: everything except
// cancelled and all-day entries, sorted by start.
func busyIntervals(events []*types.CalendarEvent) []interval {
	var busy []interval
	for _, e := range events {
		if e.IsAllDay || e.Status == types.EventStatusCancelled {
			continue
		}
		busy = append(busy, interval{start: e.StartTime, end: e.EndTime})
	}
	sort.Slice(busy, func(i, j int) bool { return busy[i].start.Before(busy[j].start) })
	return busy
}

// resolveWorkWindow maps a date to that day's working hours. ok is false when
// the date is not a working day. A missing schedule means Monday through
// Friday, 09:00 to 18:00.
func resolveWorkWindow(schedule *types.WorkSchedule, day time.Time) (workWindow, bool) {
	workDays := []int{1, 2, 3, 4, 5}
	startClock, endClock := "09:00", "18:00"
	if schedule != nil {
		if parsed := parseWorkDays(schedule.WorkDays); len(parsed) > 0 {
			workDays = parsed
		}
		if schedule.StartTime != "" {
			startClock = schedule.StartTime
		}
		if schedule.EndTime != "" {
			endClock = schedule.EndTime
		}
	}

	iso := isoWeekday(day)
	included := false
	for _, d := range workDays {
		if d == iso {
			included = true
			break
		}
	}
	if !included {
		return workWindow{}, false
	}

	startH, startM := parseClock(startClock, 9, 0)
	endH, endM := parseClock(endClock, 18, 0)
	window := workWindow{
		start: day.Add(time.Duration(startH)*time.Hour + time.Duration(startM)*time.Minute),
		end:   day.Add(time.Duration(endH)*time.Hour + time.Duration(endM)*time.Minute),
	}
	if !window.end.After(window.start) {
		return workWindow{}, false
	}
	return window, true
}

func parseWorkDays(raw []byte) []int {
	if len(raw) == 0 {
		return nil
	}
	var days []int
	if err := json.Unmarshal(raw, &days); err != nil {
		return nil
	}
	return days
}

// isoWeekday maps time.Weekday to ISO numbering, Monday=1 through Sunday=7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func parseClock(raw string, defH, defM int) (int, int) {
	var h, m int
	if _, err := fmt.Sscanf(raw, "%d:%d", &h, &m); err != nil {
		return defH, defM
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return defH, defM
	}
	return h, m
}
