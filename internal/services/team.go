package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/productify/deepwork-backend/internal/platform/envutil"
	"github.com/productify/deepwork-backend/internal/platform/logger"
	"github.com/productify/deepwork-backend/internal/repos"
	"github.com/productify/deepwork-backend/internal/types"
)

const maxTeamSuggestions = 3

// TeamDeepWorkService rolls member dailies up into team records, raises
// manager alerts on threshold breaches, and proposes meeting slots that
// spare everyone's focus time. Only members who share their activity ever
// enter any of it.
type TeamDeepWorkService struct {
	log         *logger.Logger
	teams       repos.TeamRepo
	members     repos.TeamMemberRepo
	users       repos.UserRepo
	scores      repos.DeepWorkScoreRepo
	teamScores  repos.TeamScoreRepo
	alerts      repos.ManagerAlertRepo
	suggestions repos.SchedulingSuggestionRepo
	events      repos.CalendarEventRepo

	meetingLoadThreshold  float64
	criticalLoadThreshold float64
	deepWorkFloorMinutes  int
	lowScoreThreshold     int

	now func() time.Time
}

func NewTeamDeepWorkService(
	log *logger.Logger,
	teams repos.TeamRepo,
	members repos.TeamMemberRepo,
	users repos.UserRepo,
	scores repos.DeepWorkScoreRepo,
	teamScores repos.TeamScoreRepo,
	alerts repos.ManagerAlertRepo,
	suggestions repos.SchedulingSuggestionRepo,
	events repos.CalendarEventRepo,
) *TeamDeepWorkService {
	return &TeamDeepWorkService{
		log:         log.With("service", "TeamDeepWorkService"),
		teams:       teams,
		members:     members,
		users:       users,
		scores:      scores,
		teamScores:  teamScores,
		alerts:      alerts,
		suggestions: suggestions,
		events:      events,

		meetingLoadThreshold:  envutil.Float("MEETING_LOAD_THRESHOLD", 40),
		criticalLoadThreshold: envutil.Float("MEETING_LOAD_CRITICAL_THRESHOLD", 60),
		deepWorkFloorMinutes:  envutil.Int("DEEP_WORK_FLOOR_MINUTES", 120),
		lowScoreThreshold:     envutil.Int("LOW_SCORE_THRESHOLD", 30),

		now: time.Now,
	}
}

// GetTeam returns nil when the team does not exist or is inactive.
func (s *TeamDeepWorkService) GetTeam(ctx context.Context, teamID uuid.UUID) (*types.Team, error) {
	team, err := s.teams.GetByID(ctx, nil, teamID)
	if err != nil {
		return nil, err
	}
	if team == nil || !team.IsActive {
		return nil, nil
	}
	return team, nil
}

// TeamScoreForDate returns the stored rollup for one team-day, nil when the
// day has not been calculated yet.
func (s *TeamDeepWorkService) TeamScoreForDate(ctx context.Context, teamID uuid.UUID, date time.Time) (*types.TeamDeepWorkScore, error) {
	return s.teamScores.GetByTeamAndDate(ctx, nil, teamID, NormalizeDate(date))
}

// CalculateTeamScore aggregates the stored member dailies for one team-day
// and upserts the rollup. A team with no sharing members still gets a row,
// with member_count zero, so dashboards can tell "no data" from "not run".
func (s *TeamDeepWorkService) CalculateTeamScore(ctx context.Context, teamID uuid.UUID, date time.Time) (*types.TeamDeepWorkScore, error) {
	day := NormalizeDate(date)

	members, err := s.members.ListSharingByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}

	row := &types.TeamDeepWorkScore{TeamID: teamID, Date: day, TrendDirection: types.TrendStable}
	if len(members) > 0 {
		memberIDs := make([]uuid.UUID, len(members))
		for i, m := range members {
			memberIDs[i] = m.UserID
		}
		memberScores, err := s.scores.GetForUsersOnDate(ctx, nil, memberIDs, day)
		if err != nil {
			return nil, fmt.Errorf("load member scores: %w", err)
		}
		s.fillTeamAggregates(row, memberScores)
	}

	yesterday, err := s.teamScores.GetByTeamAndDate(ctx, nil, teamID, day.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("load yesterday: %w", err)
	}
	if yesterday != nil {
		delta := teamTrendDelta(row.AvgDeepWorkScore, yesterday.AvgDeepWorkScore)
		row.VsYesterday = &delta
		row.TrendDirection = trendDirection(delta)
	}

	stored, err := s.teamScores.Upsert(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("store team score: %w", err)
	}
	s.log.Info("team score calculated",
		"team_id", teamID.String(),
		"date", day.Format("2006-01-02"),
		"members", stored.MemberCount,
	)
	return stored, nil
}

func (s *TeamDeepWorkService) fillTeamAggregates(row *types.TeamDeepWorkScore, memberScores []*types.DeepWorkScore) {
	if len(memberScores) == 0 {
		return
	}
	// Deterministic order so ties in top performer resolve the same way on
	// every run.
	sort.Slice(memberScores, func(i, j int) bool {
		return memberScores[i].UserID.String() < memberScores[j].UserID.String()
	})

	n := float64(len(memberScores))
	var scoreSum, loadSum, fragSum, switchSum, blockSum, effSum, dwSum, meetSum float64
	scoreValues := make([]float64, 0, len(memberScores))
	loadValues := make([]float64, 0, len(memberScores))

	var top *types.DeepWorkScore
	for _, ms := range memberScores {
		scoreSum += float64(ms.DeepWorkScore)
		dwSum += float64(ms.DeepWorkMinutes)
		meetSum += float64(ms.TotalMeetingMinutes)
		loadSum += ms.MeetingLoadPercent
		fragSum += float64(ms.FragmentationScore)
		switchSum += float64(ms.ContextSwitches)
		blockSum += float64(ms.LongestFocusBlockMinutes)
		effSum += ms.FocusEfficiency

		row.TotalDeepWorkMinutes += ms.DeepWorkMinutes
		row.TotalMeetingMinutes += ms.TotalMeetingMinutes
		row.TotalMeetingCount += ms.MeetingCount
		row.TotalProductiveMinutes += ms.ProductiveMinutes
		row.TotalDistractingMinutes += ms.DistractingMinutes

		if ms.MeetingLoadPercent > s.meetingLoadThreshold {
			row.MembersOverMeetingThreshold++
		}
		if ms.DeepWorkMinutes >= s.deepWorkFloorMinutes {
			row.MembersWithDeepWork++
		}
		if ms.DeepWorkScore < s.lowScoreThreshold {
			row.NeedsAttentionCount++
		}
		if top == nil || ms.DeepWorkScore > top.DeepWorkScore {
			top = ms
		}

		scoreValues = append(scoreValues, float64(ms.DeepWorkScore))
		loadValues = append(loadValues, ms.MeetingLoadPercent)
	}

	row.MemberCount = len(memberScores)
	row.AvgDeepWorkScore = round1(scoreSum / n)
	row.AvgDeepWorkMinutes = round1(dwSum / n)
	row.AvgMeetingMinutes = round1(meetSum / n)
	row.AvgMeetingLoadPercent = round1(loadSum / n)
	row.AvgFragmentationScore = round1(fragSum / n)
	row.AvgContextSwitches = round1(switchSum / n)
	row.AvgLongestFocusBlock = round1(blockSum / n)
	row.AvgFocusEfficiency = round2(effSum / n)
	if top != nil {
		id := top.UserID
		row.TopPerformerID = &id
	}
	row.ScoreDistribution = marshalDistribution(distributionBuckets(scoreValues))
	row.MeetingLoadDistribution = marshalDistribution(distributionBuckets(loadValues))
}

// distributionBuckets counts values into 20-wide bands. Values at or above
// 100 land in the top band.
func distributionBuckets(values []float64) map[string]int {
	edges := []float64{0, 20, 40, 60, 80, 100}
	buckets := map[string]int{}
	labels := make([]string, 0, len(edges)-1)
	for i := 0; i < len(edges)-1; i++ {
		labels = append(labels, fmt.Sprintf("%d-%d", int(edges[i]), int(edges[i+1])))
		buckets[labels[i]] = 0
	}
	for _, v := range values {
		placed := false
		for i := 0; i < len(edges)-1; i++ {
			if v >= edges[i] && v < edges[i+1] {
				buckets[labels[i]]++
				placed = true
				break
			}
		}
		if !placed && v >= edges[len(edges)-1] {
			buckets[labels[len(labels)-1]]++
		}
	}
	return buckets
}

func marshalDistribution(buckets map[string]int) datatypes.JSON {
	raw, err := json.Marshal(buckets)
	if err != nil {
		return nil
	}
	return raw
}

func teamTrendDelta(current, prior float64) float64 {
	if prior == 0 {
		return 0
	}
	return round1((current - prior) / prior * 100)
}

func trendDirection(delta float64) string {
	switch {
	case delta > 5:
		return types.TrendImproving
	case delta < -5:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}

// GenerateAlerts inspects the team's member dailies for date and raises
// manager alerts on threshold breaches. Each (team, member, type) fires at
// most once per calendar day; alerts expire at the end of the current day.
func (s *TeamDeepWorkService) GenerateAlerts(ctx context.Context, teamID uuid.UUID, date time.Time) ([]*types.ManagerAlert, error) {
	day := NormalizeDate(date)
	todayStart := NormalizeDate(s.now())
	expiresAt := todayStart.AddDate(0, 0, 1)

	members, err := s.members.ListSharingByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}
	memberIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
	}

	memberScores, err := s.scores.GetForUsersOnDate(ctx, nil, memberIDs, day)
	if err != nil {
		return nil, fmt.Errorf("load member scores: %w", err)
	}
	users, err := s.users.GetByIDs(ctx, nil, memberIDs)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	names := map[uuid.UUID]string{}
	for _, u := range users {
		names[u.ID] = u.Name
	}

	var candidates []*types.ManagerAlert
	for _, ms := range memberScores {
		candidates = append(candidates, s.memberAlerts(teamID, ms, names[ms.UserID])...)
	}
	if teamRow, err := s.teamScores.GetByTeamAndDate(ctx, nil, teamID, day); err != nil {
		return nil, fmt.Errorf("load team score: %w", err)
	} else if teamRow != nil && teamRow.AvgMeetingLoadPercent >= s.meetingLoadThreshold {
		candidates = append(candidates, &types.ManagerAlert{
			TeamID:         teamID,
			AlertType:      types.AlertOverMeeting,
			Priority:       types.PriorityHigh,
			Title:          "Team is drowning in meetings",
			Message:        fmt.Sprintf("Average meeting load reached %.1f%% of the work day", teamRow.AvgMeetingLoadPercent),
			MetricName:     "avg_meeting_load_percent",
			MetricValue:    teamRow.AvgMeetingLoadPercent,
			ThresholdValue: s.meetingLoadThreshold,
			Suggestion:     "Audit the team's recurring meetings and cut the ones without a clear owner",
		})
	}

	var created []*types.ManagerAlert
	for _, candidate := range candidates {
		exists, err := s.alerts.ExistsActiveForKey(ctx, nil, teamID, candidate.TargetUserID, candidate.AlertType, todayStart)
		if err != nil {
			return nil, fmt.Errorf("alert dedup check: %w", err)
		}
		if exists {
			continue
		}
		expiry := expiresAt
		candidate.ExpiresAt = &expiry
		rows, err := s.alerts.Create(ctx, nil, []*types.ManagerAlert{candidate})
		if err != nil {
			return nil, fmt.Errorf("create alert: %w", err)
		}
		created = append(created, rows...)
	}

	if len(created) > 0 {
		s.log.Info("manager alerts generated",
			"team_id", teamID.String(),
			"count", len(created),
		)
	}
	return created, nil
}

func (s *TeamDeepWorkService) memberAlerts(teamID uuid.UUID, ms *types.DeepWorkScore, name string) []*types.ManagerAlert {
	if name == "" {
		name = "A team member"
	}
	userID := ms.UserID

	var alerts []*types.ManagerAlert
	if ms.MeetingLoadPercent >= s.meetingLoadThreshold {
		priority := types.PriorityMedium
		if ms.MeetingLoadPercent >= s.criticalLoadThreshold {
			priority = types.PriorityCritical
		}
		alerts = append(alerts, &types.ManagerAlert{
			TeamID:         teamID,
			TargetUserID:   &userID,
			AlertType:      types.AlertOverMeeting,
			Priority:       priority,
			Title:          "Heavy meeting load",
			Message:        fmt.Sprintf("%s spent %.1f%% of the work day in meetings", name, ms.MeetingLoadPercent),
			MetricName:     "meeting_load_percent",
			MetricValue:    ms.MeetingLoadPercent,
			ThresholdValue: s.meetingLoadThreshold,
			Suggestion:     "Help them decline optional meetings or delegate attendance",
		})
	}
	if ms.DeepWorkMinutes <= minFocusBlockMinutes {
		alerts = append(alerts, &types.ManagerAlert{
			TeamID:         teamID,
			TargetUserID:   &userID,
			AlertType:      types.AlertFocusDeficit,
			Priority:       types.PriorityHigh,
			Title:          "No meaningful focus time",
			Message:        fmt.Sprintf("%s managed only %d minutes of deep work", name, ms.DeepWorkMinutes),
			MetricName:     "deep_work_minutes",
			MetricValue:    float64(ms.DeepWorkMinutes),
			ThresholdValue: float64(minFocusBlockMinutes),
			Suggestion:     "Block a two-hour focus window on their calendar tomorrow morning",
		})
	}
	return alerts
}

func (s *TeamDeepWorkService) ActiveAlerts(ctx context.Context, teamID uuid.UUID) ([]*types.ManagerAlert, error) {
	return s.alerts.ListActive(ctx, nil, teamID, s.now().UTC())
}

// DismissAlert reports false when the alert does not exist under the team or
// was already dismissed.
func (s *TeamDeepWorkService) DismissAlert(ctx context.Context, teamID, alertID uuid.UUID) (bool, error) {
	n, err := s.alerts.Dismiss(ctx, nil, teamID, alertID, s.now().UTC())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GenerateSchedulingSuggestions finds slots over the next daysAhead working
// days where every sharing member is free, ranks them, and stores the best
// few as meeting-time suggestions. Pending older suggestions are replaced;
// applied or dismissed ones are left alone.
func (s *TeamDeepWorkService) GenerateSchedulingSuggestions(ctx context.Context, teamID uuid.UUID, daysAhead int) ([]*types.SchedulingSuggestion, error) {
	if daysAhead <= 0 {
		daysAhead = 5
	}
	now := s.now().UTC()
	fromDay := NormalizeDate(now)
	toDay := fromDay.AddDate(0, 0, daysAhead-1)

	members, err := s.members.ListSharingByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("load members: %w", err)
	}
	if len(members) == 0 {
		return nil, nil
	}

	memberBusy := make([][]interval, len(members))
	var allBusy []interval
	memberIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		memberIDs[i] = m.UserID
		rawEvents, err := s.events.GetByUserAndRange(ctx, nil, m.UserID, fromDay, toDay.AddDate(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("load member events: %w", err)
		}
		busy := busyIntervals(rawEvents)
		memberBusy[i] = busy
		allBusy = append(allBusy, busy...)
	}
	sort.Slice(allBusy, func(i, j int) bool { return allBusy[i].start.Before(allBusy[j].start) })

	avgFragmentation := 0.0
	if teamRow, err := s.teamScores.GetByTeamAndDate(ctx, nil, teamID, fromDay.AddDate(0, 0, -1)); err != nil {
		return nil, fmt.Errorf("load team score: %w", err)
	} else if teamRow != nil {
		avgFragmentation = teamRow.AvgFragmentationScore
	}

	slots := teamMeetingSlots(fromDay, toDay, now, allBusy, memberBusy, avgFragmentation)
	if len(slots) > maxTeamSuggestions {
		slots = slots[:maxTeamSuggestions]
	}

	affected, err := json.Marshal(memberIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal members: %w", err)
	}
	rows := make([]*types.SchedulingSuggestion, len(slots))
	for i, slot := range slots {
		rows[i] = &types.SchedulingSuggestion{
			TeamID:            teamID,
			SuggestionType:    types.SuggestionBestMeetingTime,
			SuggestedStart:    slot.start,
			SuggestedEnd:      slot.end,
			Reason:            slot.reason,
			ImpactScore:       slot.impact,
			AvailabilityScore: slot.availability,
			AffectedMembers:   affected,
		}
	}

	if err := s.suggestions.DeletePendingFrom(ctx, nil, teamID, now); err != nil {
		return nil, fmt.Errorf("clear pending suggestions: %w", err)
	}
	created, err := s.suggestions.Create(ctx, nil, rows)
	if err != nil {
		return nil, fmt.Errorf("store suggestions: %w", err)
	}
	return created, nil
}

func (s *TeamDeepWorkService) ListSchedulingSuggestions(ctx context.Context, teamID uuid.UUID) ([]*types.SchedulingSuggestion, error) {
	return s.suggestions.ListActive(ctx, nil, teamID, s.now().UTC())
}

func (s *TeamDeepWorkService) DismissSuggestion(ctx context.Context, teamID, suggestionID uuid.UUID) (bool, error) {
	n, err := s.suggestions.Dismiss(ctx, nil, teamID, suggestionID, s.now().UTC())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *TeamDeepWorkService) ApplySuggestion(ctx context.Context, teamID, suggestionID uuid.UUID) (bool, error) {
	n, err := s.suggestions.MarkApplied(ctx, nil, teamID, suggestionID, s.now().UTC())
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type teamSlot struct {
	start        time.Time
	end          time.Time
	impact       float64
	availability float64
	reason       string
}

// teamMeetingSlots walks weekday working windows, subtracts everyone's busy
// time, and scores what remains. A slot is capped at one hour so the meeting
// it hosts cannot eat a whole gap. Impact blends slot quality with how
// fragmented the team already is: a shredded team gains more from a
// well-placed meeting than a calm one.
func teamMeetingSlots(fromDay, toDay, now time.Time, allBusy []interval, memberBusy [][]interval, avgFragmentation float64) []teamSlot {
	var slots []teamSlot
	for day := fromDay; !day.After(toDay); day = day.AddDate(0, 0, 1) {
		window, ok := resolveWorkWindow(nil, day)
		if !ok {
			continue
		}
		for _, g := range gapsInWindow(window, allBusy, defaultMinGapMinutes) {
			if !g.end.After(now) {
				continue
			}
			start := g.start
			if start.Before(now) {
				start = now
			}
			end := start.Add(time.Hour)
			if end.After(g.end) {
				end = g.end
			}
			dur := int(end.Sub(start).Minutes())
			if dur < defaultMinGapMinutes {
				continue
			}

			availability := memberAvailability(start, end, memberBusy)
			quality := float64(gapQuality(start, dur))
			impact := round1(quality * (0.7 + 0.3*math.Min(avgFragmentation, 100)/100) * availability)
			slots = append(slots, teamSlot{
				start:        start,
				end:          end,
				impact:       impact,
				availability: availability,
				reason:       fmt.Sprintf("Whole team is free for %d minutes", dur),
			})
		}
	}
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].impact != slots[j].impact {
			return slots[i].impact > slots[j].impact
		}
		return slots[i].start.Before(slots[j].start)
	})
	return slots
}

// memberAvailability is the fraction of members free for the whole slot.
// Slots come from the union of busy time, so this is 1.0 unless a caller
// feeds looser candidates.
func memberAvailability(start, end time.Time, memberBusy [][]interval) float64 {
	if len(memberBusy) == 0 {
		return 0
	}
	free := 0
	for _, busy := range memberBusy {
		conflict := false
		for _, b := range busy {
			if b.start.Before(end) && b.end.After(start) {
				conflict = true
				break
			}
		}
		if !conflict {
			free++
		}
	}
	return round2(float64(free) / float64(len(memberBusy)))
}
