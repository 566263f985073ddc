package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/productify/deepwork-backend/internal/classify"
	"github.com/productify/deepwork-backend/internal/platform/logger"
)

// ClassificationService answers "how productive is this activity" for a
// given user, layering their personal rules over the builtin tables.
type ClassificationService struct {
	log   *logger.Logger
	rules *RuleCacheService
}

func NewClassificationService(log *logger.Logger, rules *RuleCacheService) *ClassificationService {
	return &ClassificationService{
		log:   log.With("service", "ClassificationService"),
		rules: rules,
	}
}

func (s *ClassificationService) Classify(ctx context.Context, userID uuid.UUID, appName, windowTitle, url string) (classify.Result, error) {
	ruleSet, err := s.rules.Get(ctx, userID)
	if err != nil {
		return classify.Result{}, err
	}
	return classify.Classify(appName, windowTitle, url, ruleSet), nil
}

// ClassifyBatch resolves the rule set once and classifies every sample with
// it, which is what the daily score calculation needs.
func (s *ClassificationService) ClassifyBatch(ctx context.Context, userID uuid.UUID, samples []ClassifyInput) ([]classify.Result, error) {
	ruleSet, err := s.rules.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := make([]classify.Result, len(samples))
	for i, sample := range samples {
		results[i] = classify.Classify(sample.AppName, sample.WindowTitle, sample.URL, ruleSet)
	}
	return results, nil
}

// CategoryBreakdown sums minutes per category over already-classified
// samples, for clients that send durations alongside batch samples.
func (s *ClassificationService) CategoryBreakdown(results []classify.Result, samples []ClassifyInput) map[string]float64 {
	timed := make([]classify.TimedResult, 0, len(results))
	for i, r := range results {
		if i >= len(samples) {
			break
		}
		timed = append(timed, classify.TimedResult{Result: r, Minutes: samples[i].DurationMinutes})
	}
	return classify.CategoryMinutes(timed)
}

type ClassifyInput struct {
	AppName         string  `json:"app_name"`
	WindowTitle     string  `json:"window_title"`
	URL             string  `json:"url"`
	DurationMinutes float64 `json:"duration_minutes,omitempty"`
}
