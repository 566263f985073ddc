// Package classify labels raw activity samples (app, window title, URL) with
// a productivity score, type and category. Classification is deterministic:
// the same inputs always produce the same Result, and every input produces a
// valid Result — unknown apps and unparseable URLs fall through the rule
// chain to the neutral default instead of erroring.
package classify

import "strings"

const (
	TypeProductive  = "productive"
	TypeNeutral     = "neutral"
	TypeDistracting = "distracting"
	TypeExcluded    = "excluded"
)

// Score thresholds for deriving a type from a numeric score. These are
// tuning constants shared with the score calculator.
const (
	ProductiveThreshold  = 0.6
	DistractingThreshold = 0.35
)

// Scores assigned to user rules by label.
const (
	scoreProductive  = 0.9
	scoreNeutral     = 0.5
	scoreDistracting = 0.1
)

const (
	SourceUserURLRule      = "user_url_rule"
	SourceUserPlatformRule = "user_platform_rule"
	SourceCustomList       = "custom_list"
	SourceBuiltinDomain    = "builtin_domain"
	SourceBuiltinApp       = "builtin_app"
	SourceTitleKeyword     = "title_keyword"
	SourceLexical          = "lexical"
)

type Result struct {
	ProductivityScore float64 `json:"productivity_score"`
	ProductivityType  string  `json:"productivity_type"`
	Category          string  `json:"category"`
	Reason            string  `json:"reason"`
	Source            string  `json:"source"`
}

// URLRule matches a full URL or a pattern with a single leading or trailing
// wildcard ("youtube.com/playlist*").
type URLRule struct {
	Pattern      string
	Productivity string
	Category     string
}

// PlatformRule is a user override keyed by app name or bare domain.
type PlatformRule struct {
	Productivity string
	Category     string
}

// RuleSet is one user's classification rules, loaded by the rule cache.
// Lists maps list type (productive/distracting/excluded) to lowercase
// free-text patterns.
type RuleSet struct {
	URLRules      []URLRule
	PlatformRules map[string]PlatformRule
	Lists         map[string][]string
}

// Classify evaluates rules in strict priority order, first match wins:
// user URL rules, user platform rules, custom lists, built-in domain table,
// built-in app table, window-title keywords, lexical category inference.
func Classify(appName, windowTitle, url string, rules *RuleSet) Result {
	domain := ""
	if url != "" {
		domain = Domain(url)
	}

	if rules != nil {
		if r, ok := matchURLRule(url, domain, rules.URLRules); ok {
			return r
		}
		if r, ok := matchPlatformRule(appName, domain, rules.PlatformRules); ok {
			return r
		}
		if r, ok := matchCustomLists(appName, domain, rules.Lists); ok {
			return r
		}
	}

	if domain != "" {
		if r, ok := matchBuiltinDomain(domain); ok {
			return r
		}
	}
	if r, ok := matchBuiltinApp(appName); ok {
		return r
	}
	if r, ok := matchTitleKeywords(windowTitle); ok {
		return r
	}
	return lexicalResult(appName, domain)
}

// TimedResult is a classification outcome weighted by how long the sample
// lasted.
type TimedResult struct {
	Result  Result
	Minutes float64
}

// CategoryMinutes aggregates time per category across classified samples.
// Excluded samples and samples without a duration are skipped.
func CategoryMinutes(samples []TimedResult) map[string]float64 {
	out := make(map[string]float64)
	for _, s := range samples {
		if s.Result.ProductivityType == TypeExcluded || s.Minutes <= 0 {
			continue
		}
		out[s.Result.Category] += s.Minutes
	}
	return out
}

// ScoreToType maps a numeric productivity score onto a type.
func ScoreToType(score float64) string {
	if score >= ProductiveThreshold {
		return TypeProductive
	}
	if score <= DistractingThreshold {
		return TypeDistracting
	}
	return TypeNeutral
}

func labelScore(productivity string) (float64, string) {
	switch productivity {
	case TypeProductive:
		return scoreProductive, TypeProductive
	case TypeDistracting:
		return scoreDistracting, TypeDistracting
	case TypeExcluded:
		return 0, TypeExcluded
	default:
		return scoreNeutral, TypeNeutral
	}
}

func matchURLRule(url, domain string, urlRules []URLRule) (Result, bool) {
	if url == "" || len(urlRules) == 0 {
		return Result{}, false
	}
	target := normalizeURL(url)
	for _, rule := range urlRules {
		if !patternMatches(rule.Pattern, target) {
			continue
		}
		score, typ := labelScore(rule.Productivity)
		category := rule.Category
		if category == "" {
			category = lexicalCategory(domain)
		}
		return Result{
			ProductivityScore: score,
			ProductivityType:  typ,
			Category:          category,
			Reason:            "matches your URL rule '" + rule.Pattern + "'",
			Source:            SourceUserURLRule,
		}, true
	}
	return Result{}, false
}

func matchPlatformRule(appName, domain string, platformRules map[string]PlatformRule) (Result, bool) {
	if len(platformRules) == 0 {
		return Result{}, false
	}
	for _, key := range []string{domain, strings.ToLower(appName)} {
		if key == "" {
			continue
		}
		rule, ok := platformRules[key]
		if !ok {
			continue
		}
		score, typ := labelScore(rule.Productivity)
		category := rule.Category
		if category == "" {
			category = lexicalCategory(key)
		}
		return Result{
			ProductivityScore: score,
			ProductivityType:  typ,
			Category:          category,
			Reason:            "matches your rule for '" + key + "'",
			Source:            SourceUserPlatformRule,
		}, true
	}
	return Result{}, false
}

func matchCustomLists(appName, domain string, lists map[string][]string) (Result, bool) {
	if len(lists) == 0 {
		return Result{}, false
	}
	for _, value := range []string{appName, domain} {
		if value == "" {
			continue
		}
		if matchesList(value, lists[TypeExcluded]) {
			return Result{
				ProductivityScore: 0,
				ProductivityType:  TypeExcluded,
				Category:          "excluded",
				Reason:            "'" + value + "' is on your excluded list",
				Source:            SourceCustomList,
			}, true
		}
		if matchesList(value, lists[TypeProductive]) {
			return Result{
				ProductivityScore: scoreProductive,
				ProductivityType:  TypeProductive,
				Category:          "custom_productive",
				Reason:            "'" + value + "' is on your productive list",
				Source:            SourceCustomList,
			}, true
		}
		if matchesList(value, lists[TypeDistracting]) {
			return Result{
				ProductivityScore: scoreDistracting,
				ProductivityType:  TypeDistracting,
				Category:          "custom_distracting",
				Reason:            "'" + value + "' is on your distracting list",
				Source:            SourceCustomList,
			}, true
		}
	}
	return Result{}, false
}

// matchesList does case-insensitive substring matching in both directions so
// "slack" matches "Slack Helper" and "app.slack.com" alike.
func matchesList(value string, patterns []string) bool {
	lower := strings.ToLower(value)
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		if strings.Contains(lower, pattern) || strings.Contains(pattern, lower) {
			return true
		}
	}
	return false
}

// matchBuiltinDomain looks up the domain exactly, then strips subdomain
// labels one at a time so "gist.github.com" resolves through "github.com".
func matchBuiltinDomain(domain string) (Result, bool) {
	for d := domain; d != ""; d = parentDomain(d) {
		if e, ok := builtinDomains[d]; ok {
			return Result{
				ProductivityScore: e.score,
				ProductivityType:  ScoreToType(e.score),
				Category:          e.category,
				Reason:            "'" + domain + "' is a known " + ScoreToType(e.score) + " site",
				Source:            SourceBuiltinDomain,
			}, true
		}
	}
	return Result{}, false
}

func parentDomain(domain string) string {
	idx := strings.Index(domain, ".")
	if idx < 0 {
		return ""
	}
	rest := domain[idx+1:]
	// A bare TLD is never a classification target.
	if !strings.Contains(rest, ".") {
		return ""
	}
	return rest
}

// matchBuiltinApp scans the ordered app table. Entries are ordered most
// specific first ("Visual Studio Code" before "Visual Studio"), and the
// excluded system processes sit at the top so a lock screen never picks up
// a productive label from a looser entry.
func matchBuiltinApp(appName string) (Result, bool) {
	lower := strings.ToLower(appName)
	if lower == "" {
		return Result{}, false
	}
	for _, e := range builtinApps {
		if !strings.Contains(lower, e.nameLower) && !strings.Contains(e.nameLower, lower) {
			continue
		}
		typ := e.typ
		if typ == "" {
			typ = ScoreToType(e.score)
		}
		return Result{
			ProductivityScore: e.score,
			ProductivityType:  typ,
			Category:          e.category,
			Reason:            "'" + appName + "' matches the built-in app table",
			Source:            SourceBuiltinApp,
		}, true
	}
	return Result{}, false
}

func matchTitleKeywords(title string) (Result, bool) {
	lower := strings.ToLower(title)
	if lower == "" {
		return Result{}, false
	}
	for _, kw := range devTitleKeywords {
		if strings.Contains(lower, kw) {
			return Result{
				ProductivityScore: 0.85,
				ProductivityType:  TypeProductive,
				Category:          "development",
				Reason:            "window title contains development keyword '" + kw + "'",
				Source:            SourceTitleKeyword,
			}, true
		}
	}
	for _, kw := range docTitleKeywords {
		if strings.Contains(lower, kw) {
			return Result{
				ProductivityScore: 0.80,
				ProductivityType:  TypeProductive,
				Category:          "documentation",
				Reason:            "window title suggests documentation",
				Source:            SourceTitleKeyword,
			}, true
		}
	}
	return Result{}, false
}

func lexicalResult(appName, domain string) Result {
	category := lexicalCategory(strings.ToLower(appName))
	if category == "other" && domain != "" {
		category = lexicalCategory(domain)
	}
	return Result{
		ProductivityScore: scoreNeutral,
		ProductivityType:  TypeNeutral,
		Category:          category,
		Reason:            "no specific rule for '" + appName + "'",
		Source:            SourceLexical,
	}
}
