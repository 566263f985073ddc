package classify

import (
	"sort"
	"strings"
)

type entry struct {
	category string
	score    float64
}

type appEntry struct {
	nameLower string
	category  string
	score     float64
	typ       string
}

func app(name, category string, score float64) appEntry {
	return appEntry{nameLower: strings.ToLower(name), category: category, score: score}
}

func excludedApp(name string) appEntry {
	return appEntry{nameLower: strings.ToLower(name), category: "system", score: 0, typ: TypeExcluded}
}

// builtinApps is evaluated in order; keep multi-word names above their
// prefixes ("Visual Studio Code" before "Visual Studio").
var builtinApps = []appEntry{
	// System/idle processes, excluded from all percentage math.
	excludedApp("loginwindow"),
	excludedApp("ScreenSaverEngine"),
	excludedApp("LockScreen"),
	excludedApp("SecurityAgent"),
	excludedApp("UserNotificationCenter"),
	excludedApp("Notification Center"),
	excludedApp("SystemUIServer"),

	// Productive.
	app("Visual Studio Code", "development", 0.95),
	app("VS Code", "development", 0.95),
	app("Visual Studio", "development", 0.90),
	app("PyCharm", "development", 0.95),
	app("IntelliJ IDEA", "development", 0.95),
	app("WebStorm", "development", 0.95),
	app("Xcode", "development", 0.95),
	app("Android Studio", "development", 0.95),
	app("Sublime Text", "development", 0.90),
	app("Neovim", "development", 0.90),
	app("Vim", "development", 0.90),
	app("Emacs", "development", 0.90),
	app("iTerm2", "development", 0.85),
	app("Terminal", "development", 0.85),
	app("Alacritty", "development", 0.85),
	app("Warp", "development", 0.85),
	app("Postman", "development", 0.85),
	app("Insomnia", "development", 0.85),
	app("TablePlus", "development", 0.80),
	app("DBeaver", "development", 0.80),
	app("Figma", "design", 0.85),
	app("Sketch", "design", 0.85),
	app("Adobe XD", "design", 0.85),
	app("Adobe Photoshop", "design", 0.80),
	app("Adobe Illustrator", "design", 0.80),
	app("Obsidian", "productivity", 0.85),
	app("Notion", "productivity", 0.80),
	app("Bear", "productivity", 0.80),
	app("Microsoft Word", "productivity", 0.75),
	app("Microsoft Excel", "productivity", 0.80),
	app("Microsoft PowerPoint", "productivity", 0.70),
	app("Google Docs", "productivity", 0.75),
	app("Google Sheets", "productivity", 0.80),
	app("Linear", "project_management", 0.85),
	app("Jira", "project_management", 0.80),
	app("Asana", "project_management", 0.75),
	app("Trello", "project_management", 0.70),

	// Neutral.
	app("Microsoft Teams", "communication", 0.55),
	app("Slack", "communication", 0.50),
	app("Discord", "communication", 0.40),
	app("Zoom", "meeting", 0.55),
	app("Google Meet", "meeting", 0.55),
	app("Skype", "communication", 0.45),
	app("Apple Mail", "email", 0.55),
	app("Outlook", "email", 0.55),
	app("Thunderbird", "email", 0.55),
	app("Mail", "email", 0.55),
	app("Apple Calendar", "productivity", 0.60),
	app("Calendar", "productivity", 0.60),
	app("Messages", "communication", 0.35),
	app("WhatsApp", "communication", 0.30),
	app("Telegram", "communication", 0.35),
	app("Signal", "communication", 0.35),
	app("Finder", "system", 0.50),
	app("File Explorer", "system", 0.50),
	app("System Preferences", "system", 0.50),
	app("Settings", "system", 0.50),
	app("Apple Music", "music", 0.50),
	app("Spotify", "music", 0.50),
	app("Music", "music", 0.50),

	// Distracting.
	app("Twitter", "social_media", 0.15),
	app("Facebook", "social_media", 0.15),
	app("Instagram", "social_media", 0.10),
	app("TikTok", "social_media", 0.10),
	app("Reddit", "social_media", 0.20),
	app("Netflix", "entertainment", 0.10),
	app("YouTube", "video", 0.35),
	app("Twitch", "entertainment", 0.15),
	app("Steam", "gaming", 0.10),
	app("Epic Games", "gaming", 0.10),
}

// builtinDomains is the default site table; matched by exact domain after
// subdomain stripping.
var builtinDomains = map[string]entry{
	// Productive.
	"github.com":             {"development", 0.90},
	"gitlab.com":             {"development", 0.90},
	"bitbucket.org":          {"development", 0.85},
	"stackoverflow.com":      {"development", 0.85},
	"stackexchange.com":      {"development", 0.80},
	"docs.python.org":        {"documentation", 0.90},
	"developer.mozilla.org":  {"documentation", 0.90},
	"react.dev":              {"documentation", 0.90},
	"nodejs.org":             {"documentation", 0.85},
	"npmjs.com":              {"development", 0.80},
	"pypi.org":               {"development", 0.80},
	"crates.io":              {"development", 0.80},
	"medium.com":             {"learning", 0.65},
	"dev.to":                 {"learning", 0.75},
	"hashnode.com":           {"learning", 0.75},
	"udemy.com":              {"learning", 0.80},
	"coursera.org":           {"learning", 0.85},
	"pluralsight.com":        {"learning", 0.85},
	"egghead.io":             {"learning", 0.85},
	"frontendmasters.com":    {"learning", 0.85},
	"notion.so":              {"productivity", 0.80},
	"linear.app":             {"project_management", 0.85},
	"figma.com":              {"design", 0.85},
	"canva.com":              {"design", 0.70},
	"vercel.com":             {"development", 0.80},
	"netlify.com":            {"development", 0.80},
	"aws.amazon.com":         {"development", 0.80},
	"cloud.google.com":       {"development", 0.80},
	"azure.microsoft.com":    {"development", 0.80},
	"docs.google.com":        {"productivity", 0.75},
	"sheets.google.com":      {"productivity", 0.80},
	"drive.google.com":       {"productivity", 0.70},

	// Neutral.
	"slack.com":           {"communication", 0.50},
	"discord.com":         {"communication", 0.40},
	"teams.microsoft.com": {"communication", 0.55},
	"zoom.us":             {"meeting", 0.55},
	"meet.google.com":     {"meeting", 0.55},
	"mail.google.com":     {"email", 0.55},
	"outlook.com":         {"email", 0.55},
	"calendar.google.com": {"productivity", 0.60},

	// Distracting.
	"twitter.com":         {"social_media", 0.15},
	"x.com":               {"social_media", 0.15},
	"facebook.com":        {"social_media", 0.15},
	"instagram.com":       {"social_media", 0.10},
	"tiktok.com":          {"social_media", 0.10},
	"reddit.com":          {"social_media", 0.20},
	"youtube.com":         {"video", 0.35},
	"netflix.com":         {"entertainment", 0.10},
	"hulu.com":            {"entertainment", 0.10},
	"disneyplus.com":      {"entertainment", 0.10},
	"primevideo.com":      {"entertainment", 0.10},
	"twitch.tv":           {"entertainment", 0.15},
	"9gag.com":            {"entertainment", 0.05},
	"buzzfeed.com":        {"entertainment", 0.15},
	"news.ycombinator.com": {"news", 0.40},
}

var devTitleKeywords = []string{
	"pull request", "issue", "commit", "merge", "branch",
	"debug", "console", "terminal", "code review",
}

var docTitleKeywords = []string{
	"documentation", "docs", "readme", "api reference", "guide",
}

// lexicalMarkers is evaluated in order; the first marker found in the name
// decides the category.
var lexicalMarkers = []struct {
	marker   string
	category string
}{
	{"code", "development"},
	{"git", "development"},
	{"terminal", "development"},
	{"ide", "development"},
	{"dev", "development"},
	{"design", "design"},
	{"sketch", "design"},
	{"draw", "design"},
	{"mail", "communication"},
	{"chat", "communication"},
	{"messag", "communication"},
	{"browser", "browsing"},
	{"chrome", "browsing"},
	{"firefox", "browsing"},
	{"safari", "browsing"},
	{"edge", "browsing"},
	{"note", "productivity"},
	{"task", "productivity"},
	{"calendar", "productivity"},
	{"docs", "productivity"},
	{"music", "music"},
	{"audio", "music"},
	{"video", "video"},
	{"player", "video"},
	{"tube", "video"},
	{"game", "gaming"},
	{"play", "gaming"},
	{"system", "system"},
	{"settings", "system"},
	{"preferences", "system"},
}

// DefaultRule is one built-in domain rule, as listed over the API next to
// the user's own overrides.
type DefaultRule struct {
	Domain       string  `json:"domain"`
	Category     string  `json:"category"`
	Productivity string  `json:"productivity"`
	Score        float64 `json:"score"`
}

func DefaultDomainRules() []DefaultRule {
	out := make([]DefaultRule, 0, len(builtinDomains))
	for d, e := range builtinDomains {
		out = append(out, DefaultRule{
			Domain:       d,
			Category:     e.category,
			Productivity: ScoreToType(e.score),
			Score:        e.score,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Domain < out[j].Domain })
	return out
}

func lexicalCategory(name string) string {
	if name == "" {
		return "other"
	}
	lower := strings.ToLower(name)
	for _, m := range lexicalMarkers {
		if strings.Contains(lower, m.marker) {
			return m.category
		}
	}
	return "other"
}
