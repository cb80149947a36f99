package router

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aurix-ai/aurix/internal/automation"
	"github.com/sirupsen/logrus"
)

// Outcome is the tagged result of routing one input. Handled carries the
// user-facing text; when Handled is false the input belongs to the model.
type Outcome struct {
	Handled  bool
	Exit     bool
	Text     string
	Category string
}

// NotAutomation is the outcome for input that matched no rule.
var NotAutomation = Outcome{}

func handled(category, text string) Outcome {
	return Outcome{Handled: true, Text: text, Category: category}
}

// Providers holds the automation capabilities available to the router. A nil
// entry means the capability failed to initialize; the matching rules then
// return a fixed "unavailable" message instead of dispatching.
type Providers struct {
	Apps      automation.AppController
	Reminders automation.ReminderService
	System    automation.SystemService
	Web       automation.WebService
}

// Router classifies free-text input against an ordered rule table and
// dispatches matches to the automation providers.
type Router struct {
	providers      Providers
	defaultBrowser string
	logger         *logrus.Logger
}

// NewRouter creates an intent router
func NewRouter(providers Providers, defaultBrowser string, logger *logrus.Logger) *Router {
	if defaultBrowser == "" {
		defaultBrowser = "chrome"
	}
	return &Router{
		providers:      providers,
		defaultBrowser: defaultBrowser,
		logger:         logger,
	}
}

var exitCommands = map[string]bool{
	"exit": true, "quit": true, "bye": true, "goodbye": true, "close": true,
}

// genericAppTerms are excluded from the close rule so that phrases like
// "close app" fall through to the model rather than killing a process.
var genericAppTerms = map[string]bool{
	"app": true, "application": true, "program": true,
}

// Route evaluates the rule table in order; the first matching rule wins.
// Malformed matches still count as handled: they return guidance text
// instead of falling through to the model.
func (r *Router) Route(ctx context.Context, input string) Outcome {
	lower := strings.ToLower(strings.TrimSpace(input))

	// Exit commands
	if exitCommands[lower] {
		return Outcome{Handled: true, Exit: true, Category: "exit", Text: "Exiting application. Goodbye!"}
	}

	// App launching
	if rest, ok := cutAnyPrefix(lower, "launch ", "open "); ok {
		return r.handleAppLaunch(rest)
	}

	// App closing, guarding against generic placeholder words
	if rest, ok := cutAnyPrefix(lower, "close ", "exit "); ok {
		if !genericAppTerms[strings.TrimSpace(rest)] {
			return r.handleAppClose(strings.TrimSpace(rest))
		}
	}

	// Reminders
	if rest, ok := cutAnyPrefix(lower, "remind me to ", "set reminder "); ok {
		return r.handleSetReminder(rest)
	}
	if lower == "show reminders" || lower == "list reminders" {
		return r.handleShowReminders()
	}
	if lower == "clear reminders" || lower == "delete reminders" {
		return r.handleClearReminders()
	}

	// Volume and brightness
	if rest, ok := strings.CutPrefix(lower, "set volume "); ok {
		return r.handleSetVolume(rest)
	}
	if lower == "get volume" || lower == "current volume" || lower == "volume level" {
		return r.dispatchSystem("volume", automation.SystemService.GetVolume)
	}
	if rest, ok := strings.CutPrefix(lower, "set brightness "); ok {
		return r.handleSetBrightness(rest)
	}
	if lower == "get brightness" || lower == "current brightness" || lower == "brightness level" {
		return r.dispatchSystem("brightness", automation.SystemService.GetBrightness)
	}
	if lower == "mute" || lower == "mute volume" {
		return r.dispatchSystem("volume", automation.SystemService.Mute)
	}
	if lower == "unmute" || lower == "unmute volume" {
		return r.dispatchSystem("volume", automation.SystemService.Unmute)
	}

	// Power and system state
	if hasAnyPrefix(lower, "shutdown", "turn off computer", "power off") {
		return r.handlePower(lower, "shutdown")
	}
	if hasAnyPrefix(lower, "restart", "reboot") {
		return r.handlePower(lower, "restart")
	}
	if lower == "cancel shutdown" || lower == "abort shutdown" || lower == "cancel restart" {
		return r.dispatchSystem("power", automation.SystemService.CancelPending)
	}
	if lower == "sleep" || lower == "sleep mode" || lower == "put system to sleep" {
		return r.dispatchSystem("power", automation.SystemService.Sleep)
	}
	if lower == "lock" || lower == "lock screen" || lower == "lock computer" {
		return r.dispatchSystem("power", automation.SystemService.Lock)
	}
	if lower == "system info" || lower == "computer info" || lower == "system information" {
		return r.dispatchSystem("system", automation.SystemService.SystemInfo)
	}

	// Web actions
	if rest, ok := strings.CutPrefix(lower, "search "); ok {
		return r.handleWebSearch(ctx, strings.TrimSpace(rest))
	}
	if rest, ok := strings.CutPrefix(lower, "scrape "); ok {
		return r.handleWebScrape(ctx, strings.TrimSpace(rest))
	}
	if rest, ok := strings.CutPrefix(lower, "quick answer "); ok {
		return r.handleQuickAnswer(ctx, strings.TrimSpace(rest))
	}

	return NotAutomation
}

func cutAnyPrefix(s string, prefixes ...string) (string, bool) {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(s, p); ok {
			return rest, true
		}
	}
	return "", false
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// launchAliases maps common phrasings to canonical app identifiers. The
// browser aliases resolve to the configured default browser.
func (r *Router) resolveAppAlias(name string) string {
	switch name {
	case "file explorer", "explorer", "my computer":
		return "explorer"
	case "browser", "web browser", "internet":
		return r.defaultBrowser
	}
	return name
}

func (r *Router) handleAppLaunch(rest string) Outcome {
	if r.providers.Apps == nil {
		return handled("apps", "App launcher is not available. Please check dependencies.")
	}

	appID := strings.TrimSpace(rest)
	if appID == "" {
		return handled("apps", "Please specify an application to launch.")
	}
	appID = r.resolveAppAlias(appID)

	text, err := r.providers.Apps.Launch(appID)
	if err != nil {
		r.logger.WithError(err).WithField("app", appID).Error("Error launching app")
		return handled("apps", fmt.Sprintf("Failed to launch application: %v", err))
	}
	return handled("apps", text)
}

func (r *Router) handleAppClose(appID string) Outcome {
	if r.providers.Apps == nil {
		return handled("apps", "App launcher is not available. Please check dependencies.")
	}

	text, err := r.providers.Apps.Close(appID)
	if err != nil {
		r.logger.WithError(err).WithField("app", appID).Error("Error closing app")
		return handled("apps", fmt.Sprintf("Failed to close application: %v", err))
	}
	return handled("apps", text)
}

var minuteUnits = map[string]time.Duration{
	"minute": time.Minute, "minutes": time.Minute, "min": time.Minute, "mins": time.Minute,
}

var hourUnits = map[string]time.Duration{
	"hour": time.Hour, "hours": time.Hour, "hr": time.Hour, "hrs": time.Hour,
}

func (r *Router) handleSetReminder(content string) Outcome {
	if r.providers.Reminders == nil {
		return handled("reminders", "Reminder system is not available.")
	}

	parts := strings.Split(content, " in ")
	if len(parts) != 2 {
		return handled("reminders", "Please specify the reminder in format: 'Remind me to [task] in [number] [minutes/hours]'")
	}

	message := strings.TrimSpace(parts[0])
	timeFields := strings.Fields(strings.TrimSpace(parts[1]))
	if len(timeFields) < 2 {
		return handled("reminders", "Invalid time format. Use: [number] [minutes/hours]")
	}

	value, err := strconv.Atoi(timeFields[0])
	if err != nil {
		return handled("reminders", "Invalid time value. Please use a number.")
	}

	unit := strings.ToLower(timeFields[1])
	var per time.Duration
	if d, ok := minuteUnits[unit]; ok {
		per = d
	} else if d, ok := hourUnits[unit]; ok {
		per = d
	} else {
		return handled("reminders", "Sorry, I can only set reminders for minutes or hours from now.")
	}

	when := time.Now().Add(time.Duration(value) * per)
	text, err := r.providers.Reminders.Add(message, when)
	if err != nil {
		r.logger.WithError(err).Error("Error setting reminder")
		return handled("reminders", fmt.Sprintf("Failed to set reminder: %v", err))
	}
	return handled("reminders", text)
}

func (r *Router) handleShowReminders() Outcome {
	if r.providers.Reminders == nil {
		return handled("reminders", "Reminder system is not available.")
	}

	reminders := r.providers.Reminders.List()
	if len(reminders) == 0 {
		return handled("reminders", "You don't have any active reminders.")
	}
	return handled("reminders", "Here are your current reminders:\n"+strings.Join(reminders, "\n"))
}

func (r *Router) handleClearReminders() Outcome {
	if r.providers.Reminders == nil {
		return handled("reminders", "Reminder system is not available.")
	}

	text, err := r.providers.Reminders.Clear()
	if err != nil {
		r.logger.WithError(err).Error("Error clearing reminders")
		return handled("reminders", fmt.Sprintf("Failed to clear reminders: %v", err))
	}
	return handled("reminders", text)
}

func (r *Router) dispatchSystem(category string, call func(automation.SystemService) (string, error)) Outcome {
	if r.providers.System == nil {
		return handled(category, "System control is not available. Please check dependencies.")
	}

	text, err := call(r.providers.System)
	if err != nil {
		r.logger.WithError(err).Error("Error with system control")
		return handled(category, fmt.Sprintf("System control failed: %v", err))
	}
	return handled(category, text)
}

func (r *Router) handleSetVolume(rest string) Outcome {
	if r.providers.System == nil {
		return handled("volume", "System control is not available. Please check dependencies.")
	}

	level, ok := trailingInt(rest)
	if !ok {
		return handled("volume", "Please specify a volume level (0-100).")
	}
	return r.dispatchSystem("volume", func(sys automation.SystemService) (string, error) {
		return sys.SetVolume(level)
	})
}

func (r *Router) handleSetBrightness(rest string) Outcome {
	if r.providers.System == nil {
		return handled("brightness", "System control is not available. Please check dependencies.")
	}

	level, ok := trailingInt(rest)
	if !ok {
		return handled("brightness", "Please specify a brightness level (0-100).")
	}
	return r.dispatchSystem("brightness", func(sys automation.SystemService) (string, error) {
		return sys.SetBrightness(level)
	})
}

// trailingInt extracts a required integer from the last token
func trailingInt(s string) (int, bool) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, false
	}
	return n, true
}

const defaultPowerDelay = 30

// powerDelay finds an integer token immediately following "in", "after" or
// "wait"; absent that, the default delay applies.
func powerDelay(input string) int {
	fields := strings.Fields(input)
	for i := 1; i < len(fields); i++ {
		switch strings.ToLower(fields[i-1]) {
		case "in", "after", "wait":
			if n, err := strconv.Atoi(fields[i]); err == nil {
				return n
			}
		}
	}
	return defaultPowerDelay
}

func (r *Router) handlePower(input, action string) Outcome {
	delay := powerDelay(input)
	return r.dispatchSystem("power", func(sys automation.SystemService) (string, error) {
		if action == "restart" {
			return sys.Restart(delay)
		}
		return sys.Shutdown(delay)
	})
}

func (r *Router) handleWebSearch(ctx context.Context, query string) Outcome {
	if r.providers.Web == nil {
		return handled("web", "Web actions are not available. Please check internet connection.")
	}
	if query == "" {
		return handled("web", "Please specify a search query.")
	}

	results, err := r.providers.Web.Search(ctx, query)
	if err != nil {
		r.logger.WithError(err).WithField("query", query).Error("Error with web search")
		return handled("web", fmt.Sprintf("Web search failed: %v", err))
	}
	if len(results) == 0 {
		return handled("web", "Sorry, I couldn't find any results for that search.")
	}

	var sb strings.Builder
	sb.WriteString("Here are the top search results:\n\n")
	for i, res := range results {
		fmt.Fprintf(&sb, "%d. %s\n   %s\n   %s\n\n", i+1, res.Title, res.Link, res.Snippet)
	}
	return handled("web", sb.String())
}

func (r *Router) handleWebScrape(ctx context.Context, url string) Outcome {
	if r.providers.Web == nil {
		return handled("web", "Web actions are not available.")
	}
	if url == "" {
		return handled("web", "Please specify a URL to scrape.")
	}

	content, err := r.providers.Web.Scrape(ctx, url)
	if err != nil {
		r.logger.WithError(err).WithField("url", url).Error("Error with web scraping")
		return handled("web", fmt.Sprintf("Web scraping failed: %v", err))
	}
	return handled("web", "Here's a summary of the webpage content:\n\n"+content)
}

func (r *Router) handleQuickAnswer(ctx context.Context, query string) Outcome {
	if r.providers.Web == nil {
		return handled("web", "Web actions are not available.")
	}
	if query == "" {
		return handled("web", "Please specify a query for quick answer.")
	}

	answer, err := r.providers.Web.QuickAnswer(ctx, query)
	if err != nil {
		r.logger.WithError(err).WithField("query", query).Error("Error with quick answer")
		return handled("web", fmt.Sprintf("Quick answer failed: %v", err))
	}
	if answer == "" {
		return handled("web", "Sorry, I couldn't find a quick answer for that query.")
	}
	return handled("web", "Quick answer: "+answer)
}
