package router

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurix-ai/aurix/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type spyApps struct {
	launched []string
	closed   []string
}

func (s *spyApps) Launch(appID string) (string, error) {
	s.launched = append(s.launched, appID)
	return "Launching " + appID + "...", nil
}

func (s *spyApps) Close(appID string) (string, error) {
	s.closed = append(s.closed, appID)
	return "Closed " + appID + ".", nil
}

func (s *spyApps) InstalledApps() []string { return []string{"chrome", "code"} }

type spyReminders struct {
	added   []string
	addedAt []time.Time
	listing []string
	cleared bool
}

func (s *spyReminders) Add(message string, when time.Time) (string, error) {
	s.added = append(s.added, message)
	s.addedAt = append(s.addedAt, when)
	return "Reminder set for " + when.Format(models.ReminderTimeLayout) + ": " + message, nil
}

func (s *spyReminders) List() []string { return s.listing }

func (s *spyReminders) Clear() (string, error) {
	s.cleared = true
	return "Cleared 0 reminders", nil
}

type spySystem struct {
	volume      int
	brightness  int
	muted       bool
	shutdownIn  int
	restartIn   int
	cancelled   bool
	slept       bool
	locked      bool
	infoQueried bool
}

func (s *spySystem) SetVolume(level int) (string, error) {
	s.volume = level
	return "Volume set", nil
}
func (s *spySystem) GetVolume() (string, error) { return "Volume is 50%", nil }
func (s *spySystem) Mute() (string, error)      { s.muted = true; return "Muted", nil }
func (s *spySystem) Unmute() (string, error)    { s.muted = false; return "Unmuted", nil }
func (s *spySystem) SetBrightness(level int) (string, error) {
	s.brightness = level
	return "Brightness set", nil
}
func (s *spySystem) GetBrightness() (string, error) { return "Brightness is 70%", nil }
func (s *spySystem) Shutdown(delay int) (string, error) {
	s.shutdownIn = delay
	return "Shutting down", nil
}
func (s *spySystem) Restart(delay int) (string, error) {
	s.restartIn = delay
	return "Restarting", nil
}
func (s *spySystem) CancelPending() (string, error) { s.cancelled = true; return "Cancelled", nil }
func (s *spySystem) Sleep() (string, error)         { s.slept = true; return "Sleeping", nil }
func (s *spySystem) Lock() (string, error)          { s.locked = true; return "Locked", nil }
func (s *spySystem) SystemInfo() (string, error) {
	s.infoQueried = true
	return "System info", nil
}

type spyWeb struct {
	results []models.SearchResult
	scraped string
	answer  string
}

func (s *spyWeb) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	return s.results, nil
}
func (s *spyWeb) Scrape(ctx context.Context, url string) (string, error) { return s.scraped, nil }
func (s *spyWeb) QuickAnswer(ctx context.Context, query string) (string, error) {
	return s.answer, nil
}

func newTestRouter() (*Router, *spyApps, *spyReminders, *spySystem, *spyWeb) {
	apps := &spyApps{}
	rem := &spyReminders{}
	sys := &spySystem{}
	web := &spyWeb{}
	r := NewRouter(Providers{Apps: apps, Reminders: rem, System: sys, Web: web}, "chrome", testLogger())
	return r, apps, rem, sys, web
}

func TestRouteExitCommands(t *testing.T) {
	r, _, _, _, _ := newTestRouter()

	for _, input := range []string{"exit", "quit", "bye", "goodbye", "close", "  EXIT  "} {
		outcome := r.Route(context.Background(), input)
		assert.True(t, outcome.Handled, "input %q", input)
		assert.True(t, outcome.Exit, "input %q", input)
	}
}

func TestRouteLaunchApp(t *testing.T) {
	r, apps, _, _, _ := newTestRouter()

	outcome := r.Route(context.Background(), "launch spotify")
	require.True(t, outcome.Handled)
	assert.False(t, outcome.Exit)
	assert.Equal(t, []string{"spotify"}, apps.launched)
	assert.Equal(t, "apps", outcome.Category)
}

func TestRouteLaunchAliases(t *testing.T) {
	r, apps, _, _, _ := newTestRouter()

	r.Route(context.Background(), "open browser")
	r.Route(context.Background(), "open file explorer")
	assert.Equal(t, []string{"chrome", "explorer"}, apps.launched)
}

func TestRouteLaunchWithoutTarget(t *testing.T) {
	r, apps, _, _, _ := newTestRouter()

	outcome := r.Route(context.Background(), "launch ")
	require.True(t, outcome.Handled)
	assert.Equal(t, "Please specify an application to launch.", outcome.Text)
	assert.Empty(t, apps.launched)
}

func TestRouteCloseApp(t *testing.T) {
	r, apps, _, _, _ := newTestRouter()

	outcome := r.Route(context.Background(), "close spotify")
	require.True(t, outcome.Handled)
	assert.Equal(t, []string{"spotify"}, apps.closed)
}

func TestRouteCloseGenericTermFallsThrough(t *testing.T) {
	r, apps, _, _, _ := newTestRouter()

	for _, input := range []string{"close app", "close application", "close program", "exit app"} {
		outcome := r.Route(context.Background(), input)
		assert.False(t, outcome.Handled, "input %q should go to the model", input)
	}
	assert.Empty(t, apps.closed)
}

func TestRouteSetReminder(t *testing.T) {
	r, _, rem, _, _ := newTestRouter()

	before := time.Now()
	outcome := r.Route(context.Background(), "remind me to call mom in 5 minutes")
	require.True(t, outcome.Handled)
	require.Equal(t, []string{"call mom"}, rem.added)

	delta := rem.addedAt[0].Sub(before)
	assert.InDelta(t, (5 * time.Minute).Seconds(), delta.Seconds(), 2)
}

func TestRouteSetReminderHours(t *testing.T) {
	r, _, rem, _, _ := newTestRouter()

	before := time.Now()
	r.Route(context.Background(), "set reminder stretch in 2 hours")
	require.Equal(t, []string{"stretch"}, rem.added)

	delta := rem.addedAt[0].Sub(before)
	assert.InDelta(t, (2 * time.Hour).Seconds(), delta.Seconds(), 2)
}

func TestRouteSetReminderMalformed(t *testing.T) {
	r, _, rem, _, _ := newTestRouter()

	cases := map[string]string{
		"remind me to call mom":               "Please specify the reminder in format: 'Remind me to [task] in [number] [minutes/hours]'",
		"remind me to call mom in soon":       "Invalid time format. Use: [number] [minutes/hours]",
		"remind me to call mom in ten minutes": "Invalid time value. Please use a number.",
		"remind me to call mom in 3 days":     "Sorry, I can only set reminders for minutes or hours from now.",
	}
	for input, want := range cases {
		outcome := r.Route(context.Background(), input)
		require.True(t, outcome.Handled, "input %q", input)
		assert.Equal(t, want, outcome.Text, "input %q", input)
	}
	assert.Empty(t, rem.added, "malformed reminders must not be scheduled")
}

func TestRouteShowReminders(t *testing.T) {
	r, _, rem, _, _ := newTestRouter()

	outcome := r.Route(context.Background(), "show reminders")
	require.True(t, outcome.Handled)
	assert.Equal(t, "You don't have any active reminders.", outcome.Text)

	rem.listing = []string{"2026-08-29 18:00:00: call mom"}
	outcome = r.Route(context.Background(), "list reminders")
	assert.Contains(t, outcome.Text, "call mom")
}

func TestRouteClearReminders(t *testing.T) {
	r, _, rem, _, _ := newTestRouter()

	outcome := r.Route(context.Background(), "clear reminders")
	require.True(t, outcome.Handled)
	assert.True(t, rem.cleared)
}

func TestRouteSetVolume(t *testing.T) {
	r, _, _, sys, _ := newTestRouter()

	outcome := r.Route(context.Background(), "set volume to 75")
	require.True(t, outcome.Handled)
	assert.Equal(t, 75, sys.volume)
}

func TestRouteSetVolumeMissingLevel(t *testing.T) {
	r, _, _, sys, _ := newTestRouter()

	outcome := r.Route(context.Background(), "set volume loud")
	require.True(t, outcome.Handled)
	assert.Equal(t, "Please specify a volume level (0-100).", outcome.Text)
	assert.Zero(t, sys.volume)
}

func TestRoutePowerDelay(t *testing.T) {
	r, _, _, sys, _ := newTestRouter()

	r.Route(context.Background(), "shutdown in 120 seconds")
	assert.Equal(t, 120, sys.shutdownIn)

	r.Route(context.Background(), "restart")
	assert.Equal(t, 30, sys.restartIn, "default delay applies without a time token")
}

func TestRouteSystemPhrases(t *testing.T) {
	r, _, _, sys, _ := newTestRouter()
	ctx := context.Background()

	r.Route(ctx, "mute")
	assert.True(t, sys.muted)
	r.Route(ctx, "unmute volume")
	assert.False(t, sys.muted)
	r.Route(ctx, "lock screen")
	assert.True(t, sys.locked)
	r.Route(ctx, "sleep mode")
	assert.True(t, sys.slept)
	r.Route(ctx, "cancel shutdown")
	assert.True(t, sys.cancelled)
	r.Route(ctx, "system info")
	assert.True(t, sys.infoQueried)
}

func TestRouteWebSearch(t *testing.T) {
	r, _, _, _, web := newTestRouter()
	web.results = []models.SearchResult{
		{Title: "Go", Link: "https://go.dev", Snippet: "The Go programming language"},
	}

	outcome := r.Route(context.Background(), "search golang")
	require.True(t, outcome.Handled)
	assert.Contains(t, outcome.Text, "Here are the top search results:")
	assert.Contains(t, outcome.Text, "1. Go")
	assert.Contains(t, outcome.Text, "https://go.dev")
}

func TestRouteWebSearchEmptyQuery(t *testing.T) {
	r, _, _, _, _ := newTestRouter()

	outcome := r.Route(context.Background(), "search ")
	require.True(t, outcome.Handled)
	assert.Equal(t, "Please specify a search query.", outcome.Text)
}

func TestRouteQuickAnswer(t *testing.T) {
	r, _, _, _, web := newTestRouter()
	web.answer = "Paris"

	outcome := r.Route(context.Background(), "quick answer capital of france")
	require.True(t, outcome.Handled)
	assert.Equal(t, "Quick answer: Paris", outcome.Text)
}

func TestRouteFreeTextNotHandled(t *testing.T) {
	r, _, _, _, _ := newTestRouter()

	for _, input := range []string{
		"what is the capital of France?",
		"tell me a joke",
		"how do I close an application on linux",
		"open source software is great",
	} {
		outcome := r.Route(context.Background(), input)
		if input == "open source software is great" {
			// "open " is a launch prefix; this one is expected to match
			assert.True(t, outcome.Handled, "input %q", input)
			continue
		}
		assert.False(t, outcome.Handled, "input %q", input)
	}
}

func TestRouteNilProvidersReturnUnavailable(t *testing.T) {
	r := NewRouter(Providers{}, "chrome", testLogger())

	outcome := r.Route(context.Background(), "set volume 50")
	require.True(t, outcome.Handled)
	assert.Equal(t, "System control is not available. Please check dependencies.", outcome.Text)

	outcome = r.Route(context.Background(), "launch chrome")
	require.True(t, outcome.Handled)
	assert.Equal(t, "App launcher is not available. Please check dependencies.", outcome.Text)

	outcome = r.Route(context.Background(), "remind me to rest in 5 minutes")
	require.True(t, outcome.Handled)
	assert.Equal(t, "Reminder system is not available.", outcome.Text)
}
