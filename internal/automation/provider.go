package automation

import (
	"context"
	"time"

	"github.com/aurix-ai/aurix/internal/models"
)

// AppController launches and terminates desktop applications.
type AppController interface {
	Launch(appID string) (string, error)
	Close(appID string) (string, error)
	InstalledApps() []string
}

// ReminderService schedules reminders and reports the active set.
type ReminderService interface {
	Add(message string, when time.Time) (string, error)
	List() []string
	Clear() (string, error)
}

// SystemService controls volume, brightness and power state.
type SystemService interface {
	SetVolume(level int) (string, error)
	GetVolume() (string, error)
	Mute() (string, error)
	Unmute() (string, error)
	SetBrightness(level int) (string, error)
	GetBrightness() (string, error)
	Shutdown(delaySeconds int) (string, error)
	Restart(delaySeconds int) (string, error)
	CancelPending() (string, error)
	Sleep() (string, error)
	Lock() (string, error)
	SystemInfo() (string, error)
}

// WebService performs web searches and page scraping.
type WebService interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Scrape(ctx context.Context, url string) (string, error)
	QuickAnswer(ctx context.Context, query string) (string, error)
}
