package automation

import (
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/process"
	"github.com/sirupsen/logrus"
)

// AppLauncher resolves application identifiers to executables and manages
// their processes.
type AppLauncher struct {
	commands  map[string]string   // app id -> executable or launch command
	processes map[string][]string // app id -> candidate process names
	logger    *logrus.Logger
}

// NewAppLauncher creates an app launcher. extra entries from configuration
// override or extend the built-in table.
func NewAppLauncher(extra map[string]string, logger *logrus.Logger) *AppLauncher {
	commands := map[string]string{
		"notepad":       "notepad",
		"calculator":    "gnome-calculator",
		"terminal":      "x-terminal-emulator",
		"file explorer": "xdg-open .",
		"explorer":      "xdg-open .",
		"chrome":        "google-chrome",
		"firefox":       "firefox",
		"brave":         "brave-browser",
		"vlc":           "vlc",
		"spotify":       "spotify",
		"discord":       "discord",
		"code":          "code",
	}
	for id, cmd := range extra {
		commands[strings.ToLower(id)] = cmd
	}

	// Some apps run under process names that differ from their launch command
	processes := map[string][]string{
		"chrome":     {"chrome", "google-chrome"},
		"firefox":    {"firefox", "firefox-bin"},
		"brave":      {"brave", "brave-browser"},
		"code":       {"code"},
		"discord":    {"discord", "Discord"},
		"spotify":    {"spotify"},
		"vlc":        {"vlc"},
		"terminal":   {"gnome-terminal", "xterm"},
		"calculator": {"gnome-calculator"},
	}

	logger.WithField("apps", len(commands)).Info("App launcher initialized")

	return &AppLauncher{
		commands:  commands,
		processes: processes,
		logger:    logger,
	}
}

// Launch starts the application registered under appID
func (a *AppLauncher) Launch(appID string) (string, error) {
	appID = strings.ToLower(appID)

	command, ok := a.commands[appID]
	if !ok {
		if similar := a.findSimilar(appID); len(similar) > 0 {
			suggestions := strings.Join(similar[:min(3, len(similar))], ", ")
			return fmt.Sprintf("Application '%s' not found. Did you mean: %s?", appID, suggestions), nil
		}
		return fmt.Sprintf("Application '%s' not found.", appID), nil
	}

	parts := strings.Fields(command)
	cmd := exec.Command(parts[0], parts[1:]...)
	if err := cmd.Start(); err != nil {
		a.logger.WithError(err).WithField("app", appID).Error("Failed to launch application")
		return "", fmt.Errorf("failed to launch %s: %w", appID, err)
	}

	// Detach so the child outlives us
	go cmd.Wait()

	a.logger.WithField("app", appID).Info("Launched application")
	return fmt.Sprintf("Successfully launched %s.", appID), nil
}

// Close terminates every process matching appID. Exact process-name matches
// are tried first, then a substring pass.
func (a *AppLauncher) Close(appID string) (string, error) {
	appID = strings.ToLower(appID)

	names := a.processes[appID]
	if len(names) == 0 {
		if command, ok := a.commands[appID]; ok {
			names = []string{strings.Fields(command)[0]}
		} else {
			names = []string{appID}
		}
	}

	procs, err := process.Processes()
	if err != nil {
		return "", fmt.Errorf("failed to enumerate processes: %w", err)
	}

	if a.terminateMatching(procs, names, false) {
		return fmt.Sprintf("Successfully closed %s.", appID), nil
	}
	if a.terminateMatching(procs, names, true) {
		return fmt.Sprintf("Successfully closed %s.", appID), nil
	}

	return fmt.Sprintf("Application '%s' is not running or could not be closed.", appID), nil
}

func (a *AppLauncher) terminateMatching(procs []*process.Process, names []string, substring bool) bool {
	closed := false
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if !matchesName(strings.ToLower(name), names, substring) {
			continue
		}

		a.logger.WithFields(logrus.Fields{
			"process": name,
			"pid":     p.Pid,
		}).Debug("Terminating process")

		if err := p.Terminate(); err != nil {
			a.logger.WithError(err).WithField("process", name).Error("Failed to terminate process")
			continue
		}

		// Escalate to SIGKILL if the process lingers
		deadline := time.Now().Add(3 * time.Second)
		for time.Now().Before(deadline) {
			if running, _ := p.IsRunning(); !running {
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if running, _ := p.IsRunning(); running {
			p.Kill()
		}

		closed = true
		a.logger.WithField("process", name).Info("Closed process")
	}
	return closed
}

func matchesName(procName string, targets []string, substring bool) bool {
	for _, t := range targets {
		t = strings.ToLower(t)
		if substring {
			if strings.Contains(procName, t) {
				return true
			}
		} else if procName == t {
			return true
		}
	}
	return false
}

// InstalledApps returns the known application identifiers
func (a *AppLauncher) InstalledApps() []string {
	ids := make([]string, 0, len(a.commands))
	for id := range a.commands {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (a *AppLauncher) findSimilar(appID string) []string {
	var similar []string
	for id := range a.commands {
		if strings.Contains(id, appID) || strings.Contains(appID, id) {
			similar = append(similar, id)
		}
	}
	sort.Strings(similar)
	return similar
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
