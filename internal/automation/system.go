package automation

import (
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
	"github.com/sirupsen/logrus"
)

// runner executes a system command and returns combined output; swapped out
// in tests.
type runner func(name string, args ...string) (string, error)

func execRunner(name string, args ...string) (string, error) {
	out, err := exec.Command(name, args...).CombinedOutput()
	return string(out), err
}

// SystemControl drives volume, brightness and power state through the
// platform's command-line tools.
type SystemControl struct {
	run    runner
	logger *logrus.Logger
}

// NewSystemControl creates a system controller
func NewSystemControl(logger *logrus.Logger) *SystemControl {
	return &SystemControl{
		run:    execRunner,
		logger: logger,
	}
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// SetVolume sets the master volume level (0-100)
func (s *SystemControl) SetVolume(level int) (string, error) {
	level = clampLevel(level)
	if _, err := s.run("pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", level)); err != nil {
		s.logger.WithError(err).Error("Failed to set volume")
		return "", fmt.Errorf("failed to set volume: %w", err)
	}
	return fmt.Sprintf("Volume set to %d%%", level), nil
}

// GetVolume reports the current master volume level
func (s *SystemControl) GetVolume() (string, error) {
	out, err := s.run("pactl", "get-sink-volume", "@DEFAULT_SINK@")
	if err != nil {
		s.logger.WithError(err).Error("Failed to get volume")
		return "", fmt.Errorf("failed to get volume: %w", err)
	}
	if idx := strings.Index(out, "%"); idx > 0 {
		start := strings.LastIndexAny(out[:idx], " /") + 1
		if level, err := strconv.Atoi(strings.TrimSpace(out[start:idx])); err == nil {
			return fmt.Sprintf("Current volume is %d%%", level), nil
		}
	}
	return "", fmt.Errorf("could not parse volume output")
}

// Mute mutes the master volume
func (s *SystemControl) Mute() (string, error) {
	if _, err := s.run("pactl", "set-sink-mute", "@DEFAULT_SINK@", "1"); err != nil {
		return "", fmt.Errorf("failed to mute volume: %w", err)
	}
	return "Volume muted", nil
}

// Unmute unmutes the master volume
func (s *SystemControl) Unmute() (string, error) {
	if _, err := s.run("pactl", "set-sink-mute", "@DEFAULT_SINK@", "0"); err != nil {
		return "", fmt.Errorf("failed to unmute volume: %w", err)
	}
	return "Volume unmuted", nil
}

// SetBrightness sets the screen brightness level (0-100)
func (s *SystemControl) SetBrightness(level int) (string, error) {
	level = clampLevel(level)
	if _, err := s.run("brightnessctl", "set", fmt.Sprintf("%d%%", level)); err != nil {
		s.logger.WithError(err).Error("Failed to set brightness")
		return "", fmt.Errorf("failed to set brightness: %w", err)
	}
	return fmt.Sprintf("Brightness set to %d%%", level), nil
}

// GetBrightness reports the current screen brightness level
func (s *SystemControl) GetBrightness() (string, error) {
	out, err := s.run("brightnessctl", "-m", "info")
	if err != nil {
		return "", fmt.Errorf("failed to get brightness: %w", err)
	}
	// machine-readable output: device,class,current,percent,max
	fields := strings.Split(strings.TrimSpace(out), ",")
	if len(fields) >= 4 {
		pct := strings.TrimSuffix(fields[3], "%")
		if level, err := strconv.Atoi(pct); err == nil {
			return fmt.Sprintf("Current brightness is %d%%", level), nil
		}
	}
	return "", fmt.Errorf("could not parse brightness output")
}

// Shutdown schedules a system shutdown after delaySeconds
func (s *SystemControl) Shutdown(delaySeconds int) (string, error) {
	if err := s.schedulePower("-P", delaySeconds); err != nil {
		return "", fmt.Errorf("failed to shutdown system: %w", err)
	}
	return fmt.Sprintf("System will shutdown in %d seconds. Use 'cancel shutdown' to abort.", delaySeconds), nil
}

// Restart schedules a system restart after delaySeconds
func (s *SystemControl) Restart(delaySeconds int) (string, error) {
	if err := s.schedulePower("-r", delaySeconds); err != nil {
		return "", fmt.Errorf("failed to restart system: %w", err)
	}
	return fmt.Sprintf("System will restart in %d seconds. Use 'cancel restart' to abort.", delaySeconds), nil
}

func (s *SystemControl) schedulePower(flag string, delaySeconds int) error {
	if runtime.GOOS == "windows" {
		winFlag := "/s"
		if flag == "-r" {
			winFlag = "/r"
		}
		_, err := s.run("shutdown", winFlag, "/t", strconv.Itoa(delaySeconds))
		return err
	}
	// shutdown(8) takes minutes; +0 means now
	minutes := (delaySeconds + 59) / 60
	_, err := s.run("shutdown", flag, fmt.Sprintf("+%d", minutes))
	return err
}

// CancelPending aborts a scheduled shutdown or restart
func (s *SystemControl) CancelPending() (string, error) {
	args := []string{"-c"}
	if runtime.GOOS == "windows" {
		args = []string{"/a"}
	}
	if _, err := s.run("shutdown", args...); err != nil {
		return "", fmt.Errorf("failed to cancel shutdown: %w", err)
	}
	return "Scheduled shutdown or restart has been cancelled.", nil
}

// Sleep suspends the system
func (s *SystemControl) Sleep() (string, error) {
	var err error
	if runtime.GOOS == "windows" {
		_, err = s.run("rundll32.exe", "powrprof.dll,SetSuspendState", "0,1,0")
	} else {
		_, err = s.run("systemctl", "suspend")
	}
	if err != nil {
		return "", fmt.Errorf("failed to put system to sleep: %w", err)
	}
	return "Putting system to sleep...", nil
}

// Lock locks the current session
func (s *SystemControl) Lock() (string, error) {
	var err error
	if runtime.GOOS == "windows" {
		_, err = s.run("rundll32.exe", "user32.dll,LockWorkStation")
	} else {
		_, err = s.run("loginctl", "lock-session")
	}
	if err != nil {
		return "", fmt.Errorf("failed to lock screen: %w", err)
	}
	return "Screen locked.", nil
}

// SystemInfo reports basic host, memory, disk and CPU figures
func (s *SystemControl) SystemInfo() (string, error) {
	info, err := host.Info()
	if err != nil {
		return "", fmt.Errorf("failed to get host info: %w", err)
	}

	vm, err := mem.VirtualMemory()
	if err != nil {
		return "", fmt.Errorf("failed to get memory info: %w", err)
	}

	du, err := disk.Usage("/")
	if err != nil {
		return "", fmt.Errorf("failed to get disk usage: %w", err)
	}

	cpuPct := 0.0
	if pcts, err := cpu.Percent(time.Second, false); err == nil && len(pcts) > 0 {
		cpuPct = pcts[0]
	}

	const gb = 1 << 30
	return fmt.Sprintf(
		"System: %s %s\nProcessor architecture: %s\nMemory: %.2fGB available of %.2fGB total\nDisk Usage: %.2f%%\nCPU Usage: %.1f%%",
		info.Platform, info.PlatformVersion,
		info.KernelArch,
		float64(vm.Available)/gb, float64(vm.Total)/gb,
		du.UsedPercent,
		cpuPct,
	), nil
}
