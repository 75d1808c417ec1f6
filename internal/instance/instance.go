// Package instance keeps one interactive overlay per user session and
// detects double taps of the capture key.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

const (
	DefaultLockFile        = "/tmp/screenshot-tool.lock"
	DefaultDoubleTapFile   = "/tmp/screenshot-tool.doubletap"
	DefaultDoubleTapWindow = 500 * time.Millisecond

	killGrace = 100 * time.Millisecond
)

// ErrAlreadyRunning is returned by AcquireLock when another process holds the lock.
var ErrAlreadyRunning = errors.New("another instance is running")

// Manager owns the lock file and the double-tap timestamp file.
type Manager struct {
	LockFile        string
	DoubleTapFile   string
	DoubleTapWindow time.Duration

	lock *os.File
}

// NewManager fills empty fields with the defaults.
func NewManager(lockFile, doubleTapFile string, window time.Duration) *Manager {
	if lockFile == "" {
		lockFile = DefaultLockFile
	}
	if doubleTapFile == "" {
		doubleTapFile = DefaultDoubleTapFile
	}
	if window <= 0 {
		window = DefaultDoubleTapWindow
	}
	return &Manager{LockFile: lockFile, DoubleTapFile: doubleTapFile, DoubleTapWindow: window}
}

// CheckDoubleTap reports whether the previous invocation happened less than
// DoubleTapWindow before now. A detected double tap consumes the stored
// timestamp so a third tap starts over.
func (m *Manager) CheckDoubleTap(now time.Time) (bool, error) {
	nowMs := now.UnixMilli()

	if data, err := os.ReadFile(m.DoubleTapFile); err == nil {
		last, perr := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
		if perr == nil {
			diff := nowMs - last
			if diff >= 0 && diff < m.DoubleTapWindow.Milliseconds() {
				if err := os.Remove(m.DoubleTapFile); err != nil && !os.IsNotExist(err) {
					return true, fmt.Errorf("failed to clear double-tap file: %w", err)
				}
				return true, nil
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(m.DoubleTapFile), 0755); err != nil {
		return false, fmt.Errorf("failed to create double-tap dir: %w", err)
	}
	if err := os.WriteFile(m.DoubleTapFile, []byte(strconv.FormatInt(nowMs, 10)), 0644); err != nil {
		return false, fmt.Errorf("failed to write double-tap file: %w", err)
	}
	return false, nil
}

// AcquireLock takes an exclusive, non-blocking flock on LockFile and records
// this process's PID in it.
func (m *Manager) AcquireLock() error {
	if m.lock != nil {
		return nil
	}
	f, err := os.OpenFile(m.LockFile, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return ErrAlreadyRunning
		}
		return fmt.Errorf("failed to lock %s: %w", m.LockFile, err)
	}

	if err := f.Truncate(0); err == nil {
		_, _ = f.WriteAt([]byte(strconv.Itoa(os.Getpid())), 0)
		_ = f.Sync()
	}
	m.lock = f
	return nil
}

// ReleaseLock unlocks and removes the lock file. Safe to call when not held.
func (m *Manager) ReleaseLock() error {
	if m.lock == nil {
		return nil
	}
	f := m.lock
	m.lock = nil

	_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
	f.Close()
	if err := os.Remove(m.LockFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

// Held reports whether this manager owns the lock.
func (m *Manager) Held() bool { return m.lock != nil }

// RunningPID returns the PID recorded in the lock file if that process is alive.
func (m *Manager) RunningPID() (int, bool) {
	data, err := os.ReadFile(m.LockFile)
	if err != nil {
		return 0, false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}
	if !alive(pid) {
		return 0, false
	}
	return pid, true
}

func alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// SignalFullscreen asks the running overlay to capture the full screen.
func (m *Manager) SignalFullscreen() error {
	pid, ok := m.RunningPID()
	if !ok {
		return fmt.Errorf("no running instance")
	}
	if err := unix.Kill(pid, unix.SIGUSR1); err != nil {
		return fmt.Errorf("failed to signal pid %d: %w", pid, err)
	}
	return nil
}

// KillRunning terminates the running overlay, escalating to SIGKILL when it
// does not exit promptly. It reports whether a process was found.
func (m *Manager) KillRunning() (bool, error) {
	pid, ok := m.RunningPID()
	if !ok {
		return false, nil
	}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return false, nil
		}
		return true, fmt.Errorf("failed to terminate pid %d: %w", pid, err)
	}
	time.Sleep(killGrace)
	if alive(pid) {
		_ = unix.Kill(pid, unix.SIGKILL)
	}
	return true, nil
}

// CleanupStaleLock removes a lock file whose owner is gone. It reports
// whether a file was removed.
func (m *Manager) CleanupStaleLock() bool {
	if _, ok := m.RunningPID(); ok {
		return false
	}
	if err := os.Remove(m.LockFile); err != nil {
		return false
	}
	return true
}
