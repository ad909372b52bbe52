// Package timer tracks elapsed active seconds for a selected project,
// surviving process restarts through a durable anchor slot.
package timer

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vjc2026/EmissionSense/internal/models"
)

// Clock abstracts wall-clock reads so tests control elapsed time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Guard is notified while a timer is running so the host can warn before the
// process goes away mid-session. Best effort only; correctness never depends
// on it.
type Guard interface {
	Install()
	Remove()
}

type nopGuard struct{}

func (nopGuard) Install() {}
func (nopGuard) Remove()  {}

// State is a snapshot of the timer for status displays.
type State struct {
	Running             bool   `json:"running"`
	ProjectName         string `json:"project_name"`
	ProjectDescription  string `json:"project_description"`
	BaseDurationSeconds int64  `json:"base_duration_seconds"`
	StartEpoch          int64  `json:"start_epoch"`
}

// Timer is a single-session wall-clock timer. One Timer owns at most one
// running countdown; Start while running fails rather than stacking timers.
type Timer struct {
	mu        sync.Mutex
	clock     Clock
	slot      Slot
	guard     Guard
	tickEvery time.Duration

	running bool
	anchor  Anchor
	done    chan struct{}
}

// Option configures a Timer.
type Option func(*Timer)

// WithClock replaces the wall clock, for tests.
func WithClock(c Clock) Option {
	return func(t *Timer) { t.clock = c }
}

// WithGuard installs a running-session guard.
func WithGuard(g Guard) Option {
	return func(t *Timer) { t.guard = g }
}

// WithTickInterval changes the Tick cadence from the default one second.
func WithTickInterval(d time.Duration) Option {
	return func(t *Timer) { t.tickEvery = d }
}

// New creates an idle timer over the given durable slot.
func New(slot Slot, opts ...Option) *Timer {
	t := &Timer{
		clock:     systemClock{},
		slot:      slot,
		guard:     nopGuard{},
		tickEvery: time.Second,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start begins timing the given project selection. base is the duration
// already recorded for the matched project record; the reported duration
// counts up from it. The anchor is persisted before the timer is considered
// running, so a crash after Start still resumes. Returns the handle that must
// be presented to Stop.
func (t *Timer) Start(projectName, projectDescription string, base int64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return "", models.ErrAlreadyRunning
	}

	anchor := Anchor{
		Handle:              uuid.NewString(),
		ProjectName:         projectName,
		ProjectDescription:  projectDescription,
		BaseDurationSeconds: base,
		StartEpoch:          t.clock.Now().Unix(),
	}
	if err := t.slot.Set(anchor); err != nil {
		return "", fmt.Errorf("persist timer anchor: %w", err)
	}

	t.anchor = anchor
	t.running = true
	t.done = make(chan struct{})
	t.guard.Install()
	return anchor.Handle, nil
}

// ResumeOnLoad restores a running timer from the persisted anchor, if any.
// It reports whether a session was resumed. The resumed elapsed time is
// recomputed from the anchor; long gaps are trusted as-is.
func (t *Timer) ResumeOnLoad() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return false, models.ErrAlreadyRunning
	}

	anchor, err := t.slot.Get()
	if err != nil {
		return false, err
	}
	if anchor == nil {
		return false, nil
	}

	t.anchor = *anchor
	t.running = true
	t.done = make(chan struct{})
	t.guard.Install()
	return true, nil
}

// Stop ends the session identified by handle and returns the final duration,
// base + elapsed. The persisted anchor is cleared before the timer flips to
// idle; a second Stop is an ErrNotRunning, never a double count.
func (t *Timer) Stop(handle string) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || handle != t.anchor.Handle {
		return 0, models.ErrNotRunning
	}

	final := t.anchor.BaseDurationSeconds + (t.clock.Now().Unix() - t.anchor.StartEpoch)
	if err := t.slot.Clear(); err != nil {
		return 0, fmt.Errorf("clear timer anchor: %w", err)
	}

	t.running = false
	close(t.done)
	t.done = nil
	t.guard.Remove()
	return final, nil
}

// Elapsed returns the current duration, base + active seconds, or zero when
// idle.
func (t *Timer) Elapsed() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return 0
	}
	return t.anchor.BaseDurationSeconds + (t.clock.Now().Unix() - t.anchor.StartEpoch)
}

// Handle returns the running session's handle, or empty when idle.
func (t *Timer) Handle() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return ""
	}
	return t.anchor.Handle
}

// State returns a snapshot for status displays.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return State{}
	}
	return State{
		Running:             true,
		ProjectName:         t.anchor.ProjectName,
		ProjectDescription:  t.anchor.ProjectDescription,
		BaseDurationSeconds: t.anchor.BaseDurationSeconds,
		StartEpoch:          t.anchor.StartEpoch,
	}
}

// Tick emits the current duration on the timer's cadence until the session
// stops, then closes the channel. Each call produces a fresh sequence; a
// restarted session gets a new Tick.
func (t *Timer) Tick() <-chan int64 {
	ch := make(chan int64)

	t.mu.Lock()
	running := t.running
	done := t.done
	t.mu.Unlock()

	go func() {
		defer close(ch)
		if !running {
			return
		}
		ticker := time.NewTicker(t.tickEvery)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case ch <- t.Elapsed():
				case <-done:
					return
				}
			}
		}
	}()
	return ch
}
