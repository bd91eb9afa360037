// Package session implements the focus-session countdown engine.
//
// A Controller is a single-session state machine:
//
//	Idle → Running → {Paused, Completed}
//	Paused → Running
//	Completed → (Reset/Configure) → Idle
//
// One Controller exists per user with an active session; the Manager owns
// them and routes caller operations to the right instance. While Running,
// a cadence goroutine invokes Tick once per second. Completing the full
// configured duration — and only that — triggers the reward path.
package session

import (
	"sync"
	"time"

	"github.com/sakif/detox-companion/internal/apperror"
)

// Session states. Exposed as strings so snapshots serialize cleanly.
const (
	StateIdle      = "idle"
	StateRunning   = "running"
	StatePaused    = "paused"
	StateCompleted = "completed"
)

// Configuration ceiling for custom durations. Values outside these ranges
// are rejected with a validation error, never silently clamped.
const (
	MaxMinutes = 240
	MaxSeconds = 59

	// DefaultDurationSeconds is the duration a fresh controller starts
	// with before the user configures their own.
	DefaultDurationSeconds = 10 * 60
)

// Snapshot is the caller-visible view of a session. CoinsAwarded and
// RewardError describe the most recent completion: the session outcome is
// never rolled back for a bookkeeping failure, so a completed session with
// a non-empty RewardError means "you finished, but crediting the coins
// failed".
type Snapshot struct {
	State                  string `json:"state"`
	InitialDurationSeconds int    `json:"initialDurationSeconds"`
	SecondsRemaining       int    `json:"secondsRemaining"`
	CoinsAwarded           int    `json:"coinsAwarded,omitempty"`
	RewardError            string `json:"rewardError,omitempty"`
}

// Controller drives one countdown session.
//
// CONCURRENCY:
// All operations serialize on mu. The cadence goroutine calls Tick, which
// takes the same lock, so a Pause or Reset racing a completing tick sees
// either the pre-tick or post-tick state — never a half-applied one. The
// Running→Completed transition closes the cadence's stop channel while
// still holding the lock, which makes completion atomic with cadence
// teardown: at most one caller ever observes that transition, so the
// reward callback fires at most once per completion.
type Controller struct {
	mu         sync.Mutex
	state      string
	initial    int // configured duration, seconds
	remaining  int
	interval   time.Duration // cadence period; 0 means no goroutine (tests tick manually)
	stop       chan struct{} // non-nil exactly while a cadence goroutine runs
	onComplete func(elapsedSeconds int)

	coinsAwarded int
	rewardErr    string
}

// New creates a Controller in the Idle state with the given initial
// duration. interval is the cadence period (time.Second in production;
// 0 disables the cadence goroutine so tests can call Tick directly).
// onComplete is invoked exactly once each time a countdown reaches zero,
// with the full configured duration as the elapsed time. It may be nil.
func New(initialSeconds int, interval time.Duration, onComplete func(elapsedSeconds int)) *Controller {
	if initialSeconds <= 0 {
		initialSeconds = DefaultDurationSeconds
	}
	return &Controller{
		state:      StateIdle,
		initial:    initialSeconds,
		remaining:  initialSeconds,
		interval:   interval,
		onComplete: onComplete,
	}
}

// Configure sets a new duration and returns the session to Idle.
//
// Rejected while Running — the caller must pause first. Validation follows
// the caller-facing contract: minutes ∈ [0,240], seconds ∈ [0,59], total
// strictly positive.
func (c *Controller) Configure(minutes, seconds int) error {
	if minutes < 0 || minutes > MaxMinutes {
		return apperror.ValidationFailed("minutes", "minutes must be between 0 and 240")
	}
	if seconds < 0 || seconds > MaxSeconds {
		return apperror.ValidationFailed("seconds", "seconds must be between 0 and 59")
	}
	total := minutes*60 + seconds
	if total <= 0 {
		return apperror.ValidationFailed("duration", "session duration must be greater than zero")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateRunning {
		return apperror.InvalidState("cannot configure a running session — pause it first")
	}

	c.initial = total
	c.remaining = total
	c.state = StateIdle
	c.coinsAwarded = 0
	c.rewardErr = ""
	return nil
}

// Start begins (or resumes) the countdown. No-op when already Running.
// A Completed session must be Reset (or reconfigured) before it can run
// again — restarting it directly would blur the one-reward-per-completion
// invariant.
func (c *Controller) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateRunning:
		return nil
	case StateCompleted:
		return apperror.InvalidState("session already completed — reset it before starting again")
	}

	c.state = StateRunning
	if c.interval > 0 {
		c.stop = make(chan struct{})
		go c.run(c.stop)
	}
	return nil
}

// Pause stops the cadence and preserves the remaining time exactly.
// Safe to call in any state; it only has an effect while Running.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRunning {
		return nil
	}
	c.state = StatePaused
	c.stopCadenceLocked()
	return nil
}

// Reset stops any running cadence and returns the session to Idle with the
// full configured duration. Safe to call in any state.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopCadenceLocked()
	c.state = StateIdle
	c.remaining = c.initial
	c.coinsAwarded = 0
	c.rewardErr = ""
	return nil
}

// Tick advances the countdown by one second. Invoked by the cadence
// goroutine while Running; ignored in every other state, so a tick that
// lost a race against Pause or Reset is harmless.
//
// On reaching zero the session transitions to Completed, the cadence is
// torn down, and onComplete fires with the full initial duration — only
// fully-completed sessions are rewarded, never partial elapsed time.
func (c *Controller) Tick() {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}

	c.remaining--
	if c.remaining > 0 {
		c.mu.Unlock()
		return
	}

	c.remaining = 0
	c.state = StateCompleted
	c.stopCadenceLocked()
	elapsed := c.initial
	done := c.onComplete
	c.mu.Unlock()

	// Outside the lock: the reward path does I/O (coin credit) and must
	// not block Pause/Reset/Snapshot. Exactly-once is already guaranteed
	// by the Running→Completed transition above.
	if done != nil {
		done(elapsed)
	}
}

// Snapshot returns the current caller-visible state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:                  c.state,
		InitialDurationSeconds: c.initial,
		SecondsRemaining:       c.remaining,
		CoinsAwarded:           c.coinsAwarded,
		RewardError:            c.rewardErr,
	}
}

// recordReward stores the outcome of the reward path on the snapshot.
// Called by the Manager's completion callback after the coin credit
// succeeds or fails.
func (c *Controller) recordReward(coins int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coinsAwarded = coins
	if err != nil {
		c.rewardErr = err.Error()
	}
}

// release stops the cadence goroutine without losing state. A Running
// session becomes Paused with its remaining time intact. Used on server
// shutdown so no ticker goroutine outlives its owner.
func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRunning {
		c.state = StatePaused
	}
	c.stopCadenceLocked()
}

// stopCadenceLocked closes the stop channel, ending the cadence goroutine.
// Caller must hold mu.
func (c *Controller) stopCadenceLocked() {
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}

// run is the cadence driver. It lives exactly as long as one Running
// stretch: started by Start, ended by the stop channel closing (Pause,
// Reset, completion, or release).
func (c *Controller) run(stop chan struct{}) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}
