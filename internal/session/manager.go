package session

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// CoinLedger is the slice of the user store the reward path needs: credit
// coins to a user and report the new balance.
type CoinLedger interface {
	AddCoins(ctx context.Context, userID string, coins int) (int, error)
}

// Manager owns one Controller per user.
//
// Sessions are fully independent across users — each controller has its
// own lock and cadence; the manager's lock only guards the map. A
// controller is created lazily on the first session operation and lives
// until Shutdown.
type Manager struct {
	mu          sync.Mutex
	controllers map[string]*Controller

	ledger   CoinLedger
	logger   *slog.Logger
	interval time.Duration
}

// NewManager creates a Manager whose controllers tick once per second.
func NewManager(ledger CoinLedger, logger *slog.Logger) *Manager {
	return &Manager{
		controllers: make(map[string]*Controller),
		ledger:      ledger,
		logger:      logger,
		interval:    time.Second,
	}
}

// Configure sets a new duration for the user's session.
func (m *Manager) Configure(userID string, minutes, seconds int) (Snapshot, error) {
	c := m.controller(userID)
	if err := c.Configure(minutes, seconds); err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Start begins or resumes the user's countdown.
func (m *Manager) Start(userID string) (Snapshot, error) {
	c := m.controller(userID)
	if err := c.Start(); err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Pause stops the user's countdown, preserving the remaining time.
func (m *Manager) Pause(userID string) (Snapshot, error) {
	c := m.controller(userID)
	if err := c.Pause(); err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Reset returns the user's session to Idle at the full configured duration.
func (m *Manager) Reset(userID string) (Snapshot, error) {
	c := m.controller(userID)
	if err := c.Reset(); err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Get returns the current snapshot of the user's session.
func (m *Manager) Get(userID string) Snapshot {
	return m.controller(userID).Snapshot()
}

// Shutdown releases every cadence goroutine. Running sessions become
// Paused with their remaining time intact — no ticker may outlive the
// server that owns the manager.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.controllers {
		c.release()
	}
}

// controller returns the user's Controller, creating it on first use.
func (m *Manager) controller(userID string) *Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.controllers[userID]; ok {
		return c
	}

	c := New(DefaultDurationSeconds, m.interval, nil)
	c.onComplete = func(elapsedSeconds int) {
		m.award(userID, c, elapsedSeconds)
	}
	m.controllers[userID] = c
	return c
}

// award is the reward path, invoked once per completed session. A failed
// coin credit never rolls back the completion — the session stays
// Completed and the failure is recorded on the snapshot for the caller.
func (m *Manager) award(userID string, c *Controller, elapsedSeconds int) {
	coins := CoinsFor(elapsedSeconds)
	if coins <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	balance, err := m.ledger.AddCoins(ctx, userID, coins)
	c.recordReward(coins, err)
	if err != nil {
		m.logger.Error("failed to credit session reward",
			slog.String("userID", userID),
			slog.Int("coins", coins),
			slog.String("error", err.Error()),
		)
		return
	}

	m.logger.Info("session reward credited",
		slog.String("userID", userID),
		slog.Int("coins", coins),
		slog.Int("balance", balance),
	)
}
