// Package account holds the signed-in user: the backend record, usage stats,
// the local balance cache and the rules-agreed preference.
package account

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"github.com/arcanaland/tarotluna/internal/api"
	"github.com/arcanaland/tarotluna/internal/balance"
	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/host"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxPolls     = 24
)

// Backend is the part of the API client the account needs
type Backend interface {
	Health(ctx context.Context) error
	Authenticate(ctx context.Context, req api.AuthRequest) (*api.User, error)
	FetchUser(ctx context.Context, userID int64) (*api.User, *api.Stats, error)
}

// Prefs persists local preferences
type Prefs interface {
	RulesAgreed() (bool, error)
	SetRulesAgreed(agreed bool) error
}

// Account is the current-user context shared by every screen
type Account struct {
	backend Backend
	host    *host.Host
	prefs   Prefs
	cache   *balance.Cache

	pollInterval time.Duration
	maxPolls     int

	mu    sync.RWMutex
	user  *api.User
	stats *api.Stats
}

// Option configures an Account
type Option func(*Account)

// WithPolling overrides the payment polling interval and poll limit
func WithPolling(interval time.Duration, maxPolls int) Option {
	return func(a *Account) {
		if interval > 0 {
			a.pollInterval = interval
		}
		if maxPolls > 0 {
			a.maxPolls = maxPolls
		}
	}
}

// New creates an account. Nothing is fetched until Load.
func New(backend Backend, h *host.Host, prefs Prefs, options ...Option) *Account {
	a := &Account{
		backend:      backend,
		host:         h,
		prefs:        prefs,
		cache:        balance.NewCache(),
		pollInterval: DefaultPollInterval,
		maxPolls:     DefaultMaxPolls,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// UserID returns the Telegram id of the current user
func (a *Account) UserID() int64 {
	return a.host.Identity().ID
}

// Load checks the backend, authenticates and fetches the user
func (a *Account) Load(ctx context.Context) error {
	if !a.host.InHost() {
		return common.ErrNotInHostEnvironment
	}

	if err := a.backend.Health(ctx); err != nil {
		return fmt.Errorf("server unavailable: %w", err)
	}

	identity := a.host.Identity()
	if _, err := a.backend.Authenticate(ctx, api.AuthRequest{
		UserID:    identity.ID,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
	}); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if err := a.Refresh(ctx); err != nil {
		return err
	}

	if a.User().HasAgreedRules {
		if err := a.prefs.SetRulesAgreed(true); err != nil {
			log.WithError(err).Warn("Failed to store rules agreement")
		}
	}

	log.WithFields(log.Fields{
		"user_id": identity.ID,
		"free":    a.cache.Snapshot().Free,
		"premium": a.cache.Snapshot().Premium,
	}).Debug("Account loaded")
	return nil
}

// Refresh fetches the user again. The server balance replaces the local one.
func (a *Account) Refresh(ctx context.Context) error {
	user, stats, err := a.backend.FetchUser(ctx, a.UserID())
	if err != nil {
		return fmt.Errorf("error fetching user: %w", err)
	}

	a.mu.Lock()
	a.user = user
	a.stats = stats
	a.mu.Unlock()

	a.cache.ApplyAuthoritative(user.Balance())
	return nil
}

// Reconcile refreshes the balance after an optimistic update
func (a *Account) Reconcile(ctx context.Context) error {
	return a.Refresh(ctx)
}

// Balance returns the cached balance
func (a *Account) Balance() balance.Balance {
	return a.cache.Snapshot()
}

// ApplyOptimistic updates the cached balance before the server confirms it
func (a *Account) ApplyOptimistic(d balance.Delta) balance.Balance {
	b := a.cache.ApplyOptimistic(d)

	a.mu.Lock()
	if a.user != nil {
		a.user.FreeRequestsLeft = b.Free
		a.user.PremiumRequests = b.Premium
		a.user.TotalReadings = b.TotalReadings
	}
	if a.stats != nil {
		a.stats.TotalReadings += d.TotalReadings
	}
	a.mu.Unlock()
	return b
}

// User returns a copy of the user record, zero before Load
func (a *Account) User() api.User {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.user == nil {
		return api.User{}
	}
	return *a.user
}

// Stats returns a copy of the usage stats and whether the backend sent any
func (a *Account) Stats() (api.Stats, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.stats == nil {
		return api.Stats{}, false
	}
	return *a.stats, true
}

// RulesAgreed reports whether the user accepted the rules here or on the server
func (a *Account) RulesAgreed() bool {
	if a.User().HasAgreedRules {
		return true
	}
	agreed, err := a.prefs.RulesAgreed()
	if err != nil {
		log.WithError(err).Warn("Failed to read rules agreement")
		return false
	}
	return agreed
}

// AgreeRules records that the user accepted the rules
func (a *Account) AgreeRules() error {
	if err := a.prefs.SetRulesAgreed(true); err != nil {
		return fmt.Errorf("error saving rules agreement: %w", err)
	}

	a.mu.Lock()
	if a.user != nil {
		a.user.HasAgreedRules = true
	}
	a.mu.Unlock()
	return nil
}

// Reset forgets the loaded user
func (a *Account) Reset() {
	a.mu.Lock()
	a.user = nil
	a.stats = nil
	a.mu.Unlock()
	a.cache.Reset()
}

// PollAfterPayment refreshes the user on a schedule after a payment, so the
// purchased requests show up once the provider confirms. It stops after the
// poll limit, once the balance grows, or when ctx is done.
func (a *Account) PollAfterPayment(ctx context.Context) (balance.Balance, error) {
	before := a.Balance()
	done := make(chan struct{})
	var once sync.Once
	var polls atomic.Int32

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	c.Schedule(every(a.pollInterval), cron.FuncJob(func() {
		n := int(polls.Add(1))
		if n > a.maxPolls {
			return
		}

		logger := log.WithFields(log.Fields{"poll": n, "max": a.maxPolls})
		if err := a.Refresh(ctx); err != nil {
			logger.WithError(err).Warn("Payment poll failed")
		} else {
			logger.Debug("Payment poll")
		}

		now := a.Balance()
		if n >= a.maxPolls || now.Free > before.Free || now.Premium > before.Premium {
			once.Do(func() { close(done) })
		}
	}))

	c.Start()
	defer func() { <-c.Stop().Done() }()

	select {
	case <-done:
		return a.Balance(), nil
	case <-ctx.Done():
		return a.Balance(), ctx.Err()
	}
}

// every is a fixed-delay cron schedule; cron.Every rounds to whole seconds
type every time.Duration

func (e every) Next(t time.Time) time.Time {
	return t.Add(time.Duration(e))
}
