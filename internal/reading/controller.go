// Package reading drives one tarot reading from the question to the
// paginated interpretation.
//
// The flow is a small state machine: Question, CardsDrawn, Revealing,
// Result. Cards are revealed one by one on a timer and the interpretation is
// requested automatically once the last card is face up. Every timer callback
// and every backend response carries the generation of the session it was
// started for; anything that arrives after NewReading is dropped.
package reading

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/arcanaland/tarotluna/internal/api"
	"github.com/arcanaland/tarotluna/internal/balance"
	"github.com/arcanaland/tarotluna/internal/card"
	"github.com/arcanaland/tarotluna/internal/common"
	"github.com/arcanaland/tarotluna/internal/deck"
	"github.com/arcanaland/tarotluna/internal/host"
	"github.com/arcanaland/tarotluna/internal/text"
)

const (
	MinCards          = 1
	MaxCards          = 5
	MinQuestionLength = 5

	// DefaultQuestion is sent when the user asked nothing
	DefaultQuestion = "Что мне нужно знать сегодня?"

	DefaultRevealInterval = 700 * time.Millisecond
	DefaultFetchDelay     = 800 * time.Millisecond
	DefaultReconcileDelay = time.Second
)

// Backend generates interpretations
type Backend interface {
	CreateReading(ctx context.Context, req api.ReadingRequest) (*api.Reading, error)
}

// Wallet is the local balance cache of the current user
type Wallet interface {
	Balance() balance.Balance
	ApplyOptimistic(d balance.Delta) balance.Balance
	// Reconcile replaces the local balance with the server's.
	Reconcile(ctx context.Context) error
}

// Navigator sends the user to other screens
type Navigator interface {
	OpenShop()
}

// DrawFunc draws a hand from a deck
type DrawFunc func(count int, cards []card.Definition, rng *rand.Rand) ([]card.Drawn, error)

// Options configures a Controller. Zero fields get defaults.
type Options struct {
	Type      Type
	UserID    int64
	Deck      []card.Definition
	Draw      DrawFunc
	Rand      *rand.Rand
	Clock     Clock
	Feedback  host.Feedback
	Navigator Navigator
	Observer  Observer
	Denylist  *Denylist

	RevealInterval time.Duration
	FetchDelay     time.Duration
	ReconcileDelay time.Duration
	PageLength     int
}

func (o Options) withDefaults() Options {
	if o.Type == "" {
		o.Type = TypeClassic
	}
	if o.Draw == nil {
		o.Draw = deck.Draw
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if o.Clock == nil {
		o.Clock = RealClock()
	}
	if o.Feedback == nil {
		o.Feedback = host.Noop{}
	}
	if o.Navigator == nil {
		o.Navigator = noopNavigator{}
	}
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	if o.Denylist == nil {
		o.Denylist = DefaultDenylist()
	}
	if o.RevealInterval <= 0 {
		o.RevealInterval = DefaultRevealInterval
	}
	if o.FetchDelay <= 0 {
		o.FetchDelay = DefaultFetchDelay
	}
	if o.ReconcileDelay <= 0 {
		o.ReconcileDelay = DefaultReconcileDelay
	}
	if o.PageLength <= 0 {
		o.PageLength = text.DefaultPageLength
	}
	return o
}

type noopNavigator struct{}

func (noopNavigator) OpenShop() {}

// Session is a snapshot of the live reading
type Session struct {
	Question       string
	Count          int
	Cards          []card.Drawn
	Revealed       []int
	Phase          Phase
	Interpretation string
	Pages          []string
	Page           int
	// Failed is set when the interpretation request failed. The hand cannot
	// be fetched again; NewReading starts over.
	Failed bool
}

func (s Session) clone() Session {
	out := s
	if s.Cards != nil {
		out.Cards = append([]card.Drawn(nil), s.Cards...)
	}
	if s.Revealed != nil {
		out.Revealed = append([]int(nil), s.Revealed...)
	}
	if s.Pages != nil {
		out.Pages = append([]string(nil), s.Pages...)
	}
	return out
}

// CurrentPage returns the page being displayed, or "" outside the result
func (s Session) CurrentPage() string {
	if s.Page < 0 || s.Page >= len(s.Pages) {
		return ""
	}
	return s.Pages[s.Page]
}

// Controller runs the reading flow. It is safe for concurrent use; timer
// callbacks may run on other goroutines.
type Controller struct {
	backend Backend
	wallet  Wallet
	opts    Options

	ctx    context.Context
	cancel context.CancelFunc

	mu             sync.Mutex
	session        Session
	generation     uint64
	sessionID      string
	fetching       bool
	closed         bool
	revealTimer    Timer
	fetchTimer     Timer
	reconcileTimer Timer
}

// NewController creates a controller in the Question phase
func NewController(backend Backend, wallet Wallet, opts Options) (*Controller, error) {
	if backend == nil || wallet == nil {
		return nil, fmt.Errorf("%w: backend and wallet are required", common.ErrInvalidArgument)
	}
	opts = opts.withDefaults()
	if _, ok := Catalog[opts.Type]; !ok {
		return nil, fmt.Errorf("%w: unknown reading type %q", common.ErrInvalidArgument, opts.Type)
	}
	if len(opts.Deck) == 0 {
		cards, err := deck.Default()
		if err != nil {
			return nil, err
		}
		opts.Deck = cards
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		backend:   backend,
		wallet:    wallet,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		sessionID: uuid.NewString(),
	}, nil
}

// Type returns the reading type of the controller
func (c *Controller) Type() Type {
	return c.opts.Type
}

// Session returns a copy of the current session
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.clone()
}

// Pending reports whether an interpretation request is in flight
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetching
}

func (c *Controller) logger() *log.Entry {
	return log.WithFields(log.Fields{
		"session": c.sessionID,
		"type":    c.opts.Type,
	})
}

// StartReading validates the question and draws count cards.
// The backend is not contacted yet.
func (c *Controller) StartReading(question string, count int) error {
	c.mu.Lock()
	if c.closed || c.session.Phase != PhaseQuestion {
		phase := c.session.Phase
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot start a reading in phase %s", common.ErrInvalidState, phase)
	}

	if kind, err := c.validate(question, count); err != nil {
		c.mu.Unlock()
		c.opts.Feedback.Notify(kind)
		c.opts.Observer.Failed(err)
		return err
	}

	hand, err := c.opts.Draw(count, c.opts.Deck, c.opts.Rand)
	if err != nil {
		c.mu.Unlock()
		return fmt.Errorf("error drawing cards: %w", err)
	}

	c.session.Question = strings.TrimSpace(question)
	c.session.Count = count
	c.session.Cards = hand
	c.session.Revealed = nil
	c.session.Phase = PhaseCardsDrawn
	logger := c.logger()
	c.mu.Unlock()

	logger.WithField("cards", count).Debug("Cards drawn")
	c.opts.Feedback.Impact(host.ImpactMedium)
	c.opts.Observer.PhaseChanged(PhaseCardsDrawn)
	return nil
}

// validate checks the input of StartReading, returning the feedback to give on failure
func (c *Controller) validate(question string, count int) (host.Notification, error) {
	if count < MinCards || count > MaxCards {
		return host.NotifyWarning, fmt.Errorf("%w: card count must be between %d and %d", common.ErrValidation, MinCards, MaxCards)
	}
	if c.opts.Type.RequiresQuestion() && utf8.RuneCountInString(strings.TrimSpace(question)) < MinQuestionLength {
		return host.NotifyWarning, fmt.Errorf("%w: question is too short", common.ErrValidation)
	}
	if term, ok := c.opts.Denylist.Match(question); ok {
		c.logger().WithField("term", term).Info("Question rejected by denylist")
		return host.NotifyError, fmt.Errorf("%w: question touches a forbidden topic", common.ErrValidation)
	}
	return "", nil
}

// RevealAll starts revealing the drawn cards one by one
func (c *Controller) RevealAll() error {
	c.mu.Lock()
	if c.closed || c.session.Phase != PhaseCardsDrawn {
		phase := c.session.Phase
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot reveal cards in phase %s", common.ErrInvalidState, phase)
	}

	c.session.Revealed = nil
	c.session.Phase = PhaseRevealing
	gen := c.generation
	c.revealTimer = c.opts.Clock.AfterFunc(c.opts.RevealInterval, func() { c.revealNext(gen) })
	c.mu.Unlock()

	c.opts.Feedback.Impact(host.ImpactMedium)
	c.opts.Observer.PhaseChanged(PhaseRevealing)
	return nil
}

// revealNext reveals the next card and schedules the following step
func (c *Controller) revealNext(gen uint64) {
	c.mu.Lock()
	if gen != c.generation || c.session.Phase != PhaseRevealing {
		c.mu.Unlock()
		return
	}

	index := len(c.session.Revealed)
	if index >= len(c.session.Cards) {
		c.mu.Unlock()
		return
	}
	c.session.Revealed = append(c.session.Revealed, index)
	revealed := c.session.Cards[index]

	if index+1 < len(c.session.Cards) {
		c.revealTimer = c.opts.Clock.AfterFunc(c.opts.RevealInterval, func() { c.revealNext(gen) })
	} else {
		c.revealTimer = nil
		c.fetchTimer = c.opts.Clock.AfterFunc(c.opts.FetchDelay, func() { c.autoFetch(gen) })
	}
	c.mu.Unlock()

	c.opts.Feedback.Impact(host.ImpactMedium)
	c.opts.Observer.CardRevealed(index, revealed)
}

func (c *Controller) autoFetch(gen uint64) {
	if err := c.fetch(c.ctx, gen); err != nil {
		c.logger().WithError(err).Debug("Interpretation not applied")
	}
}

// FetchInterpretation requests the interpretation of the revealed hand.
// It normally runs on its own once the last card is revealed. After a failed
// request the session stays in Revealing and only NewReading moves on.
func (c *Controller) FetchInterpretation(ctx context.Context) error {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()
	return c.fetch(ctx, gen)
}

func (c *Controller) fetch(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return common.ErrSessionReplaced
	}
	if c.closed || c.session.Phase != PhaseRevealing || len(c.session.Revealed) < len(c.session.Cards) {
		phase := c.session.Phase
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot fetch an interpretation in phase %s", common.ErrInvalidState, phase)
	}
	if c.fetching {
		c.mu.Unlock()
		return common.ErrFetchPending
	}
	if c.session.Failed {
		c.mu.Unlock()
		return fmt.Errorf("%w: the interpretation request failed, start a new reading", common.ErrInvalidState)
	}
	if c.fetchTimer != nil {
		c.fetchTimer.Stop()
		c.fetchTimer = nil
	}

	needsPremium := NeedsPremium(c.session.Count, c.opts.Type)
	if c.wallet.Balance().Exhausted() {
		c.mu.Unlock()
		c.opts.Feedback.Notify(host.NotifyError)
		c.opts.Observer.Failed(common.ErrInsufficientBalance)
		c.opts.Navigator.OpenShop()
		return common.ErrInsufficientBalance
	}

	question := c.session.Question
	if question == "" {
		question = DefaultQuestion
	}
	labels := make([]string, len(c.session.Cards))
	for i, drawn := range c.session.Cards {
		labels[i] = drawn.Label()
	}
	req := api.ReadingRequest{
		UserID:      c.opts.UserID,
		Question:    question,
		CardCount:   c.session.Count,
		ReadingType: string(c.opts.Type),
		UsePremium:  needsPremium,
		CardLabels:  labels,
	}
	c.fetching = true
	logger := c.logger().WithField("premium", needsPremium)
	c.mu.Unlock()

	c.opts.Feedback.Notify(host.NotifySuccess)
	c.opts.Observer.Generating()
	logger.Debug("Requesting interpretation")

	reading, err := c.backend.CreateReading(ctx, req)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		logger.Info("Dropping interpretation of a replaced reading")
		return common.ErrSessionReplaced
	}
	c.fetching = false
	if err != nil {
		c.session.Failed = true
		c.mu.Unlock()
		logger.WithError(err).Warn("Interpretation request failed")
		c.opts.Feedback.Notify(host.NotifyError)
		c.opts.Observer.Failed(err)
		return fmt.Errorf("interpretation request failed: %w", err)
	}

	c.wallet.ApplyOptimistic(balance.Spend(needsPremium))

	clean := text.Clean(reading.Interpretation)
	c.session.Interpretation = clean
	c.session.Pages = text.Paginate(clean, c.opts.PageLength)
	c.session.Page = 0
	c.session.Phase = PhaseResult
	c.reconcileTimer = c.opts.Clock.AfterFunc(c.opts.ReconcileDelay, func() { c.reconcile(gen) })
	result := c.session.clone()
	c.mu.Unlock()

	logger.WithField("pages", len(result.Pages)).Info("Reading completed")
	c.opts.Observer.PhaseChanged(PhaseResult)
	c.opts.Observer.ResultReady(result)
	return nil
}

// reconcile refreshes the balance from the server after an optimistic debit
func (c *Controller) reconcile(gen uint64) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.reconcileTimer = nil
	c.mu.Unlock()

	if err := c.wallet.Reconcile(c.ctx); err != nil {
		c.logger().WithError(err).Warn("Balance refresh failed")
	}
}

// NextPage shows the next interpretation page. It reports whether the page changed.
func (c *Controller) NextPage() bool {
	return c.turnPage(1)
}

// PrevPage shows the previous interpretation page. It reports whether the page changed.
func (c *Controller) PrevPage() bool {
	return c.turnPage(-1)
}

func (c *Controller) turnPage(step int) bool {
	c.mu.Lock()
	if c.session.Phase != PhaseResult {
		c.mu.Unlock()
		return false
	}
	next := c.session.Page + step
	if next < 0 || next > len(c.session.Pages)-1 {
		c.mu.Unlock()
		return false
	}
	c.session.Page = next
	c.mu.Unlock()

	c.opts.Feedback.Selection()
	return true
}

// NewReading discards the session and cancels every pending timer
func (c *Controller) NewReading() {
	c.mu.Lock()
	c.resetLocked()
	c.sessionID = uuid.NewString()
	c.mu.Unlock()

	c.opts.Feedback.Impact(host.ImpactLight)
	c.opts.Observer.PhaseChanged(PhaseQuestion)
}

// Close tears the controller down. Pending timers become no-ops.
func (c *Controller) Close() {
	c.mu.Lock()
	c.resetLocked()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) resetLocked() {
	for _, t := range []Timer{c.revealTimer, c.fetchTimer, c.reconcileTimer} {
		if t != nil {
			t.Stop()
		}
	}
	c.revealTimer, c.fetchTimer, c.reconcileTimer = nil, nil, nil
	c.generation++
	c.fetching = false
	c.session = Session{}
}
