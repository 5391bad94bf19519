// Package ledger keeps the logged-in user's budget and expenditure history in
// sync with the remote service.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/theirongolddev/budgie/internal/api"
	"github.com/theirongolddev/budgie/internal/log"
	"github.com/theirongolddev/budgie/internal/model"

	"github.com/shopspring/decimal"
)

// Backend is the subset of the service client the ledger needs.
type Backend interface {
	FetchLedger(ctx context.Context, id model.UserID) (api.Snapshot, error)
	SetBudget(ctx context.Context, id model.UserID, budget float64) (string, error)
	AddExpenditure(ctx context.Context, id model.UserID, e api.NewExpenditure) (string, error)
}

// Session supplies and clears the current user identifier.
type Session interface {
	Current() (model.UserID, bool)
	Clear() error
}

// Pending holds the raw, not yet submitted entry fields.
type Pending struct {
	Amount string
	Date   string
	Note   string
}

// State is a read-only copy of the ledger for rendering.
type State struct {
	Profile   model.Profile
	Entries   []model.Expenditure
	Remaining decimal.Decimal
	Pending   Pending
	Pager     Pager
	Loaded    bool
	LoadedAt  time.Time
	Busy      bool
}

// Window returns the entries on the current page.
func (s State) Window() []model.Expenditure {
	return s.Pager.Window(s.Entries)
}

// Spent returns budget minus remaining.
func (s State) Spent() decimal.Decimal {
	return s.Profile.Budget.Sub(s.Remaining)
}

// Ledger is safe for concurrent use. Remote calls run without holding the lock.
type Ledger struct {
	backend Backend
	session Session
	log     *log.Logger
	now     func() time.Time

	newestFirst bool

	mu        sync.Mutex
	gen       uint64
	epoch     uint64
	installs  uint64
	profile   model.Profile
	entries   []model.Expenditure
	remaining decimal.Decimal
	pending   Pending
	pager     Pager
	loaded    bool
	loadedAt  time.Time
	busy      bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(lg *Ledger) { lg.log = l.WithComponent(log.ComponentLedger) }
}

// WithPageSize sets the history window size.
func WithPageSize(n int) Option {
	return func(lg *Ledger) { lg.pager = NewPager(n) }
}

// WithNewestFirst selects display order. The service returns entries in
// insertion order; newest-first reverses it.
func WithNewestFirst(v bool) Option {
	return func(lg *Ledger) { lg.newestFirst = v }
}

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(lg *Ledger) { lg.now = now }
}

// New creates an empty ledger.
func New(backend Backend, session Session, opts ...Option) *Ledger {
	l := &Ledger{
		backend:     backend,
		session:     session,
		log:         log.Discard().WithComponent(log.ComponentLedger),
		now:         time.Now,
		newestFirst: true,
		pager:       NewPager(5),
		remaining:   decimal.Zero,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Snapshot returns a copy of the current state.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{
		Profile:   l.profile,
		Entries:   slices.Clone(l.entries),
		Remaining: l.remaining,
		Pending:   l.pending,
		Pager:     l.pager,
		Loaded:    l.loaded,
		LoadedAt:  l.loadedAt,
		Busy:      l.busy,
	}
}

// Generation identifies the most recent load or logout. Results tagged with an
// older generation are stale.
func (l *Ledger) Generation() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen
}

// Load fetches the profile and expenditures and replaces local state. On
// failure the prior state is kept. If a later Load, a logout, or a local
// mutation happened meanwhile, the result is dropped and ErrStale returned.
func (l *Ledger) Load(ctx context.Context) error {
	id, ok := l.session.Current()
	if !ok {
		return ErrNoSession
	}

	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	start := time.Now()
	snap, err := l.backend.FetchLedger(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		l.log.DebugContext(ctx, "dropping stale load", log.FieldGen, gen)
		return ErrStale
	}
	if err != nil {
		l.log.Err(ctx, log.OpLoad, err, log.FieldUserID, id.String())
		return fmt.Errorf("loading ledger: %w", err)
	}

	entries := snap.Expenditures
	if l.newestFirst {
		entries = slices.Clone(entries)
		slices.Reverse(entries)
	}
	l.profile = snap.Profile
	l.entries = entries
	l.remaining = model.Remaining(snap.Profile, entries)
	l.pager = l.pager.Clamp(len(entries))
	l.loaded = true
	l.loadedAt = l.now()
	l.installs++

	l.log.InfoContext(ctx, "ledger loaded",
		log.FieldUserID, id.String(),
		log.FieldCount, len(entries),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

// SetBudget validates and sends a new budget, then reloads the ledger so
// remaining stays consistent with the service. The service's message is
// returned. Mutations stay blocked until the reload finishes. If the budget
// was stored but the reload failed, the error wraps ErrNotRefreshed.
func (l *Ledger) SetBudget(ctx context.Context, budget decimal.Decimal) (string, error) {
	if !budget.IsPositive() {
		return "", ErrInvalidBudget
	}
	id, ok := l.session.Current()
	if !ok {
		return "", ErrNoSession
	}
	epoch, err := l.acquire()
	if err != nil {
		return "", err
	}
	defer l.release()

	msg, err := l.backend.SetBudget(ctx, id, budget.InexactFloat64())
	if err != nil {
		l.log.Err(ctx, log.OpSetBudget, err, log.FieldAmount, budget.String())
		return "", fmt.Errorf("setting budget: %w", err)
	}
	l.log.InfoContext(ctx, "budget updated", log.FieldAmount, budget.String())

	return msg, l.refresh(ctx, epoch)
}

// SetBudgetInput parses raw user input and calls SetBudget.
func (l *Ledger) SetBudgetInput(ctx context.Context, raw string) (string, error) {
	budget, err := model.ParseAmount(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBudget, err)
	}
	return l.SetBudget(ctx, budget)
}

// SetPending replaces the pending entry fields.
func (l *Ledger) SetPending(p Pending) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = p
}

// AddExpenditure validates p, sends it, and on success records it locally:
// the entry is inserted at the display head, remaining is decremented and the
// pending fields are cleared. If a load landed while the request was in
// flight, that load may already hold the entry, so the ledger reloads instead
// of inserting. On any failure p stays pending.
func (l *Ledger) AddExpenditure(ctx context.Context, p Pending) (string, error) {
	l.SetPending(p)

	amount, err := model.ParseAmount(p.Amount)
	if err != nil || !amount.IsPositive() {
		return "", ErrInvalidAmount
	}
	date, err := model.ParseDate(p.Date, l.now())
	if err != nil {
		return "", err
	}
	id, ok := l.session.Current()
	if !ok {
		return "", ErrNoSession
	}

	l.mu.Lock()
	if amount.GreaterThan(l.remaining) {
		l.mu.Unlock()
		return "", ErrOverspend
	}
	if l.busy {
		l.mu.Unlock()
		return "", ErrBusy
	}
	l.busy = true
	epoch, installs := l.epoch, l.installs
	l.mu.Unlock()
	defer l.release()

	entry := api.NewExpenditure{Amount: amount, Date: date, Note: p.Note}
	msg, err := l.backend.AddExpenditure(ctx, id, entry)
	if err != nil {
		l.log.Err(ctx, log.OpAddExpenditure, err, log.FieldAmount, amount.String())
		return "", fmt.Errorf("adding expenditure: %w", err)
	}

	l.mu.Lock()
	switch {
	case epoch != l.epoch:
		// Logged out while the request was in flight.
		l.mu.Unlock()
		return msg, ErrStale
	case installs != l.installs:
		l.pending = Pending{}
		l.mu.Unlock()
		l.log.InfoContext(ctx, "expenditure added during load, reloading",
			log.FieldAmount, amount.String())
		return msg, l.refresh(ctx, epoch)
	}

	e := model.Expenditure{Amount: amount, Date: date, Note: p.Note}
	if l.newestFirst {
		l.entries = slices.Insert(l.entries, 0, e)
	} else {
		l.entries = append(l.entries, e)
	}
	l.remaining = l.remaining.Sub(amount)
	l.pending = Pending{}
	l.pager = l.pager.Clamp(len(l.entries))
	// Supersede any load issued before this entry existed.
	l.gen++
	count := len(l.entries)
	l.mu.Unlock()

	l.log.InfoContext(ctx, "expenditure added",
		log.FieldAmount, amount.String(),
		log.FieldCount, count)
	return msg, nil
}

// Paginate moves the page cursor. It reports whether the page changed.
func (l *Ledger) Paginate(dir Direction) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	before := l.pager.Page
	l.pager = l.pager.Move(dir, len(l.entries))
	return l.pager.Page != before
}

// Logout clears the session and all in-memory state. In-flight loads become
// stale.
func (l *Ledger) Logout(ctx context.Context) error {
	l.mu.Lock()
	l.gen++
	l.epoch++
	l.profile = model.Profile{}
	l.entries = nil
	l.remaining = decimal.Zero
	l.pending = Pending{}
	l.pager = NewPager(l.pager.Size)
	l.loaded = false
	l.loadedAt = time.Time{}
	l.mu.Unlock()

	if err := l.session.Clear(); err != nil {
		l.log.Err(ctx, log.OpLogout, err)
		return err
	}
	l.log.InfoContext(ctx, "logged out")
	return nil
}

// refresh reloads after a write the service has stored. A newer load taking
// over counts as success; a logout yields ErrStale.
func (l *Ledger) refresh(ctx context.Context, epoch uint64) error {
	err := l.Load(ctx)
	if err == nil {
		return nil
	}

	l.mu.Lock()
	loggedOut := epoch != l.epoch
	l.mu.Unlock()
	switch {
	case loggedOut:
		return ErrStale
	case errors.Is(err, ErrStale):
		return nil
	default:
		return fmt.Errorf("%w: %w", ErrNotRefreshed, err)
	}
}

func (l *Ledger) acquire() (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy {
		return 0, ErrBusy
	}
	l.busy = true
	return l.epoch, nil
}

func (l *Ledger) release() {
	l.mu.Lock()
	l.busy = false
	l.mu.Unlock()
}
