package ledger

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/budgie/internal/api"
	"github.com/theirongolddev/budgie/internal/api/apitest"
	"github.com/theirongolddev/budgie/internal/model"
	"github.com/theirongolddev/budgie/internal/session"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	srv    *apitest.Server
	ledger *Ledger
	holder *session.Holder
	id     string
}

func newFixture(t *testing.T, budget float64, entries []apitest.Entry, opts ...Option) fixture {
	t.Helper()
	srv := apitest.New()
	t.Cleanup(srv.Close)

	id := srv.Seed("ana", "pw", budget, entries...)
	client, err := api.New(srv.URL, api.WithTimeout(2*time.Second))
	require.NoError(t, err)

	holder := session.NewMemory()
	require.NoError(t, holder.Set(model.UserID(id)))

	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return fixture{srv: srv, ledger: New(client, holder, opts...), holder: holder, id: id}
}

func entriesN(n int) []apitest.Entry {
	out := make([]apitest.Entry, n)
	for i := range out {
		out[i] = apitest.Entry{Amount: 1, Date: "2024-01-01", Note: string(rune('a' + i))}
	}
	return out
}

func TestLoad_ComputesRemaining(t *testing.T) {
	f := newFixture(t, 200, []apitest.Entry{
		{Amount: 20, Date: "2024-01-01", Note: "coffee"},
		{Amount: 30.5, Date: "2024-01-02", Note: "lunch"},
	})

	require.NoError(t, f.ledger.Load(context.Background()))
	st := f.ledger.Snapshot()

	assert.True(t, st.Loaded)
	assert.Equal(t, "ana", st.Profile.Username)
	assert.True(t, st.Remaining.Equal(dec("149.5")), "remaining %s", st.Remaining)
	assert.True(t, st.Spent().Equal(dec("50.5")))
	require.Len(t, st.Entries, 2)
	assert.Equal(t, "lunch", st.Entries[0].Note, "newest first")
	assert.Equal(t, fixedNow, st.LoadedAt)
}

func TestLoad_OldestFirstKeepsServiceOrder(t *testing.T) {
	f := newFixture(t, 200, []apitest.Entry{
		{Amount: 20, Date: "2024-01-01", Note: "coffee"},
		{Amount: 30, Date: "2024-01-02", Note: "lunch"},
	}, WithNewestFirst(false))

	require.NoError(t, f.ledger.Load(context.Background()))
	_, err := f.ledger.AddExpenditure(context.Background(), Pending{Amount: "5", Note: "tea"})
	require.NoError(t, err)

	st := f.ledger.Snapshot()
	require.Len(t, st.Entries, 3)
	assert.Equal(t, "coffee", st.Entries[0].Note)
	assert.Equal(t, "tea", st.Entries[2].Note)
}

func TestLoad_FailureKeepsPriorState(t *testing.T) {
	f := newFixture(t, 100, []apitest.Entry{{Amount: 10, Date: "2024-01-01"}})
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))
	before := f.ledger.Snapshot()

	f.srv.SetFail("/get_user", http.StatusInternalServerError)
	err := f.ledger.Load(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrServer)
	assert.Equal(t, before, f.ledger.Snapshot())
}

func TestLoad_NoSession(t *testing.T) {
	l := New(&stubBackend{}, session.NewMemory())
	assert.ErrorIs(t, l.Load(context.Background()), ErrNoSession)
}

func TestAddExpenditure_Success(t *testing.T) {
	f := newFixture(t, 200, nil)
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))

	msg, err := f.ledger.AddExpenditure(ctx, Pending{Amount: "50", Date: "2024-01-01", Note: "groceries"})
	require.NoError(t, err)
	assert.Equal(t, "Expenditure added successfully", msg)

	st := f.ledger.Snapshot()
	assert.True(t, st.Remaining.Equal(dec("150")))
	require.Len(t, st.Entries, 1)
	assert.Equal(t, "groceries", st.Entries[0].Note)
	assert.Equal(t, Pending{}, st.Pending)
	assert.Len(t, f.srv.Entries(f.id), 1)
}

func TestAddExpenditure_EmptyDateDefaultsToToday(t *testing.T) {
	f := newFixture(t, 100, nil)
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))

	_, err := f.ledger.AddExpenditure(ctx, Pending{Amount: "1"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", f.srv.Entries(f.id)[0].Date)
}

func TestAddExpenditure_ValidationSendsNothing(t *testing.T) {
	f := newFixture(t, 100, []apitest.Entry{{Amount: 40, Date: "2024-01-01"}})
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))
	callsBefore := f.srv.TotalCalls()

	tests := []struct {
		name string
		in   Pending
		want error
	}{
		{"zero", Pending{Amount: "0"}, ErrInvalidAmount},
		{"negative", Pending{Amount: "-5"}, ErrInvalidAmount},
		{"not a number", Pending{Amount: "lots"}, ErrInvalidAmount},
		{"empty", Pending{}, ErrInvalidAmount},
		{"overspend", Pending{Amount: "60.01"}, ErrOverspend},
		{"bad date", Pending{Amount: "1", Date: "15/01/2024"}, model.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.AddExpenditure(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))

			st := f.ledger.Snapshot()
			assert.Len(t, st.Entries, 1)
			assert.Equal(t, tt.in, st.Pending, "fields stay pending")
		})
	}
	assert.Equal(t, callsBefore, f.srv.TotalCalls())
}

func TestAddExpenditure_ExactRemainingAllowed(t *testing.T) {
	f := newFixture(t, 100, []apitest.Entry{{Amount: 40, Date: "2024-01-01"}})
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))

	_, err := f.ledger.AddExpenditure(ctx, Pending{Amount: "60"})
	require.NoError(t, err)
	assert.True(t, f.ledger.Snapshot().Remaining.IsZero())
}

func TestAddExpenditure_ServerFailureKeepsPending(t *testing.T) {
	f := newFixture(t, 100, nil)
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))
	f.srv.SetFail("/add_expenditure", http.StatusInternalServerError)

	p := Pending{Amount: "10", Date: "2024-01-02", Note: "x"}
	_, err := f.ledger.AddExpenditure(ctx, p)
	require.Error(t, err)
	assert.False(t, IsValidation(err))
	assert.Equal(t, FailureNotice, Notice(err))

	st := f.ledger.Snapshot()
	assert.Empty(t, st.Entries)
	assert.True(t, st.Remaining.Equal(dec("100")))
	assert.Equal(t, p, st.Pending)
	assert.False(t, st.Busy)
}

func TestSetBudget_RejectsNonPositive(t *testing.T) {
	f := newFixture(t, 100, nil)
	ctx := context.Background()

	for _, raw := range []string{"0", "-1", "abc", ""} {
		_, err := f.ledger.SetBudgetInput(ctx, raw)
		assert.ErrorIs(t, err, ErrInvalidBudget, "input %q", raw)
	}
	assert.Zero(t, f.srv.TotalCalls())
}

func TestSetBudget_ThenLoad(t *testing.T) {
	f := newFixture(t, 100, []apitest.Entry{
		{Amount: 20, Date: "2024-01-01"},
		{Amount: 5.25, Date: "2024-01-02"},
	})
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))

	msg, err := f.ledger.SetBudget(ctx, dec("500"))
	require.NoError(t, err)
	assert.Equal(t, "Budget updated successfully", msg)

	require.NoError(t, f.ledger.Load(ctx))
	st := f.ledger.Snapshot()
	assert.True(t, st.Profile.Budget.Equal(dec("500")))
	assert.True(t, st.Remaining.Equal(dec("474.75")), "remaining %s", st.Remaining)
	assert.Equal(t, 3, f.srv.Calls("/get_user"), "initial load, refetch, explicit load")
}

func TestPagination_TwelveEntries(t *testing.T) {
	f := newFixture(t, 100, entriesN(12), WithNewestFirst(false), WithPageSize(5))
	require.NoError(t, f.ledger.Load(context.Background()))

	st := f.ledger.Snapshot()
	assert.Equal(t, 3, st.Pager.PageCount(len(st.Entries)))
	assert.False(t, st.Pager.HasPrev())
	assert.Equal(t, "abcde", notes(st.Window()))

	assert.False(t, f.ledger.Paginate(Prev), "no page before 1")
	assert.True(t, f.ledger.Paginate(Next))
	assert.Equal(t, "fghij", notes(f.ledger.Snapshot().Window()))
	assert.True(t, f.ledger.Paginate(Next))

	st = f.ledger.Snapshot()
	assert.Equal(t, 3, st.Pager.Page)
	assert.Equal(t, "kl", notes(st.Window()))
	assert.False(t, st.Pager.HasNext(len(st.Entries)))
	assert.False(t, f.ledger.Paginate(Next), "no page past the last")
}

func TestLogout_ClearsSessionAndState(t *testing.T) {
	f := newFixture(t, 100, entriesN(3))
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))

	require.NoError(t, f.ledger.Logout(ctx))

	_, ok := f.holder.Current()
	assert.False(t, ok)
	st := f.ledger.Snapshot()
	assert.False(t, st.Loaded)
	assert.Empty(t, st.Entries)
	assert.Equal(t, 1, st.Pager.Page)
	assert.ErrorIs(t, f.ledger.Load(ctx), ErrNoSession)
}

// stubBackend lets tests hold calls in flight. With store set, writes are
// applied to snap before the gate is waited on, the way a service commits
// before its reply reaches the client.
type stubBackend struct {
	fetchGate chan struct{}
	addGate   chan struct{}
	store     bool

	mu       sync.Mutex
	snap     api.Snapshot
	addCalls int
	fetches  int
}

func (b *stubBackend) FetchLedger(ctx context.Context, _ model.UserID) (api.Snapshot, error) {
	if b.fetchGate != nil {
		select {
		case <-b.fetchGate:
		case <-ctx.Done():
			return api.Snapshot{}, ctx.Err()
		}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fetches++
	snap := b.snap
	snap.Expenditures = slices.Clone(b.snap.Expenditures)
	return snap, nil
}

func (b *stubBackend) SetBudget(_ context.Context, _ model.UserID, budget float64) (string, error) {
	if b.store {
		b.mu.Lock()
		b.snap.Profile.Budget = decimal.NewFromFloat(budget)
		b.mu.Unlock()
	}
	return "ok", nil
}

func (b *stubBackend) AddExpenditure(ctx context.Context, _ model.UserID, e api.NewExpenditure) (string, error) {
	b.mu.Lock()
	b.addCalls++
	if b.store {
		b.snap.Expenditures = append(b.snap.Expenditures, model.Expenditure{Amount: e.Amount, Date: e.Date, Note: e.Note})
	}
	b.mu.Unlock()
	if b.addGate != nil {
		select {
		case <-b.addGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "ok", nil
}

func (b *stubBackend) calls() (adds, fetches int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.addCalls, b.fetches
}

func loggedIn(t *testing.T) *session.Holder {
	t.Helper()
	h := session.NewMemory()
	require.NoError(t, h.Set("7"))
	return h
}

func TestLoad_StaleAfterLogout(t *testing.T) {
	backend := &stubBackend{
		fetchGate: make(chan struct{}),
		snap: api.Snapshot{
			Profile:      model.Profile{Username: "ana", Budget: dec("100")},
			Expenditures: []model.Expenditure{{Amount: dec("10"), Date: "2024-01-01"}},
		},
	}
	l := New(backend, loggedIn(t))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- l.Load(ctx) }()

	require.Eventually(t, func() bool { return l.Generation() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, l.Logout(ctx))
	close(backend.fetchGate)

	err := <-done
	assert.ErrorIs(t, err, ErrStale)
	assert.Equal(t, "", Notice(err))
	st := l.Snapshot()
	assert.False(t, st.Loaded)
	assert.Empty(t, st.Entries)
}

func TestLoad_LastIssuedWins(t *testing.T) {
	backend := &stubBackend{fetchGate: make(chan struct{})}
	l := New(backend, loggedIn(t))
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- l.Load(ctx) }()
	require.Eventually(t, func() bool { return l.Generation() == 1 }, time.Second, time.Millisecond)

	second := make(chan error, 1)
	go func() { second <- l.Load(ctx) }()
	require.Eventually(t, func() bool { return l.Generation() == 2 }, time.Second, time.Millisecond)

	close(backend.fetchGate)
	assert.ErrorIs(t, <-first, ErrStale)
	assert.NoError(t, <-second)
}

func TestAddExpenditure_InFlightGuard(t *testing.T) {
	backend := &stubBackend{addGate: make(chan struct{})}
	backend.snap.Profile.Budget = dec("100")
	l := New(backend, loggedIn(t))
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))

	done := make(chan error, 1)
	go func() {
		_, err := l.AddExpenditure(ctx, Pending{Amount: "10"})
		done <- err
	}()
	require.Eventually(t, func() bool { return l.Snapshot().Busy }, time.Second, time.Millisecond)

	_, err := l.AddExpenditure(ctx, Pending{Amount: "10"})
	assert.ErrorIs(t, err, ErrBusy)
	_, err = l.SetBudget(ctx, dec("50"))
	assert.ErrorIs(t, err, ErrBusy)

	close(backend.addGate)
	require.NoError(t, <-done)
	adds, _ := backend.calls()
	assert.Equal(t, 1, adds)
	assert.Len(t, l.Snapshot().Entries, 1)
}

func TestAddExpenditure_LoadDuringAddCountsEntryOnce(t *testing.T) {
	backend := &stubBackend{addGate: make(chan struct{}), store: true}
	backend.snap.Profile.Budget = dec("200")
	l := New(backend, loggedIn(t))
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))

	done := make(chan error, 1)
	go func() {
		_, err := l.AddExpenditure(ctx, Pending{Amount: "50", Date: "2024-01-03", Note: "rent"})
		done <- err
	}()
	require.Eventually(t, func() bool {
		adds, _ := backend.calls()
		return adds == 1
	}, time.Second, time.Millisecond)

	// The service already holds the entry; the reply has not arrived yet.
	require.NoError(t, l.Load(ctx))
	close(backend.addGate)
	require.NoError(t, <-done)

	st := l.Snapshot()
	require.Len(t, st.Entries, 1)
	assert.Equal(t, "rent", st.Entries[0].Note)
	assert.True(t, st.Remaining.Equal(dec("150")), "remaining %s", st.Remaining)
	assert.Equal(t, Pending{}, st.Pending)
	assert.False(t, st.Busy)
	_, fetches := backend.calls()
	assert.Equal(t, 3, fetches, "initial load, mid-flight load, reload after add")
}

func TestSetBudget_HoldsMutationsUntilReloaded(t *testing.T) {
	backend := &stubBackend{store: true}
	backend.snap.Profile.Budget = dec("200")
	l := New(backend, loggedIn(t))
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))

	backend.fetchGate = make(chan struct{})
	type result struct {
		msg string
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := l.SetBudget(ctx, dec("500"))
		done <- result{msg, err}
	}()
	require.Eventually(t, func() bool { return l.Generation() == 2 }, time.Second, time.Millisecond)

	_, err := l.AddExpenditure(ctx, Pending{Amount: "10"})
	assert.ErrorIs(t, err, ErrBusy)

	close(backend.fetchGate)
	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "ok", res.msg)

	st := l.Snapshot()
	assert.True(t, st.Profile.Budget.Equal(dec("500")), "budget %s", st.Profile.Budget)
	assert.True(t, st.Remaining.Equal(dec("500")))
	assert.False(t, st.Busy)
}

func TestSetBudget_NewerLoadCoversReload(t *testing.T) {
	backend := &stubBackend{store: true}
	backend.snap.Profile.Budget = dec("200")
	l := New(backend, loggedIn(t))
	ctx := context.Background()
	require.NoError(t, l.Load(ctx))

	backend.fetchGate = make(chan struct{})
	done := make(chan error, 1)
	go func() {
		_, err := l.SetBudget(ctx, dec("500"))
		done <- err
	}()
	require.Eventually(t, func() bool { return l.Generation() == 2 }, time.Second, time.Millisecond)

	reload := make(chan error, 1)
	go func() { reload <- l.Load(ctx) }()
	require.Eventually(t, func() bool { return l.Generation() == 3 }, time.Second, time.Millisecond)

	close(backend.fetchGate)
	assert.NoError(t, <-done)
	assert.NoError(t, <-reload)
	assert.True(t, l.Snapshot().Profile.Budget.Equal(dec("500")))
}

func TestSetBudget_StoredButNotReloaded(t *testing.T) {
	f := newFixture(t, 100, nil)
	ctx := context.Background()
	require.NoError(t, f.ledger.Load(ctx))

	f.srv.SetFail("/get_user", http.StatusInternalServerError)
	msg, err := f.ledger.SetBudget(ctx, dec("300"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRefreshed)
	assert.False(t, IsValidation(err))
	assert.Equal(t, "Budget updated successfully", msg)
	assert.InDelta(t, 300.0, f.srv.Budget(f.id), 1e-9)
	assert.Contains(t, Notice(err), "Saved")
	assert.False(t, f.ledger.Snapshot().Busy)
}

func TestNotice(t *testing.T) {
	assert.Equal(t, "", Notice(nil))
	assert.Equal(t, ErrOverspend.Error(), Notice(ErrOverspend))
	assert.Equal(t, FailureNotice, Notice(errors.New("connection refused")))
	assert.False(t, IsValidation(ErrBusy))
}

func notes(entries []model.Expenditure) string {
	var s string
	for _, e := range entries {
		s += e.Note
	}
	return s
}
