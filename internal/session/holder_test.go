package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/budgie/internal/model"
	"github.com/theirongolddev/budgie/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryHolder(t *testing.T) {
	h := NewMemory()

	_, ok := h.Current()
	assert.False(t, ok)

	require.NoError(t, h.Set("5"))
	id, ok := h.Current()
	assert.True(t, ok)
	assert.Equal(t, model.UserID("5"), id)

	require.NoError(t, h.Set(""))
	_, ok = h.Current()
	assert.False(t, ok, "setting an empty id clears the session")
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	st, err := store.Open(path)
	require.NoError(t, err)
	h, err := Open(st)
	require.NoError(t, err)
	require.NoError(t, h.Set("42"))
	require.NoError(t, st.Close())

	st, err = store.Open(path)
	require.NoError(t, err)
	h, err = Open(st)
	require.NoError(t, err)
	id, ok := h.Current()
	assert.True(t, ok)
	assert.Equal(t, model.UserID("42"), id)

	require.NoError(t, h.Clear())
	require.NoError(t, st.Close())

	st, err = store.Open(path)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	h, err = Open(st)
	require.NoError(t, err)
	_, ok = h.Current()
	assert.False(t, ok, "logout must survive a restart")
}

func TestOnChange(t *testing.T) {
	h := NewMemory()
	var events []bool
	h.OnChange(func(_ model.UserID, present bool) { events = append(events, present) })

	require.NoError(t, h.Set("1"))
	require.NoError(t, h.Clear())
	assert.Equal(t, []bool{true, false}, events)
}

type failingBackend struct{ memBackend }

func (f *failingBackend) Set(string, string) error { return errors.New("disk full") }

func TestSetFailureKeepsPreviousState(t *testing.T) {
	h := &Holder{backend: &failingBackend{memBackend{m: map[string]string{}}}}
	err := h.Set("9")
	require.Error(t, err)
	_, ok := h.Current()
	assert.False(t, ok)
}

type brokenReader struct{ memBackend }

func (b *brokenReader) Get(string) (string, error) { return "", errors.New("corrupt") }

func TestOpenReadError(t *testing.T) {
	_, err := Open(&brokenReader{})
	assert.Error(t, err)
}
