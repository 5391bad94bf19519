package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/theirongolddev/budgie/internal/api"
	"github.com/theirongolddev/budgie/internal/ledger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportWrite_Success(t *testing.T) {
	var out bytes.Buffer
	refreshed, err := reportWrite(&out, "Budget updated successfully", "Budget updated", nil)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Contains(t, out.String(), "Budget updated successfully")
}

func TestReportWrite_StoredWithEmptyAckAndFailedReload(t *testing.T) {
	var out bytes.Buffer
	reloadErr := fmt.Errorf("%w: %w", ledger.ErrNotRefreshed, errors.New("connection reset"))

	refreshed, err := reportWrite(&out, "", "Budget updated", reloadErr)
	require.NoError(t, err, "the write itself succeeded")
	assert.False(t, refreshed)
	assert.Contains(t, out.String(), "Budget updated")
	assert.Contains(t, out.String(), ledger.Notice(reloadErr))
}

func TestReportWrite_WriteFailed(t *testing.T) {
	var out bytes.Buffer
	writeErr := fmt.Errorf("setting budget: %w", api.ErrServer)

	refreshed, err := reportWrite(&out, "", "Budget updated", writeErr)
	require.Error(t, err)
	assert.False(t, refreshed)
	assert.Empty(t, out.String())
}

func TestUserError_NeverEmpty(t *testing.T) {
	for _, err := range []error{ledger.ErrStale, ledger.ErrBusy, ledger.ErrNoSession, ledger.ErrOverspend} {
		assert.NotEmpty(t, userError(err).Error(), "%v", err)
	}
	assert.Equal(t, errNotLoggedIn, userError(ledger.ErrNoSession))
}
