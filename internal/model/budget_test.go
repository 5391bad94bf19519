package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestRemaining(t *testing.T) {
	tests := []struct {
		name    string
		budget  string
		amounts []string
		want    string
	}{
		{"no entries", "500", nil, "500"},
		{"some entries", "200", []string{"50", "25.5"}, "124.5"},
		{"overspent", "10", []string{"7.25", "7.25"}, "-4.5"},
		{"zero budget", "0", []string{"1"}, "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var entries []Expenditure
			for _, a := range tt.amounts {
				entries = append(entries, Expenditure{Amount: dec(a)})
			}
			got := Remaining(Profile{Budget: dec(tt.budget)}, entries)
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestSpentPercent(t *testing.T) {
	assert.InDelta(t, 0.25, SpentPercent(dec("200"), dec("150")), 1e-9)
	assert.InDelta(t, 0.0, SpentPercent(dec("0"), dec("-5")), 1e-9)
	assert.InDelta(t, 0.0, SpentPercent(dec("100"), dec("120")), 1e-9)
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount(" 12,34 ")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("12.34")))

	got, err = ParseAmount("$50")
	require.NoError(t, err)
	assert.True(t, got.Equal(dec("50")))

	for _, bad := range []string{"", "abc", "1.2.3", "  "} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", bad)
	}
}

func TestParseDate(t *testing.T) {
	now := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	got, err := ParseDate("", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-09", got)

	got, err = ParseDate("2024-01-01", now)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", got)

	_, err = ParseDate("01/01/2024", now)
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestUserIDUnmarshal(t *testing.T) {
	var r AuthResult
	require.NoError(t, json.Unmarshal([]byte(`{"message":"ok","user_id":42}`), &r))
	assert.Equal(t, UserID("42"), r.UserID)

	require.NoError(t, json.Unmarshal([]byte(`{"message":"ok","user_id":"abc"}`), &r))
	assert.Equal(t, UserID("abc"), r.UserID)

	var none AuthResult
	require.NoError(t, json.Unmarshal([]byte(`{"message":"Invalid credentials"}`), &none))
	assert.Empty(t, none.UserID)
}

func TestModeToggle(t *testing.T) {
	assert.Equal(t, "/login", ModeLogin.Endpoint())
	assert.Equal(t, "/register", ModeRegister.Endpoint())
	assert.Equal(t, ModeRegister, ModeLogin.Toggle())
	assert.Equal(t, ModeLogin, ModeLogin.Toggle().Toggle())
}

func TestUserIDMarshal(t *testing.T) {
	data, err := json.Marshal(struct {
		ID UserID `json:"user_id"`
	}{ID: "42"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"user_id":42}`, string(data))

	data, err = json.Marshal(UserID("u-7"))
	require.NoError(t, err)
	assert.Equal(t, `"u-7"`, string(data))
}
