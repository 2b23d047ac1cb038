package session

import (
	"context"
	"testing"

	"github.com/fjod/matule/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSession(t *testing.T) *SessionManager {
	t.Helper()
	return NewSessionManager(storage.NewMemoryStore())
}

func TestSession_RegisterAndValidate(t *testing.T) {
	s := setupSession(t)
	ctx := context.Background()

	exists, err := s.UserExists(ctx, "ivan@mail.ru")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, s.RegisterUser(ctx, "ivan@mail.ru", "Ivan"))
	require.NoError(t, s.SavePassword(ctx, "ivan@mail.ru", "Secret123!"))

	exists, _ = s.UserExists(ctx, "ivan@mail.ru")
	assert.True(t, exists)

	ok, err := s.ValidatePassword(ctx, "ivan@mail.ru", "Secret123!")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = s.ValidatePassword(ctx, "ivan@mail.ru", "wrong")
	assert.False(t, ok)
	ok, _ = s.ValidatePassword(ctx, "nobody@mail.ru", "")
	assert.False(t, ok)

	name, _ := s.UserName(ctx, "ivan@mail.ru")
	assert.Equal(t, "Ivan", name)
}

func TestSession_DisplayName(t *testing.T) {
	s := setupSession(t)
	ctx := context.Background()

	name, err := s.DisplayName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Guest", name)

	require.NoError(t, s.RegisterUser(ctx, "ivan@mail.ru", "Ivan"))
	require.NoError(t, s.SetCurrentEmail(ctx, "ivan@mail.ru"))
	name, _ = s.DisplayName(ctx)
	assert.Equal(t, "Ivan", name)
}

func TestSession_LastRoute(t *testing.T) {
	s := setupSession(t)
	ctx := context.Background()

	route, err := s.LastRoute(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Main", route)

	tests := []struct {
		saved string
		want  string
	}{
		{"Cart", "Cart"},
		{"CreateProject", "CreateProject"},
		{"OrderDetails/ORD-1234ABCD", "OrderDetails/ORD-1234ABCD"},
		{"ProjectDetails/p1", "ProjectDetails/p1"},
		{"SignIn", "Main"},
		{"", "Main"},
	}
	for _, tt := range tests {
		require.NoError(t, s.SaveLastRoute(ctx, tt.saved))
		got, _ := s.LastRoute(ctx)
		assert.Equal(t, tt.want, got, "saved route %q", tt.saved)
	}
}

func TestSession_PinAndFlags(t *testing.T) {
	s := setupSession(t)
	ctx := context.Background()

	require.NoError(t, s.SavePin(ctx, "ivan@mail.ru", "1234"))
	pin, _ := s.UserPin(ctx, "ivan@mail.ru")
	assert.Equal(t, "1234", pin)

	enabled, _ := s.NotificationsEnabled(ctx)
	assert.False(t, enabled)
	require.NoError(t, s.SetNotificationsEnabled(ctx, true))
	enabled, _ = s.NotificationsEnabled(ctx)
	assert.True(t, enabled)

	sent, _ := s.OneShotInactivitySent(ctx)
	assert.False(t, sent)
	require.NoError(t, s.MarkOneShotInactivitySent(ctx))
	sent, _ = s.OneShotInactivitySent(ctx)
	assert.True(t, sent)
	require.NoError(t, s.ResetOneShotInactivity(ctx))
	sent, _ = s.OneShotInactivitySent(ctx)
	assert.False(t, sent)
}

func TestValidPin(t *testing.T) {
	assert.True(t, ValidPin("0420"))
	assert.False(t, ValidPin("123"))
	assert.False(t, ValidPin("12a4"))
	assert.False(t, ValidPin("12345"))
}

func TestSession_ProfileDraft(t *testing.T) {
	s := setupSession(t)
	ctx := context.Background()

	empty, err := s.ProfileDraft(ctx)
	require.NoError(t, err)
	assert.Equal(t, ProfileDraft{}, empty)

	draft := ProfileDraft{Name: "Ivan", Surname: "Petrov", Email: "ivan@mail.ru"}
	require.NoError(t, s.SaveProfileDraft(ctx, draft))
	got, _ := s.ProfileDraft(ctx)
	assert.Equal(t, draft, got)

	require.NoError(t, s.ClearProfileDraft(ctx))
	got, _ = s.ProfileDraft(ctx)
	assert.Equal(t, ProfileDraft{}, got)
}

func TestSession_ClearSessionKeepsUsers(t *testing.T) {
	s := setupSession(t)
	ctx := context.Background()

	require.NoError(t, s.RegisterUser(ctx, "ivan@mail.ru", "Ivan"))
	require.NoError(t, s.SavePassword(ctx, "ivan@mail.ru", "Secret123!"))
	require.NoError(t, s.SetLoggedIn(ctx, true))
	require.NoError(t, s.SetCurrentEmail(ctx, "ivan@mail.ru"))
	require.NoError(t, s.SaveLastRoute(ctx, "Cart"))
	require.NoError(t, s.SetNotificationsEnabled(ctx, true))

	require.NoError(t, s.ClearSession(ctx))

	loggedIn, _ := s.IsLoggedIn(ctx)
	assert.False(t, loggedIn)
	email, _ := s.CurrentEmail(ctx)
	assert.Empty(t, email)
	route, _ := s.LastRoute(ctx)
	assert.Equal(t, "Main", route)

	exists, _ := s.UserExists(ctx, "ivan@mail.ru")
	assert.True(t, exists)
	ok, _ := s.ValidatePassword(ctx, "ivan@mail.ru", "Secret123!")
	assert.True(t, ok)
	enabled, _ := s.NotificationsEnabled(ctx)
	assert.True(t, enabled)
}
