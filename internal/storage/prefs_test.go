package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefs_StringDefaults(t *testing.T) {
	store := NewMemoryStore()
	prefs := NewPrefs(store, "user_session")
	ctx := context.Background()

	got, err := prefs.GetString(ctx, "last_route", "Main")
	require.NoError(t, err)
	assert.Equal(t, "Main", got)

	require.NoError(t, prefs.SetString(ctx, "last_route", "Cart"))
	got, err = prefs.GetString(ctx, "last_route", "Main")
	require.NoError(t, err)
	assert.Equal(t, "Cart", got)

	raw, err := store.Get(ctx, "user_session:last_route")
	require.NoError(t, err)
	assert.Equal(t, "Cart", string(raw))
}

func TestPrefs_Bool(t *testing.T) {
	prefs := NewPrefs(NewMemoryStore(), "user_session")
	ctx := context.Background()

	got, err := prefs.GetBool(ctx, "notifications_enabled", true)
	require.NoError(t, err)
	assert.True(t, got)

	require.NoError(t, prefs.SetBool(ctx, "notifications_enabled", false))
	got, err = prefs.GetBool(ctx, "notifications_enabled", true)
	require.NoError(t, err)
	assert.False(t, got)
}

func TestPrefs_StringSetDeduplicates(t *testing.T) {
	prefs := NewPrefs(NewMemoryStore(), "user_session")
	ctx := context.Background()

	empty, err := prefs.GetStringSet(ctx, "registered_users")
	require.NoError(t, err)
	assert.Nil(t, empty)

	require.NoError(t, prefs.SetStringSet(ctx, "registered_users", []string{"b@x.ru", "a@x.ru", "b@x.ru"}))
	set, err := prefs.GetStringSet(ctx, "registered_users")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.ru", "b@x.ru"}, set)
}

func TestPrefs_JSONCorruptPayload(t *testing.T) {
	store := NewMemoryStore()
	prefs := NewPrefs(store, "orders_prefs")
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "orders_prefs:orders_list", []byte("{not json")))

	var orders []map[string]any
	ok, err := prefs.GetJSON(ctx, "orders_list", &orders)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPrefs_ClearOnlyTouchesNamespace(t *testing.T) {
	store := NewMemoryStore()
	auth := NewPrefs(store, "matule_auth_prefs")
	session := NewPrefs(store, "user_session")
	ctx := context.Background()

	require.NoError(t, auth.SetString(ctx, "auth_token", "tok"))
	require.NoError(t, auth.SetString(ctx, "user_id", "u1"))
	require.NoError(t, session.SetBool(ctx, "is_logged_in", true))

	require.NoError(t, auth.Clear(ctx))

	token, _ := auth.GetString(ctx, "auth_token", "")
	assert.Empty(t, token)
	loggedIn, _ := session.GetBool(ctx, "is_logged_in", false)
	assert.True(t, loggedIn)

	require.NoError(t, session.Remove(ctx, "is_logged_in"))
	assert.Equal(t, 0, store.Len())
}
