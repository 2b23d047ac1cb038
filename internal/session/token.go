// Package session persists the auth token and the local user session.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/fjod/matule/internal/storage"
	"github.com/sirupsen/logrus"
)

const (
	authNamespace = "matule_auth_prefs"
	keyToken      = "auth_token"
	keyUserID     = "user_id"
)

// TokenManager keeps the bearer token and user id. Reads are served from
// memory so the HTTP transport can ask for the token on every request;
// writes go straight to the store.
type TokenManager struct {
	prefs *storage.Prefs
	log   logrus.FieldLogger

	mu     sync.RWMutex
	token  string
	userID string
}

// NewTokenManager loads the stored credentials. A stored token with bytes
// outside printable ASCII is treated as corrupt and the whole namespace is
// wiped.
func NewTokenManager(ctx context.Context, store storage.Store, log logrus.FieldLogger) (*TokenManager, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	tm := &TokenManager{prefs: storage.NewPrefs(store, authNamespace), log: log}

	token, err := tm.prefs.GetString(ctx, keyToken, "")
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if !printableASCII(token) {
		log.Warn("Stored auth token is corrupt, clearing auth prefs")
		if err := tm.prefs.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear corrupt auth prefs: %w", err)
		}
		return tm, nil
	}

	userID, err := tm.prefs.GetString(ctx, keyUserID, "")
	if err != nil {
		return nil, fmt.Errorf("load user id: %w", err)
	}
	tm.token = token
	tm.userID = userID
	return tm, nil
}

func (t *TokenManager) SaveToken(ctx context.Context, token string) error {
	if err := t.prefs.SetString(ctx, keyToken, token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
	return nil
}

// Token returns the stored token with CR and LF removed and surrounding
// whitespace trimmed.
func (t *TokenManager) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return normalizeToken(t.token)
}

func (t *TokenManager) SaveUserID(ctx context.Context, userID string) error {
	if err := t.prefs.SetString(ctx, keyUserID, userID); err != nil {
		return fmt.Errorf("save user id: %w", err)
	}
	t.mu.Lock()
	t.userID = userID
	t.mu.Unlock()
	return nil
}

func (t *TokenManager) UserID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.userID
}

func (t *TokenManager) HasToken() bool {
	return strings.TrimSpace(t.Token()) != ""
}

// ClearAuth forgets the token and the user id.
func (t *TokenManager) ClearAuth(ctx context.Context) error {
	t.mu.Lock()
	t.token = ""
	t.userID = ""
	t.mu.Unlock()
	if err := t.prefs.Remove(ctx, keyToken, keyUserID); err != nil {
		return fmt.Errorf("clear auth: %w", err)
	}
	return nil
}

func normalizeToken(token string) string {
	token = strings.ReplaceAll(token, "\n", "")
	token = strings.ReplaceAll(token, "\r", "")
	return strings.TrimSpace(token)
}

func printableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7E {
			return false
		}
	}
	return true
}
