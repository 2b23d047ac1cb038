package session

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/fjod/matule/internal/storage"
)

const (
	sessionNamespace = "user_session"

	keyLoggedIn        = "is_logged_in"
	keyCurrentEmail    = "current_user_email"
	keyRegisteredUsers = "registered_users"
	keyLastRoute       = "last_route"
	keyNotifications   = "notifications_enabled"
	keyOneShotSent     = "one_shot_inactivity_sent"
	keyProfileDraft    = "profile_draft"

	routeOrderDetails   = "OrderDetails/"
	routeProjectDetails = "ProjectDetails/"
	defaultDisplayName  = "Guest"
)

// DefaultRoute is where the app starts when no valid route was saved.
const DefaultRoute = "Main"

var startRoutes = []string{"Main", "Catalogue", "Projects", "Profile", "Cart", "MyOrders", "CreateProject"}

var pinPattern = regexp.MustCompile(`^[0-9]{4}$`)

// ProfileDraft is the partially filled create-profile form.
type ProfileDraft struct {
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Patronymic string `json:"patronymic"`
	Birthday   string `json:"birthday"`
	Gender     string `json:"gender"`
	Email      string `json:"email"`
}

// SessionManager stores the local session: who is signed in, the locally
// registered users with their password, PIN and display name, and a few UI
// flags. Nothing is encrypted.
type SessionManager struct {
	prefs *storage.Prefs
}

func NewSessionManager(store storage.Store) *SessionManager {
	return &SessionManager{prefs: storage.NewPrefs(store, sessionNamespace)}
}

func passwordKey(email string) string { return "user:" + email + ":password" }
func pinKey(email string) string      { return "user:" + email + ":pin" }
func nameKey(email string) string     { return "user:" + email + ":name" }

func (s *SessionManager) SetLoggedIn(ctx context.Context, loggedIn bool) error {
	return s.prefs.SetBool(ctx, keyLoggedIn, loggedIn)
}

func (s *SessionManager) IsLoggedIn(ctx context.Context) (bool, error) {
	return s.prefs.GetBool(ctx, keyLoggedIn, false)
}

func (s *SessionManager) SetCurrentEmail(ctx context.Context, email string) error {
	return s.prefs.SetString(ctx, keyCurrentEmail, email)
}

// CurrentEmail returns "" when nobody is signed in.
func (s *SessionManager) CurrentEmail(ctx context.Context) (string, error) {
	return s.prefs.GetString(ctx, keyCurrentEmail, "")
}

func (s *SessionManager) UserExists(ctx context.Context, email string) (bool, error) {
	users, err := s.prefs.GetStringSet(ctx, keyRegisteredUsers)
	if err != nil {
		return false, err
	}
	return slices.Contains(users, email), nil
}

// RegisterUser adds email to the registered set and stores its display name.
func (s *SessionManager) RegisterUser(ctx context.Context, email, name string) error {
	users, err := s.prefs.GetStringSet(ctx, keyRegisteredUsers)
	if err != nil {
		return err
	}
	if err := s.prefs.SetStringSet(ctx, keyRegisteredUsers, append(users, email)); err != nil {
		return fmt.Errorf("register user: %w", err)
	}
	return s.prefs.SetString(ctx, nameKey(email), name)
}

func (s *SessionManager) SavePassword(ctx context.Context, email, password string) error {
	return s.prefs.SetString(ctx, passwordKey(email), password)
}

// ValidatePassword reports whether password matches the stored one. A user
// without a stored password never validates.
func (s *SessionManager) ValidatePassword(ctx context.Context, email, password string) (bool, error) {
	saved, err := s.prefs.GetString(ctx, passwordKey(email), "")
	if err != nil {
		return false, err
	}
	return saved != "" && saved == password, nil
}

func (s *SessionManager) SavePin(ctx context.Context, email, pin string) error {
	return s.prefs.SetString(ctx, pinKey(email), pin)
}

func (s *SessionManager) UserPin(ctx context.Context, email string) (string, error) {
	return s.prefs.GetString(ctx, pinKey(email), "")
}

func (s *SessionManager) UserName(ctx context.Context, email string) (string, error) {
	return s.prefs.GetString(ctx, nameKey(email), "")
}

// DisplayName returns the name of the current user, or a placeholder.
func (s *SessionManager) DisplayName(ctx context.Context) (string, error) {
	email, err := s.CurrentEmail(ctx)
	if err != nil || email == "" {
		return defaultDisplayName, err
	}
	name, err := s.UserName(ctx, email)
	if err != nil || name == "" {
		return defaultDisplayName, err
	}
	return name, nil
}

// ValidPin reports whether pin has exactly four digits.
func ValidPin(pin string) bool {
	return pinPattern.MatchString(pin)
}

func (s *SessionManager) SaveLastRoute(ctx context.Context, route string) error {
	return s.prefs.SetString(ctx, keyLastRoute, route)
}

// LastRoute returns the stored route when it is a valid start destination,
// otherwise Main.
func (s *SessionManager) LastRoute(ctx context.Context) (string, error) {
	route, err := s.prefs.GetString(ctx, keyLastRoute, DefaultRoute)
	if err != nil {
		return DefaultRoute, err
	}
	switch {
	case slices.Contains(startRoutes, route):
		return route, nil
	case strings.HasPrefix(route, routeOrderDetails), strings.HasPrefix(route, routeProjectDetails):
		return route, nil
	default:
		return DefaultRoute, nil
	}
}

func (s *SessionManager) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	return s.prefs.SetBool(ctx, keyNotifications, enabled)
}

func (s *SessionManager) NotificationsEnabled(ctx context.Context) (bool, error) {
	return s.prefs.GetBool(ctx, keyNotifications, false)
}

func (s *SessionManager) MarkOneShotInactivitySent(ctx context.Context) error {
	return s.prefs.SetBool(ctx, keyOneShotSent, true)
}

func (s *SessionManager) OneShotInactivitySent(ctx context.Context) (bool, error) {
	return s.prefs.GetBool(ctx, keyOneShotSent, false)
}

func (s *SessionManager) ResetOneShotInactivity(ctx context.Context) error {
	return s.prefs.SetBool(ctx, keyOneShotSent, false)
}

func (s *SessionManager) SaveProfileDraft(ctx context.Context, draft ProfileDraft) error {
	return s.prefs.SetJSON(ctx, keyProfileDraft, draft)
}

// ProfileDraft returns the saved draft, or an empty one.
func (s *SessionManager) ProfileDraft(ctx context.Context) (ProfileDraft, error) {
	var draft ProfileDraft
	if _, err := s.prefs.GetJSON(ctx, keyProfileDraft, &draft); err != nil {
		return ProfileDraft{}, err
	}
	return draft, nil
}

func (s *SessionManager) ClearProfileDraft(ctx context.Context) error {
	return s.prefs.Remove(ctx, keyProfileDraft)
}

// ClearSession signs the user out locally. Registered users and their
// credentials are kept.
func (s *SessionManager) ClearSession(ctx context.Context) error {
	return s.prefs.Remove(ctx, keyLoggedIn, keyCurrentEmail, keyLastRoute, keyOneShotSent, keyProfileDraft)
}
