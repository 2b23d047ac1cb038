package viewmodel

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/fjod/matule/internal/repository"
	"github.com/fjod/matule/internal/session"
	"github.com/sirupsen/logrus"
)

const (
	MessageAccountExists = "Account already exists"
	MessageInvalidPin    = "PIN must be 4 digits"
	MessageWrongPin      = "Wrong PIN"
	MessageNotSignedIn   = "Not signed in"

	defaultUserName = "User"
)

var emailPattern = regexp.MustCompile(`^[a-z0-9]+@[a-z0-9]+\.[a-z]+$`)

// AuthClearer drops the stored token and user id.
type AuthClearer interface {
	ClearAuth(ctx context.Context) error
}

// AuthViewModel drives sign-in, sign-up, PIN and logout. The remote result
// decides success; the session is only touched after it.
type AuthViewModel struct {
	repo     repository.AuthRepository
	tokens   AuthClearer
	sessions *session.SessionManager
	log      logrus.FieldLogger

	State   *State[Status]
	Loading *State[bool]
}

func NewAuthViewModel(repo repository.AuthRepository, tokens AuthClearer, sessions *session.SessionManager, log logrus.FieldLogger) *AuthViewModel {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AuthViewModel{
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
		log:      log.WithField("component", "auth"),
		State:    NewState(StatusIdle),
		Loading:  NewState(false),
	}
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword requires at least 8 characters with upper and lower case
// letters, a digit and a character that is neither alphanumeric nor space.
func IsValidPassword(password string) bool {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case !unicode.IsLetter(r) && !unicode.IsSpace(r):
			special = true
		}
	}
	return len([]rune(password)) >= 8 && upper && lower && digit && special
}

func (vm *AuthViewModel) CheckUserExists(ctx context.Context, email string) bool {
	exists, err := vm.sessions.UserExists(ctx, email)
	if err != nil {
		vm.log.WithError(err).Warn("Failed to check user")
		return false
	}
	return exists
}

func (vm *AuthViewModel) SignIn(ctx context.Context, email, password string) {
	vm.begin()
	defer vm.Loading.Set(false)

	result := vm.repo.Login(ctx, email, password)
	if msg, failed := result.ErrorMessage(); failed {
		vm.State.Set(StatusError(msg))
		return
	}
	auth, _ := result.Data()

	err := vm.sessions.SetCurrentEmail(ctx, email)
	if err == nil {
		err = vm.sessions.SetLoggedIn(ctx, true)
	}
	if err == nil && !vm.CheckUserExists(ctx, email) {
		name := strings.TrimSpace(auth.Record.Firstname)
		if name == "" {
			name = defaultUserName
		}
		err = vm.sessions.RegisterUser(ctx, email, name)
	}
	if err != nil {
		vm.fail(err)
		return
	}
	vm.log.WithField("email", email).Info("Signed in")
	vm.State.Set(StatusSuccess)
}

func (vm *AuthViewModel) SignUp(ctx context.Context, email, name, password string) {
	vm.begin()
	defer vm.Loading.Set(false)

	result := vm.repo.Register(ctx, email, password)
	if msg, failed := result.ErrorMessage(); failed {
		vm.State.Set(StatusError(msg))
		return
	}

	err := vm.sessions.RegisterUser(ctx, email, name)
	if err == nil {
		err = vm.sessions.SetCurrentEmail(ctx, email)
	}
	if err == nil {
		err = vm.sessions.SavePassword(ctx, email, password)
	}
	if err != nil {
		vm.fail(err)
		return
	}
	vm.log.WithField("email", email).Info("Signed up")
	vm.State.Set(StatusSuccess)
}

// SignUpLocal registers the user in the local session only.
func (vm *AuthViewModel) SignUpLocal(ctx context.Context, email, name string) {
	vm.begin()
	defer vm.Loading.Set(false)

	if vm.CheckUserExists(ctx, email) {
		vm.State.Set(StatusError(MessageAccountExists))
		return
	}
	err := vm.sessions.RegisterUser(ctx, email, name)
	if err == nil {
		err = vm.sessions.SetCurrentEmail(ctx, email)
	}
	if err != nil {
		vm.fail(err)
		return
	}
	vm.State.Set(StatusSuccess)
}

// CreatePin stores the PIN of the current user and marks the session as
// logged in.
func (vm *AuthViewModel) CreatePin(ctx context.Context, pin string) {
	if !session.ValidPin(pin) {
		vm.State.Set(StatusError(MessageInvalidPin))
		return
	}
	email, err := vm.sessions.CurrentEmail(ctx)
	if err != nil {
		vm.fail(err)
		return
	}
	if email == "" {
		vm.State.Set(StatusError(MessageNotSignedIn))
		return
	}
	if err := vm.sessions.SavePin(ctx, email, pin); err != nil {
		vm.fail(err)
		return
	}
	if err := vm.sessions.SetLoggedIn(ctx, true); err != nil {
		vm.fail(err)
		return
	}
	vm.State.Set(StatusSuccess)
}

// VerifyPin reports whether pin matches the current user's PIN and logs the
// session in when it does.
func (vm *AuthViewModel) VerifyPin(ctx context.Context, pin string) bool {
	if !session.ValidPin(pin) {
		vm.State.Set(StatusError(MessageInvalidPin))
		return false
	}
	email, err := vm.sessions.CurrentEmail(ctx)
	if err != nil {
		vm.fail(err)
		return false
	}
	stored, err := vm.sessions.UserPin(ctx, email)
	if err != nil {
		vm.fail(err)
		return false
	}
	if email == "" || stored == "" || stored != pin {
		vm.State.Set(StatusError(MessageWrongPin))
		return false
	}
	if err := vm.sessions.SetLoggedIn(ctx, true); err != nil {
		vm.fail(err)
		return false
	}
	vm.State.Set(StatusSuccess)
	return true
}

// Logout ends the session locally even when the backend logout fails.
func (vm *AuthViewModel) Logout(ctx context.Context) {
	vm.Loading.Set(true)
	defer vm.Loading.Set(false)

	if msg, failed := vm.repo.Logout(ctx).ErrorMessage(); failed {
		vm.log.Warnf("Remote logout failed: %s", msg)
	}
	if err := vm.sessions.ClearSession(ctx); err != nil {
		vm.log.WithError(err).Error("Failed to clear session")
	}
	if vm.tokens != nil {
		if err := vm.tokens.ClearAuth(ctx); err != nil {
			vm.log.WithError(err).Error("Failed to clear auth")
		}
	}
	vm.State.Set(StatusIdle)
}

func (vm *AuthViewModel) IsLoading() bool {
	return vm.Loading.Value()
}

func (vm *AuthViewModel) ResetState() {
	vm.State.Set(StatusIdle)
}

func (vm *AuthViewModel) begin() {
	vm.State.Set(StatusLoading)
	vm.Loading.Set(true)
}

func (vm *AuthViewModel) fail(err error) {
	vm.log.WithError(err).Error("Session update failed")
	vm.State.Set(StatusError(err.Error()))
}
