package viewmodel

import (
	"context"
	"testing"

	"github.com/fjod/matule/internal/network"
	"github.com/fjod/matule/internal/repository/fake"
	"github.com/fjod/matule/internal/session"
	"github.com/fjod/matule/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type authFixture struct {
	vm       *AuthViewModel
	repo     *fake.AuthRepository
	tokens   *mockAuthClearer
	sessions *session.SessionManager
}

func newAuthFixture() authFixture {
	repo := fake.NewAuthRepository()
	tokens := &mockAuthClearer{}
	sessions := session.NewSessionManager(storage.NewMemoryStore())
	return authFixture{
		vm:       NewAuthViewModel(repo, tokens, sessions, quietLogger()),
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
	}
}

func TestIsValidEmail(t *testing.T) {
	tests := map[string]bool{
		"user@mail.ru":      true,
		"abc123@host.com":   true,
		"User@mail.ru":      false,
		"user.name@mail.ru": false,
		"user@mail":         false,
		"@mail.ru":          false,
		"":                  false,
	}
	for email, want := range tests {
		assert.Equal(t, want, IsValidEmail(email), email)
	}
}

func TestIsValidPassword(t *testing.T) {
	tests := map[string]bool{
		"Passw0rd!":  true,
		"Пароль1!a":  true,
		"Pw0!":       false,
		"password1!": false,
		"PASSWORD1!": false,
		"Password!!": false,
		"Password12": false,
		"Pass word1": false,
	}
	for password, want := range tests {
		assert.Equal(t, want, IsValidPassword(password), password)
	}
}

func TestAuth_SignInSuccess(t *testing.T) {
	f := newAuthFixture()
	f.repo.SetLoginSuccess(network.ResponseAuth{Token: "tok", Record: network.User{ID: "u1", Firstname: "Anna"}})
	ctx := context.Background()

	f.vm.SignIn(ctx, "anna@mail.ru", "Passw0rd!")

	assert.Equal(t, StatusSuccess, f.vm.State.Value())
	assert.False(t, f.vm.IsLoading())

	email, _ := f.sessions.CurrentEmail(ctx)
	assert.Equal(t, "anna@mail.ru", email)
	loggedIn, _ := f.sessions.IsLoggedIn(ctx)
	assert.True(t, loggedIn)
	name, _ := f.sessions.UserName(ctx, "anna@mail.ru")
	assert.Equal(t, "Anna", name)
}

func TestAuth_SignInKeepsExistingName(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	require.NoError(t, f.sessions.RegisterUser(ctx, "anna@mail.ru", "Annie"))
	f.repo.SetLoginSuccess(network.ResponseAuth{Record: network.User{Firstname: "Anna"}})

	f.vm.SignIn(ctx, "anna@mail.ru", "Passw0rd!")

	name, _ := f.sessions.UserName(ctx, "anna@mail.ru")
	assert.Equal(t, "Annie", name)
}

func TestAuth_SignInBlankNameDefaults(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	f.repo.SetLoginSuccess(network.ResponseAuth{Record: network.User{Firstname: "  "}})

	f.vm.SignIn(ctx, "new@mail.ru", "Passw0rd!")

	name, _ := f.sessions.UserName(ctx, "new@mail.ru")
	assert.Equal(t, "User", name)
}

func TestAuth_SignInError(t *testing.T) {
	f := newAuthFixture()
	f.repo.SetLoginError("Invalid email or password", 400)
	ctx := context.Background()

	f.vm.SignIn(ctx, "anna@mail.ru", "wrong")

	assert.Equal(t, StatusError("Invalid email or password"), f.vm.State.Value())
	loggedIn, _ := f.sessions.IsLoggedIn(ctx)
	assert.False(t, loggedIn)
	exists := f.vm.CheckUserExists(ctx, "anna@mail.ru")
	assert.False(t, exists)
}

func TestAuth_SignUp(t *testing.T) {
	f := newAuthFixture()
	f.repo.SetRegisterSuccess(network.ResponseRegister{ID: "u1"})
	ctx := context.Background()

	f.vm.SignUp(ctx, "anna@mail.ru", "Anna", "Passw0rd!")

	assert.Equal(t, StatusSuccess, f.vm.State.Value())
	assert.True(t, f.vm.CheckUserExists(ctx, "anna@mail.ru"))
	ok, err := f.sessions.ValidatePassword(ctx, "anna@mail.ru", "Passw0rd!")
	require.NoError(t, err)
	assert.True(t, ok)
	loggedIn, _ := f.sessions.IsLoggedIn(ctx)
	assert.False(t, loggedIn)
}

func TestAuth_SignUpError(t *testing.T) {
	f := newAuthFixture()
	f.repo.SetRegisterError("Registration failed", 400)

	f.vm.SignUp(context.Background(), "anna@mail.ru", "Anna", "Passw0rd!")

	assert.Equal(t, StatusError("Registration failed"), f.vm.State.Value())
	assert.False(t, f.vm.CheckUserExists(context.Background(), "anna@mail.ru"))
}

func TestAuth_SignUpLocal(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	f.vm.SignUpLocal(ctx, "anna@mail.ru", "Anna")
	assert.Equal(t, StatusSuccess, f.vm.State.Value())
	assert.Equal(t, 0, f.repo.RegisterCalls)

	f.vm.SignUpLocal(ctx, "anna@mail.ru", "Anna")
	assert.Equal(t, StatusError(MessageAccountExists), f.vm.State.Value())
}

func TestAuth_Pin(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	require.NoError(t, f.sessions.SetCurrentEmail(ctx, "anna@mail.ru"))

	f.vm.CreatePin(ctx, "12a4")
	assert.Equal(t, StatusError(MessageInvalidPin), f.vm.State.Value())

	f.vm.CreatePin(ctx, "1234")
	assert.Equal(t, StatusSuccess, f.vm.State.Value())
	loggedIn, _ := f.sessions.IsLoggedIn(ctx)
	assert.True(t, loggedIn)

	require.NoError(t, f.sessions.SetLoggedIn(ctx, false))
	assert.False(t, f.vm.VerifyPin(ctx, "4321"))
	assert.Equal(t, StatusError(MessageWrongPin), f.vm.State.Value())

	assert.True(t, f.vm.VerifyPin(ctx, "1234"))
	loggedIn, _ = f.sessions.IsLoggedIn(ctx)
	assert.True(t, loggedIn)
}

func TestAuth_CreatePinWithoutUser(t *testing.T) {
	f := newAuthFixture()

	f.vm.CreatePin(context.Background(), "1234")

	assert.Equal(t, StatusError(MessageNotSignedIn), f.vm.State.Value())
}

func TestAuth_LogoutClearsEverything(t *testing.T) {
	f := newAuthFixture()
	f.repo.SetLogoutError("Logout failed", 500)
	ctx := context.Background()
	require.NoError(t, f.sessions.SetCurrentEmail(ctx, "anna@mail.ru"))
	require.NoError(t, f.sessions.SetLoggedIn(ctx, true))
	f.vm.State.Set(StatusSuccess)

	f.vm.Logout(ctx)

	assert.Equal(t, 1, f.repo.LogoutCalls)
	assert.Equal(t, 1, f.tokens.calls)
	assert.Equal(t, StatusIdle, f.vm.State.Value())
	assert.False(t, f.vm.IsLoading())
	loggedIn, _ := f.sessions.IsLoggedIn(ctx)
	assert.False(t, loggedIn)
	email, _ := f.sessions.CurrentEmail(ctx)
	assert.Empty(t, email)
}
