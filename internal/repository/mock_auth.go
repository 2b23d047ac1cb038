package repository

import (
	"context"
	"sync"

	"github.com/fjod/matule/internal/network"
	"github.com/google/uuid"
)

const (
	mockCollectionID   = "users_collection"
	mockCollectionName = "users"
	mockCreated        = "2023-10-27 10:00:00.000Z"
)

type mockUser struct {
	id           string
	email        string
	password     string
	firstname    string
	lastname     string
	secondname   string
	datebirthday string
	gender       string
}

// MockAuthRepository keeps users in memory. It never talks to the backend
// and does not touch the token store.
type MockAuthRepository struct {
	mu      sync.Mutex
	users   map[string]*mockUser
	current *mockUser
}

func NewMockAuthRepository() *MockAuthRepository {
	return &MockAuthRepository{users: make(map[string]*mockUser)}
}

var (
	mockOnce     sync.Once
	mockInstance *MockAuthRepository
)

// SharedMockAuthRepository returns the process-wide mock so registered users
// survive switching auth modes.
func SharedMockAuthRepository() *MockAuthRepository {
	mockOnce.Do(func() { mockInstance = NewMockAuthRepository() })
	return mockInstance
}

func (m *MockAuthRepository) Register(_ context.Context, email, password string) network.Result[network.ResponseRegister] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[email]; exists {
		return network.Failure[network.ResponseRegister](MessageUserExists, 0)
	}
	u := &mockUser{id: uuid.NewString(), email: email, password: password}
	m.users[email] = u
	return network.Success(network.ResponseRegister(u.record()))
}

func (m *MockAuthRepository) Login(_ context.Context, email, password string) network.Result[network.ResponseAuth] {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[email]
	if !ok || u.password != password {
		return network.Failure[network.ResponseAuth](MessageInvalidCredentials, 0)
	}
	m.current = u
	return network.Success(network.ResponseAuth{Record: u.record(), Token: "mock_token_" + u.id})
}

func (m *MockAuthRepository) GetUser(_ context.Context, userID string) network.Result[network.User] {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.lookup(userID)
	if u == nil {
		return network.Failure[network.User](MessageUserNotFound, 0)
	}
	return network.Success(u.record())
}

// UpdateUser changes only the fields set in patch. The email is the login
// key and cannot be changed here.
func (m *MockAuthRepository) UpdateUser(_ context.Context, userID string, patch network.UserPatch) network.Result[network.User] {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := m.lookup(userID)
	if u == nil {
		return network.Failure[network.User](MessageUserNotFound, 0)
	}
	apply(&u.firstname, patch.Firstname)
	apply(&u.lastname, patch.Lastname)
	apply(&u.secondname, patch.Secondname)
	apply(&u.datebirthday, patch.DateBirthday)
	apply(&u.gender, patch.Gender)
	return network.Success(u.record())
}

func (m *MockAuthRepository) Logout(_ context.Context) network.Result[Unit] {
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
	return network.Success(Unit{})
}

// lookup prefers the signed-in user, then searches by id.
func (m *MockAuthRepository) lookup(userID string) *mockUser {
	if m.current != nil {
		return m.current
	}
	for _, u := range m.users {
		if u.id == userID {
			return u
		}
	}
	return nil
}

func apply(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func (u *mockUser) record() network.User {
	return network.User{
		ID:              u.id,
		CollectionID:    mockCollectionID,
		CollectionName:  mockCollectionName,
		Created:         mockCreated,
		Updated:         mockCreated,
		EmailVisibility: true,
		Firstname:       u.firstname,
		Lastname:        u.lastname,
		Secondname:      u.secondname,
		Verified:        true,
		DateBirthday:    u.datebirthday,
		Gender:          u.gender,
	}
}
