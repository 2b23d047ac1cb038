package repository

import (
	"fmt"
	"strings"

	"github.com/fjod/matule/internal/network"
	"github.com/sirupsen/logrus"
)

// AuthMode selects which AuthRepository the app runs with.
type AuthMode string

const (
	AuthModeMock    AuthMode = "mock"
	AuthModeNetwork AuthMode = "network"
)

func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(strings.ToLower(strings.TrimSpace(s))) {
	case AuthModeMock:
		return AuthModeMock, nil
	case AuthModeNetwork:
		return AuthModeNetwork, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q", s)
	}
}

func (m AuthMode) IsMock() bool {
	return m == AuthModeMock
}

// Label is the banner text shown for the mode.
func (m AuthMode) Label() string {
	if m.IsMock() {
		return "MockAuth mode"
	}
	return "Network auth mode"
}

// NewAuthRepository returns the shared mock in mock mode and an HTTP
// repository otherwise.
func NewAuthRepository(mode AuthMode, api *network.Client, tokens TokenStore, log logrus.FieldLogger) AuthRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log.WithField("mode", string(mode)).Infof("Auth repository mode: %s", mode.Label())
	if mode.IsMock() {
		return SharedMockAuthRepository()
	}
	return NewHTTPAuthRepository(api, tokens, log)
}
