package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/fjod/matule/internal/network"
	"github.com/sirupsen/logrus"
)

type HTTPAuthRepository struct {
	api    *network.Client
	tokens TokenStore
	log    logrus.FieldLogger
}

func NewHTTPAuthRepository(api *network.Client, tokens TokenStore, log logrus.FieldLogger) *HTTPAuthRepository {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HTTPAuthRepository{api: api, tokens: tokens, log: log}
}

func (r *HTTPAuthRepository) Register(ctx context.Context, email, password string) network.Result[network.ResponseRegister] {
	body, err := r.api.Register(ctx, network.RequestRegister{
		Email:           email,
		Password:        password,
		PasswordConfirm: password,
	})
	if err != nil {
		return network.FailureFrom[network.ResponseRegister](err)
	}

	var resp network.ResponseRegister
	if err := json.Unmarshal(bytes.TrimSpace(body), &resp); err != nil || strings.TrimSpace(resp.ID) == "" {
		r.log.WithField("email", email).Warn("Register returned an unusable body")
		return network.Failure[network.ResponseRegister](MessageRegistrationFailed, 0)
	}
	return network.Success(resp)
}

func (r *HTTPAuthRepository) Login(ctx context.Context, email, password string) network.Result[network.ResponseAuth] {
	body, err := r.api.Auth(ctx, network.RequestAuth{Identity: email, Password: password})
	if err != nil {
		return network.FailureFrom[network.ResponseAuth](err)
	}

	var resp network.ResponseAuth
	if err := json.Unmarshal(bytes.TrimSpace(body), &resp); err != nil ||
		strings.TrimSpace(resp.Token) == "" || strings.TrimSpace(resp.Record.ID) == "" {
		return network.Failure[network.ResponseAuth](MessageInvalidCredentials, 0)
	}

	token := strings.TrimSpace(strings.NewReplacer("\n", "", "\r", "").Replace(resp.Token))
	if err := r.tokens.SaveToken(ctx, token); err != nil {
		return network.FailureFrom[network.ResponseAuth](err)
	}
	if err := r.tokens.SaveUserID(ctx, resp.Record.ID); err != nil {
		return network.FailureFrom[network.ResponseAuth](err)
	}

	r.log.WithField("user_id", resp.Record.ID).Info("User signed in")
	return network.Success(resp)
}

func (r *HTTPAuthRepository) GetUser(ctx context.Context, userID string) network.Result[network.User] {
	user, err := r.api.GetUser(ctx, userID)
	if err != nil {
		return network.FailureFrom[network.User](err)
	}
	return network.Success(*user)
}

func (r *HTTPAuthRepository) UpdateUser(ctx context.Context, userID string, patch network.UserPatch) network.Result[network.User] {
	user, err := r.api.UpdateUser(ctx, userID, patch)
	if err != nil {
		return network.FailureFrom[network.User](err)
	}
	return network.Success(*user)
}

// Logout deletes the auth origin of the current user. Local credentials are
// cleared unless the backend refuses the delete.
func (r *HTTPAuthRepository) Logout(ctx context.Context) network.Result[Unit] {
	origins, err := r.api.GetUsersAuth(ctx)
	if err != nil {
		r.clearAuth(ctx)
		var apiErr *network.APIError
		if errors.As(err, &apiErr) {
			r.log.WithField("status", apiErr.StatusCode).Warn("Listing auth origins failed, signing out locally")
			return network.Success(Unit{})
		}
		return network.FailureFrom[Unit](err)
	}

	userID := r.tokens.UserID()
	idx := slices.IndexFunc(origins.Items, func(o network.UserAuth) bool {
		return userID != "" && o.RecordRef == userID
	})
	if idx < 0 {
		r.clearAuth(ctx)
		return network.Success(Unit{})
	}

	if err := r.api.Logout(ctx, origins.Items[idx].ID); err != nil {
		var apiErr *network.APIError
		if errors.As(err, &apiErr) {
			return network.Failure[Unit](MessageLogoutFailed, apiErr.StatusCode)
		}
		r.clearAuth(ctx)
		return network.FailureFrom[Unit](err)
	}

	r.clearAuth(ctx)
	r.log.WithField("user_id", userID).Info("User signed out")
	return network.Success(Unit{})
}

func (r *HTTPAuthRepository) clearAuth(ctx context.Context) {
	if err := r.tokens.ClearAuth(ctx); err != nil {
		r.log.WithError(err).Error("Failed to clear auth")
	}
}
