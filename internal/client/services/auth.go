// Package services contains application services for the deliveryio client.
// This file defines the authentication service: sign-in, sign-out and
// registration against the backend, with the session kept in session.Store.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/deliveryio/internal/client/api"
	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/logging"
)

// DefaultBuilding replaces a building the backend did not report.
// TODO: confirm with product whether a missing building should stay empty.
const DefaultBuilding = "Bloco A"

// AuthAPI is the part of the backend client used for authentication.
type AuthAPI interface {
	ObtainToken(ctx context.Context, username string, password []byte) (*api.TokenResponse, error)
	Register(ctx context.Context, req api.RegisterRequest) error
}

// SessionWriter is the part of session.Store the service drives.
type SessionWriter interface {
	Set(ctx context.Context, token string, user *models.User) error
	Clear(ctx context.Context)
}

// AuthService turns credentials into a session.
//
// Contract:
//   - SignIn: one token request; on success the session is set, on failure
//     the session is untouched, LastError holds a generic message and the
//     error is returned.
//   - SignOut: forgets the session locally; the backend is not called.
//   - Register: creates an account; LastError tells a taken username apart
//     from any other failure.
//   - Loading: true while SignIn or Register waits for the backend. A second
//     call made meanwhile fails with ErrBusy without sending anything.
type AuthService interface {
	SignIn(ctx context.Context, username string, password []byte) error
	SignOut(ctx context.Context) error
	Register(ctx context.Context, reg models.Registration) error
	Loading() bool
	SubscribeLoading(fn func(loading bool)) (unsubscribe func())
	LastError() string
}

type authService struct {
	api      AuthAPI
	sessions SessionWriter
	log      logging.Logger

	mu        sync.Mutex
	loading   bool
	lastError string
	subs      map[int]func(bool)
	nextID    int
}

func NewAuthService(client AuthAPI, sessions SessionWriter, log logging.Logger) AuthService {
	return &authService{
		api:      client,
		sessions: sessions,
		log:      log.With("component", "auth"),
		subs:     map[int]func(bool){},
	}
}

func (a *authService) SignIn(ctx context.Context, username string, password []byte) error {
	if !a.begin() {
		return ErrBusy
	}
	defer a.end()

	tr, err := a.api.ObtainToken(ctx, username, password)
	if err != nil {
		a.log.Error(ctx, "sign in failed", "username", username, "error", err)
		a.setError(MsgSignInFailed)
		return fmt.Errorf("sign in: %w", err)
	}

	user := userFromToken(username, tr)
	if err := a.sessions.Set(ctx, tr.Access, user); err != nil {
		a.setError(MsgSignInFailed)
		return fmt.Errorf("sign in: %w", err)
	}

	a.log.Info(ctx, "signed in", "username", user.Username, "building", user.Building)
	return nil
}

// userFromToken builds the session user from the token response. A missing
// id falls back to the user_id claim of the access token; a missing
// building falls back to DefaultBuilding.
func userFromToken(username string, tr *api.TokenResponse) *models.User {
	u := &models.User{Username: username, Building: DefaultBuilding}

	if tr.ID != nil {
		u.ID = *tr.ID
	} else if info, err := InspectToken(tr.Access); err == nil {
		u.ID = info.UserID
	}
	if tr.Building != nil && strings.TrimSpace(*tr.Building) != "" {
		u.Building = *tr.Building
	}
	return u
}

func (a *authService) SignOut(ctx context.Context) error {
	a.sessions.Clear(ctx)
	a.setError("")
	a.log.Info(ctx, "signed out")
	return nil
}

func (a *authService) Register(ctx context.Context, reg models.Registration) error {
	if strings.TrimSpace(reg.Username) == "" || strings.TrimSpace(reg.Email) == "" ||
		len(reg.Password) == 0 || reg.BuildingID == 0 {
		a.setError(MsgRegisterFields)
		return ErrMissingFields
	}

	if !a.begin() {
		return ErrBusy
	}
	defer a.end()

	err := a.api.Register(ctx, api.RegisterRequest{
		Username:   reg.Username,
		Email:      reg.Email,
		Password:   string(reg.Password),
		BuildingID: reg.BuildingID,
	})
	if err != nil {
		a.log.Error(ctx, "registration failed", "username", reg.Username, "error", err)
		if errors.Is(err, api.ErrUsernameTaken) {
			a.setError(MsgUsernameTaken)
		} else {
			a.setError(MsgRegisterFailed)
		}
		return fmt.Errorf("register: %w", err)
	}

	a.log.Info(ctx, "account created", "username", reg.Username)
	return nil
}

func (a *authService) Loading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loading
}

func (a *authService) LastError() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastError
}

func (a *authService) SubscribeLoading(fn func(bool)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.nextID++
	id := a.nextID
	a.subs[id] = fn

	return func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		delete(a.subs, id)
	}
}

// begin marks the service loading and clears the previous error. It
// reports false when a request is already in flight.
func (a *authService) begin() bool {
	a.mu.Lock()
	if a.loading {
		a.mu.Unlock()
		return false
	}
	a.loading = true
	a.lastError = ""
	subs := a.subscribersLocked()
	a.mu.Unlock()

	for _, fn := range subs {
		fn(true)
	}
	return true
}

func (a *authService) end() {
	a.mu.Lock()
	a.loading = false
	subs := a.subscribersLocked()
	a.mu.Unlock()

	for _, fn := range subs {
		fn(false)
	}
}

func (a *authService) subscribersLocked() []func(bool) {
	out := make([]func(bool), 0, len(a.subs))
	for id := 1; id <= a.nextID; id++ {
		if fn, ok := a.subs[id]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func (a *authService) setError(msg string) {
	a.mu.Lock()
	a.lastError = msg
	a.mu.Unlock()
}
