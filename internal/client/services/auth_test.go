package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dmitrijs2005/deliveryio/internal/client/api"
	"github.com/dmitrijs2005/deliveryio/internal/client/api/apitest"
	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/client/session"
	"github.com/dmitrijs2005/deliveryio/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- helpers ----

// memRepo is an in-memory session.Persistence.
type memRepo struct {
	stored models.Session
}

func (m *memRepo) Load(context.Context) (models.Session, error) { return m.stored, nil }
func (m *memRepo) Save(_ context.Context, s models.Session) error {
	m.stored = s
	return nil
}
func (m *memRepo) Delete(context.Context) error {
	m.stored = models.Session{}
	return nil
}

// fakeAuthAPI implements AuthAPI for unit tests.
type fakeAuthAPI struct {
	tokenRet *api.TokenResponse
	tokenErr error
	// gate, when set, blocks ObtainToken until it is closed.
	gate    chan struct{}
	entered chan struct{}

	registerErr error
	lastReg     api.RegisterRequest
	calls       int
}

func (f *fakeAuthAPI) ObtainToken(ctx context.Context, username string, password []byte) (*api.TokenResponse, error) {
	f.calls++
	if f.entered != nil {
		close(f.entered)
	}
	if f.gate != nil {
		<-f.gate
	}
	return f.tokenRet, f.tokenErr
}

func (f *fakeAuthAPI) Register(ctx context.Context, req api.RegisterRequest) error {
	f.calls++
	f.lastReg = req
	return f.registerErr
}

func newAuth(t *testing.T, fake AuthAPI) (AuthService, *session.Store, *memRepo) {
	t.Helper()
	repo := &memRepo{}
	store := session.NewStore(repo, logging.Nop())
	store.Restore(context.Background())
	return NewAuthService(fake, store, logging.Nop()), store, repo
}

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

// ---- TESTS ----

func TestSignIn_Success_AppliesPlaceholderBuilding(t *testing.T) {
	svc, store, repo := newAuth(t, &fakeAuthAPI{tokenRet: &api.TokenResponse{Access: "tok123"}})

	require.NoError(t, svc.SignIn(context.Background(), "alice", []byte("correct-password")))

	want := models.Session{Token: "tok123", User: &models.User{Username: "alice", Building: "Bloco A"}}
	assert.Equal(t, want, store.Snapshot().Session)
	assert.Equal(t, want, repo.stored)
	assert.Empty(t, svc.LastError())
	assert.False(t, svc.Loading())
}

func TestSignIn_Success_UsesBackendFields(t *testing.T) {
	svc, store, _ := newAuth(t, &fakeAuthAPI{tokenRet: &api.TokenResponse{
		Access: "tok", ID: intPtr(9), Building: strPtr("Bloco C"),
	}})

	require.NoError(t, svc.SignIn(context.Background(), "bob", []byte("pw")))
	assert.Equal(t, &models.User{ID: 9, Username: "bob", Building: "Bloco C"}, store.Snapshot().Session.User)
}

func TestSignIn_Failure_LeavesSessionEmpty(t *testing.T) {
	fake := &fakeAuthAPI{tokenErr: errors.New("network down")}
	svc, store, repo := newAuth(t, fake)

	err := svc.SignIn(context.Background(), "alice", []byte("wrong-password"))
	require.Error(t, err)

	assert.Equal(t, models.Session{}, store.Snapshot().Session)
	assert.Equal(t, models.Session{}, repo.stored)
	assert.Equal(t, MsgSignInFailed, svc.LastError())
	assert.False(t, svc.Loading())
}

func TestSignIn_ClearsPreviousError(t *testing.T) {
	fake := &fakeAuthAPI{tokenErr: errors.New("boom")}
	svc, _, _ := newAuth(t, fake)
	ctx := context.Background()

	require.Error(t, svc.SignIn(ctx, "alice", []byte("x")))
	require.NotEmpty(t, svc.LastError())

	fake.tokenErr = nil
	fake.tokenRet = &api.TokenResponse{Access: "tok"}
	require.NoError(t, svc.SignIn(ctx, "alice", []byte("y")))
	assert.Empty(t, svc.LastError())
}

func TestSignIn_LoadingNotifications(t *testing.T) {
	svc, _, _ := newAuth(t, &fakeAuthAPI{tokenRet: &api.TokenResponse{Access: "tok"}})

	var seen []bool
	unsubscribe := svc.SubscribeLoading(func(loading bool) { seen = append(seen, loading) })
	require.NoError(t, svc.SignIn(context.Background(), "alice", []byte("pw")))
	unsubscribe()
	require.NoError(t, svc.SignIn(context.Background(), "alice", []byte("pw")))

	assert.Equal(t, []bool{true, false}, seen)
}

func TestSignIn_ConcurrentCallIsRejected(t *testing.T) {
	fake := &fakeAuthAPI{
		tokenRet: &api.TokenResponse{Access: "first"},
		gate:     make(chan struct{}),
		entered:  make(chan struct{}),
	}
	svc, store, _ := newAuth(t, fake)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- svc.SignIn(ctx, "alice", []byte("pw")) }()

	select {
	case <-fake.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("first sign-in never reached the backend")
	}
	require.True(t, svc.Loading())

	err := svc.SignIn(ctx, "mallory", []byte("pw"))
	require.ErrorIs(t, err, ErrBusy)
	require.ErrorIs(t, svc.Register(ctx, models.Registration{Username: "x", Email: "x@y", Password: []byte("p"), BuildingID: 1}), ErrBusy)

	close(fake.gate)
	require.NoError(t, <-done)

	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, "first", store.Token())
	assert.Equal(t, "alice", store.Snapshot().Session.User.Username)
}

func TestSignOut_ClearsSessionAndStorage(t *testing.T) {
	svc, store, repo := newAuth(t, &fakeAuthAPI{tokenRet: &api.TokenResponse{Access: "tok"}})
	ctx := context.Background()
	require.NoError(t, svc.SignIn(ctx, "alice", []byte("pw")))

	require.NoError(t, svc.SignOut(ctx))

	assert.Equal(t, models.Session{}, store.Snapshot().Session)
	assert.Equal(t, models.Session{}, repo.stored)

	require.NoError(t, svc.SignOut(ctx), "signing out twice is harmless")
}

func TestRegister_Validation(t *testing.T) {
	fake := &fakeAuthAPI{}
	svc, _, _ := newAuth(t, fake)

	err := svc.Register(context.Background(), models.Registration{Username: "bob", Email: "bob@example.com", Password: []byte("pw")})
	require.ErrorIs(t, err, ErrMissingFields)
	assert.Equal(t, MsgRegisterFields, svc.LastError())
	assert.Zero(t, fake.calls, "no request for an incomplete form")
}

func TestRegister_ErrorMessages(t *testing.T) {
	reg := models.Registration{Username: "bob", Email: "bob@example.com", Password: []byte("pw"), BuildingID: 2}

	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "username taken", err: api.ErrUsernameTaken, wantMsg: MsgUsernameTaken},
		{name: "other validation", err: api.ErrBadRequest, wantMsg: MsgRegisterFailed},
		{name: "network", err: api.ErrUnavailable, wantMsg: MsgRegisterFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newAuth(t, &fakeAuthAPI{registerErr: tt.err})
			err := svc.Register(context.Background(), reg)
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.wantMsg, svc.LastError())
		})
	}
}

func TestRegister_Success(t *testing.T) {
	fake := &fakeAuthAPI{}
	svc, store, _ := newAuth(t, fake)

	err := svc.Register(context.Background(), models.Registration{Username: "bob", Email: "bob@example.com", Password: []byte("pw"), BuildingID: 2})
	require.NoError(t, err)

	assert.Equal(t, api.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "pw", BuildingID: 2}, fake.lastReg)
	assert.False(t, store.Snapshot().Session.Authenticated(), "registration does not sign in")
	assert.Empty(t, svc.LastError())
}

// ---- against the fake backend ----

func newBackendAuth(t *testing.T) (AuthService, *session.Store, *memRepo, *apitest.Server) {
	t.Helper()
	srv := apitest.New(t)
	_, store, repo := newAuth(t, nil)
	client := api.New(srv.URL, srv.Client(), store.Token, logging.Nop())
	return NewAuthService(client, store, logging.Nop()), store, repo, srv
}

func TestSignIn_Backend401(t *testing.T) {
	svc, store, repo, srv := newBackendAuth(t)
	srv.Accounts["alice"] = apitest.Account{Password: "correct-password", Token: "tok123"}

	err := svc.SignIn(context.Background(), "alice", []byte("wrong-password"))
	require.ErrorIs(t, err, api.ErrUnauthorized)

	assert.Equal(t, models.Session{}, store.Snapshot().Session)
	assert.Equal(t, models.Session{}, repo.stored)
	assert.Equal(t, MsgSignInFailed, svc.LastError())
}

func TestSignIn_Backend500(t *testing.T) {
	svc, _, _, srv := newBackendAuth(t)
	srv.Fail["/api/token/"] = http.StatusInternalServerError

	err := svc.SignIn(context.Background(), "alice", []byte("correct-password"))
	require.Error(t, err)
	assert.Equal(t, MsgSignInFailed, svc.LastError(), "one message whatever the status")
}

func TestSignIn_BackendSuccess(t *testing.T) {
	svc, store, repo, srv := newBackendAuth(t)
	srv.Accounts["alice"] = apitest.Account{Password: "correct-password", Token: "tok123"}

	require.NoError(t, svc.SignIn(context.Background(), "alice", []byte("correct-password")))

	want := models.Session{Token: "tok123", User: &models.User{Username: "alice", Building: "Bloco A"}}
	assert.Equal(t, want, store.Snapshot().Session)
	assert.Equal(t, want, repo.stored)
}

func TestRegister_BackendUsernameTaken(t *testing.T) {
	svc, _, _, srv := newBackendAuth(t)
	srv.Accounts["alice"] = apitest.Account{Password: "x", Token: "t"}

	err := svc.Register(context.Background(), models.Registration{Username: "alice", Email: "a@example.com", Password: []byte("pw"), BuildingID: 1})
	require.ErrorIs(t, err, api.ErrUsernameTaken)
	assert.Equal(t, "Usuário já existe", svc.LastError())

	err = svc.Register(context.Background(), models.Registration{Username: "carol", Email: "nope", Password: []byte("pw"), BuildingID: 1})
	require.Error(t, err)
	assert.Equal(t, "Erro ao criar conta", svc.LastError())
}
