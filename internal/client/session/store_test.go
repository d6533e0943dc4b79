package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/client/storage"
	"github.com/dmitrijs2005/deliveryio/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo records calls and lets tests inject failures.
type fakeRepo struct {
	stored models.Session

	loadErr   error
	saveErr   error
	deleteErr error

	calls []string
	// onSave observes what the store already exposes when Save is issued.
	onSave func()
}

func (f *fakeRepo) Load(context.Context) (models.Session, error) {
	f.calls = append(f.calls, "load")
	return f.stored, f.loadErr
}

func (f *fakeRepo) Save(_ context.Context, s models.Session) error {
	f.calls = append(f.calls, "save")
	if f.onSave != nil {
		f.onSave()
	}
	if f.saveErr != nil {
		return f.saveErr
	}
	f.stored = s
	return nil
}

func (f *fakeRepo) Delete(context.Context) error {
	f.calls = append(f.calls, "delete")
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.stored = models.Session{}
	return nil
}

func alice() *models.User {
	return &models.User{Username: "alice", Building: "Bloco A"}
}

func TestStore_StartsEmptyAndUninitialized(t *testing.T) {
	s := NewStore(&fakeRepo{}, logging.Nop())

	st := s.Snapshot()
	assert.False(t, st.Initialized)
	assert.Equal(t, models.Session{}, st.Session)
	assert.Empty(t, s.Token())
}

func TestStore_Restore(t *testing.T) {
	t.Run("both keys present", func(t *testing.T) {
		repo := &fakeRepo{stored: models.Session{Token: "tok", User: alice()}}
		s := NewStore(repo, logging.Nop())

		s.Restore(context.Background())

		st := s.Snapshot()
		assert.True(t, st.Initialized)
		assert.Equal(t, "tok", st.Token())
		assert.Equal(t, alice(), st.Session.User)
	})

	t.Run("nothing stored", func(t *testing.T) {
		s := NewStore(&fakeRepo{}, logging.Nop())
		s.Restore(context.Background())

		assert.True(t, s.Initialized())
		assert.False(t, s.Snapshot().Session.Authenticated())
	})

	t.Run("read failure still initializes", func(t *testing.T) {
		repo := &fakeRepo{stored: models.Session{Token: "tok", User: alice()}, loadErr: errors.New("io")}
		s := NewStore(repo, logging.Nop())

		var seen []State
		s.Subscribe(func(st State) { seen = append(seen, st) })
		s.Restore(context.Background())

		assert.True(t, s.Initialized())
		assert.Empty(t, s.Token())
		require.Len(t, seen, 1)
		assert.True(t, seen[0].Initialized)
	})
}

func TestStore_Set_NotifiesBeforePersisting(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo, logging.Nop())

	var order []string
	s.Subscribe(func(st State) { order = append(order, "notify:"+st.Token()) })
	repo.onSave = func() {
		order = append(order, "save")
		assert.Equal(t, "tok123", s.Token(), "memory must be updated before the write")
	}

	require.NoError(t, s.Set(context.Background(), "tok123", alice()))

	assert.Equal(t, []string{"notify:tok123", "save"}, order)
	assert.Equal(t, models.Session{Token: "tok123", User: alice()}, repo.stored)
}

func TestStore_Set_PersistFailureKeepsMemory(t *testing.T) {
	repo := &fakeRepo{saveErr: errors.New("disk full")}
	s := NewStore(repo, logging.Nop())

	require.NoError(t, s.Set(context.Background(), "tok", alice()))

	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, alice(), s.Snapshot().Session.User)
}

func TestStore_Set_RejectsHalfSession(t *testing.T) {
	s := NewStore(&fakeRepo{}, logging.Nop())

	require.ErrorIs(t, s.Set(context.Background(), "", alice()), ErrIncompleteSession)
	require.ErrorIs(t, s.Set(context.Background(), "tok", nil), ErrIncompleteSession)
	assert.Equal(t, models.Session{}, s.Snapshot().Session)
}

func TestStore_Clear(t *testing.T) {
	repo := &fakeRepo{deleteErr: errors.New("locked")}
	s := NewStore(repo, logging.Nop())
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "tok", alice()))

	var last State
	s.Subscribe(func(st State) { last = st })
	s.Clear(ctx)

	assert.Equal(t, models.Session{}, s.Snapshot().Session)
	assert.Equal(t, models.Session{}, last.Session)
	assert.Equal(t, []string{"save", "delete"}, repo.calls)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := NewStore(&fakeRepo{}, logging.Nop())
	u := alice()
	require.NoError(t, s.Set(context.Background(), "tok", u))

	u.Username = "mallory"
	st := s.Snapshot()
	st.Session.User.Building = "elsewhere"

	assert.Equal(t, alice(), s.Snapshot().Session.User)
}

func TestStore_Unsubscribe(t *testing.T) {
	s := NewStore(&fakeRepo{}, logging.Nop())

	calls := 0
	unsubscribe := s.Subscribe(func(State) { calls++ })
	s.Clear(context.Background())
	unsubscribe()
	s.Clear(context.Background())

	assert.Equal(t, 1, calls)
}

func TestStore_TokenIffUser_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	s := NewStore(&fakeRepo{}, logging.Nop())
	ctx := context.Background()

	for i := 0; i < 500; i++ {
		switch rng.IntN(4) {
		case 0:
			s.Clear(ctx)
		case 1:
			_ = s.Set(ctx, "", alice())
		case 2:
			_ = s.Set(ctx, "tok", nil)
		default:
			require.NoError(t, s.Set(ctx, "tok", alice()))
		}

		sess := s.Snapshot().Session
		require.Equal(t, sess.Token != "", sess.User != nil, "step %d", i)
	}
}

func TestStore_WithSQLiteRepository(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "deliveryio.db")

	db, err := storage.Open(ctx, path)
	require.NoError(t, err)
	first := NewStore(storage.NewSessionRepository(db), logging.Nop())
	first.Restore(ctx)
	require.NoError(t, first.Set(ctx, "tok123", alice()))
	require.NoError(t, db.Close())

	db, err = storage.Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	second := NewStore(storage.NewSessionRepository(db), logging.Nop())
	second.Restore(ctx)
	assert.Equal(t, models.Session{Token: "tok123", User: alice()}, second.Snapshot().Session)

	second.Clear(ctx)
	third := NewStore(storage.NewSessionRepository(db), logging.Nop())
	third.Restore(ctx)
	assert.Equal(t, models.Session{}, third.Snapshot().Session)
}
