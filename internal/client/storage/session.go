package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/deliveryio/internal/client/models"
	"github.com/dmitrijs2005/deliveryio/internal/dbx"
)

const (
	TokenKey = "@auth_token"
	UserKey  = "@auth_user"
)

var ErrCorruptUser = errors.New("stored user record is corrupt")

// SessionRepository persists a models.Session as the TokenKey/UserKey pair.
type SessionRepository struct {
	db *sql.DB
}

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Load reads both keys on one scoped connection, released before Load
// returns. Unless both keys are present and the user decodes, the result is
// the empty session.
func (r *SessionRepository) Load(ctx context.Context) (models.Session, error) {
	var (
		token []byte
		user  []byte
	)

	err := dbx.WithConn(ctx, r.db, func(ctx context.Context, conn *sql.Conn) error {
		return dbx.WithTx(ctx, conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
			repo := NewSQLiteRepository(tx)

			var err error
			if token, err = repo.Get(ctx, TokenKey); err != nil {
				return err
			}
			user, err = repo.Get(ctx, UserKey)
			return err
		})
	})
	if err != nil {
		return models.Session{}, fmt.Errorf("load session: %w", err)
	}

	if len(token) == 0 || len(user) == 0 {
		return models.Session{}, nil
	}

	var u models.User
	if err := json.Unmarshal(user, &u); err != nil {
		return models.Session{}, fmt.Errorf("load session: %w: %v", ErrCorruptUser, err)
	}
	return models.Session{Token: string(token), User: &u}, nil
}

// Save writes both keys in one transaction.
func (r *SessionRepository) Save(ctx context.Context, s models.Session) error {
	if !s.Authenticated() {
		return fmt.Errorf("save session: token and user are both required")
	}

	user, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	err = dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Set(ctx, TokenKey, []byte(s.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, UserKey, user)
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes both keys in one transaction. Deleting an absent session
// is not an error.
func (r *SessionRepository) Delete(ctx context.Context) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := NewSQLiteRepository(tx)
		if err := repo.Delete(ctx, TokenKey); err != nil {
			return err
		}
		return repo.Delete(ctx, UserKey)
	})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
