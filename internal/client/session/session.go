// Package session persists the client's authentication state: the access
// token, the cached user record, the location to return to after a forced
// login and the cookie jar contents.
//
// Token and user are always written and cleared together. Every read goes to
// the underlying repository, so a token refreshed by one request flow is
// visible to the next one immediately.
package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/eventbooking/internal/client/models"
	"github.com/dmitrijs2005/eventbooking/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/eventbooking/internal/dbx"
)

const (
	KeyToken    = "token"
	KeyUser     = "user"
	KeyRedirect = "redirect_after_login"
	KeyCookies  = "cookies"
)

// atomicFunc runs fn against a repository whose writes land together or not at all.
type atomicFunc func(ctx context.Context, fn func(repo metadata.Repository) error) error

type Store struct {
	mu     sync.Mutex
	repo   metadata.Repository
	atomic atomicFunc
}

// NewSQLiteStore keeps the session in the metadata table of db. Multi-key
// writes run in a transaction.
func NewSQLiteStore(db *sql.DB) *Store {
	return &Store{
		repo: metadata.NewSQLiteRepository(db),
		atomic: func(ctx context.Context, fn func(metadata.Repository) error) error {
			return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
				return fn(metadata.NewSQLiteRepository(tx))
			})
		},
	}
}

// NewMemoryStore keeps the session in process memory only.
func NewMemoryStore() *Store {
	repo := metadata.NewMemoryRepository()
	return &Store{
		repo: repo,
		atomic: func(_ context.Context, fn func(metadata.Repository) error) error {
			return fn(repo)
		},
	}
}

// Token returns the stored access token or "" when there is none.
func (s *Store) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.repo.Get(ctx, KeyToken)
	if err != nil {
		return "", err
	}
	return string(v), nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Set(ctx, KeyToken, []byte(token))
}

// User returns the cached user record. A missing record yields (nil, nil).
// A record that cannot be parsed ends the session: token and user are
// cleared and (nil, nil) is returned.
func (s *Store) User(ctx context.Context) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.repo.Get(ctx, KeyUser)
	if err != nil || v == nil {
		return nil, err
	}

	var u models.User
	if err := json.Unmarshal(v, &u); err != nil {
		if _, cerr := s.clear(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, nil
	}
	return &u, nil
}

// SaveLogin stores a freshly issued token together with its user.
func (s *Store) SaveLogin(ctx context.Context, token string, user *models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.atomic(ctx, func(repo metadata.Repository) error {
		if err := repo.Set(ctx, KeyToken, []byte(token)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, raw)
	})
}

// Clear removes token and user. cleared reports whether anything was
// actually removed, which lets callers act once per session end.
func (s *Store) Clear(ctx context.Context) (cleared bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clear(ctx)
}

func (s *Store) clear(ctx context.Context) (bool, error) {
	n, err := s.repo.DeleteKeys(ctx, KeyToken, KeyUser)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) SetRedirect(ctx context.Context, location string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Set(ctx, KeyRedirect, []byte(location))
}

// PopRedirect returns the remembered location and forgets it.
func (s *Store) PopRedirect(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var location string
	err := s.atomic(ctx, func(repo metadata.Repository) error {
		v, err := repo.Get(ctx, KeyRedirect)
		if err != nil || v == nil {
			return err
		}
		location = string(v)
		return repo.Delete(ctx, KeyRedirect)
	})
	return location, err
}

func (s *Store) LoadCookies(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Get(ctx, KeyCookies)
}

func (s *Store) SaveCookies(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.repo.Set(ctx, KeyCookies, data)
}
