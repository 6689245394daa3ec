package repotest

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/vacation-rental/internal/model"
	"github.com/iliyamo/vacation-rental/internal/repository"
	"github.com/iliyamo/vacation-rental/internal/utils"
)

// Users is an in-memory repository.UserRepo.
type Users struct {
	mu   sync.Mutex
	rows map[string]model.User
}

func NewUsers() *Users { return &Users{rows: map[string]model.User{}} }

func (s *Users) Create(_ context.Context, email, password, name, role string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			return "", repository.ErrEmailExists
		}
	}
	now := time.Now().UTC()
	u := model.User{ID: uuid.NewString(), Email: email, PasswordHash: hash, Name: strings.TrimSpace(name),
		Role: role, IsActive: true, CreatedAt: now, UpdatedAt: now}
	s.rows[u.ID] = u
	return u.ID, nil
}

func (s *Users) GetByEmail(_ context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.rows {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (s *Users) GetByID(_ context.Context, id string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.rows[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *Users) ListIDsByRole(_ context.Context, role string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, u := range s.rows {
		if u.Role == role {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Tokens is an in-memory repository.TokenRepo.
type Tokens struct {
	mu   sync.Mutex
	rows map[string]refreshRow
}

type refreshRow struct {
	userID  string
	exp     time.Time
	revoked bool
}

func NewTokens() *Tokens { return &Tokens{rows: map[string]refreshRow{}} }

func (s *Tokens) StoreRefresh(_ context.Context, userID, tokenHash string, exp time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[tokenHash] = refreshRow{userID: userID, exp: exp}
	return nil
}

func (s *Tokens) ValidateRefresh(_ context.Context, tokenHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[tokenHash]
	if !ok || row.revoked || time.Now().After(row.exp) {
		return "", errors.New("invalid refresh token")
	}
	return row.userID, nil
}

func (s *Tokens) RevokeByHash(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[tokenHash]; ok {
		row.revoked = true
		s.rows[tokenHash] = row
	}
	return nil
}

func (s *Tokens) RevokeAllForUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, row := range s.rows {
		if row.userID == userID {
			row.revoked = true
			s.rows[h] = row
		}
	}
	return nil
}
