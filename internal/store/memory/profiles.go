// Package memory implementa ProfileRepository en memoria.
// Mantiene los mismos contratos que el adapter pg (unicidad de id y email,
// merge en Update) para que dev y tests ejerzan la misma semántica.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/dropDatabas3/authgate/internal/domain/repository"
	"github.com/dropDatabas3/authgate/internal/domain/types"
)

type Profiles struct {
	mu      sync.RWMutex
	byID    map[string]*repository.Profile
	byEmail map[string]string // email normalizado -> id
}

var _ repository.ProfileRepository = (*Profiles)(nil)

func NewProfiles() *Profiles {
	return &Profiles{
		byID:    map[string]*repository.Profile{},
		byEmail: map[string]string{},
	}
}

func (s *Profiles) GetByID(_ context.Context, id string) (*repository.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *Profiles) FindByEmail(_ context.Context, email string) (*repository.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[types.NormalizeEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *Profiles) Create(_ context.Context, p *repository.Profile) error {
	if p == nil || p.ID == "" || p.Email == "" {
		return fmt.Errorf("memory: create profile: id and email are required")
	}
	email := types.NormalizeEmail(p.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[p.ID]; ok {
		return fmt.Errorf("memory: id %q: %w", p.ID, repository.ErrConflict)
	}
	if _, ok := s.byEmail[email]; ok {
		return fmt.Errorf("memory: email: %w", repository.ErrConflict)
	}
	cp := p.Clone()
	cp.Email = email
	s.byID[cp.ID] = cp
	s.byEmail[email] = cp.ID
	return nil
}

func (s *Profiles) Update(_ context.Context, id string, patch repository.ProfilePatch) (*repository.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	next := patch.Apply(cur)
	s.byID[id] = next
	return next.Clone(), nil
}

func (s *Profiles) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(s.byEmail, cur.Email)
	delete(s.byID, id)
	return nil
}

func (s *Profiles) Ping(context.Context) error { return nil }

// Len retorna la cantidad de perfiles (tests).
func (s *Profiles) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
