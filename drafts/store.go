// Package drafts keeps named cart snapshots per POS terminal so an operator can park a cart
// and resume it later. Drafts are convenience state, never authoritative: prices and stock
// are checked again when a draft is turned into an order.
package drafts

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/resto-order-core/models"
)

var (
	ErrNotFound  = errors.New("draft not found")
	ErrEmptyName = errors.New("draft name is required")
)

type Draft struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Lines     []models.CartLine `json:"lines"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type key struct {
	tenantID uint
	terminal string
}

// Store is an in-memory draft store. The zero value is not usable; call NewStore.
type Store struct {
	mu     sync.RWMutex
	drafts map[key]map[string]Draft
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{drafts: make(map[key]map[string]Draft), now: time.Now}
}

// Save creates a draft, or replaces the one with the given id. Lines are copied.
func (s *Store) Save(tenantID uint, terminal, id, name string, lines []models.CartLine) (Draft, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Draft{}, ErrEmptyName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{tenantID: tenantID, terminal: terminal}
	bucket := s.drafts[k]
	if bucket == nil {
		bucket = make(map[string]Draft)
		s.drafts[k] = bucket
	}

	now := s.now()
	d := Draft{ID: id, Name: name, Lines: copyLines(lines), CreatedAt: now, UpdatedAt: now}
	if id == "" {
		d.ID = uuid.NewString()
	} else if prev, ok := bucket[id]; ok {
		d.CreatedAt = prev.CreatedAt
	} else {
		return Draft{}, ErrNotFound
	}
	bucket[d.ID] = d
	return d, nil
}

// List returns the terminal's drafts, most recently updated first.
func (s *Store) List(tenantID uint, terminal string) []Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket := s.drafts[key{tenantID: tenantID, terminal: terminal}]
	out := make([]Draft, 0, len(bucket))
	for _, d := range bucket {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

func (s *Store) Get(tenantID uint, terminal, id string) (Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[key{tenantID: tenantID, terminal: terminal}][id]
	if !ok {
		return Draft{}, ErrNotFound
	}
	d.Lines = copyLines(d.Lines)
	return d, nil
}

func (s *Store) Delete(tenantID uint, terminal, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{tenantID: tenantID, terminal: terminal}
	bucket := s.drafts[k]
	if _, ok := bucket[id]; !ok {
		return ErrNotFound
	}
	delete(bucket, id)
	if len(bucket) == 0 {
		delete(s.drafts, k)
	}
	return nil
}

func copyLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, len(lines))
	for i, l := range lines {
		l.AddonIDs = append([]uint(nil), l.AddonIDs...)
		l.Addons = append([]models.AddonSnapshot(nil), l.Addons...)
		out[i] = l
	}
	return out
}
