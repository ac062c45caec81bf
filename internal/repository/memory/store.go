// Package memory keeps every entity in process memory. It backs the test suite and
// the STORAGE_DRIVER=memory development mode, with the same uniqueness and
// version guarantees as the postgres repositories.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

// Store is the shared state behind every memory repository, so joins across
// entities see one consistent view.
type Store struct {
	mu sync.RWMutex

	users        map[int64]domain.User
	offers       map[int64]domain.Offer
	cvs          map[int64]domain.CV
	applications map[int64]domain.Application
	agreements   map[int64]domain.Agreement
	evaluations  map[int64]domain.Evaluation

	nextID int64
	now    func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:        make(map[int64]domain.User),
		offers:       make(map[int64]domain.Offer),
		cvs:          make(map[int64]domain.CV),
		applications: make(map[int64]domain.Application),
		agreements:   make(map[int64]domain.Agreement),
		evaluations:  make(map[int64]domain.Evaluation),
		now:          time.Now,
	}
}

// id must be called with mu held.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// AddUser seeds a user. A zero ID is assigned.
func (s *Store) AddUser(u domain.User) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	} else if u.ID > s.nextID {
		s.nextID = u.ID
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	s.users[u.ID] = u
	return u
}

// AddOffer seeds an offer. A zero ID is assigned.
func (s *Store) AddOffer(o domain.Offer) domain.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == 0 {
		o.ID = s.id()
	} else if o.ID > s.nextID {
		s.nextID = o.ID
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	s.offers[o.ID] = o
	return o
}

// AddCV seeds a CV. A zero ID is assigned.
func (s *Store) AddCV(cv domain.CV) domain.CV {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cv.ID == 0 {
		cv.ID = s.id()
	} else if cv.ID > s.nextID {
		s.nextID = cv.ID
	}
	if cv.UploadedAt.IsZero() {
		cv.UploadedAt = s.now()
	}
	s.cvs[cv.ID] = cv
	return cv
}

type userRepo struct{ s *Store }

func NewUserRepository(s *Store) domain.UserRepository { return &userRepo{s: s} }

func (r *userRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *userRepo) ListByIDs(_ context.Context, ids []int64) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.User{}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type offerRepo struct{ s *Store }

func NewOfferRepository(s *Store) domain.OfferRepository { return &offerRepo{s: s} }

func (r *offerRepo) GetByID(_ context.Context, id int64) (*domain.Offer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.offers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &o, nil
}

type cvRepo struct{ s *Store }

func NewCVRepository(s *Store) domain.CVRepository { return &cvRepo{s: s} }

func (r *cvRepo) GetByID(_ context.Context, id int64) (*domain.CV, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	cv, ok := r.s.cvs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &cv, nil
}
