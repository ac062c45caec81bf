package memory

import (
	"context"
	"sort"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type applicationRepo struct{ s *Store }

func NewApplicationRepository(s *Store) domain.ApplicationRepository {
	return &applicationRepo{s: s}
}

// view must be called with mu held.
func (r *applicationRepo) view(app domain.Application) domain.Application {
	if app.Convocation != nil {
		c := *app.Convocation
		app.Convocation = &c
	}
	if o, ok := r.s.offers[app.OfferID]; ok {
		title := o.Title
		app.OfferTitle = &title
	}
	if u, ok := r.s.users[app.StudentID]; ok {
		name := u.FullName()
		app.StudentName = &name
	}
	return app
}

func (r *applicationRepo) Create(_ context.Context, app *domain.Application) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.applications {
		if existing.StudentID == app.StudentID && existing.OfferID == app.OfferID {
			return domain.ErrDuplicate
		}
	}
	now := r.s.now()
	app.ID = r.s.id()
	app.AppliedAt = now
	app.UpdatedAt = now
	stored := *app
	stored.OfferTitle, stored.StudentName = nil, nil
	r.s.applications[app.ID] = stored
	return nil
}

func (r *applicationRepo) GetByID(_ context.Context, id int64) (*domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	app, ok := r.s.applications[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	v := r.view(app)
	return &v, nil
}

func (r *applicationRepo) GetByStudentAndOffer(_ context.Context, studentID, offerID int64) (*domain.Application, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, app := range r.s.applications {
		if app.StudentID == studentID && app.OfferID == offerID {
			v := r.view(app)
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *applicationRepo) list(match func(domain.Application) bool) []domain.Application {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Application{}
	for _, app := range r.s.applications {
		if match(app) {
			out = append(out, r.view(app))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (r *applicationRepo) ListByStudent(_ context.Context, studentID int64) ([]domain.Application, error) {
	return r.list(func(a domain.Application) bool { return a.StudentID == studentID }), nil
}

func (r *applicationRepo) ListByOffer(_ context.Context, offerID int64) ([]domain.Application, error) {
	return r.list(func(a domain.Application) bool { return a.OfferID == offerID }), nil
}

func (r *applicationRepo) UpdateStatus(_ context.Context, id int64, from, to domain.ApplicationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	if app.Status != from {
		return domain.ErrStaleVersion
	}
	app.Status = to
	app.UpdatedAt = r.s.now()
	r.s.applications[id] = app
	return nil
}

func (r *applicationRepo) SaveConvocation(_ context.Context, id int64, conv domain.Convocation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	app, ok := r.s.applications[id]
	if !ok {
		return domain.ErrNotFound
	}
	app.Convened = true
	app.Convocation = &conv
	app.UpdatedAt = r.s.now()
	r.s.applications[id] = app
	return nil
}
