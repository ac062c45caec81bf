package memory

import (
	"context"
	"sort"
	"time"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type agreementRepo struct{ s *Store }

func NewAgreementRepository(s *Store) domain.AgreementRepository {
	return &agreementRepo{s: s}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// view copies pointers and fills the application/offer join. mu must be held.
func (r *agreementRepo) view(ag domain.Agreement) domain.Agreement {
	ag.StartDate = cloneTime(ag.StartDate)
	ag.StudentSignedAt = cloneTime(ag.StudentSignedAt)
	ag.EmployerSignedAt = cloneTime(ag.EmployerSignedAt)
	ag.ManagerSignedAt = cloneTime(ag.ManagerSignedAt)
	if app, ok := r.s.applications[ag.ApplicationID]; ok {
		ag.StudentID = app.StudentID
		ag.OfferID = app.OfferID
		if o, ok := r.s.offers[app.OfferID]; ok {
			ag.EmployerID = o.EmployerID
			title := o.Title
			ag.OfferTitle = &title
		}
	}
	return ag
}

func (r *agreementRepo) Create(_ context.Context, ag *domain.Agreement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.agreements {
		if existing.ApplicationID == ag.ApplicationID {
			return domain.ErrDuplicate
		}
	}
	now := r.s.now()
	ag.ID = r.s.id()
	ag.CreatedAt = now
	ag.ModifiedAt = now
	ag.Version = 1
	r.s.agreements[ag.ID] = r.view(*ag)
	*ag = r.view(*ag)
	return nil
}

func (r *agreementRepo) GetByID(_ context.Context, id int64) (*domain.Agreement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ag, ok := r.s.agreements[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	v := r.view(ag)
	return &v, nil
}

func (r *agreementRepo) GetByApplicationID(_ context.Context, applicationID int64) (*domain.Agreement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ag := range r.s.agreements {
		if ag.ApplicationID == applicationID {
			v := r.view(ag)
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *agreementRepo) FindValidated(_ context.Context, studentID, offerID int64) (*domain.Agreement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ag := range r.s.agreements {
		if ag.Status != domain.AgreementStatusValidated {
			continue
		}
		v := r.view(ag)
		if v.StudentID == studentID && v.OfferID == offerID {
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *agreementRepo) List(_ context.Context, f domain.AgreementFilter) ([]domain.Agreement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Agreement{}
	for _, ag := range r.s.agreements {
		v := r.view(ag)
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.StudentID != 0 && v.StudentID != f.StudentID {
			continue
		}
		if f.EmployerID != 0 && v.EmployerID != f.EmployerID {
			continue
		}
		if f.InstructorID != 0 && (v.InstructorID == nil || *v.InstructorID != f.InstructorID) {
			continue
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *agreementRepo) Update(_ context.Context, ag *domain.Agreement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.agreements[ag.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != ag.Version {
		return domain.ErrStaleVersion
	}
	ag.Version++
	ag.ModifiedAt = r.s.now()
	stored := *ag
	stored.StudentID, stored.OfferID, stored.EmployerID, stored.OfferTitle = 0, 0, 0, nil
	r.s.agreements[ag.ID] = r.view(stored)
	return nil
}

func (r *agreementRepo) Delete(_ context.Context, id int64, version int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.agreements[id]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != version {
		return domain.ErrStaleVersion
	}
	delete(r.s.agreements, id)
	return nil
}
