package memory

import (
	"context"

	"github.com/rilesCL/Projet-Leandrose-sub000/internal/domain"
)

type evaluationRepo struct{ s *Store }

func NewEvaluationRepository(s *Store) domain.EvaluationRepository {
	return &evaluationRepo{s: s}
}

func cloneEvaluation(ev domain.Evaluation) domain.Evaluation {
	ev.EmployerSubmittedAt = cloneTime(ev.EmployerSubmittedAt)
	ev.InstructorSubmittedAt = cloneTime(ev.InstructorSubmittedAt)
	if ev.EmployerDocumentPath != nil {
		p := *ev.EmployerDocumentPath
		ev.EmployerDocumentPath = &p
	}
	if ev.InstructorDocumentPath != nil {
		p := *ev.InstructorDocumentPath
		ev.InstructorDocumentPath = &p
	}
	return ev
}

func (r *evaluationRepo) Create(_ context.Context, ev *domain.Evaluation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.evaluations {
		if existing.StudentID == ev.StudentID && existing.OfferID == ev.OfferID {
			return domain.ErrDuplicate
		}
	}
	ev.ID = r.s.id()
	if ev.EvaluationDate.IsZero() {
		ev.EvaluationDate = r.s.now()
	}
	ev.Version = 1
	r.s.evaluations[ev.ID] = cloneEvaluation(*ev)
	return nil
}

func (r *evaluationRepo) GetByID(_ context.Context, id int64) (*domain.Evaluation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ev, ok := r.s.evaluations[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	v := cloneEvaluation(ev)
	return &v, nil
}

func (r *evaluationRepo) GetByStudentAndOffer(_ context.Context, studentID, offerID int64) (*domain.Evaluation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, ev := range r.s.evaluations {
		if ev.StudentID == studentID && ev.OfferID == offerID {
			v := cloneEvaluation(ev)
			return &v, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *evaluationRepo) Update(_ context.Context, ev *domain.Evaluation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	current, ok := r.s.evaluations[ev.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Version != ev.Version {
		return domain.ErrStaleVersion
	}
	ev.Version++
	r.s.evaluations[ev.ID] = cloneEvaluation(*ev)
	return nil
}
